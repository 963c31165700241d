package protocols

// Registry bundles the four protocol dispatchers the filter algebra
// needs, wiring their cross-dependencies (Membership needs Eq) the
// way the teacher's Scope composes its protocolDispatcher from the
// individual Xxx Dispatchers in scope/dispatcher.go.
type Registry struct {
	Eq         *EqDispatcher
	Lt         *LtDispatcher
	Membership *MembershipDispatcher
	Regex      *RegexDispatcher
}

func NewRegistry(logger Logger) *Registry {
	eq := &EqDispatcher{Logger: logger}
	membership := &MembershipDispatcher{Eq: eq.Eq, Logger: logger}
	membership.AddImpl(_SubstringMembership{})

	return &Registry{
		Eq:         eq,
		Lt:         &LtDispatcher{Logger: logger},
		Membership: membership,
		Regex:      &RegexDispatcher{Logger: logger},
	}
}
