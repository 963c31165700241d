package protocols

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"github.com/google/objectfilter/types"
	"github.com/google/objectfilter/utils"
)

// RegexProtocol lets a host register a custom match rule for types
// the built-in fast paths don't cover.
type RegexProtocol interface {
	Applicable(pattern, target types.Any) bool
	Match(ctx context.Context, pattern, target types.Any) bool
}

// RegexDispatcher implements spec.md §4.3's Regexp operator: the
// pattern is always matched case-insensitively, numbers are
// stringified with Go's default formatting before matching (decision
// recorded in DESIGN.md), and sequences/composites never match.
// Compiled patterns are cached by source text, mirroring the
// teacher's scope-context cache in _SubstringRegex.Match.
type RegexDispatcher struct {
	impl   []RegexProtocol
	Logger Logger

	mu    sync.Mutex
	cache map[string]*regexp.Regexp
}

func (d *RegexDispatcher) AddImpl(elements ...RegexProtocol) {
	d.impl = append(d.impl, elements...)
}

func (d *RegexDispatcher) Match(ctx context.Context, pattern, target types.Any) bool {
	patternStr, ok := pattern.(string)
	if !ok {
		for i, impl := range d.impl {
			if impl.Applicable(pattern, target) {
				if d.Logger != nil {
					d.Logger.Trace("protocols: Regex dispatched to impl %d", i)
				}
				return impl.Match(ctx, pattern, target)
			}
		}
		return false
	}

	targetStr, ok := stringify(target)
	if !ok {
		if d.Logger != nil {
			d.Logger.Trace("protocols: no Regex implementation for %v (%T) and %v (%T)",
				pattern, pattern, target, target)
		}
		return false
	}

	if patternStr == "." {
		return true
	}

	re, err := d.compile(patternStr)
	if err != nil {
		if d.Logger != nil {
			d.Logger.Log("protocols: compile regexp %q: %v", patternStr, err)
		}
		return false
	}
	return re.MatchString(targetStr)
}

func (d *RegexDispatcher) compile(pattern string) (*regexp.Regexp, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cache == nil {
		d.cache = map[string]*regexp.Regexp{}
	}
	if re, ok := d.cache[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, err
	}
	d.cache[pattern] = re
	return re, nil
}

// stringify turns a scalar or number into text for regex matching;
// sequences and composites are refused, per spec.md §4.3.
func stringify(target types.Any) (string, bool) {
	if s, ok := utils.ToString(target); ok {
		return s, true
	}
	if utils.IsInt(target) {
		n, _ := utils.ToInt64(target)
		return fmt.Sprint(n), true
	}
	if f, ok := utils.ToFloat(target); ok {
		return fmt.Sprint(f), true
	}
	return "", false
}
