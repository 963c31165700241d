package resolver

import (
	"context"

	"github.com/google/objectfilter/types"
)

// Expander walks a dotted path across a host object, one segment at a
// time, forking the traversal frontier at every repeated or
// sequence-valued intermediate member (spec.md §4.2).
type Expander struct {
	Resolver AttributeResolver
}

func NewExpander(r AttributeResolver) *Expander {
	return &Expander{Resolver: r}
}

// Expand returns one Resolved group per surviving traversal of path
// starting at root. A group is the *whole*, unflattened terminal
// resolution for one path through the frontier — spec.md §4.2's "do
// not flatten further" rule. An empty path, or a path whose
// intermediate frontier collapses to nothing, yields no groups at
// all.
func (e *Expander) Expand(ctx context.Context, root types.Any, path []string) []Resolved {
	if len(path) == 0 {
		return nil
	}

	frontier := []types.Any{root}
	for _, seg := range path[:len(path)-1] {
		var next []types.Any
		for _, x := range frontier {
			res := e.Resolver.Resolve(ctx, x, seg)
			if !res.Present {
				continue
			}
			if res.IsSeq {
				for {
					v, ok := res.Seq.Next(ctx)
					if !ok {
						break
					}
					next = append(next, v)
				}
				continue
			}
			next = append(next, res.Value)
		}
		frontier = next
		if len(frontier) == 0 {
			return nil
		}
	}

	last := path[len(path)-1]
	groups := make([]Resolved, 0, len(frontier))
	for _, x := range frontier {
		groups = append(groups, e.Resolver.Resolve(ctx, x, last))
	}
	return groups
}
