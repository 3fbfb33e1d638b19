package transition

import (
	"reflect"

	"github.com/vango-dev/waymark/pkg/route"
)

// Diff partitions two branches into the hook sets of a transition. Routes
// are compared by node identity, never by path string, so two distinct
// nodes with the same pattern are different routes.
type Diff struct {
	// Left holds old-branch routes absent from the new branch, ordered
	// leaf to root.
	Left []*route.Node
	// Entered holds new-branch routes absent from the old branch,
	// ordered root to leaf.
	Entered []*route.Node
	// Changed holds routes present in both branches whose
	// location-derived inputs differ, ordered root to leaf.
	Changed []*route.Node
}

// Compute builds the diff between the previously committed state and the
// candidate next state. A nil prev means an initial transition: everything
// is entered.
func Compute(prev, next *route.State) Diff {
	var d Diff
	if prev == nil {
		d.Entered = append(d.Entered, next.Routes...)
		return d
	}

	inNext := make(map[*route.Node]bool, len(next.Routes))
	for _, n := range next.Routes {
		inNext[n] = true
	}
	inPrev := make(map[*route.Node]bool, len(prev.Routes))
	for _, n := range prev.Routes {
		inPrev[n] = true
	}

	for i := len(prev.Routes) - 1; i >= 0; i-- {
		if !inNext[prev.Routes[i]] {
			d.Left = append(d.Left, prev.Routes[i])
		}
	}

	queryChanged := prev.Location.Search != next.Location.Search ||
		!reflect.DeepEqual(prev.Location.State, next.Location.State)

	for _, n := range next.Routes {
		switch {
		case !inPrev[n]:
			d.Entered = append(d.Entered, n)
		case queryChanged || ownParamsChanged(n, prev.Params, next.Params):
			d.Changed = append(d.Changed, n)
		}
	}
	return d
}

// ownParamsChanged reports whether the params a route's own pattern
// contributes differ between two branches.
func ownParamsChanged(n *route.Node, prev, next route.Params) bool {
	for _, name := range route.ParamNames(n.Path) {
		if prev.Get(name) != next.Get(name) {
			return true
		}
	}
	return false
}
