// Package fleet computes per-subnet instance-count deltas that grow a
// role's fleet toward its desired total while keeping the distribution
// across subnets as even as possible.
package fleet

import (
	"errors"
	"sort"
)

// ErrNoSubnets is returned when a role has no eligible subnets to
// launch into.
var ErrNoSubnets = errors.New("no eligible subnets")

// SubnetLoad is one subnet and its current instance count for the role's
// environment.
type SubnetLoad struct {
	SubnetID string
	Count    int
}

// Scale returns the additional instances to launch per subnet so the
// fleet reaches the desired total.
//
// When the existing total already meets or exceeds desired, the result
// is empty: scale-down is never computed here. Otherwise the shortfall
// is spread evenly across subnets ordered by ascending current count
// (ties broken by SubnetID), with the remainder going one instance at a
// time to the least-populated subnets. The deltas always sum exactly to
// the shortfall and are never negative.
func Scale(desired int, subnets []SubnetLoad) (map[string]int, error) {
	if len(subnets) == 0 {
		return nil, ErrNoSubnets
	}

	existing := 0
	for _, s := range subnets {
		existing += s.Count
	}
	deltas := make(map[string]int)
	if existing >= desired {
		return deltas, nil
	}

	ordered := make([]SubnetLoad, len(subnets))
	copy(ordered, subnets)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Count != ordered[j].Count {
			return ordered[i].Count < ordered[j].Count
		}
		return ordered[i].SubnetID < ordered[j].SubnetID
	})

	needed := desired - existing
	base := needed / len(ordered)
	remainder := needed % len(ordered)

	for i, s := range ordered {
		n := base
		if i < remainder {
			n++
		}
		if n > 0 {
			deltas[s.SubnetID] = n
		}
	}
	return deltas, nil
}
