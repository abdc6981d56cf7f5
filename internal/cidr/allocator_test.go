package cidr

import (
	"net/netip"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseBlock(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid /16", input: "10.0.0.0/16"},
		{name: "valid /23", input: "10.0.0.0/23"},
		{name: "host bits set", input: "10.0.0.1/16", wantErr: true},
		{name: "not a cidr", input: "10.0.0.0", wantErr: true},
		{name: "ipv6", input: "fd00::/64", wantErr: true},
		{name: "garbage", input: "banana", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseBlock(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, p.String())
		})
	}
}

func TestPrefixLength(t *testing.T) {
	tests := []struct {
		size    int
		want    int
		wantErr bool
	}{
		{size: 1, want: 30},
		{size: 60, want: 26},
		{size: 61, want: 25},
		{size: 250, want: 24},
		{size: 252, want: 24},
		{size: 253, want: 23},
		{size: 65000, want: 16},
		{size: 0, wantErr: true},
		{size: -5, wantErr: true},
	}
	for _, tt := range tests {
		got, err := PrefixLength(tt.size)
		if tt.wantErr {
			assert.Error(t, err, "size %d", tt.size)
			continue
		}
		require.NoError(t, err, "size %d", tt.size)
		assert.Equal(t, tt.want, got, "size %d", tt.size)
	}
}

func TestAllocateSmallestToHighestAddresses(t *testing.T) {
	parent := netip.MustParsePrefix("10.0.0.0/23")

	plan, err := Allocate(parent, []int{60, 250})
	require.NoError(t, err)
	require.Len(t, plan, 2)

	// The smaller request settles at the top of the parent, the larger
	// one gets the numerically lower range.
	assert.Equal(t, "10.0.1.192/26", plan[0].Block.String())
	assert.Equal(t, "10.0.0.0/24", plan[1].Block.String())
	assert.Equal(t, 60, plan[0].Size)
	assert.Equal(t, 250, plan[1].Size)
}

func TestAllocateWide(t *testing.T) {
	parent := netip.MustParsePrefix("10.0.0.0/16")

	plan, err := Allocate(parent, []int{60, 250, 250})
	require.NoError(t, err)
	require.Len(t, plan, 3)

	assert.Equal(t, "10.0.255.192/26", plan[0].Block.String())
	assert.Equal(t, "10.0.254.0/24", plan[1].Block.String())
	assert.Equal(t, "10.0.253.0/24", plan[2].Block.String())
}

func TestAllocateInsufficientSpace(t *testing.T) {
	parent := netip.MustParsePrefix("10.0.0.0/24")

	_, err := Allocate(parent, []int{200, 200})
	require.Error(t, err)

	var allocErr *AllocationError
	require.ErrorAs(t, err, &allocErr)
	assert.Equal(t, parent, allocErr.Parent)
	assert.Equal(t, 200, allocErr.Size)
}

func TestAllocateRequestLargerThanParent(t *testing.T) {
	parent := netip.MustParsePrefix("10.0.0.0/24")

	_, err := Allocate(parent, []int{5000})
	var allocErr *AllocationError
	require.ErrorAs(t, err, &allocErr)
}

func TestAllocateRejectsUnsortedSizes(t *testing.T) {
	parent := netip.MustParsePrefix("10.0.0.0/16")

	_, err := Allocate(parent, []int{250, 60})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sorted ascending")
}

func TestAllocateRejectsUnmaskedParent(t *testing.T) {
	parent := netip.MustParsePrefix("10.0.0.1/16")

	_, err := Allocate(parent, []int{10})
	require.Error(t, err)
}

func TestAllocateEmpty(t *testing.T) {
	plan, err := Allocate(netip.MustParsePrefix("10.0.0.0/16"), nil)
	require.NoError(t, err)
	assert.Empty(t, plan)
}

func TestAllocateProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		parentBits := rapid.IntRange(16, 24).Draw(t, "parentBits")
		parent := netip.PrefixFrom(netip.AddrFrom4([4]byte{10, 0, 0, 0}), parentBits).Masked()

		n := rapid.IntRange(1, 8).Draw(t, "n")
		sizes := make([]int, n)
		for i := range sizes {
			sizes[i] = rapid.IntRange(1, 500).Draw(t, "size")
		}
		sort.Ints(sizes)

		plan, err := Allocate(parent, sizes)
		if err != nil {
			var allocErr *AllocationError
			if !assert.ErrorAs(t, err, &allocErr) {
				t.Fatalf("unexpected error kind: %v", err)
			}
			return
		}

		require.Len(t, plan, n)
		for i, a := range plan {
			assert.Equal(t, i, a.Index)
			assert.True(t, parent.Contains(a.Block.Addr()), "block %s outside parent %s", a.Block, parent)
			assert.True(t, parent.Bits() <= a.Block.Bits())

			usable := (1 << (32 - a.Block.Bits())) - 4
			assert.GreaterOrEqual(t, usable, a.Size)
		}

		// Pairwise disjoint.
		for i := 0; i < len(plan); i++ {
			for j := i + 1; j < len(plan); j++ {
				assert.False(t, plan[i].Block.Overlaps(plan[j].Block),
					"blocks %s and %s overlap", plan[i].Block, plan[j].Block)
			}
		}

		// Deterministic: the same inputs yield the same plan.
		again, err := Allocate(parent, sizes)
		require.NoError(t, err)
		assert.Equal(t, plan, again)
	})
}
