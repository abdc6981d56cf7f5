// Package cidr partitions a parent IPv4 address block into child blocks
// of heterogeneous requested sizes.
//
// The allocator is pure and deterministic: the same parent and the same
// ordered size list always produce the same plan, so repeated runs never
// reassign an existing subnet to a different block.
package cidr

import (
	"fmt"
	"net/netip"
)

// reservedAddresses is the number of addresses in every allocated block
// that the provider withholds from hosts (the first two and last two).
const reservedAddresses = 4

// maxHostPrefix is the longest prefix that still leaves usable host
// addresses after the provider reservation.
const maxHostPrefix = 30

// Assignment binds one size request to its allocated block.
type Assignment struct {
	// Index is the position of the request in the input size list.
	Index int
	// Size is the requested usable host count.
	Size int
	// Block is the allocated child block.
	Block netip.Prefix
}

// Plan is the ordered result of an allocation, one entry per request.
type Plan []Assignment

// AllocationError reports a size request that cannot be placed inside
// the remaining free space of the parent block.
type AllocationError struct {
	Parent netip.Prefix
	Size   int
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("cannot allocate block for %d hosts inside %s: insufficient free space", e.Size, e.Parent)
}

// span is a half-open range [lo, hi) of IPv4 addresses as integers.
// hi may be 1<<32, so both bounds are uint64.
type span struct {
	lo, hi uint64
}

// ParseBlock parses and validates an IPv4 CIDR block. The base address
// must be aligned to the prefix, i.e. no host bits set.
func ParseBlock(s string) (netip.Prefix, error) {
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("invalid CIDR block %q: %w", s, err)
	}
	if !p.Addr().Is4() {
		return netip.Prefix{}, fmt.Errorf("invalid CIDR block %q: only IPv4 is supported", s)
	}
	if p != p.Masked() {
		return netip.Prefix{}, fmt.Errorf("invalid CIDR block %q: host bits set, expected %s", s, p.Masked())
	}
	return p, nil
}

// PrefixLength returns the longest prefix whose usable host count
// (block size minus the provider reservation) satisfies the requested
// size. Longest prefix means smallest block, so no space is wasted.
func PrefixLength(size int) (int, error) {
	if size < 1 {
		return 0, fmt.Errorf("invalid size request %d: must be at least 1", size)
	}
	for p := maxHostPrefix; p >= 0; p-- {
		usable := (1 << (32 - p)) - reservedAddresses
		if usable >= size {
			return p, nil
		}
	}
	return 0, fmt.Errorf("invalid size request %d: exceeds IPv4 address space", size)
}

// Allocate carves the parent block into one child block per requested
// size. Sizes must be sorted ascending; that ordering is part of the
// determinism contract and is rejected, not fixed up, when violated.
//
// Each request takes the highest available slot aligned to its block
// size, so the smallest requests settle in the high addresses of the
// parent and the largest in the low addresses. An *AllocationError is
// returned when a request cannot be placed.
func Allocate(parent netip.Prefix, sizes []int) (Plan, error) {
	if !parent.Addr().Is4() {
		return nil, fmt.Errorf("parent block %s: only IPv4 is supported", parent)
	}
	if parent != parent.Masked() {
		return nil, fmt.Errorf("parent block %s: host bits set", parent)
	}
	for i := 1; i < len(sizes); i++ {
		if sizes[i] < sizes[i-1] {
			return nil, fmt.Errorf("size requests must be sorted ascending: %d follows %d", sizes[i], sizes[i-1])
		}
	}

	parentLo := uint64(addrToUint32(parent.Addr()))
	free := []span{{lo: parentLo, hi: parentLo + (1 << (32 - parent.Bits()))}}

	plan := make(Plan, 0, len(sizes))
	for i, size := range sizes {
		prefixLen, err := PrefixLength(size)
		if err != nil {
			return nil, err
		}
		if prefixLen < parent.Bits() {
			return nil, &AllocationError{Parent: parent, Size: size}
		}
		block := uint64(1) << (32 - prefixLen)

		slot, ok := takeHighest(&free, block)
		if !ok {
			return nil, &AllocationError{Parent: parent, Size: size}
		}

		assigned := netip.PrefixFrom(uint32ToAddr(uint32(slot)), prefixLen)
		plan = append(plan, Assignment{Index: i, Size: size, Block: assigned})
	}
	return plan, nil
}

// takeHighest removes the highest aligned slot of the given block size
// from the free list and returns its start address. The free list stays
// sorted ascending by lo.
func takeHighest(free *[]span, block uint64) (uint64, bool) {
	spans := *free
	for i := len(spans) - 1; i >= 0; i-- {
		s := spans[i]
		if s.hi-s.lo < block {
			continue
		}
		// Highest start inside the span that is aligned to the block size.
		start := (s.hi - block) / block * block
		if start < s.lo {
			continue
		}
		end := start + block

		// Split the span around the taken slot, dropping empty remainders.
		replacement := make([]span, 0, 2)
		if s.lo < start {
			replacement = append(replacement, span{lo: s.lo, hi: start})
		}
		if end < s.hi {
			replacement = append(replacement, span{lo: end, hi: s.hi})
		}

		next := make([]span, 0, len(spans)+1)
		next = append(next, spans[:i]...)
		next = append(next, replacement...)
		next = append(next, spans[i+1:]...)
		*free = next
		return start, true
	}
	return 0, false
}

func addrToUint32(a netip.Addr) uint32 {
	b := a.As4()
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func uint32ToAddr(v uint32) netip.Addr {
	return netip.AddrFrom4([4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}
