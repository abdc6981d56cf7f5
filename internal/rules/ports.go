package rules

import (
	"fmt"
	"strconv"
	"strings"
)

// sentinelPort marks protocols that have no port concept, such as ICMP.
const sentinelPort = -1

// PortRange expands a port spec into a concrete (from, to) pair.
//
// A spec is a single port ("443") or an inclusive range ("8000-8100").
// Protocols without ports (icmp, icmpv6, or the catch-all "-1") always
// expand to the sentinel pair regardless of the spec.
func PortRange(spec, protocol string) (int32, int32, error) {
	switch strings.ToLower(protocol) {
	case "icmp", "icmpv6", "-1":
		return sentinelPort, sentinelPort, nil
	}

	lo, hi, ok := strings.Cut(spec, "-")
	from, err := parsePort(lo)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid port spec %q: %w", spec, err)
	}
	if !ok {
		return from, from, nil
	}

	to, err := parsePort(hi)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid port spec %q: %w", spec, err)
	}
	if to < from {
		return 0, 0, fmt.Errorf("invalid port spec %q: range end before start", spec)
	}
	return from, to, nil
}

func parsePort(s string) (int32, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > 65535 {
		return 0, fmt.Errorf("port %d out of range", n)
	}
	return int32(n), nil
}
