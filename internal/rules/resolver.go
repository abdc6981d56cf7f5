// Package rules resolves symbolic ingress rules into concrete
// permission records ready for provider authorization.
package rules

import (
	"fmt"
	"net/netip"
)

// Rule is a declared ingress rule: traffic from Source over Protocol on
// the ports described by PortSpec. Source is either a CIDR literal or
// the logical name of a sibling security group.
type Rule struct {
	Source   string
	Protocol string
	PortSpec string
}

// Permission is a resolved ingress permission. Exactly one of CIDR and
// GroupID is set, depending on whether the rule's source named a sibling
// group or an address range.
type Permission struct {
	Protocol string
	FromPort int32
	ToPort   int32
	CIDR     string
	GroupID  string
}

// GroupLookup resolves a logical security group name to its provider
// identifier. The second return is false when no such group exists.
type GroupLookup func(name string) (string, bool)

// Resolve translates a rule into a permission record. Sources that
// match a known group become group-sourced permissions; everything else
// must parse as a CIDR literal. Resolution is pure: authorization is
// the caller's job.
func Resolve(rule Rule, lookup GroupLookup) (Permission, error) {
	from, to, err := PortRange(rule.PortSpec, rule.Protocol)
	if err != nil {
		return Permission{}, err
	}

	perm := Permission{
		Protocol: rule.Protocol,
		FromPort: from,
		ToPort:   to,
	}

	if lookup != nil {
		if id, ok := lookup(rule.Source); ok {
			perm.GroupID = id
			return perm, nil
		}
	}

	if _, err := netip.ParsePrefix(rule.Source); err != nil {
		return Permission{}, fmt.Errorf("rule source %q is neither a known security group nor a CIDR block", rule.Source)
	}
	perm.CIDR = rule.Source
	return perm, nil
}
