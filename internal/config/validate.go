package config

import (
	"fmt"

	"github.com/vpcform/vpcform/internal/cidr"
	"github.com/vpcform/vpcform/internal/rules"
)

// Validate checks the config for internal consistency: parseable
// address blocks, resolvable cross-references, and well-formed rules.
func (c *Config) Validate() error {
	parent, err := cidr.ParseBlock(c.VPCCIDR)
	if err != nil {
		return err
	}

	for name, sn := range c.Subnets {
		if sn.Size < 1 {
			return fmt.Errorf("subnet %q: size must be at least 1, got %d", name, sn.Size)
		}
		prefixLen, err := cidr.PrefixLength(sn.Size)
		if err != nil {
			return fmt.Errorf("subnet %q: %w", name, err)
		}
		if prefixLen < parent.Bits() {
			return fmt.Errorf("subnet %q: size %d does not fit inside %s", name, sn.Size, c.VPCCIDR)
		}
		if sn.RouteTable != "" {
			if _, ok := c.RouteTables[sn.RouteTable]; !ok {
				return fmt.Errorf("subnet %q references undeclared route table %q", name, sn.RouteTable)
			}
		}
		if len(sn.AvailabilityZone) > 1 {
			return fmt.Errorf("subnet %q: availability_zone must be a single zone letter, got %q", name, sn.AvailabilityZone)
		}
	}

	mains := 0
	for _, rt := range c.RouteTables {
		if rt.Main {
			mains++
		}
	}
	if mains > 1 {
		return fmt.Errorf("at most one route table may be designated main, got %d", mains)
	}

	for _, rt := range c.Endpoints {
		if _, ok := c.RouteTables[rt]; !ok {
			return fmt.Errorf("endpoints reference undeclared route table %q", rt)
		}
	}

	for group, ruleSet := range c.SecurityGroups {
		for i, r := range ruleSet {
			if r.Source == "" || r.Protocol == "" {
				return fmt.Errorf("security group %q rule %d: source and protocol are required", group, i)
			}
			if _, _, err := rules.PortRange(r.Ports, r.Protocol); err != nil {
				return fmt.Errorf("security group %q rule %d: %w", group, i, err)
			}
		}
	}

	for role, decl := range c.InstanceRoles {
		if decl.Count < 0 {
			return fmt.Errorf("instance role %q: count must not be negative", role)
		}
		if _, ok := c.AMIs[decl.AMI]; !ok {
			return fmt.Errorf("instance role %q references undeclared ami %q", role, decl.AMI)
		}
		if len(decl.Subnets) == 0 {
			return fmt.Errorf("instance role %q declares no subnets", role)
		}
		for _, sn := range decl.Subnets {
			if _, ok := c.Subnets[sn]; !ok {
				return fmt.Errorf("instance role %q references undeclared subnet %q", role, sn)
			}
		}
		for _, sg := range decl.SecurityGroups {
			if _, ok := c.SecurityGroups[sg]; !ok {
				return fmt.Errorf("instance role %q references undeclared security group %q", role, sg)
			}
		}
	}

	return nil
}
