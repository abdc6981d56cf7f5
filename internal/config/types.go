package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Config is the declarative description of one VPC environment.
type Config struct {
	// VPCCIDR is the parent address block owned by the environment.
	VPCCIDR string `yaml:"vpc_cidr"`

	// KeyName is the provider key pair applied to launched instances.
	KeyName string `yaml:"key_name"`

	// AMIs maps a logical image name to a region -> image ID table.
	AMIs map[string]map[string]string `yaml:"amis"`

	// RouteTables maps logical route table names to their settings.
	RouteTables map[string]RouteTable `yaml:"route_tables"`

	// Subnets maps logical subnet names to their declarations.
	Subnets map[string]Subnet `yaml:"subnets"`

	// Endpoints lists route tables that receive the regional gateway
	// endpoint.
	Endpoints []string `yaml:"endpoints"`

	// SecurityGroups maps logical group names to their ingress rules.
	SecurityGroups map[string][]Rule `yaml:"security_groups"`

	// InstanceRoles maps role names to their fleet declarations.
	InstanceRoles map[string]InstanceRole `yaml:"instance_roles"`
}

// RouteTable declares one route table. At most one may be the main
// table, which adopts the VPC's implicit main route table instead of
// creating a new one.
type RouteTable struct {
	Main bool `yaml:"main"`
}

// Subnet declares one subnet.
type Subnet struct {
	// Size is the number of usable host addresses requested.
	Size int `yaml:"size"`

	// AvailabilityZone is an optional zone letter ("a", "b", ...).
	// When empty the zone is derived from the subnet name's trailing
	// index.
	AvailabilityZone string `yaml:"availability_zone"`

	// RouteTable optionally names the route table to associate.
	RouteTable string `yaml:"route_table"`

	Description string `yaml:"description"`
}

// InstanceRole declares one instance fleet.
type InstanceRole struct {
	AMI            string   `yaml:"ami"`
	Count          int      `yaml:"count"`
	InstanceType   string   `yaml:"instance_type"`
	SecurityGroups []string `yaml:"security_groups"`
	Subnets        []string `yaml:"subnets"`
}

// Rule is one declared ingress rule, written in YAML as a three-element
// sequence: [source, protocol, ports].
type Rule struct {
	Source   string
	Protocol string
	Ports    string
}

// UnmarshalYAML decodes the [source, protocol, ports] tuple form.
func (r *Rule) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode || len(value.Content) != 3 {
		return fmt.Errorf("security group rule must be a [source, protocol, ports] triple (line %d)", value.Line)
	}
	r.Source = value.Content[0].Value
	r.Protocol = value.Content[1].Value
	r.Ports = value.Content[2].Value
	return nil
}
