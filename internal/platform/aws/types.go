package aws

import "github.com/vpcform/vpcform/internal/rules"

// VPC is the handle of a provisioned network environment.
type VPC struct {
	ID   string
	Name string
	CIDR string
}

// RouteTable is the handle of a route table, including the subnets
// currently associated with it.
type RouteTable struct {
	ID        string
	Name      string
	Main      bool
	SubnetIDs []string
}

// AssociatedWith reports whether the subnet is already associated with
// this route table.
func (rt *RouteTable) AssociatedWith(subnetID string) bool {
	for _, id := range rt.SubnetIDs {
		if id == subnetID {
			return true
		}
	}
	return false
}

// Subnet is the handle of a subnet.
type Subnet struct {
	ID               string
	Name             string
	CIDR             string
	AvailabilityZone string
}

// SecurityGroup is the handle of a security group, including its
// currently authorized ingress permissions so rule reconciliation can
// skip what already exists.
type SecurityGroup struct {
	ID      string
	Name    string
	Ingress []rules.Permission
}

// HasIngress reports whether an equivalent permission is already
// authorized on the group.
func (sg *SecurityGroup) HasIngress(perm rules.Permission) bool {
	for _, p := range sg.Ingress {
		if p == perm {
			return true
		}
	}
	return false
}

// Endpoint is the handle of a VPC gateway endpoint.
type Endpoint struct {
	ID   string
	Name string
}

// Instance is the handle of an instance.
type Instance struct {
	ID       string
	Name     string
	Role     string
	SubnetID string
	State    string
}

// InstanceStateRunning is the provider's running state name.
const InstanceStateRunning = "running"

// LaunchSpec describes one batch launch into a single subnet.
type LaunchSpec struct {
	SubnetID         string
	ImageID          string
	InstanceType     string
	KeyName          string
	SecurityGroupIDs []string
	Count            int
	// ClientToken makes the launch idempotent provider-side when the
	// same batch is retried.
	ClientToken string
}
