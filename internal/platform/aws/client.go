package aws

import (
	"context"

	"github.com/vpcform/vpcform/internal/rules"
)

// StateView is the read-only view over an environment's existing
// resources, keyed by Name tag. Every lookup returns nil (not an error)
// when no resource carries the requested name.
type StateView interface {
	Region() string
	AvailabilityZones(ctx context.Context) ([]string, error)

	VPCByName(ctx context.Context, name string) (*VPC, error)
	RouteTableByName(ctx context.Context, vpcID, name string) (*RouteTable, error)
	MainRouteTable(ctx context.Context, vpcID string) (*RouteTable, error)
	SubnetByName(ctx context.Context, vpcID, name string) (*Subnet, error)
	SecurityGroupByName(ctx context.Context, vpcID, name string) (*SecurityGroup, error)
	EndpointByName(ctx context.Context, vpcID, name string) (*Endpoint, error)

	// EnvironmentInstances returns every non-terminated instance in the
	// environment's VPC.
	EnvironmentInstances(ctx context.Context, vpcID string) ([]Instance, error)
}

// Mutator issues the provider mutations. Calls are at-least-once safe
// only when guarded by a StateView lookup first; the provider does not
// deduplicate on our behalf (RunInstances client tokens excepted).
type Mutator interface {
	CreateVPC(ctx context.Context, cidrBlock string) (*VPC, error)
	EnableDNS(ctx context.Context, vpcID string) error
	CreateInternetGateway(ctx context.Context) (string, error)
	AttachInternetGateway(ctx context.Context, gatewayID, vpcID string) error

	CreateRouteTable(ctx context.Context, vpcID string) (*RouteTable, error)
	CreateSubnet(ctx context.Context, vpcID, cidrBlock, zone string) (*Subnet, error)
	AssociateRouteTable(ctx context.Context, routeTableID, subnetID string) error
	CreateGatewayEndpoint(ctx context.Context, vpcID, service string, routeTableIDs []string) (*Endpoint, error)

	CreateSecurityGroup(ctx context.Context, vpcID, groupName, description string) (*SecurityGroup, error)
	AuthorizeIngress(ctx context.Context, groupID string, perms []rules.Permission) error

	LaunchInstances(ctx context.Context, spec LaunchSpec) ([]Instance, error)
	InstanceStates(ctx context.Context, instanceIDs []string) (map[string]string, error)
	SetTerminationProtection(ctx context.Context, instanceID string, protected bool) error

	Tag(ctx context.Context, resourceID string, tags map[string]string) error
}

// Client is the full provider surface the pipeline depends on.
type Client interface {
	StateView
	Mutator
}
