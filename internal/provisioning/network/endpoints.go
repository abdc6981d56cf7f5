package network

import (
	"context"

	"github.com/vpcform/vpcform/internal/platform/aws"
	"github.com/vpcform/vpcform/internal/provisioning"
	"github.com/vpcform/vpcform/internal/util/naming"
)

// endpointService is the service the gateway endpoint targets.
const endpointService = "s3"

// EndpointsStep creates the environment's gateway endpoint and attaches
// it to the declared route tables. The whole step is skipped when no
// endpoints are declared.
type EndpointsStep struct{}

// Name implements provisioning.Step.
func (s *EndpointsStep) Name() string { return "endpoints" }

// Provision implements provisioning.Step.
func (s *EndpointsStep) Provision(ctx *provisioning.Context) error {
	if len(ctx.Config.Endpoints) == 0 {
		return nil
	}
	vpcID := ctx.State.VPC.ID

	routeTableIDs := make([]string, 0, len(ctx.Config.Endpoints))
	for _, rtName := range ctx.Config.Endpoints {
		rt, err := ctx.Cloud.RouteTableByName(ctx, vpcID, naming.Resource(ctx.Env, rtName))
		if err != nil {
			return err
		}
		if rt == nil {
			return provisioning.Configf("endpoints declare route table %q, which does not exist", rtName)
		}
		routeTableIDs = append(routeTableIDs, rt.ID)
	}

	logical := naming.Endpoint(ctx.Env, endpointService)
	_, _, err := (&provisioning.EnsureOperation[*aws.Endpoint]{
		Name:         logical,
		ResourceType: "vpc endpoint",
		Step:         s.Name(),
		Get: func(c context.Context) (*aws.Endpoint, error) {
			return ctx.Cloud.EndpointByName(c, vpcID, logical)
		},
		Create: func(c context.Context) (*aws.Endpoint, error) {
			return ctx.Cloud.CreateGatewayEndpoint(c, vpcID, endpointService, routeTableIDs)
		},
		Tags: func(ep *aws.Endpoint) (string, map[string]string) {
			return ep.ID, nil
		},
	}).Execute(ctx, ctx.Cloud, ctx.Observer)
	return err
}
