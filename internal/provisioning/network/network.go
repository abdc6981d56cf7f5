package network

import (
	"context"
	"fmt"

	"github.com/vpcform/vpcform/internal/platform/aws"
	"github.com/vpcform/vpcform/internal/provisioning"
	"github.com/vpcform/vpcform/internal/util/naming"
)

// NetworkStep ensures the environment's VPC exists with DNS enabled and
// an attached internet gateway.
type NetworkStep struct{}

// Name implements provisioning.Step.
func (s *NetworkStep) Name() string { return "network" }

// Provision implements provisioning.Step. A VPC found under the
// environment's name is adopted as-is (after checking its address block
// still matches); a fresh VPC additionally gets DNS support, DNS
// hostnames, and an internet gateway.
func (s *NetworkStep) Provision(ctx *provisioning.Context) error {
	vpc, created, err := (&provisioning.EnsureOperation[*aws.VPC]{
		Name:         ctx.Env,
		ResourceType: "vpc",
		Step:         s.Name(),
		Get: func(c context.Context) (*aws.VPC, error) {
			return ctx.Cloud.VPCByName(c, ctx.Env)
		},
		Create: func(c context.Context) (*aws.VPC, error) {
			return ctx.Cloud.CreateVPC(c, ctx.Config.VPCCIDR)
		},
		Tags: func(vpc *aws.VPC) (string, map[string]string) {
			return vpc.ID, nil
		},
	}).Execute(ctx, ctx.Cloud, ctx.Observer)
	if err != nil {
		return err
	}

	vpc.Name = ctx.Env
	ctx.State.VPC = vpc

	if !created {
		if vpc.CIDR != ctx.Config.VPCCIDR {
			return fmt.Errorf("vpc %s exists with address block %s (config declares %s)",
				ctx.Env, vpc.CIDR, ctx.Config.VPCCIDR)
		}
		return nil
	}

	if err := ctx.Cloud.EnableDNS(ctx, vpc.ID); err != nil {
		return err
	}

	gatewayName := naming.InternetGateway(ctx.Env)
	gatewayID, err := ctx.Cloud.CreateInternetGateway(ctx)
	if err != nil {
		return err
	}
	if err := ctx.Cloud.Tag(ctx, gatewayID, map[string]string{"Name": gatewayName}); err != nil {
		return err
	}
	if err := ctx.Cloud.AttachInternetGateway(ctx, gatewayID, vpc.ID); err != nil {
		return err
	}
	ctx.Observer.Event(provisioning.Event{
		Type:     provisioning.EventResourceCreated,
		Step:     s.Name(),
		Resource: gatewayName,
		Message:  "internet gateway created and attached",
	})
	return nil
}
