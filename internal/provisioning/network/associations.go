package network

import (
	"github.com/vpcform/vpcform/internal/provisioning"
	"github.com/vpcform/vpcform/internal/util/naming"
)

// AssociationsStep associates subnets with their declared route tables.
// Subnets declaring no route table are skipped.
type AssociationsStep struct{}

// Name implements provisioning.Step.
func (s *AssociationsStep) Name() string { return "route-table-associations" }

// Provision implements provisioning.Step. Route tables are re-queried
// here rather than read from run state because the association list
// must be fresh to make the step a no-op on re-runs.
func (s *AssociationsStep) Provision(ctx *provisioning.Context) error {
	vpcID := ctx.State.VPC.ID

	for _, declName := range sortedKeys(ctx.Config.Subnets) {
		rtName := ctx.Config.Subnets[declName].RouteTable
		if rtName == "" {
			continue
		}

		rt, err := ctx.Cloud.RouteTableByName(ctx, vpcID, naming.Resource(ctx.Env, rtName))
		if err != nil {
			return err
		}
		if rt == nil {
			return provisioning.Configf("subnet %q declares route table %q, which does not exist", declName, rtName)
		}

		subnet, err := ctx.Cloud.SubnetByName(ctx, vpcID, naming.Resource(ctx.Env, declName))
		if err != nil {
			return err
		}
		if subnet == nil {
			return provisioning.Configf("subnet %q was not found after the subnet step", declName)
		}

		if rt.AssociatedWith(subnet.ID) {
			ctx.Observer.Event(provisioning.Event{
				Type:     provisioning.EventResourceExists,
				Step:     s.Name(),
				Resource: subnet.Name,
				Message:  "association already present",
			})
			continue
		}

		ctx.Observer.Printf("associating route table %s with subnet %s", rt.Name, subnet.Name)
		if err := ctx.Cloud.AssociateRouteTable(ctx, rt.ID, subnet.ID); err != nil {
			return err
		}
	}
	return nil
}
