package network

import (
	"context"
	"sort"

	"github.com/vpcform/vpcform/internal/platform/aws"
	"github.com/vpcform/vpcform/internal/provisioning"
	"github.com/vpcform/vpcform/internal/util/naming"
)

// RouteTablesStep ensures every declared route table exists. The table
// designated main adopts the VPC's implicit main route table instead of
// creating a new one; it only gains the logical name.
type RouteTablesStep struct{}

// Name implements provisioning.Step.
func (s *RouteTablesStep) Name() string { return "route-tables" }

// Provision implements provisioning.Step.
func (s *RouteTablesStep) Provision(ctx *provisioning.Context) error {
	vpcID := ctx.State.VPC.ID

	for _, declName := range sortedKeys(ctx.Config.RouteTables) {
		decl := ctx.Config.RouteTables[declName]
		logical := naming.Resource(ctx.Env, declName)

		rt, _, err := (&provisioning.EnsureOperation[*aws.RouteTable]{
			Name:         logical,
			ResourceType: "route table",
			Step:         s.Name(),
			Get: func(c context.Context) (*aws.RouteTable, error) {
				return ctx.Cloud.RouteTableByName(c, vpcID, logical)
			},
			Create: func(c context.Context) (*aws.RouteTable, error) {
				if decl.Main {
					return ctx.Cloud.MainRouteTable(c, vpcID)
				}
				return ctx.Cloud.CreateRouteTable(c, vpcID)
			},
			Tags: func(rt *aws.RouteTable) (string, map[string]string) {
				return rt.ID, nil
			},
		}).Execute(ctx, ctx.Cloud, ctx.Observer)
		if err != nil {
			return err
		}

		rt.Name = logical
		ctx.State.RouteTables[declName] = rt
	}
	return nil
}

// sortedKeys returns map keys in lexicographic order so step output and
// creation order are stable across runs.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
