package network

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/vpcform/vpcform/internal/cidr"
	"github.com/vpcform/vpcform/internal/config"
	"github.com/vpcform/vpcform/internal/platform/aws"
	"github.com/vpcform/vpcform/internal/provisioning"
	"github.com/vpcform/vpcform/internal/util/async"
	"github.com/vpcform/vpcform/internal/util/naming"
)

// SubnetsStep carves the parent block into the declared subnets and
// creates the ones not already present.
//
// The allocation plan always covers every declared subnet, present or
// not: with an unchanged config the plan is identical on every run, so
// existing subnets keep their blocks and only the missing ones are
// created.
type SubnetsStep struct{}

// Name implements provisioning.Step.
func (s *SubnetsStep) Name() string { return "subnets" }

// subnetPlan is one pre-computed subnet creation.
type subnetPlan struct {
	declName string
	logical  string
	block    string
	zone     string
	desc     string
}

// Provision implements provisioning.Step.
func (s *SubnetsStep) Provision(ctx *provisioning.Context) error {
	if len(ctx.Config.Subnets) == 0 {
		return nil
	}
	vpcID := ctx.State.VPC.ID

	parent, err := cidr.ParseBlock(ctx.State.VPC.CIDR)
	if err != nil {
		return err
	}

	decls := orderedDecls(ctx.Config.Subnets)
	sizes := make([]int, len(decls))
	for i, d := range decls {
		sizes[i] = d.subnet.Size
	}

	plan, err := cidr.Allocate(parent, sizes)
	if err != nil {
		return err
	}

	zones, err := ctx.Cloud.AvailabilityZones(ctx)
	if err != nil {
		return err
	}

	plans := make([]subnetPlan, len(decls))
	for i, d := range decls {
		zone, err := zoneFor(d.name, d.subnet, ctx.Cloud.Region(), zones)
		if err != nil {
			return err
		}
		plans[i] = subnetPlan{
			declName: d.name,
			logical:  naming.Resource(ctx.Env, d.name),
			block:    plan[i].Block.String(),
			zone:     zone,
			desc:     d.subnet.Description,
		}
	}

	// All inputs are pre-computed above; creations are independent.
	var mu sync.Mutex
	tasks := make([]async.Task, len(plans))
	for i, sp := range plans {
		tasks[i] = async.Task{
			Name: sp.logical,
			Func: func(c context.Context) error {
				subnet, _, err := (&provisioning.EnsureOperation[*aws.Subnet]{
					Name:         sp.logical,
					ResourceType: "subnet",
					Step:         s.Name(),
					Get: func(c context.Context) (*aws.Subnet, error) {
						return ctx.Cloud.SubnetByName(c, vpcID, sp.logical)
					},
					Create: func(c context.Context) (*aws.Subnet, error) {
						return ctx.Cloud.CreateSubnet(c, vpcID, sp.block, sp.zone)
					},
					Tags: func(subnet *aws.Subnet) (string, map[string]string) {
						return subnet.ID, map[string]string{"description": sp.desc}
					},
				}).Execute(c, ctx.Cloud, ctx.Observer)
				if err != nil {
					return err
				}
				subnet.Name = sp.logical
				mu.Lock()
				ctx.State.Subnets[sp.declName] = subnet
				mu.Unlock()
				return nil
			},
		}
	}
	return async.RunParallel(ctx, tasks)
}

type subnetDecl struct {
	name   string
	subnet config.Subnet
}

// orderedDecls returns subnet declarations sorted ascending by size,
// ties by name. The allocator requires ascending sizes, and the
// secondary order keeps the size-to-subnet binding deterministic.
func orderedDecls(subnets map[string]config.Subnet) []subnetDecl {
	decls := make([]subnetDecl, 0, len(subnets))
	for name, sn := range subnets {
		decls = append(decls, subnetDecl{name: name, subnet: sn})
	}
	sort.Slice(decls, func(i, j int) bool {
		if decls[i].subnet.Size != decls[j].subnet.Size {
			return decls[i].subnet.Size < decls[j].subnet.Size
		}
		return decls[i].name < decls[j].name
	})
	return decls
}

// zoneFor picks the subnet's availability zone: an explicit zone letter
// wins; otherwise the trailing index of the declared name ("web-2" ->
// second zone) selects positionally from the region's zone list.
func zoneFor(name string, sn config.Subnet, region string, zones []string) (string, error) {
	if sn.AvailabilityZone != "" {
		return naming.Zone(region, sn.AvailabilityZone), nil
	}

	idx := strings.LastIndex(name, "-")
	if idx < 0 || idx == len(name)-1 {
		return "", provisioning.Configf(
			"subnet %q declares no availability_zone and its name has no trailing index", name)
	}
	n, err := strconv.Atoi(name[idx+1:])
	if err != nil {
		return "", provisioning.Configf(
			"subnet %q declares no availability_zone and its name suffix %q is not a number", name, name[idx+1:])
	}
	if n < 1 || n > len(zones) {
		return "", provisioning.Configf(
			"subnet %q selects zone %d but the region has %d zones", name, n, len(zones))
	}
	return zones[n-1], nil
}
