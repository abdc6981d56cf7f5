package compute

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/vpcform/vpcform/internal/config"
	"github.com/vpcform/vpcform/internal/fleet"
	"github.com/vpcform/vpcform/internal/platform/aws"
	"github.com/vpcform/vpcform/internal/provisioning"
	"github.com/vpcform/vpcform/internal/util/async"
	"github.com/vpcform/vpcform/internal/util/naming"
)

// launchTokenSpace namespaces the deterministic client tokens sent with
// batch launches, so a retried batch is deduplicated provider-side.
var launchTokenSpace = uuid.MustParse("c9a1f3de-2b5c-4a71-90dd-5a3bc4f6e8a2")

// RolesStep grows every declared role's fleet to its desired count,
// spreading new instances across the role's subnets toward an even
// distribution. It never terminates instances.
type RolesStep struct{}

// Name implements provisioning.Step.
func (s *RolesStep) Name() string { return "instance-roles" }

// Provision implements provisioning.Step.
func (s *RolesStep) Provision(ctx *provisioning.Context) error {
	roleNames := make([]string, 0, len(ctx.Config.InstanceRoles))
	for name := range ctx.Config.InstanceRoles {
		roleNames = append(roleNames, name)
	}
	sort.Strings(roleNames)

	for _, roleName := range roleNames {
		if err := s.provisionRole(ctx, roleName, ctx.Config.InstanceRoles[roleName]); err != nil {
			return fmt.Errorf("role %s: %w", roleName, err)
		}
	}
	return nil
}

func (s *RolesStep) provisionRole(ctx *provisioning.Context, roleName string, decl config.InstanceRole) error {
	vpcID := ctx.State.VPC.ID

	imageID, ok := ctx.Config.AMIs[decl.AMI][ctx.Cloud.Region()]
	if !ok {
		return provisioning.Configf("ami %q has no image for region %s", decl.AMI, ctx.Cloud.Region())
	}

	groupIDs := make([]string, 0, len(decl.SecurityGroups))
	for _, sgName := range decl.SecurityGroups {
		sg, err := ctx.Cloud.SecurityGroupByName(ctx, vpcID, naming.Resource(ctx.Env, sgName))
		if err != nil {
			return err
		}
		if sg == nil {
			return provisioning.Configf("security group %q does not exist", sgName)
		}
		groupIDs = append(groupIDs, sg.ID)
	}

	subnets := make(map[string]*aws.Subnet, len(decl.Subnets))
	for _, snName := range decl.Subnets {
		subnet, err := ctx.Cloud.SubnetByName(ctx, vpcID, naming.Resource(ctx.Env, snName))
		if err != nil {
			return err
		}
		if subnet == nil {
			return provisioning.Configf("subnet %q does not exist", snName)
		}
		subnets[subnet.ID] = subnet
	}

	// Current counts always come fresh from the provider, never from
	// an earlier step's snapshot.
	instances, err := ctx.Cloud.EnvironmentInstances(ctx, vpcID)
	if err != nil {
		return err
	}
	countBySubnet := make(map[string]int)
	for _, inst := range instances {
		if inst.Role != roleName {
			continue
		}
		countBySubnet[inst.SubnetID]++
	}

	loads := make([]fleet.SubnetLoad, 0, len(subnets))
	for subnetID := range subnets {
		loads = append(loads, fleet.SubnetLoad{SubnetID: subnetID, Count: countBySubnet[subnetID]})
	}

	deltas, err := fleet.Scale(decl.Count, loads)
	if errors.Is(err, fleet.ErrNoSubnets) {
		return provisioning.Configf("role %q has no eligible subnets", roleName)
	}
	if err != nil {
		return err
	}
	if len(deltas) == 0 {
		ctx.Observer.Printf("role %s already at or above desired count %d", roleName, decl.Count)
		return nil
	}

	// One pre-computed launch batch per subnet, dispatched in parallel.
	subnetIDs := make([]string, 0, len(deltas))
	for subnetID := range deltas {
		subnetIDs = append(subnetIDs, subnetID)
	}
	sort.Strings(subnetIDs)

	tasks := make([]async.Task, 0, len(subnetIDs))
	for _, subnetID := range subnetIDs {
		spec := aws.LaunchSpec{
			SubnetID:         subnetID,
			ImageID:          imageID,
			InstanceType:     decl.InstanceType,
			KeyName:          ctx.Config.KeyName,
			SecurityGroupIDs: groupIDs,
			Count:            deltas[subnetID],
			ClientToken:      launchToken(ctx.Env, roleName, subnetID, countBySubnet[subnetID], deltas[subnetID]),
		}
		subnetName := subnets[subnetID].Name
		ctx.Observer.Printf("launching %d instances of role %s into %s", spec.Count, roleName, subnetName)

		tasks = append(tasks, async.Task{
			Name: subnetName,
			Func: func(c context.Context) error {
				return s.launchBatch(c, ctx, roleName, spec)
			},
		})
	}
	return async.RunParallel(ctx, tasks)
}

// launchBatch launches one subnet's batch and tags each instance with
// its logical name and role.
func (s *RolesStep) launchBatch(c context.Context, ctx *provisioning.Context, roleName string, spec aws.LaunchSpec) error {
	launched, err := ctx.Cloud.LaunchInstances(c, spec)
	if err != nil {
		return err
	}
	for _, inst := range launched {
		hostname := naming.Instance(ctx.Env, roleName, inst.ID)
		if err := ctx.Cloud.Tag(c, inst.ID, map[string]string{
			"Name": hostname,
			"role": roleName,
		}); err != nil {
			return err
		}
		ctx.State.RecordLaunched(inst.ID)
		ctx.Observer.Event(provisioning.Event{
			Type:     provisioning.EventResourceCreated,
			Step:     s.Name(),
			Resource: hostname,
			Message:  "instance launched",
		})
	}
	return nil
}

// launchToken derives a stable token from the batch's identity. The
// current count is part of the identity: a later intentional scale-up
// of the same subnet produces a different token.
func launchToken(env, role, subnetID string, current, delta int) string {
	payload := fmt.Sprintf("%s/%s/%s/%d/%d", env, role, subnetID, current, delta)
	return uuid.NewSHA1(launchTokenSpace, []byte(payload)).String()
}
