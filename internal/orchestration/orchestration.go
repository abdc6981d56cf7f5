// Package orchestration assembles the ordered build steps for one
// environment run.
package orchestration

import (
	"context"

	"github.com/vpcform/vpcform/internal/config"
	"github.com/vpcform/vpcform/internal/platform/aws"
	"github.com/vpcform/vpcform/internal/provisioning"
	"github.com/vpcform/vpcform/internal/provisioning/compute"
	"github.com/vpcform/vpcform/internal/provisioning/network"
	"github.com/vpcform/vpcform/internal/provisioning/security"
)

// BuildSteps returns the build steps in their required order. Later
// steps depend on identifiers created by earlier ones: subnets need the
// VPC, rules need every group, the lock needs launched instances.
func BuildSteps() []provisioning.Step {
	return []provisioning.Step{
		&network.NetworkStep{},
		&network.RouteTablesStep{},
		&network.SubnetsStep{},
		&network.AssociationsStep{},
		&network.EndpointsStep{},
		&security.GroupsStep{},
		&compute.RolesStep{},
		&security.RulesStep{},
		&compute.AwaitStep{},
		&compute.LockStep{},
	}
}

// Apply converges the environment toward the declared configuration and
// returns the run context for inspection of state and warnings.
func Apply(ctx context.Context, env string, cfg *config.Config, cloud aws.Client) (*provisioning.Context, error) {
	runCtx := provisioning.NewContext(ctx, env, cfg, cloud)
	if err := provisioning.Run(runCtx, BuildSteps()); err != nil {
		return runCtx, err
	}
	return runCtx, nil
}
