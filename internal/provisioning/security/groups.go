// Package security holds the security group build steps. Group creation
// and rule authorization are separate steps because rules may reference
// sibling groups by name: every group must exist before any rule is
// resolved.
package security

import (
	"context"
	"sort"

	"github.com/vpcform/vpcform/internal/platform/aws"
	"github.com/vpcform/vpcform/internal/provisioning"
	"github.com/vpcform/vpcform/internal/util/naming"
)

// GroupsStep ensures every declared security group exists by name.
type GroupsStep struct{}

// Name implements provisioning.Step.
func (s *GroupsStep) Name() string { return "security-groups" }

// Provision implements provisioning.Step.
func (s *GroupsStep) Provision(ctx *provisioning.Context) error {
	vpcID := ctx.State.VPC.ID

	for _, declName := range sortedKeys(ctx.Config.SecurityGroups) {
		logical := naming.Resource(ctx.Env, declName)

		sg, _, err := (&provisioning.EnsureOperation[*aws.SecurityGroup]{
			Name:         logical,
			ResourceType: "security group",
			Step:         s.Name(),
			Get: func(c context.Context) (*aws.SecurityGroup, error) {
				return ctx.Cloud.SecurityGroupByName(c, vpcID, logical)
			},
			Create: func(c context.Context) (*aws.SecurityGroup, error) {
				return ctx.Cloud.CreateSecurityGroup(c, vpcID, logical, logical)
			},
			Tags: func(sg *aws.SecurityGroup) (string, map[string]string) {
				return sg.ID, nil
			},
		}).Execute(ctx, ctx.Cloud, ctx.Observer)
		if err != nil {
			return err
		}

		sg.Name = logical
		ctx.State.SecurityGroups[declName] = sg
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
