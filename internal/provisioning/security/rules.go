package security

import (
	"strings"

	"github.com/vpcform/vpcform/internal/platform/aws"
	"github.com/vpcform/vpcform/internal/provisioning"
	"github.com/vpcform/vpcform/internal/rules"
	"github.com/vpcform/vpcform/internal/util/naming"
)

// RulesStep resolves and authorizes the declared ingress rules. All new
// permissions for one group go to the provider in a single call, so a
// group's rule set never lands partially.
type RulesStep struct{}

// Name implements provisioning.Step.
func (s *RulesStep) Name() string { return "security-group-rules" }

// Provision implements provisioning.Step.
func (s *RulesStep) Provision(ctx *provisioning.Context) error {
	if len(ctx.Config.SecurityGroups) == 0 {
		return nil
	}
	vpcID := ctx.State.VPC.ID

	// Re-query every declared group once: rule sources are matched
	// against this set, and the fresh ingress lists let re-runs skip
	// permissions that are already authorized.
	groups := make(map[string]*aws.SecurityGroup, len(ctx.Config.SecurityGroups))
	for _, declName := range sortedKeys(ctx.Config.SecurityGroups) {
		sg, err := ctx.Cloud.SecurityGroupByName(ctx, vpcID, naming.Resource(ctx.Env, declName))
		if err != nil {
			return err
		}
		if sg == nil {
			return provisioning.Configf("security group %q was not found after the group step", declName)
		}
		groups[declName] = sg
	}
	lookup := func(source string) (string, bool) {
		sg, ok := groups[source]
		if !ok {
			return "", false
		}
		return sg.ID, true
	}

	for _, declName := range sortedKeys(ctx.Config.SecurityGroups) {
		sg := groups[declName]

		var missing []rules.Permission
		for _, declared := range ctx.Config.SecurityGroups[declName] {
			perm, err := rules.Resolve(rules.Rule{
				Source:   declared.Source,
				Protocol: declared.Protocol,
				PortSpec: declared.Ports,
			}, lookup)
			if err != nil {
				return provisioning.Configf("security group %q: %v", declName, err)
			}
			if sg.HasIngress(perm) {
				continue
			}
			missing = append(missing, perm)
			ctx.Observer.Printf("authorizing %q into %q over ports %s (%s)",
				declared.Source, declName, declared.Ports, strings.ToUpper(declared.Protocol))
		}

		if err := ctx.Cloud.AuthorizeIngress(ctx, sg.ID, missing); err != nil {
			return err
		}
	}
	return nil
}
