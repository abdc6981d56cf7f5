package security

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vpcform/vpcform/internal/config"
	"github.com/vpcform/vpcform/internal/platform/aws/awstest"
	"github.com/vpcform/vpcform/internal/provisioning"
	"github.com/vpcform/vpcform/internal/provisioning/network"
)

type nopObserver struct{}

func (nopObserver) Printf(string, ...any)    {}
func (nopObserver) Event(provisioning.Event) {}

func newTestContext(t *testing.T, cfg *config.Config, fake *awstest.Fake) *provisioning.Context {
	t.Helper()
	ctx := provisioning.NewContext(context.Background(), "staging", cfg, fake)
	ctx.Observer = nopObserver{}
	require.NoError(t, (&network.NetworkStep{}).Provision(ctx))
	return ctx
}

func TestGroupsStepCreates(t *testing.T) {
	fake := awstest.NewFake()
	cfg := &config.Config{
		VPCCIDR: "10.0.0.0/16",
		SecurityGroups: map[string][]config.Rule{
			"web":      {},
			"database": {},
		},
	}
	ctx := newTestContext(t, cfg, fake)
	require.NoError(t, (&GroupsStep{}).Provision(ctx))

	assert.Equal(t, 2, fake.CreateCalls["CreateSecurityGroup"])
	require.Contains(t, ctx.State.SecurityGroups, "web")
	assert.Equal(t, "staging-web", ctx.State.SecurityGroups["web"].Name)

	require.NoError(t, (&GroupsStep{}).Provision(ctx))
	assert.Equal(t, 2, fake.CreateCalls["CreateSecurityGroup"])
}

func TestRulesStepAuthorizes(t *testing.T) {
	fake := awstest.NewFake()
	cfg := &config.Config{
		VPCCIDR: "10.0.0.0/16",
		SecurityGroups: map[string][]config.Rule{
			"web": {
				{Source: "0.0.0.0/0", Protocol: "tcp", Ports: "443"},
				{Source: "0.0.0.0/0", Protocol: "icmp", Ports: "all"},
			},
			"database": {
				{Source: "web", Protocol: "tcp", Ports: "5432"},
			},
		},
	}
	ctx := newTestContext(t, cfg, fake)
	require.NoError(t, (&GroupsStep{}).Provision(ctx))
	require.NoError(t, (&RulesStep{}).Provision(ctx))

	web, err := fake.SecurityGroupByName(ctx, ctx.State.VPC.ID, "staging-web")
	require.NoError(t, err)
	require.NotNil(t, web)
	require.Len(t, web.Ingress, 2)
	assert.Equal(t, "0.0.0.0/0", web.Ingress[0].CIDR)
	assert.Equal(t, int32(443), web.Ingress[0].FromPort)
	assert.Equal(t, "icmp", web.Ingress[1].Protocol)
	assert.Equal(t, int32(-1), web.Ingress[1].FromPort)

	// The group-sourced rule resolves to web's provider ID.
	db, err := fake.SecurityGroupByName(ctx, ctx.State.VPC.ID, "staging-database")
	require.NoError(t, err)
	require.NotNil(t, db)
	require.Len(t, db.Ingress, 1)
	assert.Equal(t, web.ID, db.Ingress[0].GroupID)
	assert.Empty(t, db.Ingress[0].CIDR)

	// One batched call per group with new permissions.
	assert.Equal(t, 2, fake.CreateCalls["AuthorizeIngress"])

	// Re-run finds every permission already authorized.
	require.NoError(t, (&RulesStep{}).Provision(ctx))
	assert.Equal(t, 2, fake.CreateCalls["AuthorizeIngress"])
}

func TestRulesStepUnknownSource(t *testing.T) {
	fake := awstest.NewFake()
	cfg := &config.Config{
		VPCCIDR: "10.0.0.0/16",
		SecurityGroups: map[string][]config.Rule{
			"web": {{Source: "not-a-group", Protocol: "tcp", Ports: "80"}},
		},
	}
	ctx := newTestContext(t, cfg, fake)
	require.NoError(t, (&GroupsStep{}).Provision(ctx))

	err := (&RulesStep{}).Provision(ctx)
	require.Error(t, err)
	var cfgErr *provisioning.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "not-a-group")
}

func TestRulesStepSkipsWhenNoGroups(t *testing.T) {
	fake := awstest.NewFake()
	ctx := newTestContext(t, &config.Config{VPCCIDR: "10.0.0.0/16"}, fake)
	require.NoError(t, (&RulesStep{}).Provision(ctx))
	assert.Zero(t, fake.CreateCalls["AuthorizeIngress"])
}
