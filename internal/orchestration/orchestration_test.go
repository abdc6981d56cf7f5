package orchestration

import (
	"context"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vpcform/vpcform/internal/config"
	"github.com/vpcform/vpcform/internal/platform/aws"
	"github.com/vpcform/vpcform/internal/platform/aws/awstest"
)

const environmentYAML = `
vpc_cidr: 10.10.0.0/16
key_name: ops

amis:
  ubuntu:
    us-east-1: ami-0abc123

route_tables:
  public:
    main: true
  private: {}

subnets:
  web-1:
    size: 250
    route_table: public
  web-2:
    size: 250
    route_table: public
  db-1:
    size: 60
    route_table: private

endpoints:
  - private

security_groups:
  web:
    - ["0.0.0.0/0", "tcp", "443"]
  database:
    - ["web", "tcp", "5432"]

instance_roles:
  web:
    ami: ubuntu
    count: 4
    instance_type: t3.small
    security_groups: [web]
    subnets: [web-1, web-2]
  database:
    ami: ubuntu
    count: 1
    instance_type: t3.medium
    security_groups: [database]
    subnets: [db-1]
`

func TestApplyBuildsEnvironment(t *testing.T) {
	cfg, err := config.LoadBytes([]byte(environmentYAML))
	require.NoError(t, err)

	fake := awstest.NewFake()
	fake.PollsUntilRunning = 1

	runCtx, err := Apply(context.Background(), "prod", cfg, fake)
	require.NoError(t, err)

	vpc, err := fake.VPCByName(context.Background(), "prod")
	require.NoError(t, err)
	require.NotNil(t, vpc)
	assert.Equal(t, "10.10.0.0/16", vpc.CIDR)

	parent := netip.MustParsePrefix("10.10.0.0/16")
	var blocks []netip.Prefix
	for _, name := range []string{"prod-web-1", "prod-web-2", "prod-db-1"} {
		subnet, err := fake.SubnetByName(context.Background(), vpc.ID, name)
		require.NoError(t, err)
		require.NotNil(t, subnet, "subnet %s", name)
		block := netip.MustParsePrefix(subnet.CIDR)
		assert.True(t, parent.Contains(block.Addr()), "subnet %s outside parent", name)
		blocks = append(blocks, block)
	}
	for i := 0; i < len(blocks); i++ {
		for j := i + 1; j < len(blocks); j++ {
			assert.False(t, blocks[i].Overlaps(blocks[j]), "%s overlaps %s", blocks[i], blocks[j])
		}
	}

	public, err := fake.RouteTableByName(context.Background(), vpc.ID, "prod-public")
	require.NoError(t, err)
	require.NotNil(t, public)
	assert.True(t, public.Main)
	assert.Len(t, public.SubnetIDs, 2)

	private, err := fake.RouteTableByName(context.Background(), vpc.ID, "prod-private")
	require.NoError(t, err)
	require.NotNil(t, private)
	assert.Len(t, private.SubnetIDs, 1)

	endpoint, err := fake.EndpointByName(context.Background(), vpc.ID, "prod-s3-endpoint")
	require.NoError(t, err)
	assert.NotNil(t, endpoint)

	web, err := fake.SecurityGroupByName(context.Background(), vpc.ID, "prod-web")
	require.NoError(t, err)
	require.NotNil(t, web)
	require.Len(t, web.Ingress, 1)
	assert.Equal(t, "0.0.0.0/0", web.Ingress[0].CIDR)

	db, err := fake.SecurityGroupByName(context.Background(), vpc.ID, "prod-database")
	require.NoError(t, err)
	require.NotNil(t, db)
	require.Len(t, db.Ingress, 1)
	assert.Equal(t, web.ID, db.Ingress[0].GroupID)

	instances, err := fake.EnvironmentInstances(context.Background(), vpc.ID)
	require.NoError(t, err)
	require.Len(t, instances, 5)
	byRole := make(map[string]int)
	for _, inst := range instances {
		byRole[inst.Role]++
		assert.Equal(t, aws.InstanceStateRunning, inst.State)
	}
	assert.Equal(t, 4, byRole["web"])
	assert.Equal(t, 1, byRole["database"])

	assert.Len(t, runCtx.State.LaunchedInstanceIDs, 5)
	assert.Empty(t, runCtx.State.Warnings)
	assert.Equal(t, 5, fake.CreateCalls["SetTerminationProtection"])
}

func TestApplyIsIdempotent(t *testing.T) {
	cfg, err := config.LoadBytes([]byte(environmentYAML))
	require.NoError(t, err)

	fake := awstest.NewFake()
	_, err = Apply(context.Background(), "prod", cfg, fake)
	require.NoError(t, err)
	created := fake.Creations()

	runCtx, err := Apply(context.Background(), "prod", cfg, fake)
	require.NoError(t, err)

	assert.Equal(t, created, fake.Creations(), "second run must create nothing")
	assert.Empty(t, runCtx.State.LaunchedInstanceIDs)
}

func TestApplyAbortsOnAllocationFailure(t *testing.T) {
	cfg, err := config.LoadBytes([]byte(environmentYAML))
	require.NoError(t, err)
	// Shrink the parent so the declared subnets cannot all fit.
	cfg.VPCCIDR = "10.10.0.0/24"

	fake := awstest.NewFake()
	_, err = Apply(context.Background(), "prod", cfg, fake)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient free space")

	// The run stopped before any subnet landed.
	assert.Zero(t, fake.CreateCalls["CreateSubnet"])
	assert.Zero(t, fake.CreateCalls["LaunchInstances"])
}

func TestBuildStepsOrder(t *testing.T) {
	steps := BuildSteps()
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name()
	}
	assert.Equal(t, []string{
		"network",
		"route-tables",
		"subnets",
		"route-table-associations",
		"endpoints",
		"security-groups",
		"instance-roles",
		"security-group-rules",
		"await-running",
		"lock-instances",
	}, names)
}
