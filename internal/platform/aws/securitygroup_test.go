package aws

import (
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/stretchr/testify/assert"

	"github.com/vpcform/vpcform/internal/rules"
)

func TestPermissionsToEC2(t *testing.T) {
	perms := []rules.Permission{
		{Protocol: "tcp", FromPort: 443, ToPort: 443, CIDR: "0.0.0.0/0"},
		{Protocol: "tcp", FromPort: 5432, ToPort: 5432, GroupID: "sg-0abc"},
	}

	out := permissionsToEC2(perms)
	if assert.Len(t, out, 2) {
		assert.Equal(t, "tcp", awssdk.ToString(out[0].IpProtocol))
		assert.Equal(t, int32(443), awssdk.ToInt32(out[0].FromPort))
		if assert.Len(t, out[0].IpRanges, 1) {
			assert.Equal(t, "0.0.0.0/0", awssdk.ToString(out[0].IpRanges[0].CidrIp))
		}
		assert.Empty(t, out[0].UserIdGroupPairs)

		if assert.Len(t, out[1].UserIdGroupPairs, 1) {
			assert.Equal(t, "sg-0abc", awssdk.ToString(out[1].UserIdGroupPairs[0].GroupId))
		}
		assert.Empty(t, out[1].IpRanges)
	}
}

func TestPermissionsFromEC2FlattensSources(t *testing.T) {
	in := []types.IpPermission{{
		IpProtocol: awssdk.String("tcp"),
		FromPort:   awssdk.Int32(80),
		ToPort:     awssdk.Int32(80),
		IpRanges: []types.IpRange{
			{CidrIp: awssdk.String("10.0.0.0/8")},
			{CidrIp: awssdk.String("192.168.0.0/16")},
		},
		UserIdGroupPairs: []types.UserIdGroupPair{
			{GroupId: awssdk.String("sg-0abc")},
		},
	}}

	out := permissionsFromEC2(in)
	assert.Equal(t, []rules.Permission{
		{Protocol: "tcp", FromPort: 80, ToPort: 80, CIDR: "10.0.0.0/8"},
		{Protocol: "tcp", FromPort: 80, ToPort: 80, CIDR: "192.168.0.0/16"},
		{Protocol: "tcp", FromPort: 80, ToPort: 80, GroupID: "sg-0abc"},
	}, out)
}

func TestPermissionsFromEC2PortlessProtocols(t *testing.T) {
	// The provider omits port fields for portless protocols; resolution
	// uses the -1 sentinel, and the flattened form must match it or
	// re-runs would re-authorize the same rule.
	in := []types.IpPermission{
		{
			IpProtocol: awssdk.String("-1"),
			IpRanges:   []types.IpRange{{CidrIp: awssdk.String("10.0.0.0/8")}},
		},
		{
			IpProtocol: awssdk.String("icmp"),
			IpRanges:   []types.IpRange{{CidrIp: awssdk.String("0.0.0.0/0")}},
		},
	}

	out := permissionsFromEC2(in)
	assert.Equal(t, []rules.Permission{
		{Protocol: "-1", FromPort: -1, ToPort: -1, CIDR: "10.0.0.0/8"},
		{Protocol: "icmp", FromPort: -1, ToPort: -1, CIDR: "0.0.0.0/0"},
	}, out)
}

func TestTagValue(t *testing.T) {
	tags := []types.Tag{
		{Key: awssdk.String("Name"), Value: awssdk.String("staging-web-1")},
		{Key: awssdk.String("role"), Value: awssdk.String("web")},
	}
	assert.Equal(t, "staging-web-1", tagValue(tags, "Name"))
	assert.Equal(t, "web", tagValue(tags, "role"))
	assert.Empty(t, tagValue(tags, "missing"))
}

func TestNameFilter(t *testing.T) {
	filters := nameFilter("vpc-0abc", "staging-web-1")
	if assert.Len(t, filters, 2) {
		assert.Equal(t, "vpc-id", awssdk.ToString(filters[0].Name))
		assert.Equal(t, []string{"vpc-0abc"}, filters[0].Values)
		assert.Equal(t, "tag:Name", awssdk.ToString(filters[1].Name))
		assert.Equal(t, []string{"staging-web-1"}, filters[1].Values)
	}
}
