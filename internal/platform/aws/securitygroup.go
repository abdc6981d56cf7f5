package aws

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/vpcform/vpcform/internal/rules"
)

// SecurityGroupByName returns the group carrying the Name tag, or nil.
func (c *RealClient) SecurityGroupByName(ctx context.Context, vpcID, name string) (*SecurityGroup, error) {
	out, err := c.ec2.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		Filters: nameFilter(vpcID, name),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe security groups: %w", err)
	}
	if len(out.SecurityGroups) == 0 {
		return nil, nil
	}
	sg := out.SecurityGroups[0]
	return &SecurityGroup{
		ID:      aws.ToString(sg.GroupId),
		Name:    name,
		Ingress: permissionsFromEC2(sg.IpPermissions),
	}, nil
}

// CreateSecurityGroup creates an empty security group.
func (c *RealClient) CreateSecurityGroup(ctx context.Context, vpcID, groupName, description string) (*SecurityGroup, error) {
	out, err := c.ec2.CreateSecurityGroup(ctx, &ec2.CreateSecurityGroupInput{
		VpcId:       aws.String(vpcID),
		GroupName:   aws.String(groupName),
		Description: aws.String(description),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create security group %s: %w", groupName, err)
	}
	return &SecurityGroup{ID: aws.ToString(out.GroupId), Name: groupName}, nil
}

// AuthorizeIngress authorizes all permissions for a group in one call,
// so a group's declared rules never land partially on the provider. The
// provider's duplicate-permission error is treated as success.
func (c *RealClient) AuthorizeIngress(ctx context.Context, groupID string, perms []rules.Permission) error {
	if len(perms) == 0 {
		return nil
	}
	_, err := c.ec2.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
		GroupId:       aws.String(groupID),
		IpPermissions: permissionsToEC2(perms),
	})
	if err != nil && !IsDuplicate(err) {
		return fmt.Errorf("failed to authorize ingress on %s: %w", groupID, err)
	}
	return nil
}

func permissionsToEC2(perms []rules.Permission) []types.IpPermission {
	out := make([]types.IpPermission, 0, len(perms))
	for _, p := range perms {
		ipPerm := types.IpPermission{
			IpProtocol: aws.String(p.Protocol),
			FromPort:   aws.Int32(p.FromPort),
			ToPort:     aws.Int32(p.ToPort),
		}
		if p.GroupID != "" {
			ipPerm.UserIdGroupPairs = []types.UserIdGroupPair{{GroupId: aws.String(p.GroupID)}}
		} else {
			ipPerm.IpRanges = []types.IpRange{{CidrIp: aws.String(p.CIDR)}}
		}
		out = append(out, ipPerm)
	}
	return out
}

// permissionsFromEC2 flattens provider permissions, which carry several
// sources per entry, into one Permission per source.
func permissionsFromEC2(perms []types.IpPermission) []rules.Permission {
	var out []rules.Permission
	for _, p := range perms {
		proto := aws.ToString(p.IpProtocol)
		base := rules.Permission{
			Protocol: proto,
			FromPort: flattenPort(p.FromPort, proto),
			ToPort:   flattenPort(p.ToPort, proto),
		}
		for _, r := range p.IpRanges {
			perm := base
			perm.CIDR = aws.ToString(r.CidrIp)
			out = append(out, perm)
		}
		for _, g := range p.UserIdGroupPairs {
			perm := base
			perm.GroupID = aws.ToString(g.GroupId)
			out = append(out, perm)
		}
	}
	return out
}

// flattenPort maps a provider port field to its resolved form. The
// provider omits port fields for portless protocols, where resolution
// uses the -1 sentinel; without this the flattened permission would
// never match a resolved one.
func flattenPort(port *int32, protocol string) int32 {
	switch strings.ToLower(protocol) {
	case "-1", "icmp", "icmpv6":
		return -1
	}
	return aws.ToInt32(port)
}
