package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// VPCByName returns the VPC carrying the given Name tag, or nil.
func (c *RealClient) VPCByName(ctx context.Context, name string) (*VPC, error) {
	out, err := c.ec2.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{
		Filters: []types.Filter{
			{Name: aws.String("tag:" + nameTag), Values: []string{name}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe vpcs: %w", err)
	}
	if len(out.Vpcs) == 0 {
		return nil, nil
	}
	vpc := out.Vpcs[0]
	return &VPC{
		ID:   aws.ToString(vpc.VpcId),
		Name: name,
		CIDR: aws.ToString(vpc.CidrBlock),
	}, nil
}

// CreateVPC creates a VPC with the given parent address block.
func (c *RealClient) CreateVPC(ctx context.Context, cidrBlock string) (*VPC, error) {
	out, err := c.ec2.CreateVpc(ctx, &ec2.CreateVpcInput{
		CidrBlock: aws.String(cidrBlock),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create vpc: %w", err)
	}
	return &VPC{
		ID:   aws.ToString(out.Vpc.VpcId),
		CIDR: aws.ToString(out.Vpc.CidrBlock),
	}, nil
}

// EnableDNS turns on DNS support and DNS hostnames for the VPC. The
// provider accepts only one attribute per modify call.
func (c *RealClient) EnableDNS(ctx context.Context, vpcID string) error {
	enabled := &types.AttributeBooleanValue{Value: aws.Bool(true)}

	_, err := c.ec2.ModifyVpcAttribute(ctx, &ec2.ModifyVpcAttributeInput{
		VpcId:            aws.String(vpcID),
		EnableDnsSupport: enabled,
	})
	if err != nil {
		return fmt.Errorf("failed to enable dns support on %s: %w", vpcID, err)
	}

	_, err = c.ec2.ModifyVpcAttribute(ctx, &ec2.ModifyVpcAttributeInput{
		VpcId:              aws.String(vpcID),
		EnableDnsHostnames: enabled,
	})
	if err != nil {
		return fmt.Errorf("failed to enable dns hostnames on %s: %w", vpcID, err)
	}
	return nil
}

// CreateInternetGateway creates an unattached internet gateway and
// returns its ID.
func (c *RealClient) CreateInternetGateway(ctx context.Context) (string, error) {
	out, err := c.ec2.CreateInternetGateway(ctx, &ec2.CreateInternetGatewayInput{})
	if err != nil {
		return "", fmt.Errorf("failed to create internet gateway: %w", err)
	}
	return aws.ToString(out.InternetGateway.InternetGatewayId), nil
}

// AttachInternetGateway attaches a gateway to a VPC.
func (c *RealClient) AttachInternetGateway(ctx context.Context, gatewayID, vpcID string) error {
	_, err := c.ec2.AttachInternetGateway(ctx, &ec2.AttachInternetGatewayInput{
		InternetGatewayId: aws.String(gatewayID),
		VpcId:             aws.String(vpcID),
	})
	if err != nil {
		return fmt.Errorf("failed to attach internet gateway %s to %s: %w", gatewayID, vpcID, err)
	}
	return nil
}
