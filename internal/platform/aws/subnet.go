package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// SubnetByName returns the subnet carrying the Name tag, or nil.
func (c *RealClient) SubnetByName(ctx context.Context, vpcID, name string) (*Subnet, error) {
	out, err := c.ec2.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{
		Filters: nameFilter(vpcID, name),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe subnets: %w", err)
	}
	if len(out.Subnets) == 0 {
		return nil, nil
	}
	sn := out.Subnets[0]
	return &Subnet{
		ID:               aws.ToString(sn.SubnetId),
		Name:             name,
		CIDR:             aws.ToString(sn.CidrBlock),
		AvailabilityZone: aws.ToString(sn.AvailabilityZone),
	}, nil
}

// CreateSubnet creates a subnet with the given block in the given zone.
func (c *RealClient) CreateSubnet(ctx context.Context, vpcID, cidrBlock, zone string) (*Subnet, error) {
	out, err := c.ec2.CreateSubnet(ctx, &ec2.CreateSubnetInput{
		VpcId:            aws.String(vpcID),
		CidrBlock:        aws.String(cidrBlock),
		AvailabilityZone: aws.String(zone),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create subnet %s in %s: %w", cidrBlock, zone, err)
	}
	return &Subnet{
		ID:               aws.ToString(out.Subnet.SubnetId),
		CIDR:             aws.ToString(out.Subnet.CidrBlock),
		AvailabilityZone: aws.ToString(out.Subnet.AvailabilityZone),
	}, nil
}

// EndpointByName returns the VPC endpoint carrying the Name tag, or nil.
func (c *RealClient) EndpointByName(ctx context.Context, vpcID, name string) (*Endpoint, error) {
	out, err := c.ec2.DescribeVpcEndpoints(ctx, &ec2.DescribeVpcEndpointsInput{
		Filters: nameFilter(vpcID, name),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe vpc endpoints: %w", err)
	}
	if len(out.VpcEndpoints) == 0 {
		return nil, nil
	}
	return &Endpoint{
		ID:   aws.ToString(out.VpcEndpoints[0].VpcEndpointId),
		Name: name,
	}, nil
}

// CreateGatewayEndpoint creates a gateway endpoint for a service and
// attaches it to the given route tables in one call.
func (c *RealClient) CreateGatewayEndpoint(ctx context.Context, vpcID, service string, routeTableIDs []string) (*Endpoint, error) {
	serviceName := fmt.Sprintf("com.amazonaws.%s.%s", c.region, service)
	out, err := c.ec2.CreateVpcEndpoint(ctx, &ec2.CreateVpcEndpointInput{
		VpcId:           aws.String(vpcID),
		ServiceName:     aws.String(serviceName),
		VpcEndpointType: types.VpcEndpointTypeGateway,
		RouteTableIds:   routeTableIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s endpoint: %w", serviceName, err)
	}
	return &Endpoint{ID: aws.ToString(out.VpcEndpoint.VpcEndpointId)}, nil
}
