package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// RouteTableByName returns the route table carrying the Name tag, or nil.
func (c *RealClient) RouteTableByName(ctx context.Context, vpcID, name string) (*RouteTable, error) {
	out, err := c.ec2.DescribeRouteTables(ctx, &ec2.DescribeRouteTablesInput{
		Filters: nameFilter(vpcID, name),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe route tables: %w", err)
	}
	if len(out.RouteTables) == 0 {
		return nil, nil
	}
	return routeTableHandle(out.RouteTables[0]), nil
}

// MainRouteTable returns the VPC's implicit main route table.
func (c *RealClient) MainRouteTable(ctx context.Context, vpcID string) (*RouteTable, error) {
	out, err := c.ec2.DescribeRouteTables(ctx, &ec2.DescribeRouteTablesInput{
		Filters: []types.Filter{
			{Name: aws.String("vpc-id"), Values: []string{vpcID}},
			{Name: aws.String("association.main"), Values: []string{"true"}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe main route table: %w", err)
	}
	if len(out.RouteTables) == 0 {
		return nil, fmt.Errorf("vpc %s has no main route table", vpcID)
	}
	return routeTableHandle(out.RouteTables[0]), nil
}

// CreateRouteTable creates an empty route table in the VPC.
func (c *RealClient) CreateRouteTable(ctx context.Context, vpcID string) (*RouteTable, error) {
	out, err := c.ec2.CreateRouteTable(ctx, &ec2.CreateRouteTableInput{
		VpcId: aws.String(vpcID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create route table: %w", err)
	}
	return routeTableHandle(*out.RouteTable), nil
}

// AssociateRouteTable associates a subnet with a route table.
func (c *RealClient) AssociateRouteTable(ctx context.Context, routeTableID, subnetID string) error {
	_, err := c.ec2.AssociateRouteTable(ctx, &ec2.AssociateRouteTableInput{
		RouteTableId: aws.String(routeTableID),
		SubnetId:     aws.String(subnetID),
	})
	if err != nil {
		return fmt.Errorf("failed to associate route table %s with subnet %s: %w", routeTableID, subnetID, err)
	}
	return nil
}

func routeTableHandle(rt types.RouteTable) *RouteTable {
	handle := &RouteTable{
		ID:   aws.ToString(rt.RouteTableId),
		Name: tagValue(rt.Tags, nameTag),
	}
	for _, assoc := range rt.Associations {
		if aws.ToBool(assoc.Main) {
			handle.Main = true
		}
		if id := aws.ToString(assoc.SubnetId); id != "" {
			handle.SubnetIDs = append(handle.SubnetIDs, id)
		}
	}
	return handle
}
