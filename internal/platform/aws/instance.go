package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// EnvironmentInstances returns every non-terminated instance in the VPC.
func (c *RealClient) EnvironmentInstances(ctx context.Context, vpcID string) ([]Instance, error) {
	input := &ec2.DescribeInstancesInput{
		Filters: []types.Filter{
			{Name: aws.String("vpc-id"), Values: []string{vpcID}},
			{Name: aws.String("instance-state-name"), Values: []string{
				"pending", "running", "stopping", "stopped",
			}},
		},
	}

	var instances []Instance
	paginator := ec2.NewDescribeInstancesPaginator(c.ec2, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe instances: %w", err)
		}
		for _, reservation := range page.Reservations {
			for _, inst := range reservation.Instances {
				instances = append(instances, instanceHandle(inst))
			}
		}
	}
	return instances, nil
}

// LaunchInstances launches one batch of identical instances into a
// single subnet.
func (c *RealClient) LaunchInstances(ctx context.Context, spec LaunchSpec) ([]Instance, error) {
	input := &ec2.RunInstancesInput{
		ImageId:          aws.String(spec.ImageID),
		InstanceType:     types.InstanceType(spec.InstanceType),
		MinCount:         aws.Int32(int32(spec.Count)),
		MaxCount:         aws.Int32(int32(spec.Count)),
		SubnetId:         aws.String(spec.SubnetID),
		SecurityGroupIds: spec.SecurityGroupIDs,
	}
	if spec.KeyName != "" {
		input.KeyName = aws.String(spec.KeyName)
	}
	if spec.ClientToken != "" {
		input.ClientToken = aws.String(spec.ClientToken)
	}

	out, err := c.ec2.RunInstances(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to launch %d instances into %s: %w", spec.Count, spec.SubnetID, err)
	}

	instances := make([]Instance, 0, len(out.Instances))
	for _, inst := range out.Instances {
		instances = append(instances, instanceHandle(inst))
	}
	return instances, nil
}

// InstanceStates returns the current state name per instance ID.
func (c *RealClient) InstanceStates(ctx context.Context, instanceIDs []string) (map[string]string, error) {
	if len(instanceIDs) == 0 {
		return map[string]string{}, nil
	}

	states := make(map[string]string, len(instanceIDs))
	paginator := ec2.NewDescribeInstancesPaginator(c.ec2, &ec2.DescribeInstancesInput{
		InstanceIds: instanceIDs,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe instance states: %w", err)
		}
		for _, reservation := range page.Reservations {
			for _, inst := range reservation.Instances {
				states[aws.ToString(inst.InstanceId)] = string(inst.State.Name)
			}
		}
	}
	return states, nil
}

// SetTerminationProtection toggles the provider's API termination lock.
func (c *RealClient) SetTerminationProtection(ctx context.Context, instanceID string, protected bool) error {
	_, err := c.ec2.ModifyInstanceAttribute(ctx, &ec2.ModifyInstanceAttributeInput{
		InstanceId:            aws.String(instanceID),
		DisableApiTermination: &types.AttributeBooleanValue{Value: aws.Bool(protected)},
	})
	if err != nil {
		return fmt.Errorf("failed to set termination protection on %s: %w", instanceID, err)
	}
	return nil
}

func instanceHandle(inst types.Instance) Instance {
	handle := Instance{
		ID:       aws.ToString(inst.InstanceId),
		Name:     tagValue(inst.Tags, nameTag),
		Role:     tagValue(inst.Tags, roleTag),
		SubnetID: aws.ToString(inst.SubnetId),
	}
	if inst.State != nil {
		handle.State = string(inst.State.Name)
	}
	return handle
}
