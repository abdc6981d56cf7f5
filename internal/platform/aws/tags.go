package aws

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// nameTag is the tag key carrying a resource's logical identity.
const nameTag = "Name"

// roleTag is the tag key carrying an instance's fleet role.
const roleTag = "role"

// Tag applies tags to a resource. Tags are sorted by key so repeated
// calls issue identical requests.
func (c *RealClient) Tag(ctx context.Context, resourceID string, tags map[string]string) error {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ec2Tags := make([]types.Tag, 0, len(tags))
	for _, k := range keys {
		ec2Tags = append(ec2Tags, types.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}

	_, err := c.ec2.CreateTags(ctx, &ec2.CreateTagsInput{
		Resources: []string{resourceID},
		Tags:      ec2Tags,
	})
	if err != nil {
		return fmt.Errorf("failed to tag %s: %w", resourceID, err)
	}
	return nil
}

// tagValue extracts a tag value from an EC2 tag list, or "".
func tagValue(tags []types.Tag, key string) string {
	for _, tag := range tags {
		if aws.ToString(tag.Key) == key {
			return aws.ToString(tag.Value)
		}
	}
	return ""
}

// nameFilter matches resources by Name tag within a VPC.
func nameFilter(vpcID, name string) []types.Filter {
	return []types.Filter{
		{Name: aws.String("vpc-id"), Values: []string{vpcID}},
		{Name: aws.String("tag:" + nameTag), Values: []string{name}},
	}
}
