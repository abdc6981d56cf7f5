package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
)

// RealClient implements Client against the EC2 API.
type RealClient struct {
	ec2    *ec2.Client
	region string
}

// ClientOption configures a RealClient.
type ClientOption func(*clientSettings)

type clientSettings struct {
	profile   string
	accessKey string
	secretKey string
}

// WithProfile selects a shared-config credentials profile.
func WithProfile(profile string) ClientOption {
	return func(s *clientSettings) {
		s.profile = profile
	}
}

// WithStaticCredentials bypasses the default credential chain.
func WithStaticCredentials(accessKey, secretKey string) ClientOption {
	return func(s *clientSettings) {
		s.accessKey = accessKey
		s.secretKey = secretKey
	}
}

// NewRealClient creates a client for the given region using the default
// AWS credential chain, adjusted by the given options.
func NewRealClient(ctx context.Context, region string, opts ...ClientOption) (*RealClient, error) {
	var settings clientSettings
	for _, opt := range opts {
		opt(&settings)
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if settings.profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(settings.profile))
	}
	if settings.accessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(settings.accessKey, settings.secretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &RealClient{ec2: ec2.NewFromConfig(cfg), region: cfg.Region}, nil
}

// NewRealClientFromEC2 wraps an existing EC2 client (useful for tests
// against API stubs).
func NewRealClientFromEC2(client *ec2.Client, region string) *RealClient {
	return &RealClient{ec2: client, region: region}
}

// Region returns the region the client operates in.
func (c *RealClient) Region() string {
	return c.region
}

// AvailabilityZones returns the available zone names of the region, in
// the provider's order.
func (c *RealClient) AvailabilityZones(ctx context.Context) ([]string, error) {
	out, err := c.ec2.DescribeAvailabilityZones(ctx, &ec2.DescribeAvailabilityZonesInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe availability zones: %w", err)
	}
	zones := make([]string, 0, len(out.AvailabilityZones))
	for _, az := range out.AvailabilityZones {
		zones = append(zones, aws.ToString(az.ZoneName))
	}
	return zones, nil
}
