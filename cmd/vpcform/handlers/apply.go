// Package handlers executes CLI commands: loading configuration, wiring
// the cloud client, and running the build pipeline.
package handlers

import (
	"context"
	"log"

	"github.com/vpcform/vpcform/internal/config"
	"github.com/vpcform/vpcform/internal/orchestration"
	"github.com/vpcform/vpcform/internal/platform/aws"
)

// ApplyOptions carries the apply command's inputs.
type ApplyOptions struct {
	Env        string
	ConfigPath string
	Region     string
	Profile    string
}

// Apply loads the environment template and converges the environment.
func Apply(ctx context.Context, opts ApplyOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	var clientOpts []aws.ClientOption
	if opts.Profile != "" {
		clientOpts = append(clientOpts, aws.WithProfile(opts.Profile))
	}
	cloud, err := aws.NewRealClient(ctx, opts.Region, clientOpts...)
	if err != nil {
		return err
	}

	runCtx, err := orchestration.Apply(ctx, opts.Env, cfg, cloud)
	if err != nil {
		return err
	}

	if n := len(runCtx.State.Warnings); n > 0 {
		log.Printf("environment %s converged with %d warnings", opts.Env, n)
	}
	return nil
}
