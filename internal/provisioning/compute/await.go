package compute

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/vpcform/vpcform/internal/platform/aws"
	"github.com/vpcform/vpcform/internal/provisioning"
	"github.com/vpcform/vpcform/internal/util/retry"
)

// Timeout and poll tuning for instance startup.
const (
	awaitTimeout      = 10 * time.Minute
	awaitPollInterval = 10 * time.Second
	awaitMaxInterval  = 30 * time.Second
)

// AwaitStep blocks until every instance in the environment, launched or
// pre-existing, reports the running state.
type AwaitStep struct {
	// Timeout and PollInterval override the defaults when positive.
	Timeout      time.Duration
	PollInterval time.Duration
}

// Name implements provisioning.Step.
func (s *AwaitStep) Name() string { return "await-running" }

// Provision implements provisioning.Step. The wait is bounded: on
// timeout the error names the instances that never reached running.
func (s *AwaitStep) Provision(ctx *provisioning.Context) error {
	instances, err := ctx.Cloud.EnvironmentInstances(ctx, ctx.State.VPC.ID)
	if err != nil {
		return err
	}
	if len(instances) == 0 {
		return nil
	}

	ids := make([]string, 0, len(instances))
	for _, inst := range instances {
		ids = append(ids, inst.ID)
	}
	sort.Strings(ids)
	ctx.Observer.Printf("waiting for %d instances to reach running state", len(ids))

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = awaitTimeout
	}
	poll := s.PollInterval
	if poll <= 0 {
		poll = awaitPollInterval
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	attempts := int(timeout/poll) + 1
	return retry.Do(waitCtx, func() error {
		states, err := ctx.Cloud.InstanceStates(waitCtx, ids)
		if err != nil {
			if aws.IsThrottled(err) {
				return err
			}
			return retry.Permanent(err)
		}

		var pending []string
		for _, id := range ids {
			if states[id] != aws.InstanceStateRunning {
				pending = append(pending, id)
			}
		}
		if len(pending) == 0 {
			return nil
		}
		return fmt.Errorf("%d instances not yet running: %v", len(pending), pending)
	},
		retry.WithMaxAttempts(attempts),
		retry.WithInitialDelay(poll),
		retry.WithMaxDelay(awaitMaxInterval))
}
