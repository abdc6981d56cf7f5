package compute

import (
	"github.com/vpcform/vpcform/internal/platform/aws"
	"github.com/vpcform/vpcform/internal/provisioning"
)

// LockStep enables termination protection on every instance in the
// environment. The step is best-effort: failures are recorded as
// warnings and never fail the run, but they are never discarded either.
type LockStep struct{}

// Name implements provisioning.Step.
func (s *LockStep) Name() string { return "lock-instances" }

// Provision implements provisioning.Step.
func (s *LockStep) Provision(ctx *provisioning.Context) error {
	instances, err := ctx.Cloud.EnvironmentInstances(ctx, ctx.State.VPC.ID)
	if err != nil {
		ctx.State.Warn(&provisioning.ProtectionWarning{InstanceID: "*", Err: err})
		return nil
	}

	for _, inst := range instances {
		if err := ctx.Cloud.SetTerminationProtection(ctx, inst.ID, true); err != nil {
			// The instance may have been terminated between listing and
			// locking; that is not worth a warning.
			if aws.IsNotFound(err) {
				continue
			}
			warning := &provisioning.ProtectionWarning{InstanceID: inst.ID, Err: err}
			ctx.State.Warn(warning)
			ctx.Observer.Event(provisioning.Event{
				Type:     provisioning.EventWarning,
				Step:     s.Name(),
				Resource: inst.ID,
				Message:  warning.Error(),
			})
		}
	}
	return nil
}
