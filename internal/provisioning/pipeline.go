package provisioning

import (
	"errors"
	"fmt"
	"time"

	"github.com/vpcform/vpcform/internal/cidr"
)

// Step is one ordered build step of the reconciliation run.
type Step interface {
	// Name identifies the step in errors and events.
	Name() string
	// Provision converges the step's resources toward the declared
	// state, creating only what is absent.
	Provision(ctx *Context) error
}

// Run executes all steps in order. A failing step aborts the run; its
// error is wrapped in a ProviderError carrying the step name unless it
// is already one of the taxonomy kinds raised below the provider layer.
func Run(ctx *Context, steps []Step) error {
	start := time.Now()
	ctx.Observer.Printf("Building environment %s (%d steps)...", ctx.Env, len(steps))

	for _, step := range steps {
		stepStart := time.Now()
		LogStepStart(ctx.Observer, step.Name())

		if err := step.Provision(ctx); err != nil {
			LogStepFailed(ctx.Observer, step.Name(), err)
			return wrapStepError(step.Name(), err)
		}

		LogStepComplete(ctx.Observer, step.Name(), time.Since(stepStart))
	}

	for _, warning := range ctx.State.Warnings {
		ctx.Observer.Event(Event{Type: EventWarning, Message: warning.Error()})
	}
	ctx.Observer.Printf("Environment %s converged in %v", ctx.Env, time.Since(start).Round(time.Millisecond))
	return nil
}

// wrapStepError adds the failing step's name while preserving the error
// kind: allocation and configuration errors stay matchable as
// themselves, everything else becomes a ProviderError.
func wrapStepError(step string, err error) error {
	var allocErr *cidr.AllocationError
	var cfgErr *ConfigurationError
	if errors.As(err, &allocErr) || errors.As(err, &cfgErr) {
		return fmt.Errorf("step %s: %w", step, err)
	}
	return &ProviderError{Step: step, Err: err}
}
