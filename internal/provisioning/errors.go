package provisioning

import "fmt"

// ConfigurationError reports a declared reference with no valid match:
// an instance role naming unknown subnets, a missing regional AMI, and
// the like. It aborts the run before any mutation for the offending
// resource is issued.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return e.Msg
}

// Configf builds a ConfigurationError.
func Configf(format string, args ...any) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// ProviderError wraps a failure from the resource API with the step
// that issued the call. The cause is preserved for diagnostics.
type ProviderError struct {
	Step string
	Err  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.Step, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ProtectionWarning records a failed termination-protection attempt.
// It is collected, logged, and never aborts the run.
type ProtectionWarning struct {
	InstanceID string
	Err        error
}

func (e *ProtectionWarning) Error() string {
	return fmt.Sprintf("could not enable termination protection on %s: %v", e.InstanceID, e.Err)
}

func (e *ProtectionWarning) Unwrap() error {
	return e.Err
}
