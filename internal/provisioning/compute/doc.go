// Package compute holds the instance-fleet build steps: growing each
// role's fleet to its desired count, waiting for every instance to
// reach the running state, and the best-effort termination lock.
package compute
