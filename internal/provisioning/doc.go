// Package provisioning holds the reconciliation machinery shared by all
// build steps: the step pipeline, the run context and its accumulated
// state, the get-or-create helper that enforces the name-tag idempotency
// contract, the error taxonomy, and the observer used for progress
// reporting.
//
// Steps run strictly in order because later steps depend on identifiers
// created by earlier ones. Within a step, independent resources may be
// created concurrently once their inputs have been pre-computed by the
// pure planning algorithms.
package provisioning
