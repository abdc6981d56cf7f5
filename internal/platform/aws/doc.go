// Package aws wraps the EC2 API behind narrow interfaces for the
// provisioning pipeline.
//
// Resources are resolved by their Name tag, the stable logical identity
// across runs; provider-assigned IDs are carried only inside the handle
// types. The handles expose exactly the fields the pipeline needs,
// never the SDK's full resource surface.
package aws
