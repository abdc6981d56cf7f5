package provisioning

import (
	"context"
	"fmt"
	"reflect"
)

// EnsureOperation encapsulates the idempotency contract shared by every
// build step: resolve the resource by its logical name first; when
// found, it is a no-op; when absent, perform exactly one creation and
// tag the result with the logical name for future lookups.
//
// Usage:
//
//	subnet, created, err := (&EnsureOperation[*aws.Subnet]{
//	    Name:         "prod-web-1",
//	    ResourceType: "subnet",
//	    Step:         p.Name(),
//	    Get:          func(ctx context.Context) (*aws.Subnet, error) { ... },
//	    Create:       func(ctx context.Context) (*aws.Subnet, error) { ... },
//	    Tags:         func(sn *aws.Subnet) (string, map[string]string) { ... },
//	}).Execute(ctx, ctx.Cloud, ctx.Observer)
type EnsureOperation[T any] struct {
	// Name is the logical name the resource is keyed by.
	Name string
	// ResourceType names the kind of resource for events.
	ResourceType string
	// Step names the build step for events.
	Step string

	// Get resolves the resource by logical name; nil means absent.
	Get func(ctx context.Context) (T, error)

	// Create performs the single creation.
	Create func(ctx context.Context) (T, error)

	// Tags returns the provider ID to tag and the tags to apply after
	// creation. The Name tag is added automatically. Optional when the
	// creation itself tags.
	Tags func(resource T) (string, map[string]string)
}

// Tagger applies tags to a provider resource.
type Tagger interface {
	Tag(ctx context.Context, resourceID string, tags map[string]string) error
}

// Execute runs the ensure operation and reports whether a creation
// happened.
func (op *EnsureOperation[T]) Execute(ctx context.Context, tagger Tagger, obs Observer) (T, bool, error) {
	var zero T

	resource, err := op.Get(ctx)
	if err != nil {
		return zero, false, fmt.Errorf("failed to look up %s %s: %w", op.ResourceType, op.Name, err)
	}
	if !reflect.ValueOf(resource).IsNil() {
		obs.Event(Event{Type: EventResourceExists, Step: op.Step, Resource: op.Name,
			Message: fmt.Sprintf("%s already present", op.ResourceType)})
		return resource, false, nil
	}

	obs.Event(Event{Type: EventResourceCreating, Step: op.Step, Resource: op.Name,
		Message: fmt.Sprintf("creating %s", op.ResourceType)})

	resource, err = op.Create(ctx)
	if err != nil {
		return zero, false, fmt.Errorf("failed to create %s %s: %w", op.ResourceType, op.Name, err)
	}

	if op.Tags != nil {
		id, tags := op.Tags(resource)
		if tags == nil {
			tags = make(map[string]string, 1)
		}
		tags["Name"] = op.Name
		if err := tagger.Tag(ctx, id, tags); err != nil {
			return zero, false, fmt.Errorf("failed to tag %s %s: %w", op.ResourceType, op.Name, err)
		}
	}

	obs.Event(Event{Type: EventResourceCreated, Step: op.Step, Resource: op.Name,
		Message: fmt.Sprintf("%s created", op.ResourceType)})
	return resource, true, nil
}
