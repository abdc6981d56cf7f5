package provisioning

import (
	"context"
	"sync"

	"github.com/vpcform/vpcform/internal/config"
	"github.com/vpcform/vpcform/internal/platform/aws"
)

// State accumulates the handles produced by completed steps. Handles
// are conveniences for later steps; anything that must be fresh (route
// table associations, instance counts) is re-queried from the cloud
// rather than read from here.
type State struct {
	VPC *aws.VPC

	// RouteTables, Subnets, and SecurityGroups are keyed by the short
	// declared name from the config, not the full logical name.
	RouteTables    map[string]*aws.RouteTable
	Subnets        map[string]*aws.Subnet
	SecurityGroups map[string]*aws.SecurityGroup

	mu sync.Mutex
	// LaunchedInstanceIDs are the instances created by this run.
	LaunchedInstanceIDs []string
	// Warnings are non-fatal problems surfaced at the end of the run.
	Warnings []error
}

// NewState creates an empty run state.
func NewState() *State {
	return &State{
		RouteTables:    make(map[string]*aws.RouteTable),
		Subnets:        make(map[string]*aws.Subnet),
		SecurityGroups: make(map[string]*aws.SecurityGroup),
	}
}

// RecordLaunched appends launched instance IDs. Safe for concurrent use
// by parallel batch launches within a step.
func (s *State) RecordLaunched(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LaunchedInstanceIDs = append(s.LaunchedInstanceIDs, ids...)
}

// Warn records a non-fatal problem.
func (s *State) Warn(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Warnings = append(s.Warnings, err)
}

// Context carries everything a build step needs: the environment name,
// its declared configuration, the cloud client, the accumulated state,
// and the observer.
type Context struct {
	context.Context
	Env      string
	Config   *config.Config
	Cloud    aws.Client
	State    *State
	Observer Observer
}

// NewContext creates a run context for one environment.
func NewContext(ctx context.Context, env string, cfg *config.Config, cloud aws.Client) *Context {
	return &Context{
		Context:  ctx,
		Env:      env,
		Config:   cfg,
		Cloud:    cloud,
		State:    NewState(),
		Observer: NewConsoleObserver(),
	}
}
