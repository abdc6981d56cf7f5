// Package awstest provides an in-memory aws.Client for tests. The fake
// tracks every mutation call by method name so tests can assert that
// re-runs against a converged environment create nothing.
package awstest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vpcform/vpcform/internal/platform/aws"
	"github.com/vpcform/vpcform/internal/rules"
)

// Fake is an in-memory aws.Client.
type Fake struct {
	// RegionID and Zones configure the simulated region. NewFake sets
	// defaults.
	RegionID string
	Zones    []string

	// PollsUntilRunning delays the running state by that many
	// InstanceStates calls. Zero means instances run immediately.
	PollsUntilRunning int

	// FailOn injects an error for a mutation method by name.
	FailOn map[string]error

	mu     sync.Mutex
	nextID int
	polls  int

	vpcs        map[string]*aws.VPC           // by ID
	routeTables map[string]*aws.RouteTable    // by ID
	subnets     map[string]*aws.Subnet        // by ID
	groups      map[string]*aws.SecurityGroup // by ID
	endpoints   map[string]*aws.Endpoint      // by ID
	instances   map[string]*aws.Instance      // by ID
	gateways    map[string]string             // gateway ID -> attached VPC ID
	dnsEnabled  map[string]bool               // by VPC ID

	owner map[string]string            // resource ID -> VPC ID
	tags  map[string]map[string]string // resource ID -> tags

	// CreateCalls counts mutations by method name.
	CreateCalls map[string]int
}

// NewFake creates an empty fake region.
func NewFake() *Fake {
	return &Fake{
		RegionID:    "us-east-1",
		Zones:       []string{"us-east-1a", "us-east-1b", "us-east-1c"},
		vpcs:        make(map[string]*aws.VPC),
		routeTables: make(map[string]*aws.RouteTable),
		subnets:     make(map[string]*aws.Subnet),
		groups:      make(map[string]*aws.SecurityGroup),
		endpoints:   make(map[string]*aws.Endpoint),
		instances:   make(map[string]*aws.Instance),
		gateways:    make(map[string]string),
		dnsEnabled:  make(map[string]bool),
		owner:       make(map[string]string),
		tags:        make(map[string]map[string]string),
		CreateCalls: make(map[string]int),
	}
}

// Creations sums every resource-creating call.
func (f *Fake) Creations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, method := range []string{
		"CreateVPC", "CreateInternetGateway", "CreateRouteTable", "CreateSubnet",
		"CreateGatewayEndpoint", "CreateSecurityGroup", "LaunchInstances",
		"AssociateRouteTable", "AuthorizeIngress",
	} {
		total += f.CreateCalls[method]
	}
	return total
}

// Names returns every Name tag value in the fake, sorted.
func (f *Fake) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for _, tags := range f.tags {
		if name, ok := tags["Name"]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (f *Fake) record(method string) error {
	f.CreateCalls[method]++
	if err, ok := f.FailOn[method]; ok {
		return err
	}
	return nil
}

func (f *Fake) newID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%06x", prefix, f.nextID)
}

func (f *Fake) nameOf(id string) string {
	return f.tags[id]["Name"]
}

// Region implements aws.StateView.
func (f *Fake) Region() string { return f.RegionID }

// AvailabilityZones implements aws.StateView.
func (f *Fake) AvailabilityZones(context.Context) ([]string, error) {
	return f.Zones, nil
}

// VPCByName implements aws.StateView.
func (f *Fake) VPCByName(_ context.Context, name string) (*aws.VPC, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, vpc := range f.vpcs {
		if f.nameOf(id) == name {
			out := *vpc
			out.Name = name
			return &out, nil
		}
	}
	return nil, nil
}

// CreateVPC implements aws.Mutator. The provider-side implicit main
// route table comes with the VPC.
func (f *Fake) CreateVPC(_ context.Context, cidrBlock string) (*aws.VPC, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateVPC"); err != nil {
		return nil, err
	}
	vpc := &aws.VPC{ID: f.newID("vpc"), CIDR: cidrBlock}
	f.vpcs[vpc.ID] = vpc

	main := &aws.RouteTable{ID: f.newID("rtb"), Main: true}
	f.routeTables[main.ID] = main
	f.owner[main.ID] = vpc.ID

	out := *vpc
	return &out, nil
}

// EnableDNS implements aws.Mutator.
func (f *Fake) EnableDNS(_ context.Context, vpcID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("EnableDNS"); err != nil {
		return err
	}
	f.dnsEnabled[vpcID] = true
	return nil
}

// CreateInternetGateway implements aws.Mutator.
func (f *Fake) CreateInternetGateway(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateInternetGateway"); err != nil {
		return "", err
	}
	id := f.newID("igw")
	f.gateways[id] = ""
	return id, nil
}

// AttachInternetGateway implements aws.Mutator.
func (f *Fake) AttachInternetGateway(_ context.Context, gatewayID, vpcID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("AttachInternetGateway"); err != nil {
		return err
	}
	if _, ok := f.gateways[gatewayID]; !ok {
		return fmt.Errorf("gateway %s does not exist", gatewayID)
	}
	f.gateways[gatewayID] = vpcID
	return nil
}

// RouteTableByName implements aws.StateView.
func (f *Fake) RouteTableByName(_ context.Context, vpcID, name string) (*aws.RouteTable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, rt := range f.routeTables {
		if f.owner[id] == vpcID && f.nameOf(id) == name {
			out := *rt
			out.Name = name
			out.SubnetIDs = append([]string(nil), rt.SubnetIDs...)
			return &out, nil
		}
	}
	return nil, nil
}

// MainRouteTable implements aws.StateView.
func (f *Fake) MainRouteTable(_ context.Context, vpcID string) (*aws.RouteTable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, rt := range f.routeTables {
		if f.owner[id] == vpcID && rt.Main {
			out := *rt
			return &out, nil
		}
	}
	return nil, fmt.Errorf("vpc %s has no main route table", vpcID)
}

// CreateRouteTable implements aws.Mutator.
func (f *Fake) CreateRouteTable(_ context.Context, vpcID string) (*aws.RouteTable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateRouteTable"); err != nil {
		return nil, err
	}
	rt := &aws.RouteTable{ID: f.newID("rtb")}
	f.routeTables[rt.ID] = rt
	f.owner[rt.ID] = vpcID
	out := *rt
	return &out, nil
}

// AssociateRouteTable implements aws.Mutator.
func (f *Fake) AssociateRouteTable(_ context.Context, routeTableID, subnetID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("AssociateRouteTable"); err != nil {
		return err
	}
	rt, ok := f.routeTables[routeTableID]
	if !ok {
		return fmt.Errorf("route table %s does not exist", routeTableID)
	}
	rt.SubnetIDs = append(rt.SubnetIDs, subnetID)
	return nil
}

// SubnetByName implements aws.StateView.
func (f *Fake) SubnetByName(_ context.Context, vpcID, name string) (*aws.Subnet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, sn := range f.subnets {
		if f.owner[id] == vpcID && f.nameOf(id) == name {
			out := *sn
			out.Name = name
			return &out, nil
		}
	}
	return nil, nil
}

// CreateSubnet implements aws.Mutator.
func (f *Fake) CreateSubnet(_ context.Context, vpcID, cidrBlock, zone string) (*aws.Subnet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateSubnet"); err != nil {
		return nil, err
	}
	sn := &aws.Subnet{ID: f.newID("subnet"), CIDR: cidrBlock, AvailabilityZone: zone}
	f.subnets[sn.ID] = sn
	f.owner[sn.ID] = vpcID
	out := *sn
	return &out, nil
}

// EndpointByName implements aws.StateView.
func (f *Fake) EndpointByName(_ context.Context, vpcID, name string) (*aws.Endpoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, ep := range f.endpoints {
		if f.owner[id] == vpcID && f.nameOf(id) == name {
			out := *ep
			out.Name = name
			return &out, nil
		}
	}
	return nil, nil
}

// CreateGatewayEndpoint implements aws.Mutator.
func (f *Fake) CreateGatewayEndpoint(_ context.Context, vpcID, _ string, _ []string) (*aws.Endpoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateGatewayEndpoint"); err != nil {
		return nil, err
	}
	ep := &aws.Endpoint{ID: f.newID("vpce")}
	f.endpoints[ep.ID] = ep
	f.owner[ep.ID] = vpcID
	out := *ep
	return &out, nil
}

// SecurityGroupByName implements aws.StateView.
func (f *Fake) SecurityGroupByName(_ context.Context, vpcID, name string) (*aws.SecurityGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, sg := range f.groups {
		if f.owner[id] == vpcID && f.nameOf(id) == name {
			out := *sg
			out.Name = name
			out.Ingress = append([]rules.Permission(nil), sg.Ingress...)
			return &out, nil
		}
	}
	return nil, nil
}

// CreateSecurityGroup implements aws.Mutator.
func (f *Fake) CreateSecurityGroup(_ context.Context, vpcID, groupName, _ string) (*aws.SecurityGroup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateSecurityGroup"); err != nil {
		return nil, err
	}
	sg := &aws.SecurityGroup{ID: f.newID("sg"), Name: groupName}
	f.groups[sg.ID] = sg
	f.owner[sg.ID] = vpcID
	out := *sg
	return &out, nil
}

// AuthorizeIngress implements aws.Mutator.
func (f *Fake) AuthorizeIngress(_ context.Context, groupID string, perms []rules.Permission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(perms) == 0 {
		return nil
	}
	if err := f.record("AuthorizeIngress"); err != nil {
		return err
	}
	sg, ok := f.groups[groupID]
	if !ok {
		return fmt.Errorf("security group %s does not exist", groupID)
	}
	sg.Ingress = append(sg.Ingress, perms...)
	return nil
}

// EnvironmentInstances implements aws.StateView.
func (f *Fake) EnvironmentInstances(_ context.Context, vpcID string) ([]aws.Instance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []aws.Instance
	for id, inst := range f.instances {
		if f.owner[id] != vpcID {
			continue
		}
		snapshot := *inst
		snapshot.Name = f.nameOf(id)
		snapshot.Role = f.tags[id]["role"]
		out = append(out, snapshot)
	}
	return out, nil
}

// LaunchInstances implements aws.Mutator.
func (f *Fake) LaunchInstances(_ context.Context, spec aws.LaunchSpec) ([]aws.Instance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("LaunchInstances"); err != nil {
		return nil, err
	}
	vpcID := f.owner[spec.SubnetID]
	state := "pending"
	if f.PollsUntilRunning == 0 {
		state = aws.InstanceStateRunning
	}

	out := make([]aws.Instance, 0, spec.Count)
	for range spec.Count {
		inst := &aws.Instance{ID: f.newID("i"), SubnetID: spec.SubnetID, State: state}
		f.instances[inst.ID] = inst
		f.owner[inst.ID] = vpcID
		out = append(out, *inst)
	}
	return out, nil
}

// InstanceStates implements aws.Mutator.
func (f *Fake) InstanceStates(_ context.Context, instanceIDs []string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if f.polls >= f.PollsUntilRunning {
		for _, inst := range f.instances {
			inst.State = aws.InstanceStateRunning
		}
	}
	states := make(map[string]string, len(instanceIDs))
	for _, id := range instanceIDs {
		if inst, ok := f.instances[id]; ok {
			states[id] = inst.State
		}
	}
	return states, nil
}

// SetTerminationProtection implements aws.Mutator.
func (f *Fake) SetTerminationProtection(_ context.Context, instanceID string, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SetTerminationProtection"); err != nil {
		return err
	}
	if _, ok := f.instances[instanceID]; !ok {
		return fmt.Errorf("instance %s does not exist", instanceID)
	}
	return nil
}

// Tag implements aws.Mutator.
func (f *Fake) Tag(_ context.Context, resourceID string, tags map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Tag"); err != nil {
		return err
	}
	existing, ok := f.tags[resourceID]
	if !ok {
		existing = make(map[string]string)
		f.tags[resourceID] = existing
	}
	for k, v := range tags {
		existing[k] = v
	}
	return nil
}

var _ aws.Client = (*Fake)(nil)
