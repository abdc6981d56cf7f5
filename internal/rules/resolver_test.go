package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticLookup(groups map[string]string) GroupLookup {
	return func(name string) (string, bool) {
		id, ok := groups[name]
		return id, ok
	}
}

func TestResolveCIDRSource(t *testing.T) {
	perm, err := Resolve(Rule{Source: "10.0.0.0/8", Protocol: "tcp", PortSpec: "443"}, nil)
	require.NoError(t, err)
	assert.Equal(t, Permission{
		Protocol: "tcp",
		FromPort: 443,
		ToPort:   443,
		CIDR:     "10.0.0.0/8",
	}, perm)
}

func TestResolveGroupSource(t *testing.T) {
	lookup := staticLookup(map[string]string{"web": "sg-0abc"})

	perm, err := Resolve(Rule{Source: "web", Protocol: "tcp", PortSpec: "5432"}, lookup)
	require.NoError(t, err)
	assert.Equal(t, "sg-0abc", perm.GroupID)
	assert.Empty(t, perm.CIDR)
	assert.Equal(t, int32(5432), perm.FromPort)
	assert.Equal(t, int32(5432), perm.ToPort)
}

func TestResolveGroupTakesPrecedenceOverCIDR(t *testing.T) {
	// A source that happens to parse as a CIDR still resolves to the
	// group when a group of that name exists.
	lookup := staticLookup(map[string]string{"10.0.0.0/8": "sg-0weird"})

	perm, err := Resolve(Rule{Source: "10.0.0.0/8", Protocol: "tcp", PortSpec: "80"}, lookup)
	require.NoError(t, err)
	assert.Equal(t, "sg-0weird", perm.GroupID)
	assert.Empty(t, perm.CIDR)
}

func TestResolveUnknownSource(t *testing.T) {
	lookup := staticLookup(map[string]string{"web": "sg-0abc"})

	_, err := Resolve(Rule{Source: "database", Protocol: "tcp", PortSpec: "5432"}, lookup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database")
}

func TestResolveICMP(t *testing.T) {
	perm, err := Resolve(Rule{Source: "0.0.0.0/0", Protocol: "icmp", PortSpec: "all"}, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(-1), perm.FromPort)
	assert.Equal(t, int32(-1), perm.ToPort)
}

func TestResolveBadPortSpec(t *testing.T) {
	_, err := Resolve(Rule{Source: "10.0.0.0/8", Protocol: "tcp", PortSpec: "not-a-port"}, nil)
	require.Error(t, err)
}

func TestPortRange(t *testing.T) {
	tests := []struct {
		name     string
		spec     string
		protocol string
		from     int32
		to       int32
		wantErr  bool
	}{
		{name: "single port", spec: "443", protocol: "tcp", from: 443, to: 443},
		{name: "range", spec: "8000-8100", protocol: "tcp", from: 8000, to: 8100},
		{name: "udp single", spec: "53", protocol: "udp", from: 53, to: 53},
		{name: "icmp ignores spec", spec: "999", protocol: "icmp", from: -1, to: -1},
		{name: "icmpv6 ignores spec", spec: "x", protocol: "ICMPv6", from: -1, to: -1},
		{name: "all protocols sentinel", spec: "", protocol: "-1", from: -1, to: -1},
		{name: "inverted range", spec: "8100-8000", protocol: "tcp", wantErr: true},
		{name: "port too large", spec: "70000", protocol: "tcp", wantErr: true},
		{name: "empty spec", spec: "", protocol: "tcp", wantErr: true},
		{name: "garbage", spec: "http", protocol: "tcp", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to, err := PortRange(tt.spec, tt.protocol)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.from, from)
			assert.Equal(t, tt.to, to)
		})
	}
}
