// Package naming builds the logical names used as Name tags.
//
// The Name tag is the stable identity of every resource across runs:
// lookups key on it, so these patterns must never change for an
// existing environment.
package naming

import (
	"fmt"
	"strings"
)

// Resource names a route table, subnet, or security group inside an
// environment: "<env>-<name>".
func Resource(env, name string) string {
	return fmt.Sprintf("%s-%s", env, name)
}

// InternetGateway names the environment's internet gateway.
func InternetGateway(env string) string {
	return fmt.Sprintf("igw-%s", env)
}

// Endpoint names the environment's gateway endpoint for a service.
func Endpoint(env, service string) string {
	return fmt.Sprintf("%s-%s-endpoint", env, service)
}

// Instance names a launched instance from its role and the provider ID
// with the type prefix stripped: "<env>-<role>-<id>".
func Instance(env, role, instanceID string) string {
	return fmt.Sprintf("%s-%s-%s", env, role, strings.TrimPrefix(instanceID, "i-"))
}

// Zone expands a zone letter to a full zone name: ("us-east-1", "a")
// becomes "us-east-1a".
func Zone(region, letter string) string {
	return region + letter
}
