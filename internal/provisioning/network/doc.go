// Package network holds the address-space build steps: the VPC itself,
// route tables, subnet carving, route table associations, and gateway
// endpoints.
package network
