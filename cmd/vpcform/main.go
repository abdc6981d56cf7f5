// Package main is the entry point for the vpcform CLI.
//
// vpcform provisions and reconciles VPC environments on AWS from
// declarative YAML templates: address space, subnets, route tables,
// security groups, and instance fleets. Runs are idempotent; resources
// are identified by Name tag and never created twice.
//
// For usage information, run:
//
//	vpcform --help
package main

import (
	"fmt"
	"os"

	"github.com/vpcform/vpcform/cmd/vpcform/commands"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	commands.SetVersionInfo(version, commit)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
