// Package commands defines the CLI command structure and flag bindings.
// Command execution is delegated to the handlers package.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionString = "dev"

// SetVersionInfo records build-time version information for --version.
func SetVersionInfo(version, commit string) {
	versionString = fmt.Sprintf("%s (%s)", version, commit)
}

// Root returns the root command for the vpcform CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "vpcform",
		Short:   "Manage VPC environments on AWS using YAML templates",
		Version: versionString,
	}

	cmd.AddCommand(Apply())

	return cmd
}
