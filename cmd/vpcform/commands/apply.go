package commands

import (
	"github.com/spf13/cobra"

	"github.com/vpcform/vpcform/cmd/vpcform/handlers"
)

// Apply returns the command that builds or reconciles an environment.
//
// Required flags:
//
//	--config, -c: path to the environment YAML template
//
// Optional flags:
//
//	--region, -r:  AWS region
//	--profile, -p: AWS credentials profile
func Apply() *cobra.Command {
	var (
		configPath string
		region     string
		profile    string
	)

	cmd := &cobra.Command{
		Use:   "apply <environment-name>",
		Short: "Build or reconcile an environment from its template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Apply(cmd.Context(), handlers.ApplyOptions{
				Env:        args[0],
				ConfigPath: configPath,
				Region:     region,
				Profile:    profile,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to environment template")
	cmd.Flags().StringVarP(&region, "region", "r", "", "AWS region")
	cmd.Flags().StringVarP(&profile, "profile", "p", "", "AWS credentials profile")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}
