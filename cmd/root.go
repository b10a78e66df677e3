package cmd

import (
	"github.com/spf13/cobra"

	"github.com/danielolaszy/atlas/internal/config"
	"github.com/danielolaszy/atlas/internal/registry"
	"github.com/danielolaszy/atlas/internal/tools"
)

var readOnly bool

var rootCmd = &cobra.Command{
	Use:   "atlas",
	Short: "Atlas exposes Jira, Confluence, and Bitbucket operations as JSON tools",
	Long: `Atlas is a CLI that exposes Jira, Confluence, and Bitbucket REST operations
as uniformly shaped JSON tools. Every call prints a JSON result to stdout:
successful operations return the simplified resource, failures return an
error envelope with success=false and a stable error_type. Configuration
comes from JIRA_*, CONFLUENCE_*, and BITBUCKET_* environment variables.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// buildRegistry loads configuration and wires every operation.
func buildRegistry() *registry.Registry {
	cfg := config.LoadConfig()
	reg := registry.New(readOnly)
	tools.Register(reg, cfg)
	return reg
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&readOnly, "read-only", false,
		"expose only read operations; writes are rejected")

	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(opsCmd)
	rootCmd.AddCommand(servicesCmd)
}
