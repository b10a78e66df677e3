package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/atlas/internal/atlassian"
	"github.com/danielolaszy/atlas/internal/config"
)

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "Show which backends are configured",
	Long: `Services reports the configuration state of each backend without making
any network calls: which services have a complete URL/credentials pair, and
what is missing for the ones that do not.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		available := cfg.AvailableServices()
		if available == nil {
			available = []string{}
		}

		result := atlassian.Result{
			"available":   available,
			"unavailable": cfg.UnavailableServices(),
		}
		fmt.Fprint(cmd.OutOrStdout(), atlassian.MarshalResponse(result))
		return nil
	},
}
