package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/atlas/internal/atlassian"
)

var opsCmd = &cobra.Command{
	Use:   "ops",
	Short: "List the operations available under the current mode",
	Long: `Ops prints the operation table as JSON. With --read-only the listing
contains only read operations, matching exactly what call would accept.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := buildRegistry()

		ops := reg.Operations()
		listing := make([]atlassian.Result, 0, len(ops))
		for _, op := range ops {
			listing = append(listing, atlassian.Result{
				"name":        op.Name,
				"service":     op.Service,
				"kind":        string(op.Kind),
				"description": op.Description,
			})
		}

		result := atlassian.Result{
			"operations": listing,
			"count":      len(listing),
			"read_only":  reg.ReadOnly(),
		}
		fmt.Fprint(cmd.OutOrStdout(), atlassian.MarshalResponse(result))
		return nil
	},
}
