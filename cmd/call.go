package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/atlas/internal/atlassian"
)

// callTimeout bounds one operation end to end, including the extra
// requests composite operations make.
const callTimeout = 2 * time.Minute

var callCmd = &cobra.Command{
	Use:   "call <operation> [params-json]",
	Short: "Invoke one operation and print its JSON result",
	Long: `Call invokes a registered operation with a JSON parameter object and
prints the result envelope to stdout. The command exits 0 even when the
operation fails; failures are reported in the envelope's success and
error_type fields so callers only ever parse one shape.

Pass parameters as a JSON object argument, or "-" to read them from stdin:

  atlas call jira_get_issue '{"issue_key": "PROJ-123"}'
  echo '{"jql": "project = PROJ"}' | atlas call jira_search -`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var params json.RawMessage
		if len(args) == 2 {
			if args[1] == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading parameters from stdin: %w", err)
				}
				params = data
			} else {
				params = json.RawMessage(args[1])
			}
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), callTimeout)
		defer cancel()

		result := buildRegistry().Call(ctx, args[0], params)
		fmt.Fprint(cmd.OutOrStdout(), atlassian.MarshalResponse(result))
		return nil
	},
}
