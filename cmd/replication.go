package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var replicationCmd = &cobra.Command{
	Use:   "replication",
	Short: "Inspect chain replication",
}

var replicationStatusesCmd = &cobra.Command{
	Use:   "statuses",
	Short: "Show the last replication of every department",
	RunE:  runReplicationStatuses,
}

var serverTypeCmd = &cobra.Command{
	Use:   "server-type",
	Short: "Show whether the server is a chain or a restaurant server",
	RunE: func(cmd *cobra.Command, args []string) error {
		serverType, err := client.GetServerType(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get server type: %w", err)
		}
		return render(cmd.OutOrStdout(), cfg.Output.Format, map[string]string{"serverType": string(serverType)}, func() table {
			return table{header: []string{"server type"}, rows: [][]string{{string(serverType)}}}
		})
	},
}

func init() {
	rootCmd.AddCommand(replicationCmd)
	replicationCmd.AddCommand(replicationStatusesCmd, serverTypeCmd)
}

func runReplicationStatuses(cmd *cobra.Command, args []string) error {
	statuses, err := client.GetReplicationStatuses(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get replication statuses: %w", err)
	}

	return render(cmd.OutOrStdout(), cfg.Output.Format, statuses, func() table {
		t := table{header: []string{"department", "status", "last replication", "error"}}
		for _, s := range statuses {
			t.rows = append(t.rows, []string{orDash(s.DepartmentName), orDash(s.Status), orDash(s.LastReplicationDate), orDash(s.ErrorMessage)})
		}
		return t
	})
}
