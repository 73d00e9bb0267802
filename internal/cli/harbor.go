package cli

import (
	"fmt"
	"io"

	"github.com/devplatform/dpcli/internal/api"
	"github.com/spf13/cobra"
)

func newHarborCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "harbor",
		Short:   "Registry synchronization",
		GroupID: "catalog",
	}
	cmd.AddCommand(
		newHarborSyncCmd(a),
		newHarborLogsCmd(a),
	)
	return cmd
}

func newHarborSyncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Trigger a registry synchronization run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.apiClient().TriggerHarborSync(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s✓%s sync started; follow with: dpcli harbor logs\n", ansiGreen, ansiReset)
			return nil
		},
	}
}

func newHarborLogsCmd(a *app) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "List synchronization attempts, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logs, err := a.apiClient().ListSyncLogs(cmd.Context(), api.SyncLogParams{Limit: limit})
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(a.stdout, logs)
			}
			renderSyncLogTable(a.stdout, logs)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum log entries to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func renderSyncLogTable(w io.Writer, logs []api.SyncLog) {
	if len(logs) == 0 {
		fmt.Fprintln(w, "No sync logs.")
		return
	}
	fmt.Fprintf(w, "%s%-6s %-20s %-10s %-12s %-8s %s%s\n",
		ansiBold, "ID", "ADD-ON", "TYPE", "STATUS", "NEW", "STARTED", ansiReset)
	for _, l := range logs {
		fmt.Fprintf(w, "%-6d %-20s %-10s %-12s %-8d %s\n",
			l.ID, trunc(l.AddonName, 20), orDash(l.SyncType),
			syncStatusColor(l.Status), l.NewVersions, orDash(l.StartedAt))
		if l.Error != "" {
			fmt.Fprintf(w, "       %serror:%s %s\n", ansiRed, ansiReset, trunc(l.Error, 90))
		}
	}
}
