package cli

import (
	"fmt"
	"io"

	"github.com/devplatform/dpcli/internal/api"
	"github.com/spf13/cobra"
)

func newDashboardCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"dash"},
		Short:   "Show the platform summary",
		GroupID: "platform",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client := a.apiClient()
			summary, err := client.DashboardSummaryView(ctx)
			if err != nil {
				return err
			}
			recent, err := client.RecentBuilds(ctx)
			if err != nil {
				return err
			}
			expiring, err := client.ExpiringCertificates(ctx, 30)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(a.stdout, struct {
					Summary       *api.DashboardSummary `json:"summary"`
					RecentBuilds  []api.Build           `json:"recentBuilds"`
					ExpiringCerts []api.Certificate     `json:"expiringCerts"`
				}{summary, recent, expiring})
			}
			renderDashboard(a.stdout, summary, recent, expiring)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func renderDashboard(w io.Writer, s *api.DashboardSummary, recent []api.Build, expiring []api.Certificate) {
	fmt.Fprintf(w, "%sPlatform summary%s\n", ansiBold, ansiReset)
	fmt.Fprintf(w, "  Customers:        %d\n", s.CustomerCount)
	fmt.Fprintf(w, "  Projects:         %d\n", s.ProjectCount)
	fmt.Fprintf(w, "  Add-ons:          %d\n", s.AddonCount)
	fmt.Fprintf(w, "  Certificates:     %d", s.CertificateCount)
	if s.ExpiringCertCount > 0 {
		fmt.Fprintf(w, "  (%s%d expiring%s)", ansiYellow, s.ExpiringCertCount, ansiReset)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Builds (30d):     %d", s.BuildsLast30Days)
	if s.BuildsInProgress > 0 {
		fmt.Fprintf(w, "  (%s%d in progress%s)", ansiCyan, s.BuildsInProgress, ansiReset)
	}
	fmt.Fprintln(w)
	if s.UnreadNotification > 0 {
		fmt.Fprintf(w, "  Notifications:    %s%d unread%s\n", ansiYellow, s.UnreadNotification, ansiReset)
	}
	if len(recent) > 0 {
		fmt.Fprintf(w, "\n%sRecent builds%s\n", ansiBold, ansiReset)
		renderBuildTable(w, recent)
	}
	if len(expiring) > 0 {
		fmt.Fprintf(w, "\n%sCertificates expiring within 30 days%s\n", ansiBold, ansiReset)
		renderCertTable(w, expiring)
	}
}
