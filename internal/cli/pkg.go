package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/devplatform/dpcli/internal/api"
	"github.com/devplatform/dpcli/internal/build"
	"github.com/devplatform/dpcli/internal/terminal"
	"github.com/devplatform/dpcli/internal/ui"
	"github.com/spf13/cobra"
)

func newPackageCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "package",
		Aliases: []string{"packages", "pkg"},
		Short:   "Build and download deployment packages",
		GroupID: "delivery",
	}
	cmd.AddCommand(
		newPackageBuildCmd(a),
		newPackageListCmd(a),
		newPackageGetCmd(a),
		newPackageStatusCmd(a),
		newPackageDownloadCmd(a),
		newPackageBuilderCmd(a),
	)
	return cmd
}

func newPackageBuildCmd(a *app) *cobra.Command {
	var (
		addonSpecs []string
		customerID int64
		projectID  int64
		namespace  string
		domain     string
		tls        bool
		keycloak   bool
		deployEnv  string
		registry   string
		outputDir  string
		noWait     bool
		noDownload bool
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Submit a package build and wait for it",
		Long: `Submit a package build for a set of add-ons, poll it to completion and
download the resulting bundle. Add-ons are named by their system name with
an optional pinned version:

  dpcli package build --addons gitlab,harbor=2.9.1 --domain dev.example.com --tls`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client := a.apiClient()

			catalog, err := client.ListAddons(ctx, api.AddonListParams{})
			if err != nil {
				return err
			}
			sel := build.NewSelection(catalog)
			for _, spec := range splitSpecs(addonSpecs) {
				name, version, _ := strings.Cut(spec, "=")
				ad, ok := sel.FindByName(name)
				if !ok {
					return fmt.Errorf("unknown add-on %q", name)
				}
				sel.Toggle(ad.ID)
				if version != "" {
					sel.SetVersion(ad.ID, version)
				}
			}
			sel.SetTLS(tls)
			sel.SetKeycloak(keycloak)
			if tls {
				if _, ok := sel.FindByName(build.TLSAddonName); !ok {
					return fmt.Errorf("--tls requires the %s add-on in the catalog", build.TLSAddonName)
				}
			}
			if keycloak {
				if _, ok := sel.FindByName(build.KeycloakAddonName); !ok {
					return fmt.Errorf("--keycloak requires the %s add-on in the catalog", build.KeycloakAddonName)
				}
			}

			if deployEnv != "" && deployEnv != api.EnvInternet && deployEnv != api.EnvAirgapped {
				return fmt.Errorf("invalid --env %q (valid: %s, %s)", deployEnv, api.EnvInternet, api.EnvAirgapped)
			}
			if namespace == "" {
				namespace = a.cfg.Builder.Namespace
			}
			if outputDir == "" {
				outputDir = a.cfg.Builder.OutputDir
			}

			req := api.BuildRequest{
				Addons:          sel.SelectedAddons(),
				Namespace:       namespace,
				Domain:          domain,
				TLSEnabled:      tls,
				KeycloakEnabled: keycloak,
				DeployEnv:       deployEnv,
				CreatedBy:       localUser(),
			}
			if customerID > 0 {
				req.CustomerID = &customerID
			}
			if projectID > 0 {
				req.ProjectID = &projectID
			}
			if registry != "" {
				req.RegistryURL = &registry
			}

			orch := build.NewOrchestrator(client, a.cfg.PollInterval())
			b, err := orch.Submit(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "build submitted: %s%s%s (%d add-ons)\n", ansiCyan, b.BuildHash, ansiReset, len(req.Addons))
			if noWait {
				fmt.Fprintf(a.stdout, "check later with: dpcli package status %s\n", b.BuildHash)
				return nil
			}

			final, err := orch.Poll(ctx, progressPrinter(a.stdout))
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s✓%s build succeeded (%s)\n", ansiGreen, ansiReset, formatSize(final.TotalSize))

			if noDownload {
				return nil
			}
			path, size, err := orch.Download(ctx, outputDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s✓%s package written to %s (%s)\n", ansiGreen, ansiReset, path, formatSize(size))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&addonSpecs, "addons", nil, "add-ons to include, name[=version] (comma-separated)")
	cmd.Flags().Int64Var(&customerID, "customer", 0, "customer id")
	cmd.Flags().Int64Var(&projectID, "project", 0, "project id")
	cmd.Flags().StringVar(&namespace, "namespace", "", "target namespace (default from config, \"devops\")")
	cmd.Flags().StringVar(&domain, "domain", "", "base ingress domain (required)")
	cmd.Flags().BoolVar(&tls, "tls", false, "enable TLS; forces the cert-manager add-on")
	cmd.Flags().BoolVar(&keycloak, "keycloak", false, "enable Keycloak SSO; forces the keycloak add-on")
	cmd.Flags().StringVar(&deployEnv, "env", "", "deploy environment (INTERNET|AIRGAPPED)")
	cmd.Flags().StringVar(&registry, "registry", "", "private registry URL override")
	cmd.Flags().StringVar(&outputDir, "output", "", "directory for the downloaded package")
	cmd.Flags().BoolVar(&noWait, "no-wait", false, "submit and exit without polling")
	cmd.Flags().BoolVar(&noDownload, "no-download", false, "poll to completion but skip the download")
	return cmd
}

// progressPrinter renders poll progress: a carriage-return overwritten line
// on a TTY, one line per progress change otherwise.
func progressPrinter(w io.Writer) build.ProgressFunc {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = terminal.IsTTY(f)
	}
	lastProgress := -1
	return func(st api.BuildStatus) {
		if tty {
			fmt.Fprintf(w, "\r%s %3d%%  ", buildStatusColor(st.Status), st.Progress)
			if st.Terminal() {
				fmt.Fprintln(w)
			}
			return
		}
		if st.Progress != lastProgress {
			lastProgress = st.Progress
			fmt.Fprintf(w, "%s %d%%\n", st.Status, st.Progress)
		}
	}
}

func newPackageListCmd(a *app) *cobra.Command {
	var (
		page       int
		size       int
		customerID int64
		status     string
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List package builds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			builds, totalPages, err := a.apiClient().ListBuilds(cmd.Context(), api.BuildListParams{
				Page:       page,
				Size:       size,
				CustomerID: customerID,
				Status:     status,
			})
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(a.stdout, builds)
			}
			renderBuildTable(a.stdout, builds)
			pageFooter(a.stdout, len(builds), page, totalPages)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "page number (zero-indexed)")
	cmd.Flags().IntVar(&size, "size", 0, "page size")
	cmd.Flags().Int64Var(&customerID, "customer", 0, "filter by customer id")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (BUILDING|SUCCESS|FAILED)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newPackageGetCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "get <id-or-hash>",
		Short: "Show one package build",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				b   *api.Build
				err error
			)
			if id, idErr := parseID(args[0]); idErr == nil {
				b, err = a.apiClient().GetBuild(cmd.Context(), id)
			} else {
				b, err = a.apiClient().GetBuildByHash(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(a.stdout, b)
			}
			renderBuildDetail(a.stdout, b)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newPackageStatusCmd(a *app) *cobra.Command {
	var (
		watch  bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "status <hash>",
		Short: "Show a build's progress by hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash := args[0]
			st, err := a.apiClient().GetBuildStatusByHash(cmd.Context(), hash)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(a.stdout, st)
			}
			if !watch || st.Terminal() {
				renderBuildStatus(a.stdout, st)
				return nil
			}
			final, err := a.watchBuild(cmd.Context(), hash, progressPrinter(a.stdout))
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s✓%s build succeeded (%s)\n", ansiGreen, ansiReset, formatSize(final.TotalSize))
			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "poll until the build completes")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

// watchBuild polls one build that was submitted earlier. The poll loop is
// hand-rolled here because the orchestrator only tracks builds it submitted.
func (a *app) watchBuild(ctx context.Context, hash string, onProgress build.ProgressFunc) (*api.Build, error) {
	client := a.apiClient()
	ticker := time.NewTicker(a.cfg.PollInterval())
	defer ticker.Stop()
	for {
		st, err := client.GetBuildStatusByHash(ctx, hash)
		if err != nil {
			return nil, err
		}
		if onProgress != nil {
			onProgress(*st)
		}
		switch st.Status {
		case api.BuildStatusSuccess:
			return client.GetBuildByHash(ctx, hash)
		case api.BuildStatusFailed:
			if msg := strings.TrimSpace(st.ErrorMessage); msg != "" {
				return nil, fmt.Errorf("%w: %s", build.ErrBuildFailed, msg)
			}
			return nil, build.ErrBuildFailed
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func newPackageDownloadCmd(a *app) *cobra.Command {
	var outputDir string
	cmd := &cobra.Command{
		Use:   "download <hash>",
		Short: "Download a built package by hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := outputDir
			if dir == "" {
				dir = a.cfg.Builder.OutputDir
			}
			path, size, err := build.DownloadTo(cmd.Context(), a.apiClient(), args[0], dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s✓%s package written to %s (%s)\n", ansiGreen, ansiReset, path, formatSize(size))
			return nil
		},
	}
	cmd.Flags().StringVar(&outputDir, "output", "", "directory for the downloaded package")
	return cmd
}

func newPackageBuilderCmd(a *app) *cobra.Command {
	var (
		customerID int64
		projectID  int64
	)
	cmd := &cobra.Command{
		Use:   "builder",
		Short: "Interactive package builder",
		Long:  "Full-screen interactive builder: pick add-ons and versions from the catalog, flip the TLS and Keycloak toggles, then build and download without leaving the terminal.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := ui.BuilderOptions{
				Client:       a.apiClient(),
				PollInterval: a.cfg.PollInterval(),
				Namespace:    a.cfg.Builder.Namespace,
				OutputDir:    a.cfg.Builder.OutputDir,
				CreatedBy:    localUser(),
			}
			if customerID > 0 {
				opts.CustomerID = &customerID
			}
			if projectID > 0 {
				opts.ProjectID = &projectID
			}
			return ui.RunBuilder(cmd.Context(), opts)
		},
	}
	cmd.Flags().Int64Var(&customerID, "customer", 0, "customer id to build for")
	cmd.Flags().Int64Var(&projectID, "project", 0, "project id to build for")
	return cmd
}

func splitSpecs(specs []string) []string {
	var out []string
	for _, s := range specs {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func renderBuildTable(w io.Writer, builds []api.Build) {
	if len(builds) == 0 {
		fmt.Fprintln(w, "No builds found.")
		return
	}
	fmt.Fprintf(w, "%s%-6s %-16s %-16s %-28s %-10s %-10s %s%s\n",
		ansiBold, "ID", "HASH", "NAMESPACE", "DOMAIN", "SIZE", "STATUS", "CREATED", ansiReset)
	for _, b := range builds {
		size := "-"
		if b.TotalSize > 0 {
			size = formatSize(b.TotalSize)
		}
		fmt.Fprintf(w, "%-6d %-16s %-16s %-28s %-10s %-10s %s\n",
			b.ID, trunc(b.BuildHash, 16), orDash(b.Namespace), trunc(orDash(b.Domain), 28),
			size, buildStatusColor(b.Status), orDash(b.CreatedAt))
	}
}

func renderBuildDetail(w io.Writer, b *api.Build) {
	fmt.Fprintf(w, "%sbuild %s%s (id %d)\n", ansiBold, b.BuildHash, ansiReset, b.ID)
	fmt.Fprintf(w, "  Status:     %s", buildStatusColor(b.Status))
	if b.Status == api.BuildStatusBuilding {
		fmt.Fprintf(w, " (%d%%)", b.Progress)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Namespace:  %s\n", orDash(b.Namespace))
	fmt.Fprintf(w, "  Domain:     %s\n", orDash(b.Domain))
	fmt.Fprintf(w, "  TLS:        %s    Keycloak: %s\n", boolMark(b.TLSEnabled), boolMark(b.Keycloak))
	fmt.Fprintf(w, "  Deploy env: %s\n", orDash(b.DeployEnv))
	fmt.Fprintf(w, "  Registry:   %s\n", orDash(b.RegistryURL))
	if b.TotalSize > 0 {
		fmt.Fprintf(w, "  Size:       %s\n", formatSize(b.TotalSize))
	}
	if addons := b.SelectedAddonList(); len(addons) > 0 {
		fmt.Fprintln(w, "  Add-ons:")
		for _, ad := range addons {
			version := ad.Version
			if version == "" {
				version = "latest"
			}
			fmt.Fprintf(w, "    - %s (%s)\n", ad.AddonName, version)
		}
	}
	if b.ErrorMessage != "" {
		fmt.Fprintf(w, "  Error:      %s%s%s\n", ansiRed, b.ErrorMessage, ansiReset)
	}
	if b.CreatedBy != "" || b.CreatedAt != "" {
		fmt.Fprintf(w, "  Created:    %s %s\n", orDash(b.CreatedAt), orDash(b.CreatedBy))
	}
}

func renderBuildStatus(w io.Writer, st *api.BuildStatus) {
	fmt.Fprintf(w, "%s  %d%%\n", buildStatusColor(st.Status), st.Progress)
	if st.ErrorMessage != "" {
		fmt.Fprintf(w, "%serror:%s %s\n", ansiRed, ansiReset, st.ErrorMessage)
	}
}
