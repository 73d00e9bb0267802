// Package cli wires the dpcli command tree: one command group per backend
// resource, all IO through injected reader/writers so commands are fully
// testable against fake backends.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/devplatform/dpcli/internal/api"
	dcfg "github.com/devplatform/dpcli/internal/config"
	"github.com/devplatform/dpcli/internal/version"
	"github.com/spf13/cobra"
)

type app struct {
	apiURL string
	token  string
	yes    bool

	cfg    *dcfg.Config
	cfgErr error

	clientOnce sync.Once
	client     *api.Client

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func NewRootCommand() *cobra.Command {
	return newRootCommand(os.Stdin, os.Stdout, os.Stderr)
}

func NewRootCommandWithIO(in io.Reader, out, errOut io.Writer) *cobra.Command {
	return newRootCommand(in, out, errOut)
}

func newRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	cfg, cfgErr := dcfg.Load()
	if cfg == nil {
		cfg = dcfg.Default()
	}
	cfg.MergeEnvOverrides()

	a := &app{
		cfg:    cfg,
		cfgErr: cfgErr,
		stdin:  in,
		stdout: out,
		stderr: errOut,
	}

	cmd := &cobra.Command{
		Use:           "dpcli",
		Short:         "Admin console for the DevOps enablement platform",
		Long:          "dpcli manages customer accounts and projects, the add-on catalog, TLS certificates, and deployment package builds against the platform backend.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
	}

	cmd.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "backend API base URL (default: $DPCLI_API_URL or api.url from config)")
	cmd.PersistentFlags().StringVar(&a.token, "token", "", "bearer token for backend auth (default: $DPCLI_TOKEN)")
	cmd.PersistentFlags().BoolVar(&a.yes, "yes", false, "skip confirmation prompts for destructive commands")

	cmd.AddCommand(
		newCustomerCmd(a),
		newProjectCmd(a),
		newAddonCmd(a),
		newCertCmd(a),
		newPackageCmd(a),
		newDashboardCmd(a),
		newNotificationCmd(a),
		newHarborCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)

	cmd.AddGroup(
		&cobra.Group{ID: "accounts", Title: "Accounts:"},
		&cobra.Group{ID: "catalog", Title: "Catalog:"},
		&cobra.Group{ID: "delivery", Title: "Delivery:"},
		&cobra.Group{ID: "platform", Title: "Platform:"},
	)

	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if a.cfgErr != nil {
			return fmt.Errorf("invalid %s: %w", configPathSafe(), a.cfgErr)
		}
		return nil
	}

	cmd.SetVersionTemplate(fmt.Sprintf("dpcli {{.Version}} (commit %s, built %s)\n", version.Commit, version.BuildDate))
	cmd.SetErrPrefix("dpcli: ")
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	return cmd
}

// apiClient builds the configured API client once. Flag values take
// precedence over env, which the config loader has already applied over
// the file.
func (a *app) apiClient() *api.Client {
	a.clientOnce.Do(func() {
		url := strings.TrimSpace(a.apiURL)
		if url == "" {
			url = a.cfg.API.URL
		}
		token := strings.TrimSpace(a.token)
		if token == "" {
			token = a.cfg.API.Token
		}
		a.client = api.New(api.Config{
			BaseURL:         strings.TrimRight(url, "/"),
			Token:           token,
			Timeout:         a.cfg.APITimeout(),
			DownloadTimeout: a.cfg.APIDownloadTimeout(),
		})
	})
	return a.client
}

// confirm asks a [y/N] question on stdout and reads the answer from the
// injected stdin. --yes short-circuits to true.
func (a *app) confirm(prompt string) bool {
	if a.yes {
		return true
	}
	fmt.Fprintf(a.stdout, "%s [y/N] ", prompt)
	var answer string
	fmt.Fscan(a.stdin, &answer)
	return strings.EqualFold(strings.TrimSpace(answer), "y")
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "dpcli %s (commit %s, built %s)\n", version.Version, version.Commit, version.BuildDate)
			return nil
		},
	}
}

func configPathSafe() string {
	p, err := dcfg.FilePath()
	if err != nil {
		return "~/.dpcli/config.yaml"
	}
	return p
}
