package cli

import (
	"fmt"

	dcfg "github.com/devplatform/dpcli/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Manage dpcli configuration",
		GroupID: "platform",
	}
	cmd.AddCommand(
		newConfigViewCmd(a),
		newConfigGetCmd(a),
		newConfigSetCmd(a),
		newConfigPathCmd(a),
	)
	return cmd
}

func newConfigViewCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				out string
				err error
			)
			if asJSON {
				out, err = a.cfg.ToJSON()
			} else {
				out, err = a.cfg.ToYAML()
			}
			if err != nil {
				return err
			}
			fmt.Fprint(a.stdout, out)
			if asJSON {
				fmt.Fprintln(a.stdout)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newConfigGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := a.cfg.GetByKey(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, v)
			return nil
		},
	}
}

func newConfigSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set one configuration value and save the file",
		Long:  "Set a configuration value, e.g.\n\n  dpcli config set api.url https://platform.example.com/api\n  dpcli config set builder.namespace devops",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.SetByKey(args[0], args[1]); err != nil {
				return err
			}
			if err := dcfg.Save(a.cfg); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s✓%s %s set\n", ansiGreen, ansiReset, args[0])
			return nil
		},
	}
}

func newConfigPathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(a.stdout, configPathSafe())
			return nil
		},
	}
}
