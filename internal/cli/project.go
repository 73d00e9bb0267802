package cli

import (
	"fmt"
	"io"

	"github.com/devplatform/dpcli/internal/api"
	"github.com/spf13/cobra"
)

func newProjectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"projects", "proj"},
		Short:   "Manage customer projects",
		GroupID: "accounts",
	}
	cmd.AddCommand(
		newProjectListCmd(a),
		newProjectGetCmd(a),
		newProjectCreateCmd(a),
		newProjectUpdateCmd(a),
		newProjectDeactivateCmd(a),
		newProjectActivateCmd(a),
	)
	return cmd
}

func newProjectListCmd(a *app) *cobra.Command {
	var (
		customerID int64
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects of a customer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if customerID <= 0 {
				return fmt.Errorf("--customer is required")
			}
			projects, err := a.apiClient().ListProjects(cmd.Context(), customerID)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(a.stdout, projects)
			}
			renderProjectTable(a.stdout, projects)
			return nil
		},
	}
	cmd.Flags().Int64Var(&customerID, "customer", 0, "customer id (required)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newProjectGetCmd(a *app) *cobra.Command {
	var (
		customerID int64
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if customerID <= 0 {
				return fmt.Errorf("--customer is required")
			}
			proj, err := a.apiClient().GetProject(cmd.Context(), customerID, id)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(a.stdout, proj)
			}
			renderProjectDetail(a.stdout, proj)
			return nil
		},
	}
	cmd.Flags().Int64Var(&customerID, "customer", 0, "customer id (required)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newProjectCreateCmd(a *app) *cobra.Command {
	var (
		customerID int64
		in         api.Project
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project under a customer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if customerID <= 0 {
				return fmt.Errorf("--customer is required")
			}
			if in.Name == "" {
				return fmt.Errorf("--name is required")
			}
			proj, err := a.apiClient().CreateProject(cmd.Context(), customerID, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s✓%s project %q created (id %d)\n", ansiGreen, ansiReset, proj.Name, proj.ID)
			return nil
		},
	}
	cmd.Flags().Int64Var(&customerID, "customer", 0, "customer id (required)")
	addProjectFlags(cmd, &in)
	return cmd
}

func newProjectUpdateCmd(a *app) *cobra.Command {
	var (
		customerID int64
		in         api.Project
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if customerID <= 0 {
				return fmt.Errorf("--customer is required")
			}
			current, err := a.apiClient().GetProject(cmd.Context(), customerID, id)
			if err != nil {
				return err
			}
			merged := *current
			overlayProject(cmd, &merged, in)
			proj, err := a.apiClient().UpdateProject(cmd.Context(), customerID, id, merged)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s✓%s project %q updated\n", ansiGreen, ansiReset, proj.Name)
			return nil
		},
	}
	cmd.Flags().Int64Var(&customerID, "customer", 0, "customer id (required)")
	addProjectFlags(cmd, &in)
	return cmd
}

func newProjectDeactivateCmd(a *app) *cobra.Command {
	var customerID int64
	cmd := &cobra.Command{
		Use:     "deactivate <id>",
		Aliases: []string{"delete", "rm"},
		Short:   "Deactivate a project (soft delete)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if customerID <= 0 {
				return fmt.Errorf("--customer is required")
			}
			if !a.confirm(fmt.Sprintf("Deactivate project %d?", id)) {
				fmt.Fprintln(a.stdout, "aborted")
				return nil
			}
			if err := a.apiClient().DeactivateProject(cmd.Context(), customerID, id); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s✓%s project %d deactivated\n", ansiGreen, ansiReset, id)
			return nil
		},
	}
	cmd.Flags().Int64Var(&customerID, "customer", 0, "customer id (required)")
	return cmd
}

func newProjectActivateCmd(a *app) *cobra.Command {
	var customerID int64
	cmd := &cobra.Command{
		Use:   "activate <id>",
		Short: "Re-activate a deactivated project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if customerID <= 0 {
				return fmt.Errorf("--customer is required")
			}
			if err := a.apiClient().ActivateProject(cmd.Context(), customerID, id); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s✓%s project %d activated\n", ansiGreen, ansiReset, id)
			return nil
		},
	}
	cmd.Flags().Int64Var(&customerID, "customer", 0, "customer id (required)")
	return cmd
}

func addProjectFlags(cmd *cobra.Command, in *api.Project) {
	cmd.Flags().StringVar(&in.Name, "name", "", "project name")
	cmd.Flags().StringVar(&in.Code, "code", "", "short project code")
	cmd.Flags().StringVar(&in.Description, "description", "", "free-form description")
	cmd.Flags().StringVar(&in.Namespace, "namespace", "", "target Kubernetes namespace")
	cmd.Flags().StringVar(&in.Domain, "domain", "", "base ingress domain")
	cmd.Flags().StringVar(&in.Environment, "environment", "", "deployment environment descriptor")
}

func overlayProject(cmd *cobra.Command, dst *api.Project, src api.Project) {
	set := cmd.Flags().Changed
	if set("name") {
		dst.Name = src.Name
	}
	if set("code") {
		dst.Code = src.Code
	}
	if set("description") {
		dst.Description = src.Description
	}
	if set("namespace") {
		dst.Namespace = src.Namespace
	}
	if set("domain") {
		dst.Domain = src.Domain
	}
	if set("environment") {
		dst.Environment = src.Environment
	}
}

func renderProjectTable(w io.Writer, projects []api.Project) {
	if len(projects) == 0 {
		fmt.Fprintln(w, "No projects found.")
		return
	}
	fmt.Fprintf(w, "%s%-6s %-24s %-10s %-16s %-28s %s%s\n",
		ansiBold, "ID", "NAME", "CODE", "NAMESPACE", "DOMAIN", "STATUS", ansiReset)
	for _, p := range projects {
		fmt.Fprintf(w, "%-6d %-24s %-10s %-16s %-28s %s\n",
			p.ID, trunc(p.Name, 24), trunc(orDash(p.Code), 10),
			orDash(p.Namespace), trunc(orDash(p.Domain), 28), activeMark(p.Active))
	}
	fmt.Fprintf(w, "\n%d project(s)\n", len(projects))
}

func renderProjectDetail(w io.Writer, p *api.Project) {
	fmt.Fprintf(w, "%s%s%s (id %d, customer %d)\n", ansiBold, p.Name, ansiReset, p.ID, p.CustomerID)
	fmt.Fprintf(w, "  Code:        %s\n", orDash(p.Code))
	fmt.Fprintf(w, "  Status:      %s\n", activeMark(p.Active))
	fmt.Fprintf(w, "  Namespace:   %s\n", orDash(p.Namespace))
	fmt.Fprintf(w, "  Domain:      %s\n", orDash(p.Domain))
	fmt.Fprintf(w, "  Environment: %s\n", orDash(p.Environment))
	if p.Description != "" {
		fmt.Fprintf(w, "  Description: %s\n", p.Description)
	}
}
