package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/devplatform/dpcli/internal/api"
	"github.com/spf13/cobra"
)

func newCustomerCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "customer",
		Aliases: []string{"customers", "cust"},
		Short:   "Manage customer accounts",
		GroupID: "accounts",
	}
	cmd.AddCommand(
		newCustomerListCmd(a),
		newCustomerGetCmd(a),
		newCustomerCreateCmd(a),
		newCustomerUpdateCmd(a),
		newCustomerDeactivateCmd(a),
		newCustomerActivateCmd(a),
		newCustomerProjectsCmd(a),
	)
	return cmd
}

func newCustomerProjectsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "projects <id>",
		Short: "List the projects of a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			projects, err := a.apiClient().ListProjects(cmd.Context(), id)
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
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newCustomerListCmd(a *app) *cobra.Command {
	var (
		page    int
		size    int
		keyword string
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List customer accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			customers, totalPages, err := a.apiClient().ListCustomers(cmd.Context(), api.CustomerListParams{
				Page:    page,
				Size:    size,
				Keyword: keyword,
			})
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(a.stdout, customers)
			}
			renderCustomerTable(a.stdout, customers)
			pageFooter(a.stdout, len(customers), page, totalPages)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "page number (zero-indexed)")
	cmd.Flags().IntVar(&size, "size", 0, "page size")
	cmd.Flags().StringVar(&keyword, "keyword", "", "filter by name or code")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newCustomerGetCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one customer account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			cust, err := a.apiClient().GetCustomer(cmd.Context(), id)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(a.stdout, cust)
			}
			renderCustomerDetail(a.stdout, cust)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newCustomerCreateCmd(a *app) *cobra.Command {
	var in api.Customer
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a customer account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Name == "" || in.Code == "" {
				return fmt.Errorf("--name and --code are required")
			}
			cust, err := a.apiClient().CreateCustomer(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s✓%s customer %q created (id %d)\n", ansiGreen, ansiReset, cust.Name, cust.ID)
			return nil
		},
	}
	addCustomerFlags(cmd, &in)
	return cmd
}

func newCustomerUpdateCmd(a *app) *cobra.Command {
	var in api.Customer
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a customer account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			// Unset flags keep the stored values: start from the current
			// record and overlay only what the operator passed.
			current, err := a.apiClient().GetCustomer(cmd.Context(), id)
			if err != nil {
				return err
			}
			merged := *current
			overlayCustomer(cmd, &merged, in)
			cust, err := a.apiClient().UpdateCustomer(cmd.Context(), id, merged)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s✓%s customer %q updated\n", ansiGreen, ansiReset, cust.Name)
			return nil
		},
	}
	addCustomerFlags(cmd, &in)
	return cmd
}

func newCustomerDeactivateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "deactivate <id>",
		Aliases: []string{"delete", "rm"},
		Short:   "Deactivate a customer account (soft delete)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !a.confirm(fmt.Sprintf("Deactivate customer %d?", id)) {
				fmt.Fprintln(a.stdout, "aborted")
				return nil
			}
			if err := a.apiClient().DeactivateCustomer(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s✓%s customer %d deactivated\n", ansiGreen, ansiReset, id)
			return nil
		},
	}
}

func newCustomerActivateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "activate <id>",
		Short: "Re-activate a deactivated customer account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.apiClient().ActivateCustomer(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s✓%s customer %d activated\n", ansiGreen, ansiReset, id)
			return nil
		},
	}
}

func addCustomerFlags(cmd *cobra.Command, in *api.Customer) {
	cmd.Flags().StringVar(&in.Name, "name", "", "customer name")
	cmd.Flags().StringVar(&in.Code, "code", "", "short unique customer code")
	cmd.Flags().StringVar(&in.Environment, "environment", "", "deployment environment descriptor")
	cmd.Flags().StringVar(&in.K8sVersion, "k8s-version", "", "Kubernetes version in use")
	cmd.Flags().StringVar(&in.OS, "os", "", "node operating system")
	cmd.Flags().IntVar(&in.NodeCount, "node-count", 0, "cluster node count")
	cmd.Flags().StringVar(&in.StorageInfo, "storage", "", "storage descriptor")
	cmd.Flags().StringVar(&in.NetworkInfo, "network", "", "network descriptor")
	cmd.Flags().StringVar(&in.VPNInfo, "vpn", "", "VPN access descriptor")
	cmd.Flags().StringVar(&in.ContactName, "contact-name", "", "primary contact name")
	cmd.Flags().StringVar(&in.ContactEmail, "contact-email", "", "primary contact email")
	cmd.Flags().StringVar(&in.ContactPhone, "contact-phone", "", "primary contact phone")
}

// overlayCustomer copies only the fields whose flags were set on cmd.
func overlayCustomer(cmd *cobra.Command, dst *api.Customer, src api.Customer) {
	set := cmd.Flags().Changed
	if set("name") {
		dst.Name = src.Name
	}
	if set("code") {
		dst.Code = src.Code
	}
	if set("environment") {
		dst.Environment = src.Environment
	}
	if set("k8s-version") {
		dst.K8sVersion = src.K8sVersion
	}
	if set("os") {
		dst.OS = src.OS
	}
	if set("node-count") {
		dst.NodeCount = src.NodeCount
	}
	if set("storage") {
		dst.StorageInfo = src.StorageInfo
	}
	if set("network") {
		dst.NetworkInfo = src.NetworkInfo
	}
	if set("vpn") {
		dst.VPNInfo = src.VPNInfo
	}
	if set("contact-name") {
		dst.ContactName = src.ContactName
	}
	if set("contact-email") {
		dst.ContactEmail = src.ContactEmail
	}
	if set("contact-phone") {
		dst.ContactPhone = src.ContactPhone
	}
}

func renderCustomerTable(w io.Writer, customers []api.Customer) {
	if len(customers) == 0 {
		fmt.Fprintln(w, "No customers found.")
		return
	}
	fmt.Fprintf(w, "%s%-6s %-24s %-10s %-14s %-10s %-24s %s%s\n",
		ansiBold, "ID", "NAME", "CODE", "K8S", "NODES", "CONTACT", "STATUS", ansiReset)
	for _, c := range customers {
		nodes := "-"
		if c.NodeCount > 0 {
			nodes = strconv.Itoa(c.NodeCount)
		}
		fmt.Fprintf(w, "%-6d %-24s %-10s %-14s %-10s %-24s %s\n",
			c.ID, trunc(c.Name, 24), trunc(c.Code, 10), orDash(c.K8sVersion),
			nodes, trunc(orDash(c.ContactName), 24), activeMark(c.Active))
	}
}

func renderCustomerDetail(w io.Writer, c *api.Customer) {
	fmt.Fprintf(w, "%s%s%s (id %d)\n", ansiBold, c.Name, ansiReset, c.ID)
	fmt.Fprintf(w, "  Code:        %s\n", c.Code)
	fmt.Fprintf(w, "  Status:      %s\n", activeMark(c.Active))
	fmt.Fprintf(w, "  Environment: %s\n", orDash(c.Environment))
	fmt.Fprintf(w, "  Kubernetes:  %s\n", orDash(c.K8sVersion))
	fmt.Fprintf(w, "  OS:          %s\n", orDash(c.OS))
	if c.NodeCount > 0 {
		fmt.Fprintf(w, "  Nodes:       %d\n", c.NodeCount)
	}
	fmt.Fprintf(w, "  Storage:     %s\n", orDash(c.StorageInfo))
	fmt.Fprintf(w, "  Network:     %s\n", orDash(c.NetworkInfo))
	fmt.Fprintf(w, "  VPN:         %s\n", orDash(c.VPNInfo))
	fmt.Fprintf(w, "  Contact:     %s %s %s\n",
		orDash(c.ContactName), orDash(c.ContactEmail), orDash(c.ContactPhone))
	if c.CreatedAt != "" {
		fmt.Fprintf(w, "  Created:     %s\n", c.CreatedAt)
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
