package cli

import (
	"fmt"
	"io"
	"os/user"

	"github.com/devplatform/dpcli/internal/api"
	"github.com/spf13/cobra"
)

func newCertCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cert",
		Aliases: []string{"certs", "certificate", "certificates"},
		Short:   "Track TLS certificates and expiry",
		GroupID: "platform",
	}
	cmd.AddCommand(
		newCertListCmd(a),
		newCertGetCmd(a),
		newCertExpiringCmd(a),
		newCertCreateCmd(a),
		newCertUpdateCmd(a),
		newCertRenewCmd(a),
		newCertDeactivateCmd(a),
	)
	return cmd
}

func newCertListCmd(a *app) *cobra.Command {
	var (
		page       int
		size       int
		customerID int64
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List certificate records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			certs, totalPages, err := a.apiClient().ListCertificates(cmd.Context(), api.CertListParams{
				Page:       page,
				Size:       size,
				CustomerID: customerID,
			})
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(a.stdout, certs)
			}
			renderCertTable(a.stdout, certs)
			pageFooter(a.stdout, len(certs), page, totalPages)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "page number (zero-indexed)")
	cmd.Flags().IntVar(&size, "size", 0, "page size")
	cmd.Flags().Int64Var(&customerID, "customer", 0, "filter by customer id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newCertGetCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one certificate record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			cert, err := a.apiClient().GetCertificate(cmd.Context(), id)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(a.stdout, cert)
			}
			renderCertDetail(a.stdout, cert)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newCertExpiringCmd(a *app) *cobra.Command {
	var (
		days   int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "expiring",
		Short: "List certificates expiring within a window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			certs, err := a.apiClient().ExpiringCertificates(cmd.Context(), days)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(a.stdout, certs)
			}
			if len(certs) == 0 {
				fmt.Fprintf(a.stdout, "No certificates expire within %d days.\n", days)
				return nil
			}
			renderCertTable(a.stdout, certs)
			fmt.Fprintf(a.stdout, "\n%d certificate(s) expiring within %d days\n", len(certs), days)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "expiry window in days")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newCertCreateCmd(a *app) *cobra.Command {
	var in api.Certificate
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a certificate record",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.CustomerID <= 0 || in.Domain == "" || in.ExpiresAt == "" {
				return fmt.Errorf("--customer, --domain and --expires are required")
			}
			cert, err := a.apiClient().CreateCertificate(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s✓%s certificate for %s registered (id %d)\n", ansiGreen, ansiReset, cert.Domain, cert.ID)
			return nil
		},
	}
	addCertFlags(cmd, &in)
	return cmd
}

func newCertUpdateCmd(a *app) *cobra.Command {
	var in api.Certificate
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a certificate record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			current, err := a.apiClient().GetCertificate(cmd.Context(), id)
			if err != nil {
				return err
			}
			merged := *current
			overlayCert(cmd, &merged, in)
			cert, err := a.apiClient().UpdateCertificate(cmd.Context(), id, merged)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s✓%s certificate %s updated\n", ansiGreen, ansiReset, cert.Domain)
			return nil
		},
	}
	addCertFlags(cmd, &in)
	return cmd
}

func newCertRenewCmd(a *app) *cobra.Command {
	var (
		newExpiry string
		memo      string
	)
	cmd := &cobra.Command{
		Use:   "renew <id>",
		Short: "Record a certificate renewal",
		Long:  "Record a renewal: a new expiry date plus who renewed and when. The original record is kept; nothing is deleted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if newExpiry == "" {
				return fmt.Errorf("--expires is required")
			}
			cert, err := a.apiClient().RenewCertificate(cmd.Context(), id, api.CertRenewal{
				NewExpiresAt: newExpiry,
				RenewedBy:    localUser(),
				Memo:         memo,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s✓%s certificate %s renewed, now expires %s (%s)\n",
				ansiGreen, ansiReset, cert.Domain, cert.ExpiresAt, expiryBadge(cert.DaysUntilExpiry))
			return nil
		},
	}
	cmd.Flags().StringVar(&newExpiry, "expires", "", "new expiry date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&memo, "memo", "", "renewal note")
	return cmd
}

func newCertDeactivateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "deactivate <id>",
		Aliases: []string{"delete", "rm"},
		Short:   "Deactivate a certificate record (soft delete)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !a.confirm(fmt.Sprintf("Deactivate certificate %d?", id)) {
				fmt.Fprintln(a.stdout, "aborted")
				return nil
			}
			if err := a.apiClient().DeactivateCertificate(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s✓%s certificate %d deactivated\n", ansiGreen, ansiReset, id)
			return nil
		},
	}
}

func addCertFlags(cmd *cobra.Command, in *api.Certificate) {
	cmd.Flags().Int64Var(&in.CustomerID, "customer", 0, "customer id")
	cmd.Flags().StringVar(&in.Domain, "domain", "", "certificate domain")
	cmd.Flags().StringVar(&in.Issuer, "issuer", "", "issuing CA")
	cmd.Flags().StringVar(&in.CertType, "type", "", "certificate type (LETS_ENCRYPT|SELF_SIGNED|CA_SIGNED|WILDCARD)")
	cmd.Flags().StringVar(&in.IssuedAt, "issued", "", "issue date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&in.ExpiresAt, "expires", "", "expiry date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&in.AutoRenew, "auto-renew", false, "mark as auto-renewing")
	cmd.Flags().StringVar(&in.Memo, "memo", "", "free-form note")
}

func overlayCert(cmd *cobra.Command, dst *api.Certificate, src api.Certificate) {
	set := cmd.Flags().Changed
	if set("customer") {
		dst.CustomerID = src.CustomerID
	}
	if set("domain") {
		dst.Domain = src.Domain
	}
	if set("issuer") {
		dst.Issuer = src.Issuer
	}
	if set("type") {
		dst.CertType = src.CertType
	}
	if set("issued") {
		dst.IssuedAt = src.IssuedAt
	}
	if set("expires") {
		dst.ExpiresAt = src.ExpiresAt
	}
	if set("auto-renew") {
		dst.AutoRenew = src.AutoRenew
	}
	if set("memo") {
		dst.Memo = src.Memo
	}
}

func renderCertTable(w io.Writer, certs []api.Certificate) {
	if len(certs) == 0 {
		fmt.Fprintln(w, "No certificates found.")
		return
	}
	fmt.Fprintf(w, "%s%-6s %-30s %-18s %-14s %-12s %-10s %s%s\n",
		ansiBold, "ID", "DOMAIN", "CUSTOMER", "TYPE", "EXPIRES", "AUTO", "EXPIRY", ansiReset)
	for _, c := range certs {
		fmt.Fprintf(w, "%-6d %-30s %-18s %-14s %-12s %-10s %s\n",
			c.ID, trunc(c.Domain, 30), trunc(orDash(c.CustomerName), 18),
			orDash(c.CertType), c.ExpiresAt, boolMark(c.AutoRenew),
			expiryBadge(c.DaysUntilExpiry))
	}
}

func renderCertDetail(w io.Writer, c *api.Certificate) {
	fmt.Fprintf(w, "%s%s%s (id %d)\n", ansiBold, c.Domain, ansiReset, c.ID)
	fmt.Fprintf(w, "  Customer:   %s (id %d)\n", orDash(c.CustomerName), c.CustomerID)
	fmt.Fprintf(w, "  Type:       %s\n", orDash(c.CertType))
	fmt.Fprintf(w, "  Issuer:     %s\n", orDash(c.Issuer))
	fmt.Fprintf(w, "  Issued:     %s\n", orDash(c.IssuedAt))
	fmt.Fprintf(w, "  Expires:    %s (%s)\n", c.ExpiresAt, expiryBadge(c.DaysUntilExpiry))
	fmt.Fprintf(w, "  Auto-renew: %s\n", boolMark(c.AutoRenew))
	if c.Memo != "" {
		fmt.Fprintf(w, "  Memo:       %s\n", c.Memo)
	}
}

// localUser returns the operating-system username, falling back to the tool
// name when it cannot be resolved.
func localUser() string {
	u, err := user.Current()
	if err != nil || u.Username == "" {
		return "dpcli"
	}
	return u.Username
}
