package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/devplatform/dpcli/internal/api"
	"github.com/spf13/cobra"
)

func newAddonCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "addon",
		Aliases: []string{"addons"},
		Short:   "Manage the Helm add-on catalog",
		GroupID: "catalog",
	}
	cmd.AddCommand(
		newAddonListCmd(a),
		newAddonGetCmd(a),
		newAddonCreateCmd(a),
		newAddonUpdateCmd(a),
		newAddonDeactivateCmd(a),
		newAddonActivateCmd(a),
		newAddonVersionsCmd(a),
	)
	return cmd
}

func newAddonListCmd(a *app) *cobra.Command {
	var (
		category        string
		includeInactive bool
		asJSON          bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if category != "" && !validCategory(category) {
				return fmt.Errorf("unknown category %q (valid: %s)", category, strings.Join(api.AddonCategories, ", "))
			}
			addons, err := a.apiClient().ListAddons(cmd.Context(), api.AddonListParams{
				Category:        category,
				IncludeInactive: includeInactive,
			})
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(a.stdout, addons)
			}
			renderAddonTable(a.stdout, addons)
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "filter by category ("+strings.Join(api.AddonCategories, "|")+")")
	cmd.Flags().BoolVar(&includeInactive, "all", false, "include deactivated entries")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newAddonGetCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "get <id>",
		Aliases: []string{"info"},
		Short:   "Show one catalog entry",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			addon, err := a.apiClient().GetAddon(cmd.Context(), id)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(a.stdout, addon)
			}
			renderAddonDetail(a.stdout, addon)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newAddonCreateCmd(a *app) *cobra.Command {
	var in api.Addon
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a catalog entry",
		Long:  "Register a Helm add-on in the catalog. The system name set with --name is the stable identifier and cannot be changed later.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Name == "" || in.DisplayName == "" || in.Category == "" {
				return fmt.Errorf("--name, --display-name and --category are required")
			}
			if !validCategory(in.Category) {
				return fmt.Errorf("unknown category %q (valid: %s)", in.Category, strings.Join(api.AddonCategories, ", "))
			}
			addon, err := a.apiClient().CreateAddon(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s✓%s add-on %q registered (id %d)\n", ansiGreen, ansiReset, addon.Name, addon.ID)
			return nil
		},
	}
	addAddonFlags(cmd, &in)
	return cmd
}

func newAddonUpdateCmd(a *app) *cobra.Command {
	var in api.Addon
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("name") {
				return fmt.Errorf("the system name is immutable; use --display-name to rename")
			}
			current, err := a.apiClient().GetAddon(cmd.Context(), id)
			if err != nil {
				return err
			}
			merged := *current
			overlayAddon(cmd, &merged, in)
			if !validCategory(merged.Category) {
				return fmt.Errorf("unknown category %q (valid: %s)", merged.Category, strings.Join(api.AddonCategories, ", "))
			}
			addon, err := a.apiClient().UpdateAddon(cmd.Context(), id, merged)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s✓%s add-on %q updated\n", ansiGreen, ansiReset, addon.Name)
			return nil
		},
	}
	addAddonFlags(cmd, &in)
	return cmd
}

func newAddonDeactivateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "deactivate <id>",
		Aliases: []string{"delete", "rm"},
		Short:   "Deactivate a catalog entry (soft delete)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !a.confirm(fmt.Sprintf("Deactivate add-on %d?", id)) {
				fmt.Fprintln(a.stdout, "aborted")
				return nil
			}
			if err := a.apiClient().DeactivateAddon(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s✓%s add-on %d deactivated\n", ansiGreen, ansiReset, id)
			return nil
		},
	}
}

func newAddonActivateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "activate <id>",
		Short: "Re-activate a deactivated catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.apiClient().ActivateAddon(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s✓%s add-on %d activated\n", ansiGreen, ansiReset, id)
			return nil
		},
	}
}

// --- versions subgroup ---------------------------------------------------

func newAddonVersionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "versions",
		Aliases: []string{"version"},
		Short:   "Manage add-on version history",
	}
	cmd.AddCommand(
		newAddonVersionListCmd(a),
		newAddonVersionAddCmd(a),
		newAddonVersionDeleteCmd(a),
	)
	return cmd
}

func newAddonVersionListCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list <addon-id>",
		Short: "List versions of an add-on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addonID, err := parseID(args[0])
			if err != nil {
				return err
			}
			versions, err := a.apiClient().ListAddonVersions(cmd.Context(), addonID)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(a.stdout, versions)
			}
			renderAddonVersionTable(a.stdout, versions)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newAddonVersionAddCmd(a *app) *cobra.Command {
	var in api.AddonVersion
	cmd := &cobra.Command{
		Use:   "add <addon-id>",
		Short: "Register a new version under an add-on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addonID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if in.Version == "" {
				return fmt.Errorf("--version is required")
			}
			v, err := a.apiClient().AddAddonVersion(cmd.Context(), addonID, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s✓%s version %s added (id %d)\n", ansiGreen, ansiReset, v.Version, v.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Version, "version", "", "application version")
	cmd.Flags().StringVar(&in.HelmChartVersion, "chart-version", "", "Helm chart version")
	cmd.Flags().StringVar(&in.ImageTags, "image-tags", "", "JSON-encoded image tag list")
	cmd.Flags().BoolVar(&in.Latest, "latest", false, "mark this version as latest")
	return cmd
}

func newAddonVersionDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <version-id>",
		Aliases: []string{"rm"},
		Short:   "Delete one version record",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			versionID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !a.confirm(fmt.Sprintf("Delete version record %d?", versionID)) {
				fmt.Fprintln(a.stdout, "aborted")
				return nil
			}
			if err := a.apiClient().DeleteAddonVersion(cmd.Context(), versionID); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s✓%s version record %d deleted\n", ansiGreen, ansiReset, versionID)
			return nil
		},
	}
}

func addAddonFlags(cmd *cobra.Command, in *api.Addon) {
	cmd.Flags().StringVar(&in.Name, "name", "", "immutable system name (e.g. cert-manager)")
	cmd.Flags().StringVar(&in.DisplayName, "display-name", "", "human-readable name")
	cmd.Flags().StringVar(&in.Category, "category", "", "category ("+strings.Join(api.AddonCategories, "|")+")")
	cmd.Flags().StringVar(&in.Description, "description", "", "free-form description")
	cmd.Flags().StringVar(&in.IconURL, "icon-url", "", "icon URL")
	cmd.Flags().StringVar(&in.HelmRepoURL, "helm-repo", "", "Helm repository URL")
	cmd.Flags().StringVar(&in.HelmChartName, "helm-chart", "", "Helm chart name")
	cmd.Flags().StringVar(&in.UpstreamImages, "upstream-images", "", "JSON-encoded upstream image list")
	cmd.Flags().StringVar(&in.Dependencies, "dependencies", "", "JSON-encoded dependency name list")
	cmd.Flags().BoolVar(&in.KeycloakEnabled, "keycloak", false, "supports Keycloak SSO integration")
	cmd.Flags().StringVar(&in.KeycloakTemplate, "keycloak-template", "", "Keycloak client template")
	cmd.Flags().IntVar(&in.InstallOrder, "install-order", 0, "install ordering weight")
}

func overlayAddon(cmd *cobra.Command, dst *api.Addon, src api.Addon) {
	set := cmd.Flags().Changed
	if set("display-name") {
		dst.DisplayName = src.DisplayName
	}
	if set("category") {
		dst.Category = src.Category
	}
	if set("description") {
		dst.Description = src.Description
	}
	if set("icon-url") {
		dst.IconURL = src.IconURL
	}
	if set("helm-repo") {
		dst.HelmRepoURL = src.HelmRepoURL
	}
	if set("helm-chart") {
		dst.HelmChartName = src.HelmChartName
	}
	if set("upstream-images") {
		dst.UpstreamImages = src.UpstreamImages
	}
	if set("dependencies") {
		dst.Dependencies = src.Dependencies
	}
	if set("keycloak") {
		dst.KeycloakEnabled = src.KeycloakEnabled
	}
	if set("keycloak-template") {
		dst.KeycloakTemplate = src.KeycloakTemplate
	}
	if set("install-order") {
		dst.InstallOrder = src.InstallOrder
	}
}

func validCategory(c string) bool {
	for _, known := range api.AddonCategories {
		if c == known {
			return true
		}
	}
	return false
}

func renderAddonTable(w io.Writer, addons []api.Addon) {
	if len(addons) == 0 {
		fmt.Fprintln(w, "No add-ons found.")
		return
	}
	fmt.Fprintf(w, "%s%-6s %-20s %-22s %-12s %-10s %-9s %s%s\n",
		ansiBold, "ID", "NAME", "DISPLAY NAME", "CATEGORY", "LATEST", "KEYCLOAK", "STATUS", ansiReset)
	for _, ad := range addons {
		fmt.Fprintf(w, "%-6d %-20s %-22s %-12s %-10s %-9s %s\n",
			ad.ID, trunc(ad.Name, 20), trunc(ad.DisplayName, 22), ad.Category,
			orDash(ad.LatestVersion), boolMark(ad.KeycloakEnabled), activeMark(ad.Active))
	}
	fmt.Fprintf(w, "\n%d add-on(s)\n", len(addons))
}

func renderAddonDetail(w io.Writer, ad *api.Addon) {
	fmt.Fprintf(w, "%s%s%s (%s, id %d)\n", ansiBold, ad.DisplayName, ansiReset, ad.Name, ad.ID)
	fmt.Fprintf(w, "  Category:    %s\n", ad.Category)
	fmt.Fprintf(w, "  Status:      %s\n", activeMark(ad.Active))
	fmt.Fprintf(w, "  Latest:      %s\n", orDash(ad.LatestVersion))
	fmt.Fprintf(w, "  Helm repo:   %s\n", orDash(ad.HelmRepoURL))
	fmt.Fprintf(w, "  Helm chart:  %s\n", orDash(ad.HelmChartName))
	fmt.Fprintf(w, "  Keycloak:    %s\n", boolMark(ad.KeycloakEnabled))
	if ad.InstallOrder > 0 {
		fmt.Fprintf(w, "  Order:       %d\n", ad.InstallOrder)
	}
	if deps := ad.DependencyList(); len(deps) > 0 {
		fmt.Fprintf(w, "  Depends on:  %s\n", strings.Join(deps, ", "))
	}
	if imgs := ad.UpstreamImageList(); len(imgs) > 0 {
		fmt.Fprintln(w, "  Images:")
		for _, img := range imgs {
			fmt.Fprintf(w, "    - %s\n", img)
		}
	}
	if ad.Description != "" {
		fmt.Fprintf(w, "  Description: %s\n", ad.Description)
	}
}

func renderAddonVersionTable(w io.Writer, versions []api.AddonVersion) {
	if len(versions) == 0 {
		fmt.Fprintln(w, "No versions recorded.")
		return
	}
	fmt.Fprintf(w, "%s%-6s %-16s %-16s %-8s %s%s\n",
		ansiBold, "ID", "VERSION", "CHART", "LATEST", "SYNCED", ansiReset)
	for _, v := range versions {
		latest := "-"
		if v.Latest {
			latest = ansiGreen + "latest" + ansiReset
		}
		fmt.Fprintf(w, "%-6d %-16s %-16s %-8s %s\n",
			v.ID, v.Version, orDash(v.HelmChartVersion), latest, orDash(v.SyncedAt))
	}
}
