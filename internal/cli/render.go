package cli

// Shared render helpers: truncation, status coloring, JSON output, and the
// pagination footer used by every list command.

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/devplatform/dpcli/internal/api"
)

func trunc(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func activeMark(active bool) string {
	if active {
		return ansiGreen + "active" + ansiReset
	}
	return ansiGray + "inactive" + ansiReset
}

func boolMark(v bool) string {
	if v {
		return "yes"
	}
	return "-"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// buildStatusColor colors a build status cell.
func buildStatusColor(status string) string {
	switch strings.ToUpper(status) {
	case api.BuildStatusSuccess:
		return ansiGreen + status + ansiReset
	case api.BuildStatusFailed:
		return ansiRed + status + ansiReset
	case api.BuildStatusBuilding:
		return ansiCyan + status + ansiReset
	default:
		return status
	}
}

// expiryBadge renders a D-day cell colored by the expiry class.
func expiryBadge(days int) string {
	label := fmt.Sprintf("D-%d", days)
	switch api.ExpiryClass(days) {
	case "expired":
		return ansiRed + label + ansiReset
	case "warning":
		return ansiYellow + label + ansiReset
	default:
		return ansiGreen + label + ansiReset
	}
}

// syncStatusColor colors a sync-log status cell.
func syncStatusColor(status string) string {
	switch strings.ToUpper(status) {
	case "SUCCESS", "COMPLETED":
		return ansiGreen + status + ansiReset
	case "FAILED", "ERROR":
		return ansiRed + status + ansiReset
	case "IN_PROGRESS", "RUNNING":
		return ansiCyan + status + ansiReset
	default:
		return status
	}
}

// printJSON writes v as indented JSON, the machine-readable escape hatch of
// every list/detail command.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// pageFooter prints the "page X/Y" footer for paginated lists. Pages are
// zero-indexed on the wire, displayed one-indexed.
func pageFooter(w io.Writer, count, page, totalPages int) {
	if totalPages > 1 {
		fmt.Fprintf(w, "\n%d item(s) — page %d/%d\n", count, page+1, totalPages)
		return
	}
	fmt.Fprintf(w, "\n%d item(s)\n", count)
}

// formatSize renders a byte count in a human unit.
func formatSize(n int64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1f GiB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
