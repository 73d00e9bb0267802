package cli

import (
	"fmt"
	"io"

	"github.com/devplatform/dpcli/internal/api"
	"github.com/spf13/cobra"
)

func newNotificationCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notification",
		Aliases: []string{"notifications", "notif"},
		Short:   "Read operator notifications",
		GroupID: "platform",
	}
	cmd.AddCommand(
		newNotificationListCmd(a),
		newNotificationCountCmd(a),
		newNotificationReadCmd(a),
		newNotificationReadAllCmd(a),
	)
	return cmd
}

func newNotificationListCmd(a *app) *cobra.Command {
	var (
		unreadOnly bool
		limit      int
		asJSON     bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notifications, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			notifications, err := a.apiClient().ListNotifications(cmd.Context(), api.NotificationListParams{
				UnreadOnly: unreadOnly,
				Limit:      limit,
			})
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(a.stdout, notifications)
			}
			renderNotificationList(a.stdout, notifications)
			return nil
		},
	}
	cmd.Flags().BoolVar(&unreadOnly, "unread", false, "only unread notifications")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum notifications to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func newNotificationCountCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "count",
		Aliases: []string{"unread-count"},
		Short:   "Show the unread notification count",
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := a.apiClient().UnreadNotificationCount(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%d unread\n", n)
			return nil
		},
	}
}

func newNotificationReadCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "read [id]",
		Short: "Mark notifications read",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				if err := a.apiClient().MarkAllNotificationsRead(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "%s✓%s all notifications marked read\n", ansiGreen, ansiReset)
				return nil
			}
			if len(args) == 0 {
				return fmt.Errorf("an id or --all is required")
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.apiClient().MarkNotificationRead(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s✓%s notification %d marked read\n", ansiGreen, ansiReset, id)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "mark every notification read")
	return cmd
}

func newNotificationReadAllCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification read",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.apiClient().MarkAllNotificationsRead(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "%s✓%s all notifications marked read\n", ansiGreen, ansiReset)
			return nil
		},
	}
}

func renderNotificationList(w io.Writer, notifications []api.Notification) {
	if len(notifications) == 0 {
		fmt.Fprintln(w, "No notifications.")
		return
	}
	for _, n := range notifications {
		marker := ansiGray + "  " + ansiReset
		if !n.Read {
			marker = ansiCyan + "● " + ansiReset
		}
		fmt.Fprintf(w, "%s%-6d %s%s%s", marker, n.ID, ansiBold, n.Title, ansiReset)
		if n.CreatedAt != "" {
			fmt.Fprintf(w, "  %s%s%s", ansiGray, n.CreatedAt, ansiReset)
		}
		fmt.Fprintln(w)
		if n.Message != "" {
			fmt.Fprintf(w, "         %s\n", trunc(n.Message, 100))
		}
	}
}
