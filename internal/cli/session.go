package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tracklet/trackd/internal/app"
	"github.com/tracklet/trackd/internal/usecase"
)

// newSessionCommand creates the session command group.
func newSessionCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "session",
		Short:   "Manage audit sessions",
		GroupID: groupWorkflow,
	}
	cmd.AddCommand(
		newSessionStartCommand(c),
		newSessionEndCommand(c),
		newSessionListCommand(c),
	)
	return cmd
}

func newSessionStartCommand(c *app.Container) *cobra.Command {
	var environment string

	cmd := &cobra.Command{
		Use:   "start <ticket>",
		Short: "Open an audit session on a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticketID, err := resolveTicketID(c, args[0])
			if err != nil {
				return err
			}
			out, err := c.StartSessionUseCase().Execute(cmd.Context(), usecase.StartSessionInput{
				TicketID:    ticketID,
				Environment: environment,
			})
			if err != nil {
				return err
			}
			if out.Ended > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: closed %d stale session(s)\n", out.Ended)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s started\n", shortID(out.Session.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&environment, "environment", "", "Environment label")
	return cmd
}

func newSessionEndCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "end <session>",
		Short: "Close an audit session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.EndSessionUseCase().Execute(cmd.Context(), usecase.EndSessionInput{SessionID: args[0]})
			if err != nil {
				return err
			}
			if out.AlreadyEnded {
				fmt.Fprintf(cmd.OutOrStdout(), "Session %s was already ended\n", shortID(out.Session.ID))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Session %s ended\n", shortID(out.Session.ID))
			return nil
		},
	}
	return cmd
}

func newSessionListCommand(c *app.Container) *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "list <ticket>",
		Short: "List a ticket's audit sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticketID, err := resolveTicketID(c, args[0])
			if err != nil {
				return err
			}
			out, err := c.ListSessionsUseCase().Execute(cmd.Context(), usecase.ListSessionsInput{
				TicketID:   ticketID,
				ActiveOnly: activeOnly,
			})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATE\tSTARTED\tENVIRONMENT")
			for _, s := range out.Sessions {
				state := "active"
				if !s.IsActive() {
					state = "ended"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					shortID(s.ID), state, s.Started.Format("2006-01-02 15:04"), s.Environment)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "Only show active sessions")
	return cmd
}
