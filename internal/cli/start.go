package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tracklet/trackd/internal/app"
	"github.com/tracklet/trackd/internal/usecase"
)

// newStartCommand creates the start command.
func newStartCommand(c *app.Container) *cobra.Command {
	var withSession bool
	var environment string

	cmd := &cobra.Command{
		Use:     "start <ticket>",
		Short:   "Move a ticket to in_progress on its working branch",
		GroupID: groupWorkflow,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticketID, err := resolveTicketID(c, args[0])
			if err != nil {
				return err
			}
			out, err := c.StartWorkUseCase().Execute(cmd.Context(), usecase.StartWorkInput{TicketID: ticketID})
			if err != nil {
				return err
			}

			printWarnings(cmd, out.Warnings)
			w := cmd.OutOrStdout()
			if out.AlreadyStarted {
				fmt.Fprintf(w, "Ticket %s is already in progress on %s\n", shortID(out.Ticket.ID), out.BranchName)
				return nil
			}

			verb := "Reusing"
			if out.Created {
				verb = "Created"
			}
			kind := "branch"
			if out.UsingEpicBranch {
				kind = "epic branch"
			}
			fmt.Fprintf(w, "%s %s %s\n", verb, kind, out.BranchName)
			fmt.Fprintf(w, "Ticket %s is now in progress\n", shortID(out.Ticket.ID))

			if withSession {
				sess, err := c.StartSessionUseCase().Execute(cmd.Context(), usecase.StartSessionInput{
					TicketID:    out.Ticket.ID,
					Environment: environment,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "Session %s started\n", shortID(sess.Session.ID))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withSession, "session", false, "Also open an audit session on the ticket")
	cmd.Flags().StringVar(&environment, "environment", "", "Environment label for the audit session")
	return cmd
}
