package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tracklet/trackd/internal/app"
	"github.com/tracklet/trackd/internal/usecase"
)

// newCompleteCommand creates the complete command.
func newCompleteCommand(c *app.Container) *cobra.Command {
	var summary string

	cmd := &cobra.Command{
		Use:     "complete <ticket>",
		Short:   "Hand a ticket from implementation to AI review",
		GroupID: groupWorkflow,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticketID, err := resolveTicketID(c, args[0])
			if err != nil {
				return err
			}
			out, err := c.CompleteWorkUseCase().Execute(cmd.Context(), usecase.CompleteWorkInput{
				TicketID: ticketID,
				Summary:  summary,
			})
			if err != nil {
				return err
			}

			printWarnings(cmd, out.Warnings)
			w := cmd.OutOrStdout()
			switch {
			case out.AlreadyDone:
				fmt.Fprintf(w, "Ticket %s is already done; nothing to complete\n", shortID(out.Ticket.ID))
			case out.AlreadyInReview:
				fmt.Fprintf(w, "Ticket %s is already in AI review; submit findings or run 'trackd review demo'\n", shortID(out.Ticket.ID))
			case out.AlreadyInHumanReview:
				fmt.Fprintf(w, "Ticket %s is already in human review; awaiting human approval\n", shortID(out.Ticket.ID))
			default:
				fmt.Fprintf(w, "Ticket %s entered AI review (iteration %d)\n", shortID(out.Ticket.ID), out.ReviewIteration)
				if out.Diff != nil {
					fmt.Fprintf(w, "%d commit(s), %d file(s) changed against trunk\n", len(out.Diff.Commits), len(out.Diff.Files))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&summary, "summary", "", "Implementation summary for the audit log")
	return cmd
}
