package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tracklet/trackd/internal/app"
	"github.com/tracklet/trackd/internal/usecase"
)

// newReviewCommand creates the review command group.
func newReviewCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "review",
		Short:   "Record findings and run the review gate",
		GroupID: groupReview,
	}
	cmd.AddCommand(
		newReviewSubmitCommand(c),
		newReviewFixCommand(c),
		newReviewCheckCommand(c),
		newReviewDemoCommand(c),
	)
	return cmd
}

func newReviewSubmitCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Reviewer    string
		Severity    string
		Category    string
		Description string
	}

	cmd := &cobra.Command{
		Use:   "submit <ticket>",
		Short: "Record a review finding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticketID, err := resolveTicketID(c, args[0])
			if err != nil {
				return err
			}
			out, err := c.SubmitFindingUseCase().Execute(cmd.Context(), usecase.SubmitFindingInput{
				TicketID:    ticketID,
				Reviewer:    opts.Reviewer,
				Severity:    opts.Severity,
				Category:    opts.Category,
				Description: opts.Description,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s finding %s\n", out.Finding.Severity, shortID(out.Finding.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Reviewer, "reviewer", "", "Reviewer or agent identifier")
	cmd.Flags().StringVar(&opts.Severity, "severity", "", "critical, major, minor, or suggestion (required)")
	cmd.Flags().StringVar(&opts.Category, "category", "", "Finding category")
	cmd.Flags().StringVar(&opts.Description, "description", "", "What is wrong (required)")
	_ = cmd.MarkFlagRequired("severity")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func newReviewFixCommand(c *app.Container) *cobra.Command {
	var fixDescription string

	cmd := &cobra.Command{
		Use:   "fix <finding>",
		Short: "Mark a finding as fixed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.MarkFindingFixedUseCase().Execute(cmd.Context(), usecase.MarkFindingFixedInput{
				FindingID:      args[0],
				FixDescription: fixDescription,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Finding %s marked fixed\n", shortID(out.Finding.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&fixDescription, "fix-description", "", "How the finding was addressed")
	return cmd
}

func newReviewCheckCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <ticket>",
		Short: "Report whether the ticket may enter human review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticketID, err := resolveTicketID(c, args[0])
			if err != nil {
				return err
			}
			out, err := c.CheckReviewUseCase().Execute(cmd.Context(), usecase.CheckReviewInput{TicketID: ticketID})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out.CanProceedToHumanReview {
				fmt.Fprintln(w, "Gate open: no blocking findings")
			} else {
				fmt.Fprintf(w, "Gate closed: %d critical, %d major finding(s) still open\n", out.OpenCritical, out.OpenMajor)
				for _, f := range out.OpenBlocking {
					fmt.Fprintf(w, "  [%s] %s: %s\n", f.Severity, shortID(f.ID), f.Description)
				}
			}
			if out.OpenMinor+out.OpenSuggestion > 0 {
				fmt.Fprintf(w, "Non-blocking: %d minor, %d suggestion(s) open\n", out.OpenMinor, out.OpenSuggestion)
			}
			return nil
		},
	}
	return cmd
}

func newReviewDemoCommand(c *app.Container) *cobra.Command {
	var steps []string

	cmd := &cobra.Command{
		Use:   "demo <ticket>",
		Short: "Generate the demo script and advance to human review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticketID, err := resolveTicketID(c, args[0])
			if err != nil {
				return err
			}
			out, err := c.GenerateDemoUseCase().Execute(cmd.Context(), usecase.GenerateDemoInput{
				TicketID: ticketID,
				Steps:    steps,
			})
			if err != nil {
				return err
			}

			printWarnings(cmd, out.Warnings)
			fmt.Fprint(cmd.OutOrStdout(), out.Script)
			fmt.Fprintf(cmd.ErrOrStderr(), "Ticket %s is now in human review\n", shortID(out.Ticket.ID))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&steps, "step", nil, "Verification step (repeat at least 3 times)")
	return cmd
}
