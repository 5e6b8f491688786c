package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tracklet/trackd/internal/app"
	"github.com/tracklet/trackd/internal/usecase"
)

// newTicketCommand creates the ticket command group.
func newTicketCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "ticket",
		Short:   "Create and inspect tickets",
		GroupID: groupPlanning,
	}
	cmd.AddCommand(
		newTicketNewCommand(c),
		newTicketListCommand(c),
		newTicketShowCommand(c),
		newTicketImportCommand(c),
	)
	return cmd
}

func newTicketNewCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Title       string
		Description string
		Epic        string
		Tags        []string
		Priority    int
	}

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a ticket in backlog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			project, err := currentProject(c)
			if err != nil {
				return err
			}

			input := usecase.NewTicketInput{
				ProjectID:   project.ID,
				Title:       opts.Title,
				Description: opts.Description,
				Tags:        opts.Tags,
				Priority:    opts.Priority,
			}
			if opts.Epic != "" {
				epicID, err := resolveEpicID(c, opts.Epic)
				if err != nil {
					return err
				}
				input.EpicID = epicID
			}

			out, err := c.NewTicketUseCase().Execute(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created ticket %s: %s\n", shortID(out.Ticket.ID), out.Ticket.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "Ticket title (required)")
	cmd.Flags().StringVar(&opts.Description, "description", "", "Ticket description")
	cmd.Flags().StringVar(&opts.Epic, "epic", "", "Owning epic (id or short id)")
	cmd.Flags().StringSliceVar(&opts.Tags, "tag", nil, "Tag (repeatable)")
	cmd.Flags().IntVar(&opts.Priority, "priority", 0, "Priority (higher is more urgent)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newTicketListCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Epic   string
		Status string
	}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tickets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input := usecase.ListTicketsInput{Status: opts.Status}
			if opts.Epic != "" {
				epicID, err := resolveEpicID(c, opts.Epic)
				if err != nil {
					return err
				}
				input.EpicID = epicID
			} else {
				project, err := currentProject(c)
				if err != nil {
					return err
				}
				input.ProjectID = project.ID
			}

			out, err := c.ListTicketsUseCase().Execute(cmd.Context(), input)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tITER\tTITLE")
			for _, row := range out.Rows {
				iter := "-"
				if row.State != nil {
					iter = fmt.Sprintf("%d", row.State.ReviewIteration)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					shortID(row.Ticket.ID), row.Ticket.Status.Display(), iter, row.Ticket.Title)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&opts.Epic, "epic", "", "Restrict to one epic")
	cmd.Flags().StringVar(&opts.Status, "status", "", "Restrict to one status")
	return cmd
}

func newTicketShowCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <ticket>",
		Short: "Show a ticket with findings and sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ticketID, err := resolveTicketID(c, args[0])
			if err != nil {
				return err
			}
			out, err := c.ShowTicketUseCase().Execute(cmd.Context(), usecase.ShowTicketInput{TicketID: ticketID})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Ticket:  %s (%s)\n", out.Ticket.Title, shortID(out.Ticket.ID))
			fmt.Fprintf(w, "Status:  %s\n", out.Ticket.Status.Display())
			if out.Ticket.BranchName != "" {
				fmt.Fprintf(w, "Branch:  %s\n", out.Ticket.BranchName)
			}
			if out.Epic != nil {
				fmt.Fprintf(w, "Epic:    %s (%s)\n", out.Epic.Title, shortID(out.Epic.ID))
			}
			if len(out.Ticket.Extras.Tags) > 0 {
				fmt.Fprintf(w, "Tags:    %s\n", strings.Join(out.Ticket.Extras.Tags, ", "))
			}
			if out.State != nil {
				fmt.Fprintf(w, "Phase:   %s (iteration %d, findings %d raised / %d fixed)\n",
					out.State.Phase, out.State.ReviewIteration, out.State.FindingsRaised, out.State.FindingsFixed)
			}
			if out.Ticket.Description != "" {
				fmt.Fprintf(w, "\n%s\n", out.Ticket.Description)
			}
			if len(out.Findings) > 0 {
				fmt.Fprintf(w, "\nFindings:\n")
				for _, f := range out.Findings {
					fmt.Fprintf(w, "  [%s/%s] %s: %s\n", f.Severity, f.FixStatus, shortID(f.ID), f.Description)
				}
			}
			if len(out.Sessions) > 0 {
				fmt.Fprintf(w, "\nSessions:\n")
				for _, s := range out.Sessions {
					state := "active"
					if !s.IsActive() {
						state = "ended"
					}
					fmt.Fprintf(w, "  %s (%s, started %s)\n", shortID(s.ID), state, s.Started.Format("2006-01-02 15:04"))
				}
			}
			return nil
		},
	}
	return cmd
}

func newTicketImportCommand(c *app.Container) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import tickets from a YAML stream",
		Long: `Import tickets from a multi-document YAML file. The whole file is
imported in one transaction; a bad document imports nothing.

File format:
  title: Add login form
  tags: [auth]
  priority: 1
  ---
  title: Add logout button
  epic: e1e2e3e4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			project, err := currentProject(c)
			if err != nil {
				return err
			}
			f, err := os.Open(from)
			if err != nil {
				return fmt.Errorf("open %s: %w", from, err)
			}
			defer f.Close()

			out, err := c.ImportTicketsUseCase().Execute(cmd.Context(), usecase.ImportTicketsInput{
				Reader:    f,
				ProjectID: project.ID,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d ticket(s)\n", len(out.Tickets))
			for _, t := range out.Tickets {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s  %s\n", shortID(t.ID), t.Title)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "YAML file to import (required)")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}
