package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tracklet/trackd/internal/app"
	"github.com/tracklet/trackd/internal/usecase"
)

// newEpicCommand creates the epic command group.
func newEpicCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "epic",
		Short:   "Create and start epics",
		GroupID: groupPlanning,
	}
	cmd.AddCommand(
		newEpicNewCommand(c),
		newEpicStartCommand(c),
	)
	return cmd
}

func newEpicNewCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Title       string
		Description string
		Isolation   string
	}

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create an epic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			project, err := currentProject(c)
			if err != nil {
				return err
			}
			out, err := c.NewEpicUseCase().Execute(cmd.Context(), usecase.NewEpicInput{
				ProjectID:   project.ID,
				Title:       opts.Title,
				Description: opts.Description,
				Isolation:   opts.Isolation,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created epic %s: %s (%s isolation)\n",
				shortID(out.Epic.ID), out.Epic.Title, out.Epic.Isolation)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Title, "title", "", "Epic title (required)")
	cmd.Flags().StringVar(&opts.Description, "description", "", "Epic description")
	cmd.Flags().StringVar(&opts.Isolation, "isolation", "", "Isolation mode: shared-branch (default) or worktree")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newEpicStartCommand(c *app.Container) *cobra.Command {
	var opts struct {
		PR      bool
		PRTitle string
		PRBody  string
	}

	cmd := &cobra.Command{
		Use:   "start <epic>",
		Short: "Resolve the epic's shared branch and optionally open a draft PR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			epicID, err := resolveEpicID(c, args[0])
			if err != nil {
				return err
			}
			out, err := c.StartEpicWorkUseCase().Execute(cmd.Context(), usecase.StartEpicWorkInput{
				EpicID:  epicID,
				OpenPR:  opts.PR,
				PRTitle: opts.PRTitle,
				PRBody:  opts.PRBody,
			})
			if err != nil {
				return err
			}

			printWarnings(cmd, out.Warnings)
			w := cmd.OutOrStdout()
			verb := "Reusing"
			if out.Created {
				verb = "Created"
			}
			fmt.Fprintf(w, "%s branch %s\n", verb, out.BranchName)
			if out.WorktreePath != "" {
				fmt.Fprintf(w, "Worktree: %s\n", out.WorktreePath)
			}
			fmt.Fprintf(w, "Progress: %d/%d tickets done\n", out.State.TicketsDone, out.State.TicketsTotal)
			if out.State.PRURL != "" {
				fmt.Fprintf(w, "Pull request: %s (%s)\n", out.State.PRURL, out.State.PRStatus)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.PR, "pr", false, "Push the branch and open a draft pull request")
	cmd.Flags().StringVar(&opts.PRTitle, "pr-title", "", "Pull request title (defaults to the epic title)")
	cmd.Flags().StringVar(&opts.PRBody, "pr-body", "", "Pull request body")
	return cmd
}
