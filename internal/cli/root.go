// Package cli provides the command-line interface for trackd.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tracklet/trackd/internal/app"
)

// Command group IDs.
const (
	groupSetup    = "setup"
	groupPlanning = "planning"
	groupWorkflow = "workflow"
	groupReview   = "review"
)

// NewRootCommand creates the root command for trackd.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "trackd",
		Short: "Workflow orchestration for agent-driven development",
		Long: `trackd moves tickets and epics through a fixed lifecycle
(backlog -> ready -> in_progress -> ai_review -> human_review -> done),
coordinating the record store, the git working tree, and review findings
so that a failure in one leaves the others consistent.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if c != nil && c.LockWarning != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", c.LockWarning)
			}
		},
	}

	root.AddGroup(
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
		&cobra.Group{ID: groupPlanning, Title: "Planning Commands:"},
		&cobra.Group{ID: groupWorkflow, Title: "Workflow Commands:"},
		&cobra.Group{ID: groupReview, Title: "Review Commands:"},
	)

	root.AddCommand(
		newInitCommand(c),
		newTicketCommand(c),
		newEpicCommand(c),
		newStartCommand(c),
		newCompleteCommand(c),
		newReviewCommand(c),
		newSessionCommand(c),
	)

	return root
}

// printWarnings writes engine warnings to stderr so stdout stays parseable.
func printWarnings(cmd *cobra.Command, warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
	}
}
