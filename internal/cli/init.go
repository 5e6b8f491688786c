package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tracklet/trackd/internal/app"
	"github.com/tracklet/trackd/internal/usecase"
)

// newInitCommand creates the init command.
func newInitCommand(c *app.Container) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:     "init",
		Short:   "Register this repository with trackd",
		GroupID: groupSetup,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc := c.InitProjectUseCase()
			out, err := uc.Execute(cmd.Context(), usecase.InitProjectInput{
				Path: c.Paths.RepoRoot,
				Name: name,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized project %q (%s)\nData directory: %s\n",
				out.Project.Name, shortID(out.Project.ID), out.DataDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Project name (defaults to the directory name)")
	return cmd
}
