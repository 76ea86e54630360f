package cli

import (
	"fmt"
	"path/filepath"

	"github.com/aalvaropc/appserve/internal/infra/scaffold"
	"github.com/aalvaropc/appserve/internal/usecase"
	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	var path string
	var force bool

	c := &cobra.Command{
		Use:   "init",
		Short: "Scaffold appserve.yaml and a starter app directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			abs, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("invalid path: %w", err)
			}

			uc := usecase.NewInitSite(scaffold.NewInitializer())
			if err := uc.Execute(abs, force); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized appserve site in %s\n", abs)
			return nil
		},
	}

	c.Flags().StringVarP(&path, "path", "p", ".", "Directory to initialize")
	c.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing files")
	return c
}
