package cli

import (
	"fmt"

	"github.com/aalvaropc/appserve/internal/usecase"
	"github.com/spf13/cobra"
)

func validateCmd(flags *configFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration and site directory (no listener)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(cmd, flags)
			if err != nil {
				return err
			}

			if err := usecase.NewValidateSite().Execute(cmd.Context(), s.cfg); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}
}
