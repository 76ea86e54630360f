package cli

import (
	"fmt"

	"github.com/aalvaropc/appserve/internal/infra/config"
	"github.com/spf13/cobra"
)

func configCmd(flags *configFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSettings(cmd, flags)
			if err != nil {
				return err
			}

			b, err := config.Marshal(s.cfg)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if s.source != "" {
				fmt.Fprintf(w, "# source: %s\n", s.source)
			}
			_, err = w.Write(b)
			return err
		},
	}
}
