package commands

import (
	"github.com/spf13/cobra"

	"github.com/DrSkyle/avtan/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		out, err := config.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}
