package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configWrite string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after defaults and environment overrides are
applied. With --write the same YAML is saved to a file instead.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		if configWrite != "" {
			if err := cfg.SaveConfig(configWrite); err != nil {
				return err
			}

			log.Info("✅ config written", "path", configWrite, "config", cfg.String())

			return nil
		}

		data, err := cfg.Marshal()
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), string(data))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().StringVarP(&configWrite, "write", "w", "", "Save the effective config to this path")
}
