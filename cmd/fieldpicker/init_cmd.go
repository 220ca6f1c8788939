package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to " + config.FileName,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := config.NewConfigService(configDir)
		if err := svc.Save(cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", config.FileName)
		return nil
	},
}
