package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/provider/sqlitecatalog"
)

var seedDSN string

var seedCmd = &cobra.Command{
	Use:   "seed <catalog.yaml>",
	Short: "Load a YAML catalog into the SQLite catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn := seedDSN
		if dsn == "" {
			dsn = cfg.Provider.DSN
		}
		if dsn == "" {
			return fmt.Errorf("no catalog database: set provider.dsn or pass --dsn")
		}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		c, err := sqlitecatalog.Open(dsn,
			sqlitecatalog.WithImageViewType(cfg.Provider.ImageViewType),
			sqlitecatalog.WithLogger(logger))
		if err != nil {
			return err
		}
		defer c.Close()

		fx, err := c.SeedYAML(cmd.Context(), f)
		if err != nil {
			return err
		}
		logger.Info("Seeded catalog", zap.String("dsn", dsn), zap.Int("products", len(fx.Products)))
		fmt.Fprintf(cmd.OutOrStdout(), "loaded %d products and %d top-level categories into %s\n",
			len(fx.Products), len(fx.Categories), dsn)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedDSN, "dsn", "", "catalog database (defaults to provider.dsn)")
}
