package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/config"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/logging"
)

var (
	configDir string
	verbose   bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fieldpicker",
	Short: "Edit an ecommerce-backed content field from the terminal",
	Long: `fieldpicker edits one content field whose value references items of a
commerce catalog: a single product, a list of products, or the keyed
(variant-aware) forms of both.

The stored value is loaded and resolved against the catalog first, then
every change to the selection is written back as soon as it alters the
stored value.

Run without arguments to start the interactive picker.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.NewConfigService(configDir).Load()
		if err != nil {
			return err
		}
		if verbose {
			cfg.Log.Level = zapcore.DebugLevel.String()
		}
		logger, err = logging.New(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runPick,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "dir", "C", ".", "directory holding "+config.FileName)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	rootCmd.AddCommand(pickCmd, valueCmd, seedCmd, ctaCmd, initCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
