package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/ui"
)

var (
	valueKey   string
	valuePager bool
	valueSync  bool
)

var valueCmd = &cobra.Command{
	Use:   "value",
	Short: "Print the stored field value",
	Long: `Prints the value currently stored for the field.

With --sync the stored value is resolved against the catalog first and
rewritten when items no longer exist.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(cfg, logger, valueKey)
		if err != nil {
			return err
		}
		defer a.Close()

		if valueSync {
			b, err := a.newBinding()
			if err != nil {
				return err
			}
			defer b.Close()
			report, err := b.Hydrate(ctx)
			if err != nil {
				return err
			}
			for _, id := range report.Dropped {
				fmt.Fprintf(cmd.ErrOrStderr(), "dropping %s: no longer in the catalog\n", id)
			}
			if err := b.Sync(ctx); err != nil {
				return err
			}
		}

		raw, err := a.store.GetValue(ctx)
		if err != nil {
			return err
		}
		content := ui.FormatValue(raw)
		if valuePager {
			return ui.RunPager(content)
		}
		fmt.Fprintln(cmd.OutOrStdout(), content)
		return nil
	},
}

func init() {
	valueCmd.Flags().StringVar(&valueKey, "key", "", "field key (defaults to store.key)")
	valueCmd.Flags().BoolVar(&valuePager, "pager", false, "show the value in a pager")
	valueCmd.Flags().BoolVar(&valueSync, "sync", false, "drop items missing from the catalog")
}
