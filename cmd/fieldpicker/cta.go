package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/cta"
)

var (
	ctaKey   string
	ctaText  string
	ctaImage string
)

var ctaCmd = &cobra.Command{
	Use:   "cta <product|category|extUrl> [id|slug|url]",
	Short: "Set a call-to-action field",
	Long: `Points a call-to-action field at a product, a category or an external URL.

  fieldpicker cta product 25503585M
  fieldpicker cta category womens-clothing --text "Shop now"
  fieldpicker cta extUrl https://example.com --image https://example.com/b.png

Products fill in their name and image; --text and --image override them.
Switching the kind starts over with a blank value.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		kind, err := cta.ParseKind(args[0])
		if err != nil {
			return err
		}

		key := ctaKey
		if key == "" {
			key = cfg.Store.Key + ".cta"
		}
		a, err := newApp(cfg, logger, key)
		if err != nil {
			return err
		}
		defer a.Close()

		e := cta.New(a.store, a.provider,
			cta.WithClassifier(a.classifier()),
			cta.WithLogger(logger),
			cta.WithBus(a.bus),
			cta.WithHeightPolicy(heightPolicyFor(cfg.UI)))

		v, err := e.Load(ctx)
		if err != nil {
			return err
		}
		if v.ExtIDType != kind {
			if _, err := e.SetKind(ctx, kind); err != nil {
				return err
			}
		}

		if len(args) == 2 {
			ref := args[1]
			switch kind {
			case cta.KindProduct:
				_, err = e.LookupProduct(ctx, ref)
			case cta.KindCategory:
				c, lerr := lookupCategory(ctx, e.Categories, ref)
				if lerr != nil {
					return lerr
				}
				_, err = e.ChooseCategory(ctx, c)
			case cta.KindExtURL:
				_, err = e.SetExternalURL(ctx, ref)
			}
			if err != nil {
				return err
			}
		}

		if cmd.Flags().Changed("text") {
			if _, err := e.SetText(ctx, ctaText); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("image") {
			if _, err := e.SetImage(ctx, ctaImage); err != nil {
				return err
			}
		}

		out, err := json.MarshalIndent(e.Value(), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	ctaCmd.Flags().StringVar(&ctaKey, "key", "", "field key (defaults to store.key + \".cta\")")
	ctaCmd.Flags().StringVar(&ctaText, "text", "", "button or alt text")
	ctaCmd.Flags().StringVar(&ctaImage, "image", "", "image URL")
}
