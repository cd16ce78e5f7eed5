package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lcalzada-xor/xsslab/pkg/catalog"
	"github.com/lcalzada-xor/xsslab/pkg/output"
	"github.com/lcalzada-xor/xsslab/pkg/presets"
	"github.com/lcalzada-xor/xsslab/pkg/selection"
	"github.com/lcalzada-xor/xsslab/pkg/sinks"
)

func newCatalogCmd(a *app) *cobra.Command {
	var format, filter string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the output techniques and their safety rating",
		Example: `  xsslab catalog -o table
  xsslab catalog --filter "jquery insecure"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !output.ValidFormat(format) {
				return fmt.Errorf("unknown format %q", format)
			}
			c := catalog.Default()
			if filter == "" {
				fmt.Fprintln(cmd.OutOrStdout(), output.FormatCatalog(c, format))
				return nil
			}

			var ds []*catalog.Descriptor
			for _, it := range selection.Filter(selection.OutputItems(c), filter) {
				ds = append(ds, it.Descriptor)
			}
			a.log.V("%d descriptors match %q", len(ds), filter)
			fmt.Fprintln(cmd.OutOrStdout(), output.FormatDescriptors(ds, format))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", output.FormatHuman, "output format: human, json, table")
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "only descriptors matching every term (name, context, technology, quality)")
	return cmd
}

func newPresetsCmd(a *app) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List the canned payloads",
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := presets.Groups()
			if err != nil {
				return err
			}
			for _, it := range selection.Filter(selection.PresetItems(groups), filter) {
				fmt.Fprintf(cmd.OutOrStdout(), "%-15s %-28s %s\n", it.Context, it.Name, it.Preset.URL)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "only presets matching every term")
	return cmd
}

func newSourceCmd(a *app) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "source [key]",
		Short: "Show the code of a processor or sink function",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if list || len(args) == 0 {
				for _, key := range sinks.Keys() {
					fmt.Fprintln(cmd.OutOrStdout(), key)
				}
				return nil
			}
			src, err := sinks.Source(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), src)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list every function key")
	return cmd
}
