package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sweeney/cellar-pump/internal/config"
	"github.com/sweeney/cellar-pump/internal/logic"
	"github.com/sweeney/cellar-pump/internal/storage"
)

func newPresetsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the preset catalog and the saved selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			return printPresets(cmd, cfg)
		},
	}
}

func printPresets(cmd *cobra.Command, cfg config.Config) error {
	var store logic.ByteStore = storage.NewMemory()
	if cfg.Storage != "" {
		db, err := openSQLite(cfg.Storage)
		if err != nil {
			return err
		}
		defer db.Close()
		store = db
	}

	catalog := cfg.Catalog()
	index, result, err := logic.NewPresetStore(store, len(catalog)).Load()
	if err != nil {
		return fmt.Errorf("load preset selection: %w", err)
	}

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\tINDEX\tLABEL\tON\tINTERVAL")
	for i, p := range catalog {
		mark := ""
		if i == index {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%v\t%v\n", mark, i, p.Label, p.OnDuration, p.CycleInterval)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	switch result {
	case logic.LoadedSaved:
		fmt.Fprintf(out, "selection: %d (saved)\n", index)
	case logic.LoadedOutOfRange:
		fmt.Fprintf(out, "selection: %d (saved index out of range)\n", index)
	default:
		fmt.Fprintf(out, "selection: %d (default)\n", index)
	}
	return nil
}
