package rendercmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"publist/src/cmd/publist/cmdutil"
	"publist/src/internal/render"
	"publist/src/internal/store"
)

// New returns the render command, which rebuilds the markdown and HTML
// outputs from the cache table without any network access.
func New() *cobra.Command {
	var noSubsets bool
	cmd := &cobra.Command{
		Use:          "render",
		Short:        "Render the cached publication table to markdown and HTML",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdutil.LoadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.ValidateOutput(); err != nil {
				return err
			}
			tbl, err := store.Load(cfg.ResolvedCachePath())
			if err != nil {
				return err
			}
			rows := tbl.Sorted()
			mainXLSX := filepath.Join(cfg.OutputDir, cfg.OutputBasename+".xlsx")
			written, err := render.Write(cfg.OutputDir, cfg.OutputBasename, rows, render.Options{
				NewTab:      cfg.NewTabLinks,
				Spreadsheet: filepath.Clean(cfg.ResolvedCachePath()) != filepath.Clean(mainXLSX),
			})
			if err != nil {
				return err
			}
			if !noSubsets {
				paths, err := render.WriteSubsets(cfg.OutputDir, cfg.OutputBasename, rows, render.DefaultSubsets, cfg.NewTabLinks)
				written = append(written, paths...)
				if err != nil {
					return err
				}
			}
			return cmdutil.Wrote(cmd, written...)
		},
	}
	cmdutil.AddOutputFlags(cmd)
	cmd.Flags().BoolVar(&noSubsets, "no-subsets", false, "Skip the journals and books outputs")
	return cmd
}
