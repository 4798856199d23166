package runcmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"publist/src/cmd/publist/cmdutil"
	"publist/src/internal/pipeline"
	"publist/src/internal/render"
)

// New returns the run command: collect, fetch, cache and render in one pass.
func New(deps cmdutil.Deps) *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:          "run",
		Short:        "Build the publication list from ORCID, Scopus and local PDFs",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdutil.LoadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			log := cmdutil.Logger(cmd, cfg)
			opts := []pipeline.Option{pipeline.WithLogger(log)}
			if !quiet {
				opts = append(opts, pipeline.WithReporter(pipeline.NewBarReporter(cmd.ErrOrStderr())))
			}
			driver := pipeline.New(pipeline.Options{
				Sources:   cmdutil.Sources(cfg, deps),
				CachePath: cfg.ResolvedCachePath(),
				RawDir:    cfg.RawDir(),
				Basename:  cfg.OutputBasename,
				Highlight: cfg.HighlightName,
				Workers:   cfg.Workers,
			}, cmdutil.DOIClient(cfg, deps), opts...)

			res, err := driver.Run(cmd.Context())
			if err != nil {
				return err
			}
			written := append([]string{}, res.RawFiles...)
			written = append(written, cfg.ResolvedCachePath())

			mainXLSX := filepath.Join(cfg.OutputDir, cfg.OutputBasename+".xlsx")
			paths, err := render.Write(cfg.OutputDir, cfg.OutputBasename, res.Rows, render.Options{
				NewTab:      cfg.NewTabLinks,
				Spreadsheet: filepath.Clean(cfg.ResolvedCachePath()) != filepath.Clean(mainXLSX),
			})
			written = append(written, paths...)
			if err != nil {
				return err
			}
			paths, err = render.WriteSubsets(cfg.OutputDir, cfg.OutputBasename, res.Rows, render.DefaultSubsets, cfg.NewTabLinks)
			written = append(written, paths...)
			if err != nil {
				return err
			}
			if err := cmdutil.Wrote(cmd, written...); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d identifiers: %d fetched, %d cached, %d without data, %d malformed\n",
				len(res.IDs), res.Fetched, res.Skipped, res.Missing, res.Failed)
			fmt.Fprintln(out, "types:")
			for _, tc := range render.TypeSummary(res.Rows) {
				fmt.Fprintf(out, "  %-24s %d\n", tc.Type, tc.Count)
			}

			if !cfg.Git.Commit {
				return nil
			}
			o, err := cmdutil.Commit(cmd.Context(), cfg, deps, written)
			if err != nil {
				if strings.Contains(err.Error(), "not a git repository") {
					fmt.Fprintln(cmd.ErrOrStderr(), "warning: skipping git commit (not a git repository)")
					return nil
				}
				return err
			}
			if o.Committed {
				fmt.Fprintf(out, "committed %d files\n", len(written))
			}
			return nil
		},
	}
	cmdutil.AddSourceFlags(cmd)
	cmdutil.AddOutputFlags(cmd)
	cmdutil.AddFetchFlags(cmd)
	cmd.Flags().Bool(cmdutil.FlagCommit, false, "Commit the written files with git")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Hide the progress line")
	return cmd
}
