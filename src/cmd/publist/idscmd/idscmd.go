package idscmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"publist/src/cmd/publist/cmdutil"
	"publist/src/internal/config"
	"publist/src/internal/pipeline"
)

// New returns the ids command, which prints the merged DOI list without
// fetching any metadata.
func New(deps cmdutil.Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "ids",
		Short:        "List the merged DOIs of every configured source",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdutil.LoadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil && !errors.Is(err, config.ErrInvalidCachePath) {
				return err
			}
			d := pipeline.New(pipeline.Options{
				Sources:  cmdutil.Sources(cfg, deps),
				RawDir:   cfg.RawDir(),
				Basename: cfg.OutputBasename,
			}, nil, pipeline.WithLogger(cmdutil.Logger(cmd, cfg)))
			list, files, err := d.Collect(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range list {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), id); err != nil {
					return err
				}
			}
			return cmdutil.Wrote(cmd, files...)
		},
	}
	cmdutil.AddSourceFlags(cmd)
	cmd.Flags().String(cmdutil.FlagBasename, "", "Base name of the raw record files")
	cmd.Flags().String(cmdutil.FlagOutputDir, "", "Directory for the raw record files")
	return cmd
}
