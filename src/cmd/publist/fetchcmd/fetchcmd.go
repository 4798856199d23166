package fetchcmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"publist/src/cmd/publist/cmdutil"
	"publist/src/internal/doi"
	"publist/src/internal/ids"
	"publist/src/internal/normalize"
	"publist/src/internal/schema"
)

// New returns the fetch command, which resolves DOIs on doi.org and prints
// the normalized record (citeproc) or the formatted text (bibtex, apa).
func New(deps cmdutil.Deps) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:          "fetch DOI...",
		Short:        "Resolve DOIs and print their metadata",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := doi.ParseFormat(format)
			if err != nil {
				return err
			}
			cfg, err := cmdutil.LoadConfig(cmd)
			if err != nil {
				return err
			}
			client := cmdutil.DOIClient(cfg, deps)
			norm := normalize.Normalizer{Highlight: cfg.HighlightName}
			out := cmd.OutOrStdout()
			for _, id := range ids.Merge(args) {
				res, err := client.Fetch(cmd.Context(), id, f)
				if errors.Is(err, doi.ErrNotFound) {
					fmt.Fprintf(cmd.ErrOrStderr(), "no data for %s\n", id)
					continue
				}
				if err != nil {
					return err
				}
				if f != doi.FormatCiteproc {
					fmt.Fprintln(out, strings.TrimSpace(res.Text))
					continue
				}
				rec, err := norm.Normalize(id, res.Metadata)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
					continue
				}
				b, err := yaml.Marshal([]schema.Row{{DOI: id, Record: rec}})
				if err != nil {
					return err
				}
				if _, err := out.Write(b); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "citeproc", "Output format: citeproc, bibtex or apa")
	cmdutil.AddFetchFlags(cmd)
	return cmd
}
