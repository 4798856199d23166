// Package cmdutil holds the configuration and client wiring shared by the
// publist subcommands.
package cmdutil

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"publist/src/internal/config"
	"publist/src/internal/doi"
	"publist/src/internal/gitutil"
	"publist/src/internal/httpx"
	"publist/src/internal/logger"
	"publist/src/internal/orcid"
	"publist/src/internal/pdfscan"
	"publist/src/internal/pipeline"
	"publist/src/internal/scopus"
)

// CommitFunc commits the written files.
type CommitFunc func(ctx context.Context, paths []string, message string) (gitutil.Outcome, error)

// Deps are the seams a command uses to reach the outside world.
type Deps struct {
	// HTTP replaces the HTTP client of every registry client when set.
	HTTP httpx.Doer
	// Commit replaces the git publisher when set.
	Commit CommitFunc
}

// Flag names shared across commands.
const (
	FlagConfig    = "config"
	FlagLogLevel  = "log-level"
	FlagOrcid     = "orcid"
	FlagScopus    = "scopus"
	FlagPDFDir    = "pdf-dir"
	FlagBasename  = "basename"
	FlagHighlight = "highlight"
	FlagOutputDir = "output-dir"
	FlagCache     = "cache"
	FlagWorkers   = "workers"
	FlagRate      = "rate"
	FlagSaveRaw   = "save-raw"
	FlagNewTab    = "new-tab"
	FlagCommit    = "commit"
)

// AddSourceFlags registers the identifier source flags.
func AddSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String(FlagOrcid, "", "ORCID iD of the researcher")
	cmd.Flags().String(FlagScopus, "", "Scopus author id (needs SCOPUS_API_KEY)")
	cmd.Flags().StringSlice(FlagPDFDir, nil, "Directory of PDFs to scan for DOIs (repeatable)")
	cmd.Flags().Bool(FlagSaveRaw, false, "Save raw registry records next to the outputs")
}

// AddOutputFlags registers the output and cache flags.
func AddOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String(FlagBasename, "", "Base name of the output files")
	cmd.Flags().String(FlagOutputDir, "", "Directory for the output files")
	cmd.Flags().String(FlagCache, "", "Cache table (.xlsx, .csv, .db); default {output-dir}/{basename}.xlsx")
	cmd.Flags().Bool(FlagNewTab, false, "Open links of the HTML output in a new tab")
}

// AddFetchFlags registers the resolver flags.
func AddFetchFlags(cmd *cobra.Command) {
	cmd.Flags().String(FlagHighlight, "", "Family name to emphasise in author lists")
	cmd.Flags().Int(FlagWorkers, 0, "Concurrent metadata requests")
	cmd.Flags().Float64(FlagRate, 0, "Maximum requests per second to each service (0 = unlimited)")
}

// LoadConfig loads .env, the config file named by --config and applies the
// flags the user set on cmd.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(""); err != nil {
		return nil, err
	}
	path, _ := cmd.Flags().GetString(FlagConfig)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	applyFlags(cmd, cfg)
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	fs := cmd.Flags()
	str := map[string]*string{
		FlagOrcid:     &cfg.OrcidID,
		FlagScopus:    &cfg.ScopusID,
		FlagBasename:  &cfg.OutputBasename,
		FlagHighlight: &cfg.HighlightName,
		FlagOutputDir: &cfg.OutputDir,
		FlagCache:     &cfg.CachePath,
		FlagLogLevel:  &cfg.LogLevel,
	}
	for name, dst := range str {
		if fs.Changed(name) {
			*dst, _ = fs.GetString(name)
		}
	}
	if fs.Changed(FlagPDFDir) {
		cfg.PDFDirs, _ = fs.GetStringSlice(FlagPDFDir)
	}
	if fs.Changed(FlagWorkers) {
		cfg.Workers, _ = fs.GetInt(FlagWorkers)
	}
	if fs.Changed(FlagRate) {
		cfg.RequestsPerSecond, _ = fs.GetFloat64(FlagRate)
	}
	for name, dst := range map[string]*bool{FlagSaveRaw: &cfg.SaveRaw, FlagNewTab: &cfg.NewTabLinks, FlagCommit: &cfg.Git.Commit} {
		if fs.Changed(name) {
			*dst, _ = fs.GetBool(name)
		}
	}
}

// Logger returns a logger on the command's stderr at the configured level.
func Logger(cmd *cobra.Command, cfg *config.Config) *logger.Logger {
	return logger.New(cmd.ErrOrStderr(), cfg.LogLevel)
}

// DOIClient builds the doi.org client.
func DOIClient(cfg *config.Config, deps Deps) *doi.Client {
	opts := []doi.Option{doi.WithTimeout(cfg.Timeout()), doi.WithRateLimit(cfg.RequestsPerSecond)}
	if deps.HTTP != nil {
		opts = append(opts, doi.WithHTTPClient(deps.HTTP))
	}
	return doi.NewClient(opts...)
}

// Sources builds one source per configured registry or PDF directory set.
func Sources(cfg *config.Config, deps Deps) []pipeline.Source {
	var out []pipeline.Source
	if cfg.OrcidID != "" {
		var opts []orcid.Option
		if deps.HTTP != nil {
			opts = append(opts, orcid.WithHTTPClient(deps.HTTP))
		}
		out = append(out, orcid.Source{Client: orcid.NewClient(opts...), ID: cfg.OrcidID})
	}
	if cfg.ScopusID != "" {
		opts := []scopus.ClientOption{scopus.WithAPIKey(cfg.ScopusAPIKey), scopus.WithRateLimit(cfg.RequestsPerSecond)}
		if deps.HTTP != nil {
			opts = append(opts, scopus.WithHTTPClient(deps.HTTP))
		}
		out = append(out, scopus.Source{Client: scopus.NewClient(opts...), AuthorID: cfg.ScopusID})
	}
	if len(cfg.PDFDirs) > 0 {
		out = append(out, pdfscan.Source{Dirs: cfg.PDFDirs})
	}
	return out
}

// Commit runs deps.Commit or a git publisher configured from cfg.
func Commit(ctx context.Context, cfg *config.Config, deps Deps, paths []string) (gitutil.Outcome, error) {
	if deps.Commit != nil {
		return deps.Commit(ctx, paths, cfg.Git.Message)
	}
	return gitutil.Publisher{Push: cfg.Git.Push}.Publish(ctx, paths, cfg.Git.Message)
}

// Wrote prints the conventional "wrote <path>" line for each path.
func Wrote(cmd *cobra.Command, paths ...string) error {
	for _, p := range paths {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", p); err != nil {
			return err
		}
	}
	return nil
}
