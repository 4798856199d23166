// Package pipeline drives a publication-list run: collect DOIs from every
// source, merge them, fetch and normalize what the cache lacks, then persist.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"publist/src/internal/doi"
	"publist/src/internal/ids"
	"publist/src/internal/logger"
	"publist/src/internal/normalize"
	"publist/src/internal/schema"
	"publist/src/internal/store"
)

// Fetcher returns resolver metadata for one DOI. doi.ErrNotFound marks a
// DOI without data; any other error except doi.ErrMalformed aborts the run.
type Fetcher interface {
	FetchMetadata(ctx context.Context, id string) (*doi.Metadata, error)
}

// Options configures a Driver.
type Options struct {
	Sources []Source
	// CachePath is the cache table file. Empty keeps the table in memory.
	CachePath string
	// RawDir receives "{source}-{Basename}.json" dumps when non-empty.
	RawDir   string
	Basename string
	// Highlight is the family name emphasised in author lists.
	Highlight string
	// Workers above 1 fetches that many DOIs concurrently.
	Workers int
}

// Result summarizes a run.
type Result struct {
	IDs      []string
	Rows     []schema.Row
	RawFiles []string
	Fetched  int
	Skipped  int
	Missing  int
	Failed   int
}

// Driver runs the pipeline.
type Driver struct {
	opts     Options
	fetcher  Fetcher
	norm     normalize.Normalizer
	reporter Reporter
	log      *logger.Logger

	mu  sync.Mutex
	res *Result
}

// Option customizes a Driver.
type Option func(*Driver)

// WithReporter sets the progress reporter.
func WithReporter(r Reporter) Option { return func(d *Driver) { d.reporter = r } }

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option { return func(d *Driver) { d.log = l } }

// New returns a Driver fetching through f.
func New(opts Options, f Fetcher, o ...Option) *Driver {
	d := &Driver{
		opts:     opts,
		fetcher:  f,
		norm:     normalize.Normalizer{Highlight: opts.Highlight},
		reporter: NopReporter{},
		log:      logger.Nop(),
	}
	for _, fn := range o {
		fn(d)
	}
	return d
}

// Collect gathers and merges the DOIs of every source, in source order.
// Raw payloads are written to RawDir and their paths returned.
func (d *Driver) Collect(ctx context.Context) ([]string, []string, error) {
	var (
		lists [][]string
		files []string
	)
	for _, s := range d.opts.Sources {
		col, err := s.Collect(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", s.Name(), err)
		}
		for _, w := range col.Warnings {
			d.log.Warn(w, "source", s.Name())
		}
		d.log.Info("collected identifiers", "source", s.Name(), "label", col.Label, "count", len(col.DOIs))
		lists = append(lists, col.DOIs)
		if d.opts.RawDir != "" && len(col.Raw) > 0 {
			path, err := d.saveRaw(s.Name(), col.Raw)
			if err != nil {
				return nil, nil, err
			}
			files = append(files, path)
		}
	}
	merged := ids.Merge(lists...)
	d.log.Debug("merged identifiers", "count", len(merged))
	return merged, files, nil
}

func (d *Driver) saveRaw(source string, raw []byte) (string, error) {
	if err := os.MkdirAll(d.opts.RawDir, 0o755); err != nil {
		return "", err
	}
	name := source + ".json"
	if d.opts.Basename != "" {
		name = source + "-" + d.opts.Basename + ".json"
	}
	path := filepath.Join(d.opts.RawDir, name)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("saving raw %s record: %w", source, err)
	}
	return path, nil
}

// Run executes a full pass. Cached DOIs are not fetched again, so a second
// run over the same sources issues no resolver requests. On a fetch error the
// records gathered so far are still persisted before the error is returned.
func (d *Driver) Run(ctx context.Context) (*Result, error) {
	list, files, err := d.Collect(ctx)
	if err != nil {
		return nil, err
	}
	return d.Process(ctx, list, files...)
}

// Process fetches the given DOIs into the cache and persists it.
func (d *Driver) Process(ctx context.Context, list []string, rawFiles ...string) (*Result, error) {
	table := store.New()
	if d.opts.CachePath != "" {
		t, err := store.Load(d.opts.CachePath)
		if err != nil {
			return nil, err
		}
		table = t
	}
	d.res = &Result{IDs: list, RawFiles: rawFiles}

	d.reporter.Start(len(list))
	fetchErr := d.fetchAll(ctx, table, list)
	d.reporter.Done()

	if d.opts.CachePath != "" {
		if err := table.Persist(d.opts.CachePath); err != nil {
			return nil, errors.Join(fetchErr, err)
		}
	}
	if fetchErr != nil {
		d.log.Error("run aborted", "err", fetchErr)
		return nil, fetchErr
	}
	d.res.Rows = table.Sorted()
	d.log.Info("run complete", "identifiers", len(list), "fetched", d.res.Fetched,
		"cached", d.res.Skipped, "missing", d.res.Missing, "malformed", d.res.Failed)
	return d.res, nil
}

func (d *Driver) fetchAll(ctx context.Context, table *store.Table, list []string) error {
	if d.opts.Workers <= 1 {
		for _, id := range list {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := d.process(ctx, table, id); err != nil {
				return err
			}
		}
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.Workers)
	for _, id := range list {
		id := id
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error { return d.process(gctx, table, id) })
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// process handles one DOI. Only transport-level errors are returned.
func (d *Driver) process(ctx context.Context, table *store.Table, id string) error {
	if table.Contains(id) {
		d.tally(id, func(r *Result) { r.Skipped++ })
		return nil
	}
	log := d.log.With("doi", id)
	m, err := d.fetcher.FetchMetadata(ctx, id)
	switch {
	case errors.Is(err, doi.ErrNotFound):
		log.Warn("no data")
		d.tally(id, func(r *Result) {
			r.Missing++
			d.reporter.Missing(id)
		})
		return nil
	case errors.Is(err, doi.ErrMalformed):
		m = nil
	case err != nil:
		return fmt.Errorf("fetching %s: %w", id, err)
	}
	rec, err := d.norm.Normalize(id, m)
	if err != nil {
		log.Warn("malformed record", "err", err)
	} else {
		log.Debug("fetched")
	}
	table.Upsert(id, rec)
	d.tally(id, func(r *Result) {
		r.Fetched++
		if err != nil {
			r.Failed++
			d.reporter.Failed(id, err)
		}
	})
	return nil
}

// tally updates the counters and advances the reporter under the lock.
func (d *Driver) tally(id string, fn func(*Result)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.res)
	d.reporter.Step(id)
}
