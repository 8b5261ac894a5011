package driver

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"sift/internal/cache"
	"sift/internal/check"
	"sift/internal/diag"
	"sift/internal/directive"
	"sift/internal/observ"
	"sift/internal/project"
	"sift/internal/source"
	"sift/internal/suppress"
	"sift/internal/trace"
)

// fileResult is what a worker leaves in the file's slot.
type fileResult struct {
	path   string
	kept   []diag.Diagnostic
	facts  check.Facts
	cached bool
}

type worker struct {
	id      int
	stride  int
	reg     *suppress.Registry
	matcher *suppress.Matcher
	checks  check.Set
	defines directive.Defines
	cache   *cache.Cache
	inline  bool
	sink    Sink
	timer   *observ.Timer

	total     int
	completed *atomic.Int64
}

// run analyzes files id, id+N, id+2N, ... and writes each result into its
// slot of results.
func (w *worker) run(ctx context.Context, files []project.File, results []fileResult) error {
	ctx, span := trace.StartWorker(ctx, w.id)
	defer span.End("")

	for i := w.id; i < len(files); i += w.stride {
		if err := ctx.Err(); err != nil {
			return err
		}
		r, err := w.file(ctx, i, files[i])
		if err != nil {
			return err
		}
		results[i] = r
	}
	return nil
}

// file produces the result of one file: its raw analysis, from the cache
// or fresh, filtered through the worker's matcher after the file's own
// inline suppressions are registered.
func (w *worker) file(ctx context.Context, idx int, f project.File) (fileResult, error) {
	start := time.Now()
	ctx, span := trace.StartFile(ctx, f.Path)
	defer span.End("")

	w.sink.OnEvent(Event{Kind: EventChecking, File: f.Path, Index: idx, Total: w.total})

	src, err := source.Load(f.Path)
	if err != nil {
		return fileResult{}, fmt.Errorf("load %s: %w", f.Path, err)
	}

	content := cache.Digest(src.Hash)
	config := configDigest(w.checks, f.IncludePaths, w.defines)
	entry, outcome := w.lookup(ctx, src.Path, content, config)
	span.SetCache(outcome)
	cached := outcome == trace.CacheHit
	if !cached {
		entry, err = w.analyze(ctx, src, f.IncludePaths)
		if err != nil {
			return fileResult{}, err
		}
		entry.Content, entry.Config = content, config
		if err := w.cache.Store(entry); err != nil {
			trace.Point(ctx, trace.ScopeFile, "cache-store-failed", err.Error())
		}
	}

	if w.inline {
		for _, s := range suppress.FromDirectives(src.Path, entry.Directives) {
			w.reg.Register(s)
		}
	}
	r := fileResult{
		path:   src.Path,
		kept:   w.matcher.Filter(entry.Diagnostics),
		facts:  entry.Facts,
		cached: cached,
	}
	span.SetInt("raw", len(entry.Diagnostics)).SetInt("kept", len(r.kept))

	elapsed := time.Since(start)
	w.timer.Add("files", elapsed)
	kind := EventDone
	if cached {
		kind = EventCached
	}
	w.sink.OnEvent(Event{
		Kind:      kind,
		File:      f.Path,
		Index:     idx,
		Completed: int(w.completed.Add(1)),
		Total:     w.total,
		Elapsed:   elapsed,
	})
	return r, nil
}

// lookup consults the cache. Only a hit returns an entry; every failure,
// including an unreadable entry, is treated as a miss by the caller.
func (w *worker) lookup(ctx context.Context, path string, content, config cache.Digest) (*cache.Entry, trace.CacheOutcome) {
	if w.cache == nil {
		return nil, trace.CacheOff
	}
	entry, err := w.cache.Load(path, content, config)
	switch {
	case err == nil:
		return entry, trace.CacheHit
	case errors.Is(err, cache.ErrMiss):
		return nil, trace.CacheMiss
	case errors.Is(err, cache.ErrStale):
		return nil, trace.CacheStale
	}
	trace.Point(ctx, trace.ScopeFile, "cache-load-failed", err.Error())
	return nil, trace.CacheError
}

// analyze parses src, runs the file checks, collects program facts and
// scans the inline directives. Directives are recorded whether or not
// inline suppressions are enabled, so the cached entry serves both.
// Diagnostics and directives inside conditional groups the configuration
// skips are dropped.
func (w *worker) analyze(ctx context.Context, src *source.File, includePaths []string) (*cache.Entry, error) {
	entry := &cache.Entry{
		Path:       src.Path,
		Directives: directive.CollectConfig(src.Content, w.defines),
	}
	if len(w.checks.Files) == 0 && len(w.checks.Program) == 0 {
		return entry, nil
	}

	unit, err := check.Parse(ctx, src, includePaths)
	if err != nil {
		return nil, err
	}
	defer unit.Close()

	bag := diag.NewBag(8)
	for _, c := range w.checks.Files {
		_, span := trace.Start(ctx, trace.ScopeCheck, c.Name())
		err := c.Run(ctx, unit, diag.BagReporter{Bag: bag})
		span.End("")
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", src.Path, c.Name(), err)
		}
	}
	for _, pc := range w.checks.Program {
		pc.Collect(unit, &entry.Facts)
	}
	entry.Diagnostics = dropSkipped(bag.Items(), src.Path, directive.Skipped(src.Content, w.defines))
	entry.Lookups = unit.Lookups()
	return entry, nil
}

func dropSkipped(ds []diag.Diagnostic, path string, skipped []directive.LineRange) []diag.Diagnostic {
	if len(skipped) == 0 {
		return ds
	}
	return slices.DeleteFunc(ds, func(d diag.Diagnostic) bool {
		return d.File == path && directive.InRanges(skipped, d.Line)
	})
}
