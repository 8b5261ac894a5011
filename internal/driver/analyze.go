// Package driver coordinates a run: it spreads files over workers,
// merges their results and reports what the suppressions left over.
package driver

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"sift/internal/cache"
	"sift/internal/check"
	"sift/internal/diag"
	"sift/internal/directive"
	"sift/internal/suppress"
	"sift/internal/trace"
)

// Result is the outcome of a successful run.
type Result struct {
	// Diagnostics are the reported diagnostics in canonical order.
	Diagnostics []diag.Diagnostic
	Files       int
	CacheHits   int
	ExitCode    int
}

// Analyze checks the input files and matches their diagnostics against the
// configured suppressions.
//
// File i is analyzed by worker i mod N. Each worker owns a fork of the base
// registry and its own matcher; nothing mutable is shared until the barrier,
// after which registries and touched sets are merged. The reported
// diagnostics are identical for every N.
//
// The first worker error cancels the others and is returned; no partial
// result is produced.
func Analyze(ctx context.Context, in Input, opts Options, sink Sink) (*Result, error) {
	if sink == nil {
		sink = nopSink{}
	}
	ctx, run := trace.Start(ctx, trace.ScopeDriver, "run")
	defer run.End("")

	known := check.Default()
	if opts.Checks != nil {
		known = *opts.Checks
	}
	sel, err := check.NewSelection(opts.Enable, opts.Disable, known)
	if err != nil {
		return nil, err
	}
	checks := known.Select(sel)
	run.Set("selection", sel.Canonical())

	defs, err := directive.ParseDefines(opts.Defines)
	if err != nil {
		return nil, err
	}

	sups, err := opts.baseSuppressions()
	if err != nil {
		return nil, err
	}
	base := suppress.NewRegistry(sups...)

	store, err := cache.Open(opts.CacheDir)
	if err != nil {
		return nil, err
	}

	files := in.Files
	n := opts.jobs(len(files))
	run.SetInt("files", len(files)).SetInt("jobs", n).Set("defines", defs.Canonical())
	for i, f := range files {
		sink.OnEvent(Event{Kind: EventQueued, File: f.Path, Index: i, Total: len(files)})
	}

	phase := opts.Timer.Begin("analyze")
	results := make([]fileResult, len(files))
	workers := make([]*worker, n)
	var completed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n)
	for w := range n {
		wk := &worker{
			id:        w,
			stride:    n,
			reg:       base.Fork(),
			checks:    checks,
			defines:   defs,
			cache:     store,
			inline:    opts.InlineSuppressions,
			sink:      sink,
			timer:     opts.Timer,
			total:     len(files),
			completed: &completed,
		}
		wk.matcher = suppress.NewMatcher(wk.reg)
		workers[w] = wk
		g.Go(func() error {
			return wk.run(gctx, files, results)
		})
	}
	if err := g.Wait(); err != nil {
		opts.Timer.End(phase, "aborted")
		run.Set("error", err.Error())
		return nil, err
	}
	opts.Timer.End(phase, fmt.Sprintf("%d files, %d workers", len(files), n))

	// Barrier passed: merge worker state.
	phase = opts.Timer.Begin("merge")
	_, merge := trace.Start(ctx, trace.ScopeDriver, "merge")
	union := base.Fork()
	touched := make(suppress.Touched)
	for _, wk := range workers {
		union.Absorb(wk.reg, base.Len())
		touched.Union(wk.matcher.Touched())
	}

	out := diag.NewBag(64)
	res := &Result{Files: len(files)}
	facts := make([]check.FileFacts, len(files))
	for i, r := range results {
		for _, d := range r.kept {
			out.Add(d)
		}
		facts[i] = check.FileFacts{File: r.path, Facts: r.facts}
		if r.cached {
			res.CacheHits++
		}
	}

	// Program checks see every file's facts, whichever worker produced them.
	programMatcher := suppress.NewMatcher(union)
	for _, pc := range checks.Program {
		pc.Resolve(facts, programMatcher.Reporter(diag.BagReporter{Bag: out}))
	}
	touched.Union(programMatcher.Touched())
	merge.End("")
	opts.Timer.End(phase, "")

	phase = opts.Timer.Begin("unmatched")
	_, um := trace.Start(ctx, trace.ScopeDriver, "unmatched")
	if sel.SeverityEnabled(diag.SevInformation) {
		metas := suppress.ReportUnmatched(union, touched, suppress.NewMatcher(union), suppress.UnmatchedOptions{
			SkipIDs: known.Skipped(sel),
		})
		for _, d := range metas {
			out.Add(d)
		}
		um.SetInt("reported", len(metas))
	}
	um.End("")
	opts.Timer.End(phase, "")

	out.Filter(sel.Shown)
	out.Sort()
	out.Dedup()

	res.Diagnostics = out.Items()
	if len(res.Diagnostics) > 0 {
		res.ExitCode = opts.ErrorExitCode
	}
	run.SetInt("reported", len(res.Diagnostics))
	return res, nil
}
