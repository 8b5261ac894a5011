// Package trace records what a sift run did and when, for diagnosing slow
// or stuck analyses.
//
// A run is a tree of spans: one run span, a span per worker, a span per
// file below its worker and, at the debug level, a span per check below its
// file. Every event below a worker or file span carries that worker's number
// and the file's path, and a file span's end event says how the result cache
// served the file.
//
//	sift check --trace=- --trace-level=detail src/
//	sift check --trace=run.ndjson --trace-level=debug --trace-heartbeat=1s src/
//
// Tracers:
//
//   - Nop records nothing and is what FromContext returns by default.
//   - StreamTracer writes text or NDJSON as events arrive.
//   - RingTracer keeps the latest events for a dump when a run fails.
//   - MultiTracer feeds several tracers.
//   - Heartbeat wraps a tracer and periodically names the files in flight.
//
// Levels, coarsest first: off, error (ring dump only), phase (run and worker
// spans), detail (file spans), debug (check spans).
//
// The tracer and the open span travel in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//
//	ctx, span := trace.StartFile(ctx, path)
//	defer span.End("")
//	trace.Point(ctx, trace.ScopeFile, "cache-store-failed", err.Error())
package trace
