// Package trace records what the generator is doing while it runs.
//
// Enable tracing via command-line flags:
//
//	zisstub asm --trace=- --trace-level=detail h/zisstubs.h zvte
//
// # Architecture
//
//   - Nop: zero-overhead tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: keeps the last events in memory, dumped when a run fails
//   - MultiTracer: combines the two
//
// # Levels and scopes
//
// LevelPhase shows the driver and its phases (open, generate, publish).
// LevelDetail adds one span per build target. LevelDebug adds a point
// event per stub entry.
//
// Tracers travel through the driver via context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "generate", parentID)
//	defer span.End("")
package trace
