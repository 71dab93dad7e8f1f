package buildpipeline

import "time"

// Stage describes a phase of one target's generation.
type Stage string

const (
	// StageOpen opens the header and checks the cache.
	StageOpen Stage = "open"
	// StageGenerate scans the header and writes the artifact.
	StageGenerate Stage = "generate"
	// StagePublish moves the artifact into place.
	StagePublish Stage = "publish"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the target is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the target is currently working.
	StatusWorking Status = "working"
	// StatusDone indicates the artifact was written.
	StatusDone Status = "done"
	// StatusUpToDate indicates the cache showed the artifact is current.
	StatusUpToDate Status = "up-to-date"
	// StatusError indicates the target failed.
	StatusError Status = "error"
)

// Finished reports whether no more events follow for the target.
func (s Status) Finished() bool {
	return s == StatusDone || s == StatusUpToDate || s == StatusError
}

// Event reports progress for a target (or for the whole build when Target is empty).
type Event struct {
	Target  string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent use: targets report from their own goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings holds stage durations.
type Timings struct {
	stages map[Stage]time.Duration
}

func (t *Timings) ensure() {
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
}

// Set stores a duration for the given stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.ensure()
	t.stages[stage] = dur
}

// Has reports whether a duration for stage is recorded.
func (t Timings) Has(stage Stage) bool {
	if t.stages == nil {
		return false
	}
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t Timings) Duration(stage Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	return t.stages[stage]
}

// Sum returns the sum of durations across the provided stages.
func (t Timings) Sum(stages ...Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}
