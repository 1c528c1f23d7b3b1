package pipeline

import "time"

// Stage describes a high-level packaging phase.
type Stage string

const (
	// StageExtract unpacks the dependency archives.
	StageExtract Stage = "extract"
	// StageNormalize rewrites locale directories to canonical qualifiers.
	StageNormalize Stage = "normalize"
	// StageFilter applies the locale and keep policies.
	StageFilter Stage = "filter"
	// StageRecompress converts surviving PNGs to WebP.
	StageRecompress Stage = "recompress"
	// StageDensity collapses mdpi density buckets into the default bucket.
	StageDensity Stage = "density"
	// StageLedger writes the consolidated rename ledger.
	StageLedger Stage = "ledger"
	// StageCompile compiles each dependency to a partial archive.
	StageCompile Stage = "compile"
	// StageLink runs the final link.
	StageLink Stage = "link"
	// StageOptimize runs the optional size-reduction pass.
	StageOptimize Stage = "optimize"
	// StageVerify checks the package identity of the linked archive.
	StageVerify Stage = "verify"
	// StagePublish moves the finished artifacts into place.
	StagePublish Stage = "publish"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the task is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the task is currently working.
	StatusWorking Status = "working"
	// StatusDone indicates the task is done.
	StatusDone Status = "done"
	// StatusError indicates the task encountered an error.
	StatusError Status = "error"
)

// Event reports progress for a dependency (or for the overall pipeline when
// Dep is empty).
type Event struct {
	Dep     string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
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

// Stages lists every phase in execution order.
func Stages() []Stage {
	return []Stage{
		StageExtract, StageNormalize, StageFilter, StageRecompress,
		StageDensity, StageLedger, StageCompile, StageLink,
		StageOptimize, StageVerify, StagePublish,
	}
}
