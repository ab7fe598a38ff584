package pipeline

import "time"

// State is the lifecycle state of a Run.
type State int

const (
	StateRunning State = iota
	// StateRunToCompletion means every stage was attempted.
	StateRunToCompletion
	// StateAbortedEarly means a stage ended the run before the remaining
	// stages were attempted, either by request (skip marker) or because the
	// run was cancelled.
	StateAbortedEarly
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateRunToCompletion:
		return "completed"
	case StateAbortedEarly:
		return "aborted"
	default:
		return "unknown"
	}
}

// StageOutcome records the result of one executed stage.
type StageOutcome struct {
	Name     string
	Success  bool
	Reason   string // human-readable failure message, empty on success
	Err      error
	Duration time.Duration
}

// Run is the ordered history of a pipeline run.
type Run struct {
	ID       string
	State    State
	Outcomes []StageOutcome
	Started  time.Time
	Finished time.Time

	failed bool
}

func newRun(id string) *Run {
	return &Run{ID: id, State: StateRunning, Started: time.Now()}
}

// record appends an outcome. A failure marks the whole run failed for good.
func (r *Run) record(o StageOutcome) {
	r.Outcomes = append(r.Outcomes, o)
	if !o.Success {
		r.failed = true
	}
}

func (r *Run) finish(state State) {
	r.State = state
	r.Finished = time.Now()
}

// Success reports whether no recorded stage failed.
func (r *Run) Success() bool { return !r.failed }

// Failures returns the failed outcomes in execution order.
func (r *Run) Failures() []StageOutcome {
	var failures []StageOutcome
	for _, o := range r.Outcomes {
		if !o.Success {
			failures = append(failures, o)
		}
	}
	return failures
}

// Duration returns the wall time of the run so far.
func (r *Run) Duration() time.Duration {
	if r.Finished.IsZero() {
		return time.Since(r.Started)
	}
	return r.Finished.Sub(r.Started)
}

// ExitCode maps the run to a process exit status.
func (r *Run) ExitCode() int {
	if r.Success() {
		return 0
	}
	return 1
}
