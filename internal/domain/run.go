package domain

import "time"

// StageResult is the outcome of one pipeline stage.
type StageResult struct {
	Stage    string
	Success  bool
	Error    string
	Duration time.Duration
}

// RunResult summarizes one pipeline execution. It is never persisted.
type RunResult struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Stages     []StageResult
}

// Success is the logical AND of all stage outcomes.
func (r RunResult) Success() bool {
	for _, stage := range r.Stages {
		if !stage.Success {
			return false
		}
	}
	return true
}

// ExitCode maps the run outcome to a process exit status.
func (r RunResult) ExitCode() int {
	if r.Success() {
		return 0
	}
	return 1
}

// Failed lists the names of stages that did not succeed.
func (r RunResult) Failed() []string {
	var failed []string
	for _, stage := range r.Stages {
		if !stage.Success {
			failed = append(failed, stage.Stage)
		}
	}
	return failed
}
