package model

import "time"

// ExitStatus is the terminal status of a child interpreter process.
type ExitStatus struct {
	// Code is the exit code reported by the child.
	Code int
}

// Success returns true when the child exited with code 0.
func (e ExitStatus) Success() bool { return e.Code == 0 }

// RunStatus represents the state of a script invocation.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
	RunStatusError     RunStatus = "error"
)

// RunRecord is the history entry of one script invocation.
type RunRecord struct {
	ID         string
	Root       string
	Args       string
	Status     RunStatus
	ExitCode   int
	Error      string
	Lines      int
	StartedAt  time.Time
	FinishedAt *time.Time
}
