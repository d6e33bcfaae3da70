package transfer

import (
	"fmt"
)

// State is a step of the packaging pipeline.
type State int

const (
	StateIdle State = iota
	StateStaging
	StateEncoding
	StateFinalizing
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStaging:
		return "staging"
	case StateEncoding:
		return "encoding"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// StageError reports the pipeline step and path an unrecoverable failure happened at.
type StageError struct {
	Stage State
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Cause lets errors.Cause from github.com/pkg/errors reach the underlying error.
func (e *StageError) Cause() error {
	return e.Err
}
