package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument reports malformed input: a bad page-size spec, a
	// non-positive DPI, a header without a height.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrLogic reports a call made in the wrong state, such as reading a
	// page context that was never attached.
	ErrLogic = errors.New("logic error")
	// ErrDrawingFailure matches every *DrawingError via errors.Is.
	ErrDrawingFailure = errors.New("drawing failure")
)

// DrawingError is returned when a scheduled drawing task fails. Tasks invoked
// before it keep their output.
type DrawingError struct {
	Task  string // task name, may be empty
	Seq   uint64 // insertion order within its queue
	Cause error
}

func (e *DrawingError) Error() string {
	name := e.Task
	if name == "" {
		name = "anonymous"
	}
	return fmt.Sprintf("drawing task %q (#%d) failed: %v", name, e.Seq, e.Cause)
}

func (e *DrawingError) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, ErrDrawingFailure) match.
func (e *DrawingError) Is(target error) bool { return target == ErrDrawingFailure }

func invalidArgf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
