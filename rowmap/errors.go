package rowmap

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrNilTable         = errors.New("table is nil")
	ErrNilFunc          = errors.New("transform is nil")
	ErrNilRow           = errors.New("transform returned nil row")
	ErrUnregisteredFunc = errors.New("transform is not registered")
	ErrSchemaViolation  = errors.New("row violates declared schema")
	ErrWorkerExited     = errors.New("worker process exited")
)

// RowError is returned when the transform fails for a single row. A failing row aborts
// the whole batch, so at most one RowError is reported per call.
type RowError struct {
	Index int // position of the row in the input table
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("Row: %d, Message: %s", e.Index, e.Err.Error())
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// WorkerError is an error raised by a transform inside a worker process. Only the
// message crosses the process boundary.
type WorkerError struct {
	Worker  int
	Message string
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("Worker: %d, Message: %s", e.Worker, e.Message)
}
