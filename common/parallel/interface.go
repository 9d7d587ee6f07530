package parallel

import "context"

// Result is the outcome of a single task.
type Result struct {
	Routine int
	Task    int
	Value   interface{}
	err     error
}

// Interface is implemented by types whose work can be split into indexed tasks.
//
// ParallelDo runs concurrently on up to SerialOption.Routines goroutines, while
// ParallelCollect is always called from the goroutine that invoked Serial.
type Interface interface {
	ParallelDo(ctx context.Context, routine, task int) (interface{}, error)
	ParallelCollect(result *Result) error
}
