package rowmap

import (
	"context"

	"github.com/0glabs/vcfparallel/common/parallel"
	"github.com/0glabs/vcfparallel/table"
)

// Job is one batch of rows to transform.
type Job struct {
	Rows      []table.Row
	Func      *Func
	Params    Params
	Routines  int  // 0 for GOMAXPROCS
	Unordered bool // collect in completion order

	// Collect receives every output row together with the index of its input row. It is
	// called sequentially and an error aborts the job.
	Collect func(task int, row table.Row) error
}

// Executor is an execution strategy for a Job.
//
// Implementations must apply Func to every row exactly once, stop dispatching rows on the
// first failure and return only after all of their workers have terminated.
type Executor interface {
	Execute(ctx context.Context, job *Job) error
}

// routines returns the number of workers the job runs with.
func (job *Job) routines() int {
	opt := parallel.SerialOption{Routines: job.Routines}
	opt.Normalize(len(job.Rows))
	return opt.Routines
}

// run dispatches one task per row, where do transforms the row of a task on the given
// routine.
func (job *Job) run(ctx context.Context, do func(ctx context.Context, routine, task int) (table.Row, error)) error {
	tasks := &rowTasks{job: job, do: do}

	return parallel.Serial(ctx, tasks, len(job.Rows), parallel.SerialOption{
		Routines:  job.Routines,
		Unordered: job.Unordered,
	})
}

type rowTasks struct {
	job *Job
	do  func(ctx context.Context, routine, task int) (table.Row, error)
}

var _ parallel.Interface = (*rowTasks)(nil)

// ParallelDo implements the parallel.Interface interface.
func (tasks *rowTasks) ParallelDo(ctx context.Context, routine, task int) (interface{}, error) {
	row, err := tasks.do(ctx, routine, task)
	if err != nil {
		return nil, &RowError{Index: task, Err: err}
	}

	return row, nil
}

// ParallelCollect implements the parallel.Interface interface.
func (tasks *rowTasks) ParallelCollect(result *parallel.Result) error {
	return tasks.job.Collect(result.Task, result.Value.(table.Row))
}
