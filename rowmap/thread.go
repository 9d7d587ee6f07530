package rowmap

import (
	"context"

	"github.com/0glabs/vcfparallel/table"
)

// ThreadExecutor runs transforms on a bounded pool of goroutines in the host process.
// It suits I/O bound transforms and transforms that are cheap to run concurrently.
type ThreadExecutor struct{}

var _ Executor = (*ThreadExecutor)(nil)

func NewThreadExecutor() *ThreadExecutor {
	return &ThreadExecutor{}
}

// Execute implements the Executor interface.
func (executor *ThreadExecutor) Execute(ctx context.Context, job *Job) error {
	return job.run(ctx, func(ctx context.Context, routine, task int) (table.Row, error) {
		return job.Func.Apply(ctx, job.Rows[task], job.Params)
	})
}
