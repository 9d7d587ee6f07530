// Package rowmap applies a transform to every row of a table in parallel and reassembles
// the outputs into a new table.
//
// Rows are dispatched one per task to an Executor, either a goroutine pool or a pool of
// worker processes. The result schema is inferred from the output rows unless declared
// with Option.Schema, and the result is sorted by (CHROM, POS) when both columns are
// present. A single failing row fails the whole call and no partial result is returned.
package rowmap

import (
	"context"
	"time"

	"github.com/0glabs/vcfparallel/common"
	"github.com/0glabs/vcfparallel/common/util"
	"github.com/0glabs/vcfparallel/table"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Map applies fn with params to every row of t and returns the output rows as a new
// table, sorted by (CHROM, POS) if the output has both columns. Otherwise rows are in
// input order, or in completion order with Option.CompletionOrder.
//
// An empty table yields an empty table without columns.
func Map(ctx context.Context, t *table.Table, fn *Func, params Params, option ...Option) (*table.Table, error) {
	if t == nil {
		return nil, ErrNilTable
	}

	if fn == nil {
		return nil, ErrNilFunc
	}

	var opt Option
	if len(option) > 0 {
		opt = option[0]
	}

	if err := opt.validate(); err != nil {
		return nil, errors.WithMessage(err, "invalid option")
	}

	if t.Len() == 0 {
		return table.FromRows(nil, nil), nil
	}

	logger := common.NewLogger(opt.LogOption).WithFields(logrus.Fields{
		"run":       uuid.New().String(),
		"transform": fn.Name(),
		"backend":   opt.backend(),
	})

	reminder := util.NewReminder(logger, t.Len(), opt.reportInterval())
	results := make([]table.Row, 0, t.Len())

	job := Job{
		Rows:      t.Rows(),
		Func:      fn,
		Params:    params,
		Routines:  opt.Concurrency,
		Unordered: opt.CompletionOrder,
		Collect: func(task int, row table.Row) error {
			if err := opt.checkSchema(row); err != nil {
				return &RowError{Index: task, Err: err}
			}

			results = append(results, row)
			reminder.Remind("Mapping rows", len(results))

			return nil
		},
	}

	logger.WithFields(logrus.Fields{
		"rows":     t.Len(),
		"routines": job.routines(),
	}).Debug("Start to map rows")

	start := time.Now()
	if err := opt.executor(logger).Execute(ctx, &job); err != nil {
		logger.WithError(err).Debug("Failed to map rows")
		return nil, errors.WithMessage(err, "failed to map rows")
	}

	var result *table.Table
	if len(opt.Schema) > 0 {
		result = table.New(opt.Schema, results...)
	} else {
		result = table.FromRows(results, t.Columns())
	}

	result, sorted := result.SortByLocus()

	logger.WithFields(logrus.Fields{
		"rows":    result.Len(),
		"sorted":  sorted,
		"elapsed": time.Since(start),
	}).Debug("Succeeded to map rows")

	return result, nil
}
