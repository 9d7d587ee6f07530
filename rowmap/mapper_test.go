package rowmap_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/0glabs/vcfparallel/rowmap"
	"github.com/0glabs/vcfparallel/table"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapSortsByLocus(t *testing.T) {
	input := table.New([]string{table.ColumnChrom, table.ColumnPos}, locus("2", 50), locus("1", 10), locus("1", 20))

	for _, backend := range backends {
		t.Run(string(backend), func(t *testing.T) {
			result, err := rowmap.Map(context.Background(), input, identity, nil, rowmap.Option{
				Backend:     backend,
				Concurrency: 2,
			})
			require.NoError(t, err)

			assert.Equal(t, []string{table.ColumnChrom, table.ColumnPos}, result.Columns())
			assert.Equal(t, []table.Row{locus("1", 10), locus("1", 20), locus("2", 50)}, result.Rows())
		})
	}
}

func TestMapCardinalityAndOrder(t *testing.T) {
	input := variants(200)

	for _, backend := range backends {
		t.Run(string(backend), func(t *testing.T) {
			result, err := rowmap.Map(context.Background(), input, identity, nil, rowmap.Option{
				Backend:         backend,
				Concurrency:     4,
				CompletionOrder: true,
			})
			require.NoError(t, err)
			require.Equal(t, input.Len(), result.Len())

			rows := result.Rows()
			for i := 1; i < len(rows); i++ {
				prev, cur := rows[i-1], rows[i]
				c := table.Compare(prev.Get(table.ColumnChrom), cur.Get(table.ColumnChrom))
				assert.True(t, c < 0 || (c == 0 && table.Compare(prev.Get(table.ColumnPos), cur.Get(table.ColumnPos)) <= 0))
			}
		})
	}
}

func TestMapWithoutLocus(t *testing.T) {
	input := variants(50)
	params := rowmap.Params{"tag": table.String("x")}

	var expected []table.Row
	for _, row := range input.Rows() {
		expected = append(expected, table.Row{"ID": row.Get("ID"), "TAG": table.String("x")})
	}

	for _, backend := range backends {
		t.Run(string(backend), func(t *testing.T) {
			// row order is kept by default
			result, err := rowmap.Map(context.Background(), input, dropLocus, params, rowmap.Option{Backend: backend})
			require.NoError(t, err)
			assert.Equal(t, []string{"ID", "TAG"}, result.Columns())
			assert.Equal(t, expected, result.Rows())

			// completion order only guarantees the same multiset, on every run
			for i := 0; i < 2; i++ {
				result, err = rowmap.Map(context.Background(), input, dropLocus, params, rowmap.Option{
					Backend:         backend,
					Concurrency:     8,
					CompletionOrder: true,
				})
				require.NoError(t, err)
				assert.ElementsMatch(t, expected, result.Rows())
			}
		})
	}
}

func TestMapEmptyTable(t *testing.T) {
	for _, backend := range backends {
		result, err := rowmap.Map(context.Background(), table.New([]string{"CHROM", "POS"}), identity, nil, rowmap.Option{Backend: backend})
		require.NoError(t, err)
		assert.Equal(t, 0, result.Len())
		assert.Empty(t, result.Columns())
	}
}

func TestMapSingleFailure(t *testing.T) {
	input := variants(30)
	params := rowmap.Params{"pos": table.Int(17)} // row 13

	for _, backend := range backends {
		t.Run(string(backend), func(t *testing.T) {
			result, err := rowmap.Map(context.Background(), input, failAt, params, rowmap.Option{
				Backend:     backend,
				Concurrency: 3,
			})
			require.Error(t, err)
			assert.Nil(t, result)

			var rowErr *rowmap.RowError
			require.True(t, errors.As(err, &rowErr))
			assert.Equal(t, 13, rowErr.Index)
			assert.Contains(t, err.Error(), errBadRow.Error())
		})
	}
}

func TestMapThreadFailureIsTyped(t *testing.T) {
	_, err := rowmap.Map(context.Background(), variants(5), failAt, rowmap.Params{"pos": table.Int(1)})
	assert.True(t, errors.Is(err, errBadRow))
}

func TestMapRecoversPanic(t *testing.T) {
	fn := rowmap.NewFunc(func(ctx context.Context, row table.Row, params rowmap.Params) (table.Row, error) {
		if row.Get(table.ColumnPos).Equal(table.Int(3)) {
			panic("boom")
		}
		return row, nil
	})

	_, err := rowmap.Map(context.Background(), variants(10), fn, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestMapNilRow(t *testing.T) {
	fn := rowmap.NewFunc(func(ctx context.Context, row table.Row, params rowmap.Params) (table.Row, error) {
		return nil, nil
	})

	_, err := rowmap.Map(context.Background(), variants(3), fn, nil)
	assert.True(t, errors.Is(err, rowmap.ErrNilRow))
}

func TestMapDoesNotMutateInput(t *testing.T) {
	fn := rowmap.NewFunc(func(ctx context.Context, row table.Row, params rowmap.Params) (table.Row, error) {
		row["ID"] = table.String("changed")
		return row, nil
	})

	input := variants(10)
	_, err := rowmap.Map(context.Background(), input, fn, nil)
	require.NoError(t, err)

	for _, row := range input.Rows() {
		assert.NotEqual(t, table.String("changed"), row.Get("ID"))
	}
}

func TestMapDeclaredSchema(t *testing.T) {
	input := variants(10)

	result, err := rowmap.Map(context.Background(), input, dropLocus, nil, rowmap.Option{
		Schema: []string{"TAG", "ID", "EXTRA"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"TAG", "ID", "EXTRA"}, result.Columns())
	assert.True(t, result.Row(0).Get("EXTRA").IsNull())

	_, err = rowmap.Map(context.Background(), input, dropLocus, nil, rowmap.Option{
		Schema: []string{"ID"},
	})
	assert.True(t, errors.Is(err, rowmap.ErrSchemaViolation))
}

func TestMapInvalidArguments(t *testing.T) {
	ctx := context.Background()

	_, err := rowmap.Map(ctx, nil, identity, nil)
	assert.True(t, errors.Is(err, rowmap.ErrNilTable))

	_, err = rowmap.Map(ctx, variants(1), nil, nil)
	assert.True(t, errors.Is(err, rowmap.ErrNilFunc))

	_, err = rowmap.Map(ctx, variants(1), identity, nil, rowmap.Option{Concurrency: -1})
	assert.Error(t, err)

	_, err = rowmap.Map(ctx, variants(1), identity, nil, rowmap.Option{Backend: "gpu"})
	assert.Error(t, err)

	_, err = rowmap.Map(ctx, variants(1), identity, nil, rowmap.Option{Schema: []string{"ID", "ID"}})
	assert.Error(t, err)
}

func TestMapProcessRejectsAnonymousFunc(t *testing.T) {
	fn := rowmap.NewFunc(func(ctx context.Context, row table.Row, params rowmap.Params) (table.Row, error) {
		return row, nil
	})

	_, err := rowmap.Map(context.Background(), variants(3), fn, nil, rowmap.Option{Backend: rowmap.BackendProcess})
	assert.True(t, errors.Is(err, rowmap.ErrUnregisteredFunc))
}

func TestMapProcessWorkerStartFailure(t *testing.T) {
	_, err := rowmap.Map(context.Background(), variants(3), identity, nil, rowmap.Option{
		Backend: rowmap.BackendProcess,
		Worker:  rowmap.WorkerOption{Command: []string{"/nonexistent/vcfparallel-worker"}},
	})
	assert.Error(t, err)
}

func TestMapCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rowmap.Map(ctx, variants(10), identity, nil)
	assert.True(t, errors.Is(err, context.Canceled))
}

type countingExecutor struct {
	rowmap.ThreadExecutor
	jobs atomic.Int32
}

func (e *countingExecutor) Execute(ctx context.Context, job *rowmap.Job) error {
	e.jobs.Add(1)
	return e.ThreadExecutor.Execute(ctx, job)
}

func TestMapCustomExecutor(t *testing.T) {
	executor := &countingExecutor{}

	result, err := rowmap.Map(context.Background(), variants(5), identity, nil, rowmap.Option{Executor: executor})
	require.NoError(t, err)
	assert.Equal(t, 5, result.Len())
	assert.Equal(t, int32(1), executor.jobs.Load())
}
