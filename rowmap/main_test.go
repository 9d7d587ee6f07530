package rowmap_test

import (
	"context"
	"os"
	"testing"

	"github.com/0glabs/vcfparallel/rowmap"
	"github.com/0glabs/vcfparallel/table"
	"github.com/pkg/errors"
)

var errBadRow = errors.New("bad row")

var (
	identity = rowmap.Register("test/identity", func(ctx context.Context, row table.Row, params rowmap.Params) (table.Row, error) {
		return row, nil
	})

	// failAt fails for the row whose POS equals the "pos" param.
	failAt = rowmap.Register("test/fail-at", func(ctx context.Context, row table.Row, params rowmap.Params) (table.Row, error) {
		if table.Compare(row.Get(table.ColumnPos), params.Get("pos")) == 0 {
			return nil, errBadRow
		}
		return row, nil
	})

	// dropLocus outputs the ID with a tag taken from params, without CHROM and POS.
	dropLocus = rowmap.Register("test/drop-locus", func(ctx context.Context, row table.Row, params rowmap.Params) (table.Row, error) {
		return table.Row{
			"ID":  row.Get("ID"),
			"TAG": table.String(params.String("tag", "none")),
		}, nil
	})
)

func TestMain(m *testing.M) {
	rowmap.MaybeServeWorker()

	os.Exit(m.Run())
}

func locus(chrom string, pos int64) table.Row {
	return table.Row{table.ColumnChrom: table.String(chrom), table.ColumnPos: table.Int(pos)}
}

func variants(n int) *table.Table {
	rows := make([]table.Row, n)
	for i := range rows {
		rows[i] = table.Row{
			table.ColumnChrom: table.String([]string{"1", "2", "X"}[i%3]),
			table.ColumnPos:   table.Int(int64(n - i)),
			"ID":              table.String("rs" + table.Int(int64(i)).String()),
		}
	}
	return table.New([]string{table.ColumnChrom, table.ColumnPos, "ID"}, rows...)
}

var backends = []rowmap.Backend{rowmap.BackendThread, rowmap.BackendProcess}
