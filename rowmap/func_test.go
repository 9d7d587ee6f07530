package rowmap

import (
	"context"
	"testing"

	"github.com/0glabs/vcfparallel/table"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"gotest.tools/assert/cmp"

	gotest "gotest.tools/assert"
)

func noop(ctx context.Context, row table.Row, params Params) (table.Row, error) {
	return row, nil
}

var registered = Register("test/register", noop)

func TestRegister(t *testing.T) {
	f := registered
	assert.Equal(t, "test/register", f.Name())

	found, ok := Lookup("test/register")
	assert.True(t, ok)
	assert.Same(t, f, found)
	assert.Contains(t, Registered(), "test/register")

	assert.Panics(t, func() { Register("test/register", noop) })
	assert.Panics(t, func() { Register("", noop) })
	assert.Panics(t, func() { Register("test/nil", nil) })

	_, ok = Lookup("test/unknown")
	assert.False(t, ok)
}

func TestNewFuncIsAnonymous(t *testing.T) {
	assert.Empty(t, NewFunc(noop).Name())
}

func TestParams(t *testing.T) {
	params := Params{"prefix": table.String("chr"), "n": table.Int(2)}
	assert.Equal(t, "chr", params.String("prefix", "x"))
	assert.Equal(t, "x", params.String("n", "x"))
	assert.Equal(t, "x", params.String("missing", "x"))
	assert.True(t, params.Get("missing").IsNull())
}

func extractRowError(err error) *RowError {
	var rowError *RowError
	if errors.As(err, &rowError) {
		return rowError
	}
	return nil
}

func TestRowErrorAs(t *testing.T) {
	gotest.Equal(t, extractRowError(errors.New("123")) == nil, true)

	err := &RowError{Index: 3, Err: errors.New("bad allele")}
	gotest.Equal(t, extractRowError(errors.WithMessage(err, "failed to map rows")), err)
	gotest.Assert(t, cmp.Contains(err.Error(), "Row: 3"))

	werr := &WorkerError{Worker: 1, Message: "bad allele"}
	gotest.Equal(t, werr.Error(), "Worker: 1, Message: bad allele")
}
