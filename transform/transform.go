// Package transform registers the built-in row transforms available to the command line
// and the gateway.
package transform

import (
	"context"
	"strings"

	"github.com/0glabs/vcfparallel/rowmap"
	"github.com/0glabs/vcfparallel/table"
	"github.com/pkg/errors"
)

// Column names read or written by the built-in transforms.
const (
	ColumnRef          = "REF"
	ColumnAlt          = "ALT"
	ColumnVariantClass = "VARIANT_CLASS"
)

// Variant classes assigned by Classify.
const (
	ClassSNV     = "SNV"
	ClassMNV     = "MNV"
	ClassIns     = "INS"
	ClassDel     = "DEL"
	ClassComplex = "COMPLEX"
	ClassMixed   = "MIXED"
	ClassNone    = "."
)

var (
	Identity       = rowmap.Register("identity", identity)
	NormalizeChrom = rowmap.Register("normalize-chrom", normalizeChrom)
	Classify       = rowmap.Register("classify", classify)
	Select         = rowmap.Register("select", selectColumns)
)

func identity(ctx context.Context, row table.Row, params rowmap.Params) (table.Row, error) {
	return row, nil
}

// normalizeChrom strips the "prefix" param, "chr" by default, from CHROM.
func normalizeChrom(ctx context.Context, row table.Row, params rowmap.Params) (table.Row, error) {
	chrom, ok := row.Get(table.ColumnChrom).Str()
	if !ok {
		return row, nil
	}

	prefix := params.String("prefix", "chr")
	if len(chrom) > len(prefix) && strings.EqualFold(chrom[:len(prefix)], prefix) {
		row[table.ColumnChrom] = table.String(chrom[len(prefix):])
	}

	return row, nil
}

// classify sets VARIANT_CLASS from REF and the comma separated ALT alleles.
func classify(ctx context.Context, row table.Row, params rowmap.Params) (table.Row, error) {
	ref, ok := row.Get(ColumnRef).Str()
	if !ok || ref == "" {
		return nil, errors.Errorf("missing %v", ColumnRef)
	}

	alt, _ := row.Get(ColumnAlt).Str()

	row[ColumnVariantClass] = table.String(classOf(ref, alt))

	return row, nil
}

func classOf(ref, alt string) string {
	class := ClassNone

	for _, allele := range strings.Split(alt, ",") {
		if allele == "" || allele == "." || allele == "*" {
			continue
		}

		c := alleleClass(ref, allele)
		switch {
		case class == ClassNone:
			class = c
		case class != c:
			return ClassMixed
		}
	}

	return class
}

func alleleClass(ref, alt string) string {
	switch {
	case strings.HasPrefix(alt, "<") || strings.ContainsAny(alt, "[]"):
		// symbolic or breakend alleles
		return ClassComplex
	case len(ref) == len(alt) && len(ref) == 1:
		return ClassSNV
	case len(ref) == len(alt):
		return ClassMNV
	case len(ref) < len(alt) && strings.HasPrefix(strings.ToUpper(alt), strings.ToUpper(ref)):
		return ClassIns
	case len(ref) > len(alt) && strings.HasPrefix(strings.ToUpper(ref), strings.ToUpper(alt)):
		return ClassDel
	default:
		return ClassComplex
	}
}

// selectColumns keeps the columns listed in the comma separated "columns" param.
func selectColumns(ctx context.Context, row table.Row, params rowmap.Params) (table.Row, error) {
	columns := params.String("columns", "")
	if columns == "" {
		return nil, errors.New("param columns is required")
	}

	out := make(table.Row)
	for _, col := range strings.Split(columns, ",") {
		col = strings.TrimSpace(col)
		if v, ok := row[col]; ok {
			out[col] = v
		}
	}

	return out, nil
}
