package table

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

const maxLineSize = 16 * 1024 * 1024

const missing = "."

var ErrHeaderNotFound = errors.New("VCF header line not found")

// ReadVCF parses the body of a VCF (or any tab separated file with a "#" header line).
//
// "##" meta lines are skipped. POS is parsed as int and QUAL as float, where "." reads
// as Null. All other fields are kept as strings.
func ReadVCF(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var (
		columns []string
		rows    []Row
		lineNo  int
	)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")

		if line == "" || strings.HasPrefix(line, "##") {
			continue
		}

		if columns == nil {
			if !strings.HasPrefix(line, "#") {
				return nil, errors.WithMessagef(ErrHeaderNotFound, "line %v", lineNo)
			}
			columns = strings.Split(strings.TrimPrefix(line, "#"), "\t")
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) != len(columns) {
			return nil, errors.Errorf("line %v has %v fields, header has %v", lineNo, len(fields), len(columns))
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			v, err := parseField(col, fields[i])
			if err != nil {
				return nil, errors.WithMessagef(err, "line %v", lineNo)
			}
			row[col] = v
		}
		rows = append(rows, row)
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.WithMessage(err, "failed to scan input")
	}

	if columns == nil {
		return nil, ErrHeaderNotFound
	}

	return New(columns, rows...), nil
}

func parseField(col, field string) (Value, error) {
	switch col {
	case ColumnPos:
		pos, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return Null(), errors.WithMessagef(err, "invalid %v %q", col, field)
		}
		return Int(pos), nil
	case "QUAL":
		if field == missing {
			return Null(), nil
		}
		qual, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return Null(), errors.WithMessagef(err, "invalid %v %q", col, field)
		}
		return Float(qual), nil
	default:
		return String(field), nil
	}
}

// WriteTSV writes t as a "#" prefixed header line followed by tab separated rows.
func WriteTSV(w io.Writer, t *Table) error {
	bw := bufio.NewWriter(w)

	columns := t.Columns()
	if len(columns) > 0 {
		if _, err := bw.WriteString("#" + strings.Join(columns, "\t") + "\n"); err != nil {
			return errors.WithMessage(err, "failed to write header")
		}
	}

	fields := make([]string, len(columns))
	for _, row := range t.rows {
		for i, col := range columns {
			fields[i] = row.Get(col).String()
		}
		if _, err := bw.WriteString(strings.Join(fields, "\t") + "\n"); err != nil {
			return errors.WithMessage(err, "failed to write row")
		}
	}

	return bw.Flush()
}

// ReadJSONLines reads one JSON object per line. The schema is inferred from the keys
// in first-seen order.
func ReadJSONLines(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var (
		columns []string
		seen    = make(map[string]bool)
		rows    []Row
		lineNo  int
	)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var row Row
		if err := json.UnmarshalFromString(line, &row); err != nil {
			return nil, errors.WithMessagef(err, "failed to decode line %v", lineNo)
		}

		for _, col := range orderedKeys(line, row) {
			if !seen[col] {
				seen[col] = true
				columns = append(columns, col)
			}
		}
		rows = append(rows, row)
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.WithMessage(err, "failed to scan input")
	}

	return New(columns, rows...), nil
}

// orderedKeys returns the keys of row in the order they appear in the encoded object.
func orderedKeys(line string, row Row) []string {
	iter := json.BorrowIterator([]byte(line))
	defer json.ReturnIterator(iter)

	keys := make([]string, 0, len(row))
	iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
		it.Skip()
		keys = append(keys, key)
		return true
	})

	if iter.Error != nil || len(keys) != len(row) {
		keys = keys[:0]
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	}

	return keys
}

// WriteJSONLines writes every row of t as one JSON object per line. Columns absent from
// a row are omitted.
func WriteJSONLines(w io.Writer, t *Table) error {
	bw := bufio.NewWriter(w)
	encoder := json.NewEncoder(bw)

	for i, row := range t.rows {
		if err := encoder.Encode(row); err != nil {
			return errors.WithMessagef(err, "failed to encode row %v", i)
		}
	}

	return bw.Flush()
}
