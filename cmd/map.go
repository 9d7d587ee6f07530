package cmd

import (
	"context"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/0glabs/vcfparallel/common"
	"github.com/0glabs/vcfparallel/rowmap"
	"github.com/0glabs/vcfparallel/table"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	formatTSV   = "tsv"
	formatJSONL = "jsonl"
)

var (
	mapArgs struct {
		input        string
		inputFormat  string
		output       string
		outputFormat string

		transform string
		params    []string

		backend         string
		concurrency     int
		completionOrder bool
		schema          []string
		memoize         int

		timeout time.Duration
	}

	mapCmd = &cobra.Command{
		Use:   "map",
		Short: "Apply a transform to every row of a variant table",
		RunE:  mapRows,
	}
)

func init() {
	mapCmd.Flags().StringVar(&mapArgs.input, "input", "-", "Input file, - for stdin")
	mapCmd.Flags().StringVar(&mapArgs.inputFormat, "input-format", formatTSV, "Input format, tsv (VCF body) or jsonl")
	mapCmd.Flags().StringVar(&mapArgs.output, "output", "-", "Output file, - for stdout")
	mapCmd.Flags().StringVar(&mapArgs.outputFormat, "output-format", formatTSV, "Output format, tsv or jsonl")

	mapCmd.Flags().StringVar(&mapArgs.transform, "transform", "", "Name of the transform, see the transforms command")
	mapCmd.MarkFlagRequired("transform")
	mapCmd.Flags().StringArrayVar(&mapArgs.params, "param", nil, "Transform parameter as key=value, repeatable")

	mapCmd.Flags().StringVar(&mapArgs.backend, "backend", string(rowmap.BackendThread), "Execution backend, thread or process")
	mapCmd.Flags().IntVar(&mapArgs.concurrency, "concurrency", 0, "Number of goroutines or worker processes, 0 for the number of CPUs")
	mapCmd.Flags().BoolVar(&mapArgs.completionOrder, "completion-order", false, "Collect rows in completion order instead of input order")
	mapCmd.Flags().StringSliceVar(&mapArgs.schema, "schema", nil, "Declared output columns separated by comma")
	mapCmd.Flags().IntVar(&mapArgs.memoize, "memoize", 0, "Cache outputs of up to N distinct rows, thread backend only")

	mapCmd.Flags().DurationVar(&mapArgs.timeout, "timeout", 0, "cli task timeout, 0 for no timeout")

	rootCmd.AddCommand(mapCmd)
}

func mapRows(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	var cancel context.CancelFunc
	if mapArgs.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, mapArgs.timeout)
		defer cancel()
	}

	fn, err := newFunc()
	if err != nil {
		return err
	}

	params, err := parseParams(mapArgs.params)
	if err != nil {
		return err
	}

	source, err := readTable(cmd.InOrStdin())
	if err != nil {
		return errors.WithMessage(err, "failed to read input")
	}

	start := time.Now()
	result, err := rowmap.Map(ctx, source, fn, params, rowmap.Option{
		Backend:         rowmap.Backend(mapArgs.backend),
		Concurrency:     mapArgs.concurrency,
		CompletionOrder: mapArgs.completionOrder,
		Schema:          mapArgs.schema,
		LogOption:       common.LogOption{Logger: logrus.StandardLogger()},
	})
	if err != nil {
		return err
	}

	if err = writeTable(cmd.OutOrStdout(), result); err != nil {
		return errors.WithMessage(err, "failed to write output")
	}

	logrus.WithFields(logrus.Fields{
		"transform": mapArgs.transform,
		"rows":      result.Len(),
		"elapsed":   time.Since(start),
	}).Info("Succeeded to map rows")

	return nil
}

func newFunc() (*rowmap.Func, error) {
	fn, ok := rowmap.Lookup(mapArgs.transform)
	if !ok {
		return nil, errors.WithMessagef(rowmap.ErrUnregisteredFunc, "unknown transform %q", mapArgs.transform)
	}

	if mapArgs.memoize <= 0 {
		return fn, nil
	}

	if rowmap.Backend(mapArgs.backend) == rowmap.BackendProcess {
		return nil, errors.New("memoize is only supported by the thread backend")
	}

	cached, err := rowmap.Memoize(fn.Apply, mapArgs.memoize)
	if err != nil {
		return nil, err
	}

	return rowmap.NewFunc(cached), nil
}

// parseParams parses key=value pairs. Values that parse as int, float or bool are typed
// accordingly, everything else is kept as string.
func parseParams(pairs []string) (rowmap.Params, error) {
	params := make(rowmap.Params, len(pairs))

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, errors.Errorf("invalid param %q, key=value expected", pair)
		}

		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			params[key] = table.Int(i)
		} else if f, err := strconv.ParseFloat(value, 64); err == nil {
			params[key] = table.Float(f)
		} else if b, err := strconv.ParseBool(value); err == nil {
			params[key] = table.Bool(b)
		} else {
			params[key] = table.String(value)
		}
	}

	return params, nil
}

func readTable(stdin io.Reader) (*table.Table, error) {
	r := stdin
	if mapArgs.input != "-" {
		file, err := os.Open(mapArgs.input)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		r = file
	}

	switch mapArgs.inputFormat {
	case formatTSV:
		return table.ReadVCF(r)
	case formatJSONL:
		return table.ReadJSONLines(r)
	default:
		return nil, errors.Errorf("unsupported input format %q", mapArgs.inputFormat)
	}
}

func writeTable(stdout io.Writer, t *table.Table) (err error) {
	w := stdout
	if mapArgs.output != "-" {
		file, createErr := os.Create(mapArgs.output)
		if createErr != nil {
			return createErr
		}
		defer func() {
			if closeErr := file.Close(); err == nil {
				err = closeErr
			}
		}()
		w = file
	}

	switch mapArgs.outputFormat {
	case formatTSV:
		return table.WriteTSV(w, t)
	case formatJSONL:
		return table.WriteJSONLines(w, t)
	default:
		return errors.Errorf("unsupported output format %q", mapArgs.outputFormat)
	}
}
