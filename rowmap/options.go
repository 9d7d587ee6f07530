package rowmap

import (
	"os"
	"time"

	"github.com/0glabs/vcfparallel/common"
	"github.com/0glabs/vcfparallel/table"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultReportInterval is the interval to report progress at info level.
const DefaultReportInterval = time.Minute

// Backend selects the built-in Executor.
type Backend string

const (
	BackendThread  Backend = "thread"  // goroutines sharing the host process memory
	BackendProcess Backend = "process" // isolated worker processes
)

type Option struct {
	Backend Backend `validate:"omitempty,oneof=thread process"` // default thread

	// Concurrency is the number of goroutines or worker processes. It defaults to
	// GOMAXPROCS for both backends and never exceeds the number of rows.
	Concurrency int `validate:"gte=0"`

	// CompletionOrder collects results as they complete instead of in row order. The
	// (CHROM, POS) sort is applied either way.
	CompletionOrder bool

	// Schema declares the output columns. When set, output rows with any other column
	// fail the batch and the result has exactly these columns.
	Schema []string `validate:"unique,dive,required"`

	Worker WorkerOption

	ReportInterval time.Duration `validate:"gte=0"` // default DefaultReportInterval

	// Executor overrides Backend with a custom execution strategy.
	Executor Executor `validate:"-"`

	LogOption common.LogOption `validate:"-"`
}

// WorkerOption configures worker processes of the process backend.
type WorkerOption struct {
	// Command to start a worker, defaults to the running executable. The program must
	// call MaybeServeWorker at startup and register the same transforms.
	Command []string `validate:"omitempty,dive,required"`
	Env     []string // extra environment variables as key=value
}

var validate = validator.New()

func (opt *Option) validate() error {
	return validate.Struct(opt)
}

func (opt *Option) backend() Backend {
	if opt.Backend == "" {
		return BackendThread
	}
	return opt.Backend
}

func (opt *Option) reportInterval() time.Duration {
	if opt.ReportInterval == 0 {
		return DefaultReportInterval
	}
	return opt.ReportInterval
}

func (opt *Option) executor(logger *logrus.Entry) Executor {
	if opt.Executor != nil {
		return opt.Executor
	}

	if opt.backend() == BackendProcess {
		return NewProcessExecutor(opt.Worker, logger)
	}

	return NewThreadExecutor()
}

// checkSchema ensures row only carries declared columns.
func (opt *Option) checkSchema(row table.Row) error {
	if len(opt.Schema) == 0 {
		return nil
	}

	for col := range row {
		if !contains(opt.Schema, col) {
			return errors.WithMessagef(ErrSchemaViolation, "undeclared column %v", col)
		}
	}

	return nil
}

func (opt *WorkerOption) command() ([]string, error) {
	if len(opt.Command) > 0 {
		return opt.Command, nil
	}

	executable, err := os.Executable()
	if err != nil {
		return nil, errors.WithMessage(err, "failed to locate executable")
	}

	return []string{executable}, nil
}

func contains(items []string, item string) bool {
	for _, v := range items {
		if v == item {
			return true
		}
	}
	return false
}
