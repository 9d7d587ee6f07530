package rowmap

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"

	"github.com/0glabs/vcfparallel/table"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ProcessExecutor runs transforms in a pool of worker processes. Each row is serialized
// to a worker and the output row is sent back, so workers share no state. It suits CPU
// bound transforms.
//
// Workers are started for every job and stopped before Execute returns.
//
// Rows cross the process boundary as JSON, so a row holding a NaN or infinite Float fails
// with an encoding error, while ThreadExecutor passes such values through.
type ProcessExecutor struct {
	option WorkerOption
	logger *logrus.Entry
}

var _ Executor = (*ProcessExecutor)(nil)

func NewProcessExecutor(option WorkerOption, logger *logrus.Entry) *ProcessExecutor {
	return &ProcessExecutor{
		option: option,
		logger: logger,
	}
}

// Execute implements the Executor interface.
func (executor *ProcessExecutor) Execute(ctx context.Context, job *Job) error {
	name := job.Func.Name()
	if f, ok := Lookup(name); !ok || f != job.Func {
		return errors.WithMessagef(ErrUnregisteredFunc, "func %q cannot run in worker processes", name)
	}

	if len(job.Rows) == 0 {
		return nil
	}

	workers, err := executor.startWorkers(job.routines())
	defer executor.stopWorkers(workers)
	if err != nil {
		return errors.WithMessage(err, "failed to start workers")
	}

	return job.run(ctx, func(ctx context.Context, routine, task int) (table.Row, error) {
		return workers[routine].call(ctx, &request{
			Func:   name,
			Params: job.Params,
			Row:    job.Rows[task],
		})
	})
}

func (executor *ProcessExecutor) startWorkers(n int) ([]*workerProcess, error) {
	command, err := executor.option.command()
	if err != nil {
		return nil, err
	}

	workers := make([]*workerProcess, n)

	var group errgroup.Group
	for i := range workers {
		i := i
		group.Go(func() (err error) {
			workers[i], err = startWorker(i, command, executor.option.Env, executor.logger)
			return err
		})
	}

	return workers, group.Wait()
}

func (executor *ProcessExecutor) stopWorkers(workers []*workerProcess) {
	var group errgroup.Group
	for _, w := range workers {
		if w == nil {
			continue
		}

		w := w
		group.Go(func() error {
			w.stop()
			return nil
		})
	}

	group.Wait()
}

// workerProcess is the host side of a worker. Calls are not concurrent: every worker is
// owned by a single routine.
type workerProcess struct {
	id      int
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  *bufio.Reader
	stderr  *io.PipeWriter
	logger  *logrus.Entry

	err error // sticky transport error
}

func startWorker(id int, command, env []string, logger *logrus.Entry) (*workerProcess, error) {
	logger = logger.WithField("worker", id)

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Env = append(append(os.Environ(), WorkerEnv+"=1"), env...)

	stderr := logger.WriterLevel(logrus.DebugLevel)
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		stderr.Close()
		return nil, errors.WithMessage(err, "failed to create stdin pipe")
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stderr.Close()
		return nil, errors.WithMessage(err, "failed to create stdout pipe")
	}

	if err = cmd.Start(); err != nil {
		stderr.Close()
		return nil, errors.WithMessagef(err, "failed to start worker %v", command[0])
	}

	logger.WithField("pid", cmd.Process.Pid).Debug("Worker started")

	return &workerProcess{
		id:      id,
		cmd:     cmd,
		stdin:   stdin,
		stdout:  bufio.NewReader(stdout),
		stderr:  stderr,
		logger:  logger,
	}, nil
}

// call sends req to the worker and waits for the output row. If ctx is done first, the
// worker is killed.
func (w *workerProcess) call(ctx context.Context, req *request) (table.Row, error) {
	if w.err != nil {
		return nil, w.err
	}

	frame, err := encodeFrame(req)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to encode row")
	}

	var resp response
	done := make(chan error, 1)
	go func() {
		done <- w.roundTrip(frame, &resp)
	}()

	select {
	case err = <-done:
	case <-ctx.Done():
		if err := w.cmd.Process.Kill(); err != nil {
			w.logger.WithError(err).Debug("Failed to kill worker")
		}
		<-done
		w.err = ctx.Err()
		return nil, w.err
	}

	if err != nil {
		w.err = err
		return nil, err
	}

	if resp.Error != "" {
		return nil, &WorkerError{Worker: w.id, Message: resp.Error}
	}

	if resp.Row == nil {
		return nil, ErrNilRow
	}

	return resp.Row, nil
}

func (w *workerProcess) roundTrip(frame []byte, resp *response) error {
	if _, err := w.stdin.Write(frame); err != nil {
		return errors.WithMessage(ErrWorkerExited, err.Error())
	}

	if err := readFrame(w.stdout, resp); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return ErrWorkerExited
		}
		return errors.WithMessage(err, "failed to decode worker response")
	}

	return nil
}

// stop closes the worker's stdin and reaps the process.
func (w *workerProcess) stop() {
	w.stdin.Close()

	if err := w.cmd.Wait(); err != nil && w.err == nil {
		w.logger.WithError(err).Warn("Worker exited abnormally")
	}

	w.stderr.Close()
	w.logger.Debug("Worker stopped")
}
