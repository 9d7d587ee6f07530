package rowmap

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/0glabs/vcfparallel/table"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// WorkerEnv is set in the environment of worker processes.
const WorkerEnv = "VCFPARALLEL_WORKER"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// request is a newline delimited JSON frame sent to a worker process.
type request struct {
	Func   string    `json:"func"`
	Params Params    `json:"params,omitempty"`
	Row    table.Row `json:"row"`
}

// response is the reply to a request, with either Row or Error set.
type response struct {
	Row   table.Row `json:"row,omitempty"`
	Error string    `json:"error,omitempty"`
}

// encodeFrame marshals v followed by a newline.
func encodeFrame(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// readFrame decodes the next newline delimited frame from r into v. It returns io.EOF
// when r ends at a frame boundary and io.ErrUnexpectedEOF when r ends inside a frame.
func readFrame(r *bufio.Reader, v interface{}) error {
	line, err := r.ReadBytes('\n')
	if err != nil {
		if err != io.EOF {
			return err
		}
		if len(line) == 0 {
			return io.EOF
		}
		return io.ErrUnexpectedEOF
	}

	return json.Unmarshal(line, v)
}

// MaybeServeWorker turns the current process into a worker when it was started by a
// ProcessExecutor, and exits once the host closes the worker's stdin. Otherwise it
// returns immediately.
//
// Programs using the process backend call it first thing in main, or in TestMain for
// tests.
func MaybeServeWorker() {
	if os.Getenv(WorkerEnv) == "" {
		return
	}

	logger := logrus.New()
	logger.Out = os.Stderr

	if err := ServeWorker(context.Background(), os.Stdin, os.Stdout); err != nil {
		logger.WithError(err).Error("Worker terminated")
		os.Exit(1)
	}

	os.Exit(0)
}

// ServeWorker answers requests read from r on w until r is exhausted.
func ServeWorker(ctx context.Context, r io.Reader, w io.Writer) error {
	reader := bufio.NewReader(r)

	for {
		var req request
		if err := readFrame(reader, &req); err != nil {
			if err == io.EOF {
				return nil
			}
			return errors.WithMessage(err, "failed to decode request")
		}

		frame, err := encodeFrame(serve(ctx, &req))
		if err != nil {
			frame, err = encodeFrame(&response{Error: errors.WithMessage(err, "failed to encode row").Error()})
			if err != nil {
				return errors.WithMessage(err, "failed to encode response")
			}
		}

		if _, err = w.Write(frame); err != nil {
			return errors.WithMessage(err, "failed to write response")
		}
	}
}

func serve(ctx context.Context, req *request) *response {
	f, ok := Lookup(req.Func)
	if !ok {
		return &response{Error: errors.WithMessagef(ErrUnregisteredFunc, "func %v", req.Func).Error()}
	}

	row, err := f.Apply(ctx, req.Row, req.Params)
	if err != nil {
		return &response{Error: err.Error()}
	}

	return &response{Row: row}
}
