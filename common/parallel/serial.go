package parallel

import (
	"context"
	"runtime"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var validate = validator.New()

// Serial executes tasks [0, tasks) on a bounded set of goroutines and collects results.
//
// Results are collected in task order unless option.Unordered is set, in which case they
// are collected in completion order. The first error returned by ParallelDo or
// ParallelCollect stops dispatching, cancels the context passed to running tasks and is
// returned once every routine has terminated.
func Serial(ctx context.Context, parallelizable Interface, tasks int, option ...SerialOption) error {
	if tasks <= 0 {
		return nil
	}

	var opt SerialOption
	if len(option) > 0 {
		opt = option[0]
	}
	if err := validate.Struct(opt); err != nil {
		return errors.WithMessage(err, "invalid serial option")
	}
	opt.Normalize(tasks)

	channelLen := max(opt.Routines, opt.Window)
	taskCh := make(chan int, channelLen)
	resultCh := make(chan *Result, channelLen)

	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// start routines to do tasks
	for i := 0; i < opt.Routines; i++ {
		wg.Add(1)
		go work(ctx, i, parallelizable, taskCh, resultCh, &wg)
	}

	c := collector{
		parallelizable: parallelizable,
		taskCh:         taskCh,
		resultCh:       resultCh,
		tasks:          tasks,
		channelLen:     channelLen,
		hasWindow:      opt.Window > 0,
	}

	var err error
	if opt.Unordered {
		err = c.collectUnordered(ctx)
	} else {
		err = c.collect(ctx)
	}

	// notify all routines to terminate
	cancel()
	close(taskCh)

	// wait for termination for all routines
	wg.Wait()

	return err
}

func work(ctx context.Context, routine int, parallelizable Interface, taskCh <-chan int, resultCh chan<- *Result, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-taskCh:
			if !ok {
				return
			}

			val, err := parallelizable.ParallelDo(ctx, routine, task)

			select {
			case resultCh <- &Result{routine, task, val, err}:
			case <-ctx.Done():
				return
			}

			if err != nil {
				return
			}
		}
	}
}

type collector struct {
	parallelizable Interface
	taskCh         chan<- int
	resultCh       <-chan *Result
	tasks          int
	channelLen     int
	hasWindow      bool
}

func (c *collector) next(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-c.resultCh:
		if result.err != nil {
			return nil, result.err
		}
		return result, nil
	}
}

// fill dispatches the first batch of tasks.
//
// if hasWindow = true, channelLen == window, fill window first
// if hasWindow = false, channelLen = routines
func (c *collector) fill() {
	for i := 0; i < c.channelLen && i < c.tasks; i++ {
		c.taskCh <- i
	}
}

// collect hands results to ParallelCollect in task order.
func (c *collector) collect(ctx context.Context) error {
	c.fill()

	var next, cnt int
	cache := map[int]*Result{}

	for next < c.tasks {
		result, err := c.next(ctx)
		if err != nil {
			return err
		}

		cache[result.Task] = result

		// handle task in sequence
		for cache[next] != nil {
			if err := c.parallelizable.ParallelCollect(cache[next]); err != nil {
				return err
			}

			// dispatch new task
			if c.hasWindow {
				if newTask := next + c.channelLen; newTask < c.tasks {
					c.taskCh <- newTask
				}
			}

			// clear cache and move window forward
			delete(cache, next)
			next++
		}

		if !c.hasWindow {
			if newTask := cnt + c.channelLen; newTask < c.tasks {
				c.taskCh <- newTask
			}
		}
		cnt++
	}

	return nil
}

// collectUnordered hands results to ParallelCollect as soon as they arrive. Window has no
// effect in this mode.
func (c *collector) collectUnordered(ctx context.Context) error {
	c.fill()

	for cnt := 0; cnt < c.tasks; cnt++ {
		result, err := c.next(ctx)
		if err != nil {
			return err
		}

		if err := c.parallelizable.ParallelCollect(result); err != nil {
			return err
		}

		if newTask := cnt + c.channelLen; newTask < c.tasks {
			c.taskCh <- newTask
		}
	}

	return nil
}

type SerialOption struct {
	Routines  int `validate:"gte=0"`
	Window    int `validate:"gte=0"`
	Unordered bool
}

func (opt *SerialOption) Normalize(tasks int) {
	// 0 < routines <= tasks
	if opt.Routines == 0 {
		opt.Routines = runtime.GOMAXPROCS(0)
	}

	if opt.Routines > tasks {
		opt.Routines = tasks
	}

	// window disabled
	if opt.Window == 0 || opt.Unordered {
		opt.Window = 0
		return
	}

	// routines <= window <= tasks
	if opt.Window < opt.Routines {
		opt.Window = opt.Routines
	}

	if opt.Window > tasks {
		opt.Window = tasks
	}
}
