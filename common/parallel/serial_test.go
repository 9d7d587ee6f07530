package parallel

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type foo struct {
	t      *testing.T
	result []int
}

func (f *foo) ParallelDo(ctx context.Context, routine, task int) (interface{}, error) {
	return task * task, nil
}

func (f *foo) ParallelCollect(result *Result) error {
	assert.Nil(f.t, result.err)
	assert.Equal(f.t, len(f.result), result.Task)
	assert.Equal(f.t, result.Task*result.Task, result.Value.(int))

	f.result = append(f.result, result.Value.(int))

	return nil
}

func TestSerial(t *testing.T) {
	f := foo{t, nil}

	tasks := 100

	err := Serial(context.Background(), &f, tasks, SerialOption{Routines: 4, Window: 16})
	assert.Nil(t, err)
	assert.Equal(t, tasks, len(f.result))

	for i := 0; i < tasks; i++ {
		assert.Equal(t, i*i, f.result[i])
	}
}

func TestSerialWithoutWindow(t *testing.T) {
	f := foo{t, nil}

	err := Serial(context.Background(), &f, 37, SerialOption{Routines: 5})
	assert.Nil(t, err)
	assert.Equal(t, 37, len(f.result))
}

// slowFirst delays low task indices so that completion order differs from task order.
type slowFirst struct {
	tasks     int
	collected []int
}

func (s *slowFirst) ParallelDo(ctx context.Context, routine, task int) (interface{}, error) {
	time.Sleep(time.Duration(s.tasks-task) * time.Millisecond)
	return task, nil
}

func (s *slowFirst) ParallelCollect(result *Result) error {
	s.collected = append(s.collected, result.Value.(int))
	return nil
}

func TestSerialUnordered(t *testing.T) {
	s := slowFirst{tasks: 20}

	err := Serial(context.Background(), &s, s.tasks, SerialOption{Routines: 20, Unordered: true})
	assert.Nil(t, err)
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19}, s.collected)
}

type failing struct {
	failAt    int
	started   atomic.Int32
	collected int
}

var errTask = errors.New("task failed")

func (f *failing) ParallelDo(ctx context.Context, routine, task int) (interface{}, error) {
	f.started.Add(1)
	if task == f.failAt {
		return nil, errTask
	}
	return task, nil
}

func (f *failing) ParallelCollect(result *Result) error {
	f.collected++
	return nil
}

func TestSerialFailFast(t *testing.T) {
	f := failing{failAt: 0}

	err := Serial(context.Background(), &f, 1000, SerialOption{Routines: 2})
	assert.True(t, errors.Is(err, errTask))
	assert.Equal(t, 0, f.collected)
	assert.Less(t, int(f.started.Load()), 1000)
}

func TestSerialCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := foo{t, nil}
	err := Serial(ctx, &f, 10, SerialOption{Routines: 2})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSerialInvalidOption(t *testing.T) {
	f := foo{t, nil}
	err := Serial(context.Background(), &f, 10, SerialOption{Routines: -1})
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	opt := SerialOption{Routines: 8, Window: 4}
	opt.Normalize(6)
	assert.Equal(t, 6, opt.Routines)
	assert.Equal(t, 6, opt.Window)

	opt = SerialOption{Routines: 2, Window: 10, Unordered: true}
	opt.Normalize(6)
	assert.Equal(t, 0, opt.Window)
}
