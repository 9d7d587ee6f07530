package rowmap

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/0glabs/vcfparallel/table"
	"github.com/pkg/errors"
)

// Params are the extra arguments passed unchanged to every invocation of a transform.
type Params map[string]table.Value

// Get returns the value of key, or Null if absent.
func (p Params) Get(key string) table.Value {
	return p[key]
}

// String returns the string value of key, or def if absent or not a string.
func (p Params) String(key, def string) string {
	if s, ok := p[key].Str(); ok {
		return s
	}
	return def
}

// Transform maps one row to a new row. The input row is a private copy and may be
// modified and returned.
type Transform func(ctx context.Context, row table.Row, params Params) (table.Row, error)

// Func is a transform that can be dispatched by an Executor. Only named funcs, created by
// Register, can run in worker processes.
type Func struct {
	name string
	fn   Transform
}

// NewFunc wraps fn into an anonymous Func, which is restricted to in-process execution.
func NewFunc(fn Transform) *Func {
	return &Func{fn: fn}
}

// Name returns the registered name, or an empty string for anonymous funcs.
func (f *Func) Name() string {
	return f.name
}

// Apply runs the transform on a copy of row. A panic in the transform is returned as
// error.
func (f *Func) Apply(ctx context.Context, row table.Row, params Params) (out table.Row, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("transform panicked: %v", r)
		}
	}()

	if out, err = f.fn(ctx, row.Clone(), params); err != nil {
		return nil, err
	}

	if out == nil {
		return nil, ErrNilRow
	}

	return out, nil
}

var registry = struct {
	sync.RWMutex
	funcs map[string]*Func
}{funcs: make(map[string]*Func)}

// Register makes fn available under name, both in process and to worker processes of
// the same binary. Funcs must be registered before MaybeServeWorker is called, typically
// from package init or package level variables.
//
// Register panics if name is empty or already registered.
func Register(name string, fn Transform) *Func {
	if name == "" {
		panic("rowmap: transform name is empty")
	}
	if fn == nil {
		panic("rowmap: transform is nil")
	}

	registry.Lock()
	defer registry.Unlock()

	if _, dup := registry.funcs[name]; dup {
		panic(fmt.Sprintf("rowmap: Register called twice for transform %v", name))
	}

	f := &Func{name: name, fn: fn}
	registry.funcs[name] = f

	return f
}

// Lookup returns the func registered under name.
func Lookup(name string) (*Func, bool) {
	registry.RLock()
	defer registry.RUnlock()

	f, ok := registry.funcs[name]
	return f, ok
}

// Registered returns the sorted names of all registered funcs.
func Registered() []string {
	registry.RLock()
	defer registry.RUnlock()

	names := make([]string, 0, len(registry.funcs))
	for name := range registry.funcs {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
