package mip

import (
	"context"
	"errors"
	"time"
)

var (
	ErrTimeLimit   = errors.New("time limit reached")
	ErrInterrupted = errors.New("search interrupted")
)

type Status uint8

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusTimeLimit
	StatusInterrupted
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusTimeLimit:
		return "time_limit"
	case StatusInterrupted:
		return "interrupted"
	default:
		return "error"
	}
}

// CallbackContext is handed to the lazy callback for one integer-feasible candidate.
// AddLazy is the engine's submission channel: it is safe for concurrent use and rows submitted
// through it stay in the model for the rest of the search.
type CallbackContext interface {
	Values() []float64
	AddLazy(c Constraint)
}

// LazyCallback is invoked each time the engine finds an integer-feasible candidate. rows added that
// are violated by the candidate reject it. engines may invoke the callback from several goroutines.
type LazyCallback func(cb CallbackContext) error

type Engine interface {
	Name() string
	Solve(ctx context.Context, model *Model, callback LazyCallback) (*Result, error)
}

type Stats struct {
	Nodes           int64
	Callbacks       int64
	LazyConstraints int64
	Iterations      int64
	Duration        time.Duration
}

type Result struct {
	Status    Status
	Values    []float64
	Objective float64
	Stats     Stats
}

// HasSolution is true when Values holds a feasible assignment (proven optimal or best found).
func (r *Result) HasSolution() bool {
	return r.Values != nil && (r.Status == StatusOptimal || r.Status == StatusTimeLimit ||
		r.Status == StatusInterrupted)
}

type Options struct {
	Workers   int
	TimeLimit time.Duration
}

type Option func(*Options)

func WithWorkers(workers int) Option {
	return func(o *Options) {
		o.Workers = workers
	}
}

func WithTimeLimit(limit time.Duration) Option {
	return func(o *Options) {
		o.TimeLimit = limit
	}
}

func NewOptions(opts ...Option) Options {
	o := Options{Workers: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	return o
}

// Deadline derives the search context from the time limit, if any.
func (o Options) Deadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.TimeLimit > 0 {
		return context.WithTimeout(ctx, o.TimeLimit)
	}
	return context.WithCancel(ctx)
}

// StatusFromContext maps the state of an expired search context to a status.
func StatusFromContext(ctx context.Context) Status {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return StatusTimeLimit
	}
	return StatusInterrupted
}

// callbackContext is the plain CallbackContext used by engines that collect rows in a slice.
type callbackContext struct {
	values []float64
	add    func(c Constraint)
}

func NewCallbackContext(values []float64, add func(c Constraint)) CallbackContext {
	return &callbackContext{values: values, add: add}
}

func (c *callbackContext) Values() []float64 {
	return c.values
}

func (c *callbackContext) AddLazy(row Constraint) {
	c.add(row)
}
