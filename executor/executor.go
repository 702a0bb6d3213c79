// Package executor provides the worker executors request processing is
// dispatched to, keeping handler code off the reactor goroutine.
package executor

import (
	"github.com/pkg/errors"
)

// Executor runs submitted tasks on worker goroutines. Submission must never
// block: the reactor calls it from inside a callback.
type Executor interface {
	Execute(task func()) error
}

// ErrSaturated is reported when no worker can take the task right now.
var ErrSaturated = errors.New("all workers are busy")

// Go is the unbounded executor: a fresh goroutine per task.
type Go struct{}

func (Go) Execute(task func()) error {
	go task()
	return nil
}
