package recovery

import (
	"fmt"
	"runtime/debug"

	"github.com/vanpelt/headcord/internal/logger"
)

// PanicError is returned in place of a panic recovered from a task.
type PanicError struct {
	Task  string
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Task, e.Value)
}

// Guard wraps a task started with errgroup.Go. A panic inside fn is logged
// with its stack and returned as a *PanicError, so the group cancels its
// siblings and the terminal still gets restored.
func Guard(task string, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				logger.Logger.Error().
					Str("task", task).
					Interface("panic", r).
					Str("stack", string(stack)).
					Msg("PANIC recovered")
				err = &PanicError{Task: task, Value: r, Stack: stack}
			}
		}()
		return fn()
	}
}
