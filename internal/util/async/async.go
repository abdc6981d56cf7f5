// Package async runs independent tasks concurrently and collects their
// errors. It backs the intra-step fan-out during provisioning, where
// each task's inputs are pre-computed and no state is shared.
package async

import (
	"context"
	"errors"
	"fmt"
)

// Task is a named unit of concurrent work.
type Task struct {
	Name string
	Func func(context.Context) error
}

// RunParallel starts every task concurrently and waits for all of them.
// Errors are joined, each prefixed with its task name, so one failing
// subnet or batch does not hide another.
func RunParallel(ctx context.Context, tasks []Task) error {
	if len(tasks) == 0 {
		return nil
	}

	type result struct {
		name string
		err  error
	}
	results := make(chan result, len(tasks))

	for _, task := range tasks {
		go func() {
			results <- result{name: task.Name, err: task.Func(ctx)}
		}()
	}

	var errs []error
	for range tasks {
		res := <-results
		if res.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.name, res.err))
		}
	}
	return errors.Join(errs...)
}
