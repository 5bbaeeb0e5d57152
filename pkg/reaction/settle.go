package reaction

import (
	"context"
	"fmt"
	"runtime/debug"

	"golang.org/x/sync/errgroup"
)

// PanicError is recorded for a unit of work that panicked
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic recovered: %v", e.Value)
}

// SettleAll runs n units of work concurrently and waits for all of them.
// The result has one slot per unit holding that unit's error, nil on success.
// A failing or panicking unit never stops the others; limit caps how many
// units run at once, zero or less means no cap.
func SettleAll(ctx context.Context, n, limit int, fn func(ctx context.Context, i int) error) []error {
	errs := make([]error, n)
	if n == 0 {
		return errs
	}

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			errs[i] = runUnit(ctx, i, fn)
			// never short-circuit the group
			return nil
		})
	}
	_ = g.Wait()

	return errs
}

func runUnit(ctx context.Context, i int, fn func(ctx context.Context, i int) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: string(debug.Stack())}
		}
	}()
	return fn(ctx, i)
}
