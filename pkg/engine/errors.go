package engine

import "fmt"

// PanicError carries a value recovered while handling a message
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
