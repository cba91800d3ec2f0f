package engine

import "fmt"

// EvaluationError reports that the evaluator failed or returned output the
// search cannot use. It always aborts the search.
type EvaluationError struct {
	Err error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation failed: %v", e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}
