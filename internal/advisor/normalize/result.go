// Package normalize turns loosely shaped LLM JSON into typed advisor values.
//
// Demand and solution normalization are tolerant: they extract what they can
// and report failure through Result. Model ranking normalization is strict and
// returns an error for any malformed entry.
package normalize

// Result is the outcome of a tolerant normalization. Reason is set when OK is false.
type Result[T any] struct {
	Value  T
	OK     bool
	Reason string
}

func ok[T any](v T) Result[T] {
	return Result[T]{Value: v, OK: true}
}

func fail[T any](reason string) Result[T] {
	return Result[T]{Reason: reason}
}
