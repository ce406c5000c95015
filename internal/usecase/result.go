package usecase

// Result carries either a Value or an Err, never both.
type Result[T any] struct {
	Value T
	Err   *Error
}

func (r Result[T]) OK() bool {
	return r.Err == nil
}

func succeed[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

func fail[T any](err *Error) Result[T] {
	return Result[T]{Err: err}
}
