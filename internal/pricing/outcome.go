package pricing

// Outcome is the result of one quote source: either an available value or
// the reason it is unavailable.
type Outcome[T any] struct {
	value T
	ok    bool
	err   error
}

// Available wraps a successfully fetched value.
func Available[T any](value T) Outcome[T] {
	return Outcome[T]{value: value, ok: true}
}

// Unavailable records why a source produced nothing.
func Unavailable[T any](err error) Outcome[T] {
	return Outcome[T]{err: err}
}

// Get returns the value and whether it is available.
func (o Outcome[T]) Get() (T, bool) {
	return o.value, o.ok
}

// Err returns the failure for an unavailable outcome.
func (o Outcome[T]) Err() error {
	return o.err
}

func fromResult[T any](value T, err error) Outcome[T] {
	if err != nil {
		return Unavailable[T](err)
	}
	return Available(value)
}
