// Package result implements a Result[T] sum type whose error side is always
// a Go error: exactly one of Ok or
// Err is ever inhabited, and composition (map/flat-map/join) never inverts
// that invariant. It exists so the dispatcher and telescope facade can chain
// fallible steps — precondition checks, argument decoding, driver calls —
// without unwinding Go's control flow with panics or sentinel zero values.
package result

// Result holds either a value of type T (Ok) or an error (Err). Never
// construct one directly; use Ok or Err.
type Result[T any] struct {
	value T
	err   error
	isOk  bool
}

// Ok wraps a successful value.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v, isOk: true}
}

// Err wraps a failure. Panics if err is nil — an Err result with no error
// is a programming error, not a valid state.
func Err[T any](err error) Result[T] {
	if err == nil {
		panic("result.Err called with nil error")
	}
	return Result[T]{err: err, isOk: false}
}

// IsOk reports whether the result holds a value.
func (r Result[T]) IsOk() bool { return r.isOk }

// IsErr reports whether the result holds an error.
func (r Result[T]) IsErr() bool { return !r.isOk }

// Unwrap returns the Ok value and the Err error. Exactly one return is the
// zero value of its type depending on IsOk.
func (r Result[T]) Unwrap() (T, error) {
	return r.value, r.err
}

// UnwrapErr returns the wrapped error, or nil if the result is Ok.
func (r Result[T]) UnwrapErr() error {
	return r.err
}

// Match is the eager reducer: onOk runs over the value if Ok, onErr over
// the error if Err.
func Match[T, R any](r Result[T], onOk func(T) R, onErr func(error) R) R {
	if r.isOk {
		return onOk(r.value)
	}
	return onErr(r.err)
}

// Map applies f to the Ok value, leaving Err untouched.
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	if r.isOk {
		return Ok(f(r.value))
	}
	return Err[U](r.err)
}

// FlatMap is the monadic bind: f only runs on Ok, and its own Result is
// returned unflattened (no nested Result is ever produced).
func FlatMap[T, U any](r Result[T], f func(T) Result[U]) Result[U] {
	if r.isOk {
		return f(r.value)
	}
	return Err[U](r.err)
}

// Join2 calls f with both values if r1 and r2 are both Ok; otherwise it
// returns the leftmost Err, verbatim, in argument order.
func Join2[A, B, R any](r1 Result[A], r2 Result[B], f func(A, B) R) Result[R] {
	a, err := r1.Unwrap()
	if err != nil {
		return Err[R](err)
	}
	b, err := r2.Unwrap()
	if err != nil {
		return Err[R](err)
	}
	return Ok(f(a, b))
}

// FirstErr inspects results left-to-right and returns the first Err
// encountered, or nil if all are Ok. This is the building block behind
// gate composition in the telescope facade: `join(precond1(), precond2(), …)`
// collapses to `FirstErr(precond1(), precond2(), …)` followed by the driver
// call when it returns nil.
func FirstErr(results ...Result[struct{}]) error {
	for _, r := range results {
		if r.IsErr() {
			return r.UnwrapErr()
		}
	}
	return nil
}

// Unit is the Result specialization for operations with no useful value.
type Unit = struct{}

// OkUnit is the canonical Ok(unit) value.
func OkUnit() Result[Unit] {
	return Ok(Unit{})
}

// Flatten applies f to every element of items left-to-right, stopping and
// returning the first Err encountered; otherwise returns Ok of the
// collected slice of U in order.
func Flatten[T, U any](items []T, f func(T) Result[U]) Result[[]U] {
	out := make([]U, 0, len(items))
	for _, item := range items {
		v, err := f(item).Unwrap()
		if err != nil {
			return Err[[]U](err)
		}
		out = append(out, v)
	}
	return Ok(out)
}
