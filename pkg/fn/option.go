package fn

// Option[T] is a value that may be absent. Unlike Result it carries no
// error: absence is an expected outcome, not a failure.
type Option[T any] struct {
	val  T
	some bool
}

// Some creates a present Option.
func Some[T any](v T) Option[T] {
	return Option[T]{val: v, some: true}
}

// None creates an absent Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// IsSome returns true if a value is present.
func (o Option[T]) IsSome() bool { return o.some }

// IsNone returns true if no value is present.
func (o Option[T]) IsNone() bool { return !o.some }

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) { return o.val, o.some }

// OrElse returns the value or a fallback when absent.
func (o Option[T]) OrElse(fallback T) T {
	if !o.some {
		return fallback
	}
	return o.val
}

// MapOption transforms a present value, leaving None untouched.
func MapOption[T, U any](o Option[T], f func(T) U) Option[U] {
	if !o.some {
		return None[U]()
	}
	return Some(f(o.val))
}

// FilterOption keeps a present value only if pred holds.
func FilterOption[T any](o Option[T], pred func(T) bool) Option[T] {
	if o.some && pred(o.val) {
		return o
	}
	return None[T]()
}

// FirstSome returns the first present option, or None.
func FirstSome[T any](opts ...Option[T]) Option[T] {
	for _, o := range opts {
		if o.some {
			return o
		}
	}
	return None[T]()
}
