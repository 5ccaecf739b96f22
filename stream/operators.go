package stream

import (
	"context"
)

// FlatMap transforms each value into an iterator and flattens the results.
func FlatMap[I, O any](s *Stream[I], fn func(context.Context, I) (Iterator[O], error)) *Stream[O] {
	return &Stream[O]{
		create: func(ctx context.Context) Iterator[O] {
			return &flatMapIter[I, O]{source: s.create(ctx), fn: fn}
		},
	}
}

// Expand replaces each value with zero or more values, in order. The next
// upstream value is only pulled once the previous expansion is fully consumed.
func Expand[I, O any](s *Stream[I], fn func(context.Context, I) ([]O, error)) *Stream[O] {
	return FlatMap(s, func(ctx context.Context, in I) (Iterator[O], error) {
		outs, err := fn(ctx, in)
		if err != nil {
			return nil, err
		}
		return NewSliceIterator(outs), nil
	})
}

// Tap calls fn as a side-effect for each value, then passes the value through unchanged.
func Tap[T any](s *Stream[T], fn func(context.Context, T) error) *Stream[T] {
	return &Stream[T]{
		create: func(ctx context.Context) Iterator[T] {
			return &tapIter[T]{source: s.create(ctx), fn: fn}
		},
	}
}

// Guard calls check before every pull from s. A non-nil error ends the
// stream with that error without pulling.
func Guard[T any](s *Stream[T], check func(context.Context) error) *Stream[T] {
	return &Stream[T]{
		create: func(ctx context.Context) Iterator[T] {
			return &guardIter[T]{source: s.create(ctx), check: check}
		},
	}
}

// --- Iterator implementations ---

type flatMapIter[I, O any] struct {
	source  Iterator[I]
	fn      func(context.Context, I) (Iterator[O], error)
	current Iterator[O]
}

func (it *flatMapIter[I, O]) Next(ctx context.Context) (result O, ok bool, err error) {
	for {
		if it.current != nil {
			val, ok, err := it.current.Next(ctx)
			if err != nil {
				var zero O
				return zero, false, err
			}
			if ok {
				return val, true, nil
			}
			_ = it.current.Close()
			it.current = nil
		}
		in, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			var zero O
			return zero, false, err
		}
		inner, err := it.fn(ctx, in)
		if err != nil {
			var zero O
			return zero, false, err
		}
		it.current = inner
	}
}

func (it *flatMapIter[I, O]) Close() error {
	if it.current != nil {
		_ = it.current.Close()
	}
	return it.source.Close()
}

type tapIter[T any] struct {
	source Iterator[T]
	fn     func(context.Context, T) error
}

func (it *tapIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		return val, ok, err
	}
	if err := it.fn(ctx, val); err != nil {
		var zero T
		return zero, false, err
	}
	return val, true, nil
}

func (it *tapIter[T]) Close() error { return it.source.Close() }

type guardIter[T any] struct {
	source Iterator[T]
	check  func(context.Context) error
}

func (it *guardIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	if err := it.check(ctx); err != nil {
		var zero T
		return zero, false, err
	}
	return it.source.Next(ctx)
}

func (it *guardIter[T]) Close() error { return it.source.Close() }
