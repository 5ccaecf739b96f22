package stream

import (
	"context"
	"errors"
	"testing"
)

type closeCounter struct {
	Iterator[int]
	closed int
}

func (c *closeCounter) Close() error {
	c.closed++
	return c.Iterator.Close()
}

func ints(items ...int) *Stream[int] {
	return From(NewSliceIterator(items))
}

// drainAll runs s and returns every value reached before the first error.
func drainAll(ctx context.Context, s *Stream[int]) ([]int, error) {
	var got []int
	err := Drain(s, func(_ context.Context, n int) error {
		got = append(got, n)
		return nil
	}).Run(ctx)
	return got, err
}

func TestDrain_Run(t *testing.T) {
	got, err := drainAll(context.Background(), ints(1, 2, 3))
	if err != nil {
		t.Fatal(err)
	}
	if !intSliceEqual(got, []int{1, 2, 3}) {
		t.Errorf("got %v, want [1 2 3]", got)
	}
}

func TestDrain_Empty(t *testing.T) {
	got, err := drainAll(context.Background(), ints())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty, got %v", got)
	}
}

func TestFrom_ClosesIterator(t *testing.T) {
	iter := &closeCounter{Iterator: NewSliceIterator([]int{4, 5})}
	got, err := drainAll(context.Background(), From[int](iter))
	if err != nil {
		t.Fatal(err)
	}
	if !intSliceEqual(got, []int{4, 5}) {
		t.Errorf("got %v, want [4 5]", got)
	}
	if iter.closed != 1 {
		t.Errorf("closed %d times, want 1", iter.closed)
	}
}

func TestDrain_SinkErrorCloses(t *testing.T) {
	iter := &closeCounter{Iterator: NewSliceIterator([]int{1, 2, 3})}
	err := Drain(From[int](iter), func(_ context.Context, n int) error {
		if n == 2 {
			return errors.New("sink full")
		}
		return nil
	}).Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if iter.closed != 1 {
		t.Errorf("iterator closed %d times, want 1", iter.closed)
	}
}

func TestFlatMap_EmptyInner(t *testing.T) {
	expanded := FlatMap(ints(1, 2, 3), func(_ context.Context, n int) (Iterator[int], error) {
		if n == 2 {
			return NewSliceIterator[int](nil), nil
		}
		return NewSliceIterator([]int{n, n * 10}), nil
	})
	got, err := drainAll(context.Background(), expanded)
	if err != nil {
		t.Fatal(err)
	}
	if !intSliceEqual(got, []int{1, 10, 3, 30}) {
		t.Errorf("got %v", got)
	}
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name string
		fn   func(int) []int
		want []int
	}{
		{"one to one", func(n int) []int { return []int{n} }, []int{1, 2, 3}},
		{"drop all", func(int) []int { return nil }, nil},
		{"split", func(n int) []int { return []int{n, -n} }, []int{1, -1, 2, -2, 3, -3}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := Expand(ints(1, 2, 3), func(_ context.Context, n int) ([]int, error) {
				return tc.fn(n), nil
			})
			got, err := drainAll(context.Background(), s)
			if err != nil {
				t.Fatal(err)
			}
			if !intSliceEqual(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestExpand_PullsLazily(t *testing.T) {
	var pulled []int
	src := Tap(ints(1, 2, 3), func(_ context.Context, n int) error {
		pulled = append(pulled, n)
		return nil
	})
	s := Expand(src, func(_ context.Context, n int) ([]int, error) { return []int{n, n}, nil })

	ctx := context.Background()
	iter := s.create(ctx)
	defer iter.Close()
	for i := 0; i < 2; i++ {
		if _, _, err := iter.Next(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if !intSliceEqual(pulled, []int{1}) {
		t.Errorf("pulled %v after consuming first expansion, want [1]", pulled)
	}
}

func TestExpand_Error(t *testing.T) {
	boom := errors.New("boom")
	s := Expand(ints(1, 2), func(_ context.Context, n int) ([]int, error) {
		if n == 2 {
			return nil, boom
		}
		return []int{n}, nil
	})
	got, err := drainAll(context.Background(), s)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if !intSliceEqual(got, []int{1}) {
		t.Errorf("got %v", got)
	}
}

func TestTap_Order(t *testing.T) {
	var seen []int
	first := Tap(ints(1, 2), func(_ context.Context, n int) error {
		seen = append(seen, n)
		return nil
	})
	second := Tap(first, func(_ context.Context, n int) error {
		seen = append(seen, -n)
		return nil
	})
	if _, err := drainAll(context.Background(), second); err != nil {
		t.Fatal(err)
	}
	if !intSliceEqual(seen, []int{1, -1, 2, -2}) {
		t.Errorf("seen %v, want inner tap before outer tap per value", seen)
	}
}

func TestTap_Error(t *testing.T) {
	s := Tap(ints(1, 2, 3), func(_ context.Context, n int) error {
		if n == 2 {
			return errors.New("tap failed")
		}
		return nil
	})
	got, err := drainAll(context.Background(), s)
	if err == nil {
		t.Fatal("expected error")
	}
	if !intSliceEqual(got, []int{1}) {
		t.Errorf("got %v", got)
	}
}

func TestGuard_StopsBeforePull(t *testing.T) {
	stop := errors.New("stop")
	var pulled []int
	src := Tap(ints(1, 2, 3), func(_ context.Context, n int) error {
		pulled = append(pulled, n)
		return nil
	})
	calls := 0
	s := Guard(src, func(context.Context) error {
		calls++
		if calls > 2 {
			return stop
		}
		return nil
	})
	got, err := drainAll(context.Background(), s)
	if !errors.Is(err, stop) {
		t.Fatalf("expected stop, got %v", err)
	}
	if !intSliceEqual(got, []int{1, 2}) || !intSliceEqual(pulled, []int{1, 2}) {
		t.Errorf("got %v pulled %v, want [1 2] for both", got, pulled)
	}
}

func TestGuard_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := Guard(ints(1), func(ctx context.Context) error { return ctx.Err() })
	got, err := drainAll(ctx, s)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want nothing", got)
	}
}

func TestSliceIterator(t *testing.T) {
	ctx := context.Background()
	iter := NewSliceIterator([]int{1, 2})
	defer iter.Close()

	v1, ok, err := iter.Next(ctx)
	if err != nil || !ok || v1 != 1 {
		t.Errorf("first Next: val=%d ok=%v err=%v", v1, ok, err)
	}
	v2, ok, err := iter.Next(ctx)
	if err != nil || !ok || v2 != 2 {
		t.Errorf("second Next: val=%d ok=%v err=%v", v2, ok, err)
	}
	_, ok, err = iter.Next(ctx)
	if err != nil || ok {
		t.Errorf("third Next should be exhausted: ok=%v err=%v", ok, err)
	}
}

func intSliceEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
