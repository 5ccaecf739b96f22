// Package stream provides lazy, pull-based iterators and the operators the
// document pipeline composes them with.
//
// Streams do no work until the Runnable built by Drain is run. Each stage pulls from the previous one on demand, so a slow sink
// naturally holds back the source.
//
// # Operators
//
//   - FlatMap: transform each value into an iterator and flatten
//   - Expand: replace each value with zero or more values
//   - Tap: side-effect without altering the value
//   - Guard: run a check before every pull and stop on error
//
// # Usage
//
//	src := stream.From(iter)
//	guarded := stream.Guard(src, func(ctx context.Context) error { return ctx.Err() })
//	upper := stream.Expand(guarded, func(ctx context.Context, ev event.Event) ([]event.Event, error) {
//	    return step.Apply(ctx, ev)
//	})
//	err := stream.Drain(upper, sink.Write).Run(ctx)
package stream
