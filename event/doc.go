// Package event defines the immutable units of a document's content stream.
//
// A source step turns a raw document into a sequence of Events; transform
// steps replace Events with new values; a sink step serializes them. Events
// carry a Kind tag and a payload that is read through accessor methods only,
// so an Event can be shared between steps without copying.
//
//	ev := event.Text(event.TextUnit{ID: "1", Text: "hello", Translatable: true})
//	upper := ev.WithText("HELLO", "fr")
//
// The end of a stream is not an Event: iterators report it out of band.
package event
