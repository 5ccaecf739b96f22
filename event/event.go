package event

import (
	"fmt"

	"github.com/kbukum/docflow/errors"
)

// Kind tags the variant of an Event.
type Kind string

const (
	KindStartDocument Kind = "START_DOCUMENT"
	KindEndDocument   Kind = "END_DOCUMENT"
	KindStartGroup    Kind = "START_GROUP"
	KindEndGroup      Kind = "END_GROUP"
	KindTextUnit      Kind = "TEXT_UNIT"
	KindDocumentPart  Kind = "DOCUMENT_PART"
	KindCustom        Kind = "CUSTOM"
)

var knownKinds = map[Kind]bool{
	KindStartDocument: true,
	KindEndDocument:   true,
	KindStartGroup:    true,
	KindEndGroup:      true,
	KindTextUnit:      true,
	KindDocumentPart:  true,
	KindCustom:        true,
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool { return knownKinds[k] }

// IsStructural reports whether k marks document or group boundaries.
// Transform steps must pass structural events through unchanged.
func (k Kind) IsStructural() bool {
	switch k {
	case KindStartDocument, KindEndDocument, KindStartGroup, KindEndGroup:
		return true
	}
	return false
}

// Document describes the document a stream was read from.
type Document struct {
	Name     string
	URI      string
	Locale   string
	Encoding string
	MimeType string
}

// TextUnit is a translatable piece of content.
type TextUnit struct {
	ID           string
	Name         string
	Text         string
	Locale       string
	Translatable bool
}

// Event is an immutable unit of a document stream. The zero Event is invalid.
// Events are comparable with ==.
type Event struct {
	kind Kind
	id   string
	name string
	text string
	doc  Document
	unit TextUnit
}

// StartDocument opens a document stream.
func StartDocument(doc Document) Event {
	return Event{kind: KindStartDocument, id: doc.Name, name: doc.Name, doc: doc}
}

// EndDocument closes the document opened with the same name.
func EndDocument(name string) Event {
	return Event{kind: KindEndDocument, id: name, name: name}
}

// StartGroup opens a nested group (a table, a list, a section).
func StartGroup(id, name string) Event {
	return Event{kind: KindStartGroup, id: id, name: name}
}

// EndGroup closes the group with the given id.
func EndGroup(id string) Event {
	return Event{kind: KindEndGroup, id: id}
}

// Text wraps a text unit.
func Text(tu TextUnit) Event {
	return Event{kind: KindTextUnit, id: tu.ID, name: tu.Name, text: tu.Text, unit: tu}
}

// Part carries non-translatable skeleton content that sinks copy verbatim.
func Part(id, text string) Event {
	return Event{kind: KindDocumentPart, id: id, text: text}
}

// Custom carries step-specific data that other steps ignore.
func Custom(name, data string) Event {
	return Event{kind: KindCustom, name: name, text: data}
}

func (e Event) Kind() Kind     { return e.kind }
func (e Event) ID() string     { return e.id }
func (e Event) Name() string   { return e.name }
func (e Event) IsZero() bool   { return e == Event{} }
func (e Event) String() string { return fmt.Sprintf("%s(%s)", e.kind, e.id) }

// Text returns the content of a text unit, a document part or a custom event.
func (e Event) Text() string { return e.text }

// Document returns the document payload of a START_DOCUMENT event.
func (e Event) Document() (Document, bool) {
	return e.doc, e.kind == KindStartDocument
}

// TextUnit returns the payload of a TEXT_UNIT event.
func (e Event) TextUnit() (TextUnit, bool) {
	return e.unit, e.kind == KindTextUnit
}

// WithText returns a copy of e carrying new content. For text units locale
// becomes the unit's locale; an empty locale keeps the current one. Events
// without content are returned unchanged.
func (e Event) WithText(text, locale string) Event {
	switch e.kind {
	case KindTextUnit:
		tu := e.unit
		tu.Text = text
		if locale != "" {
			tu.Locale = locale
		}
		return Text(tu)
	case KindDocumentPart, KindCustom:
		e.text = text
		return e
	}
	return e
}

// Validate reports an event that is missing its required payload.
func (e Event) Validate() error {
	switch {
	case e.IsZero():
		return errors.InvalidInput("kind", "zero event")
	case !e.kind.Valid():
		return errors.InvalidInput("kind", fmt.Sprintf("unknown event kind %q", e.kind))
	case e.kind == KindTextUnit && e.unit.ID == "":
		return errors.MissingField("id").WithDetail("kind", string(e.kind))
	case (e.kind == KindStartGroup || e.kind == KindEndGroup) && e.id == "":
		return errors.MissingField("id").WithDetail("kind", string(e.kind))
	case e.kind == KindCustom && e.name == "":
		return errors.MissingField("name").WithDetail("kind", string(e.kind))
	}
	return nil
}
