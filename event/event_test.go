package event

import (
	"testing"

	"github.com/kbukum/docflow/errors"
)

func TestKind_IsStructural(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindStartDocument, true},
		{KindEndDocument, true},
		{KindStartGroup, true},
		{KindEndGroup, true},
		{KindTextUnit, false},
		{KindDocumentPart, false},
		{KindCustom, false},
	}
	for _, tc := range tests {
		t.Run(string(tc.kind), func(t *testing.T) {
			if got := tc.kind.IsStructural(); got != tc.want {
				t.Errorf("IsStructural() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEvent_WithText_ReturnsNewValue(t *testing.T) {
	orig := Text(TextUnit{ID: "1", Text: "hello", Locale: "en", Translatable: true})
	changed := orig.WithText("HELLO", "fr")

	if orig.Text() != "hello" {
		t.Errorf("original mutated: %q", orig.Text())
	}
	tu, ok := changed.TextUnit()
	if !ok {
		t.Fatal("expected text unit payload")
	}
	if tu.Text != "HELLO" || tu.Locale != "fr" || !tu.Translatable || tu.ID != "1" {
		t.Errorf("unexpected payload %+v", tu)
	}
	if changed.Text() != "HELLO" {
		t.Errorf("expected Text() to follow payload, got %q", changed.Text())
	}
}

func TestEvent_WithText_KeepsLocaleWhenEmpty(t *testing.T) {
	ev := Text(TextUnit{ID: "1", Text: "a", Locale: "en"}).WithText("b", "")
	tu, _ := ev.TextUnit()
	if tu.Locale != "en" {
		t.Errorf("expected locale en, got %q", tu.Locale)
	}
}

func TestEvent_WithText_StructuralUnchanged(t *testing.T) {
	start := StartDocument(Document{Name: "doc.txt"})
	if got := start.WithText("x", "fr"); got != start {
		t.Errorf("expected structural event unchanged, got %v", got)
	}
}

func TestEvent_Payloads(t *testing.T) {
	start := StartDocument(Document{Name: "a.txt", URI: "file:///a.txt", Locale: "en", Encoding: "utf-8"})
	doc, ok := start.Document()
	if !ok || doc.URI != "file:///a.txt" {
		t.Errorf("unexpected document payload %+v (ok=%v)", doc, ok)
	}
	if _, ok := start.TextUnit(); ok {
		t.Error("START_DOCUMENT must not expose a text unit")
	}
	if _, ok := Part("p1", "x").Document(); ok {
		t.Error("DOCUMENT_PART must not expose a document")
	}
}

func TestEvent_Validate(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		code errors.ErrorCode
	}{
		{"zero", Event{}, errors.ErrCodeInvalidInput},
		{"unknown kind", Event{kind: "BOGUS"}, errors.ErrCodeInvalidInput},
		{"text unit without id", Text(TextUnit{Text: "x"}), errors.ErrCodeMissingField},
		{"group without id", StartGroup("", "g"), errors.ErrCodeMissingField},
		{"custom without name", Custom("", "data"), errors.ErrCodeMissingField},
		{"valid text unit", Text(TextUnit{ID: "1"}), ""},
		{"valid end document", EndDocument("d"), ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.ev.Validate()
			if tc.code == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.HasCode(err, tc.code) {
				t.Errorf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestRecord_RoundTrip(t *testing.T) {
	events := []Event{
		StartDocument(Document{Name: "a", URI: "u", Locale: "en", Encoding: "utf-8", MimeType: "text/plain"}),
		StartGroup("g1", "list"),
		Text(TextUnit{ID: "1", Name: "n", Text: "hi", Locale: "en", Translatable: true}),
		Part("p1", "  "),
		Custom("note", "data"),
		EndGroup("g1"),
		EndDocument("a"),
	}
	for _, ev := range events {
		got, err := FromRecord(ev.ToRecord())
		if err != nil {
			t.Fatalf("%v: %v", ev, err)
		}
		if got != ev {
			t.Errorf("round trip changed %v into %v", ev, got)
		}
	}
}

func TestFromRecord_Invalid(t *testing.T) {
	if _, err := FromRecord(Record{Kind: "NOPE"}); err == nil {
		t.Error("expected error for unknown kind")
	}
	if _, err := FromRecord(Record{Kind: KindTextUnit, Text: "no id"}); !errors.HasCode(err, errors.ErrCodeMissingField) {
		t.Errorf("expected MISSING_FIELD, got %v", err)
	}
}
