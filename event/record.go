package event

// Record is the flat, serializable form of an Event.
type Record struct {
	Kind         Kind   `json:"kind"`
	ID           string `json:"id,omitempty"`
	Name         string `json:"name,omitempty"`
	Text         string `json:"text,omitempty"`
	Locale       string `json:"locale,omitempty"`
	Translatable bool   `json:"translatable,omitempty"`
	URI          string `json:"uri,omitempty"`
	Encoding     string `json:"encoding,omitempty"`
	MimeType     string `json:"mime_type,omitempty"`
}

// ToRecord flattens e.
func (e Event) ToRecord() Record {
	r := Record{Kind: e.kind, ID: e.id, Name: e.name, Text: e.text}
	switch e.kind {
	case KindStartDocument:
		r.Locale = e.doc.Locale
		r.URI = e.doc.URI
		r.Encoding = e.doc.Encoding
		r.MimeType = e.doc.MimeType
	case KindTextUnit:
		r.Locale = e.unit.Locale
		r.Translatable = e.unit.Translatable
	}
	return r
}

// FromRecord rebuilds an Event and validates it.
func FromRecord(r Record) (Event, error) {
	var ev Event
	switch r.Kind {
	case KindStartDocument:
		ev = StartDocument(Document{
			Name: r.Name, URI: r.URI, Locale: r.Locale, Encoding: r.Encoding, MimeType: r.MimeType,
		})
	case KindEndDocument:
		ev = EndDocument(r.Name)
	case KindStartGroup:
		ev = StartGroup(r.ID, r.Name)
	case KindEndGroup:
		ev = EndGroup(r.ID)
	case KindTextUnit:
		ev = Text(TextUnit{ID: r.ID, Name: r.Name, Text: r.Text, Locale: r.Locale, Translatable: r.Translatable})
	case KindDocumentPart:
		ev = Part(r.ID, r.Text)
	case KindCustom:
		ev = Custom(r.Name, r.Text)
	default:
		ev = Event{kind: r.Kind}
	}
	if err := ev.Validate(); err != nil {
		return Event{}, err
	}
	return ev, nil
}
