package steps

import (
	"context"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kbukum/docflow/errors"
	"github.com/kbukum/docflow/event"
	"github.com/kbukum/docflow/validation"
)

// UppercaseStep upper-cases the text of translatable text units using the
// casing rules of the target locale.
type UppercaseStep struct {
	locale string
	tag    language.Tag
}

// Uppercase returns a transform that upper-cases text for targetLocale. An
// empty locale uses each unit's own locale.
func Uppercase(targetLocale string) (*UppercaseStep, error) {
	if err := validation.New().Locale("target_locale", targetLocale).Err(); err != nil {
		return nil, err
	}
	s := &UppercaseStep{locale: targetLocale, tag: language.Und}
	if targetLocale != "" {
		s.tag = language.Make(targetLocale)
	}
	return s, nil
}

func (s *UppercaseStep) Name() string   { return "uppercase" }
func (s *UppercaseStep) Release() error { return nil }
func (s *UppercaseStep) Reset() error   { return nil }

// Apply upper-cases TEXT_UNIT events and passes everything else through.
func (s *UppercaseStep) Apply(_ context.Context, ev event.Event) ([]event.Event, error) {
	return mapText(s.Name(), ev, func(tu event.TextUnit) (string, string) {
		tag := s.tag
		if s.locale == "" && tu.Locale != "" {
			tag = language.Make(tu.Locale)
		}
		// Casers are stateful; build one per unit.
		return cases.Upper(tag).String(tu.Text), s.locale
	})
}

// mapText validates ev and rewrites the text of translatable units with fn,
// which returns the new text and locale.
func mapText(step string, ev event.Event, fn func(event.TextUnit) (string, string)) ([]event.Event, error) {
	if err := ev.Validate(); err != nil {
		return nil, errors.Transform(step, err)
	}
	tu, ok := ev.TextUnit()
	if !ok || !tu.Translatable {
		return []event.Event{ev}, nil
	}
	text, locale := fn(tu)
	return []event.Event{ev.WithText(text, locale)}, nil
}
