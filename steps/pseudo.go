package steps

import (
	"context"
	"strings"

	"github.com/kbukum/docflow/event"
	"github.com/kbukum/docflow/validation"
)

const (
	pseudoFrom = "AaEeIiOoUuYyCcDdNn"
	pseudoTo   = "ÂåÉèÏìØõÛüÝÿÇçÐðÑñ"
)

var pseudoReplacer = func() *strings.Replacer {
	from, to := []rune(pseudoFrom), []rune(pseudoTo)
	pairs := make([]string, 0, 2*len(from))
	for i := range from {
		pairs = append(pairs, string(from[i]), string(to[i]))
	}
	return strings.NewReplacer(pairs...)
}()

// PseudoTranslateStep replaces letters with accented look-alikes so that
// text which skipped translation stands out in the output.
type PseudoTranslateStep struct {
	locale string
}

// PseudoTranslate returns a pseudo-translation transform that marks its
// output with targetLocale.
func PseudoTranslate(targetLocale string) (*PseudoTranslateStep, error) {
	if err := validation.New().Locale("target_locale", targetLocale).Err(); err != nil {
		return nil, err
	}
	return &PseudoTranslateStep{locale: targetLocale}, nil
}

func (s *PseudoTranslateStep) Name() string   { return "pseudo-translate" }
func (s *PseudoTranslateStep) Release() error { return nil }
func (s *PseudoTranslateStep) Reset() error   { return nil }

func (s *PseudoTranslateStep) Apply(_ context.Context, ev event.Event) ([]event.Event, error) {
	return mapText(s.Name(), ev, func(tu event.TextUnit) (string, string) {
		return pseudoReplacer.Replace(tu.Text), s.locale
	})
}
