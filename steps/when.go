package steps

import (
	"context"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/kbukum/docflow/errors"
	"github.com/kbukum/docflow/event"
	"github.com/kbukum/docflow/pipeline"
)

// UnitEnv is the environment a When expression is evaluated against.
type UnitEnv struct {
	ID           string
	Name         string
	Text         string
	Locale       string
	Translatable bool
}

// WhenStep applies an inner transform to the text units matching a boolean
// expression. Every other event passes through untouched.
//
//	steps.When(`Translatable && Name startsWith "title."`, upper)
type WhenStep struct {
	expression string
	program    *vm.Program
	inner      pipeline.Transform
}

// When compiles expression against UnitEnv. A malformed or non-boolean
// expression is rejected here rather than mid-run.
func When(expression string, inner pipeline.Transform) (*WhenStep, error) {
	if inner == nil {
		return nil, errors.MissingField("inner")
	}
	program, err := expr.Compile(expression, expr.Env(UnitEnv{}), expr.AsBool())
	if err != nil {
		return nil, errors.InvalidInput("expression", err.Error()).WithCause(err)
	}
	return &WhenStep{expression: expression, program: program, inner: inner}, nil
}

func (s *WhenStep) Name() string {
	return fmt.Sprintf("when(%s)", s.inner.Name())
}

// Release releases the inner transform.
func (s *WhenStep) Release() error { return s.inner.Release() }

// Reset resets the inner transform when it supports it.
func (s *WhenStep) Reset() error {
	if r, ok := s.inner.(pipeline.Resetter); ok {
		return r.Reset()
	}
	return nil
}

func (s *WhenStep) Apply(ctx context.Context, ev event.Event) ([]event.Event, error) {
	if err := ev.Validate(); err != nil {
		return nil, errors.Transform(s.Name(), err)
	}
	tu, ok := ev.TextUnit()
	if !ok {
		return []event.Event{ev}, nil
	}
	out, err := expr.Run(s.program, UnitEnv{
		ID:           tu.ID,
		Name:         tu.Name,
		Text:         tu.Text,
		Locale:       tu.Locale,
		Translatable: tu.Translatable,
	})
	if err != nil {
		return nil, errors.Transform(s.Name(), err).WithDetail("expression", s.expression)
	}
	if match, _ := out.(bool); !match {
		return []event.Event{ev}, nil
	}
	return s.inner.Apply(ctx, ev)
}
