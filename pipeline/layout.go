package pipeline

import (
	"fmt"

	"github.com/kbukum/docflow/errors"
)

type role int

const (
	roleSource role = iota
	roleTransform
	roleSink
)

// roleOf reports the first role s can play. Position in the pipeline decides
// the role actually used.
func roleOf(s Step) (role, bool) {
	switch s.(type) {
	case Source:
		return roleSource, true
	case Transform:
		return roleTransform, true
	case Sink:
		return roleSink, true
	}
	return 0, false
}

// layout is a step list split by role.
type layout struct {
	source     Source
	transforms []Transform
	sink       Sink
}

// validateLayout checks for exactly one source at the head, exactly one sink
// at the tail and only transforms in between.
func validateLayout(steps []Step) (layout, error) {
	if len(steps) < 2 {
		return layout{}, errors.InvalidPipeline(fmt.Sprintf("need a source and a sink, have %d step(s)", len(steps)))
	}

	var l layout
	src, ok := steps[0].(Source)
	if !ok {
		return layout{}, errors.InvalidPipeline(fmt.Sprintf("first step %q is not a source", steps[0].Name()))
	}
	l.source = src

	last := steps[len(steps)-1]
	sink, ok := last.(Sink)
	if !ok {
		return layout{}, errors.InvalidPipeline(fmt.Sprintf("last step %q is not a sink", last.Name()))
	}
	l.sink = sink

	for i, s := range steps[1 : len(steps)-1] {
		t, ok := s.(Transform)
		if !ok {
			return layout{}, errors.InvalidPipeline(fmt.Sprintf("step %d (%q) is not a transform", i+1, s.Name()))
		}
		l.transforms = append(l.transforms, t)
	}
	return l, nil
}
