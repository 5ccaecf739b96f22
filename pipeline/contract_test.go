package pipeline_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/kbukum/docflow/errors"
	"github.com/kbukum/docflow/event"
	"github.com/kbukum/docflow/logger"
	"github.com/kbukum/docflow/pipeline"
	pipelinemocks "github.com/kbukum/docflow/pipeline/mocks"
	"github.com/kbukum/docflow/stream"
)

var cfg = pipeline.Config{
	SourceLanguage:    "en",
	TargetLanguage:    "fr",
	InputEncoding:     "utf-8",
	OutputEncoding:    "utf-8",
	OutputDestination: "/tmp/out.properties",
}

func newMocks(t *testing.T) (*pipelinemocks.MockSource, *pipelinemocks.MockTransform, *pipelinemocks.MockSink) {
	ctrl := gomock.NewController(t)
	src := pipelinemocks.NewMockSource(ctrl)
	tr := pipelinemocks.NewMockTransform(ctrl)
	sink := pipelinemocks.NewMockSink(ctrl)
	src.EXPECT().Name().Return("source").AnyTimes()
	tr.EXPECT().Name().Return("transform").AnyTimes()
	sink.EXPECT().Name().Return("sink").AnyTimes()
	return src, tr, sink
}

func TestStepContract_CallOrder(t *testing.T) {
	src, tr, sink := newMocks(t)
	start := event.StartDocument(event.Document{Name: "a.properties"})
	text := event.Text(event.TextUnit{ID: "key1", Text: "value", Translatable: true})
	end := event.EndDocument("a.properties")
	upper := text.WithText("VALUE", "fr")

	doc := pipeline.RawDocument{URI: "a.properties"}
	gomock.InOrder(
		src.EXPECT().Open(gomock.Any(), pipeline.RawDocument{URI: "a.properties", Encoding: "utf-8", SourceLocale: "en"}).
			Return(stream.NewSliceIterator([]event.Event{start, text, end}), nil),
		sink.EXPECT().Configure(pipeline.SinkOptions{TargetLocale: "fr", Encoding: "utf-8", Destination: "/tmp/out.properties"}).Return(nil),
		tr.EXPECT().Apply(gomock.Any(), start).Return([]event.Event{start}, nil),
		sink.EXPECT().Write(gomock.Any(), start).Return(nil),
		tr.EXPECT().Apply(gomock.Any(), text).Return([]event.Event{upper}, nil),
		sink.EXPECT().Write(gomock.Any(), upper).Return(nil),
		tr.EXPECT().Apply(gomock.Any(), end).Return([]event.Event{end}, nil),
		sink.EXPECT().Write(gomock.Any(), end).Return(nil),
		sink.EXPECT().Finish(gomock.Any()).Return(nil),
		sink.EXPECT().Release().Return(nil),
		tr.EXPECT().Release().Return(nil),
		src.EXPECT().Release().Return(nil),
	)

	err := pipeline.RunDocument(context.Background(), func(p *pipeline.Pipeline) error {
		return p.AddSteps(src, tr, sink)
	}, doc, cfg, pipeline.WithLogger(logger.Nop()))
	require.NoError(t, err)
}

func TestStepContract_OpenFailureTouchesNothingElse(t *testing.T) {
	src, tr, sink := newMocks(t)
	src.EXPECT().Open(gomock.Any(), gomock.Any()).
		Return(nil, errors.DocumentRead("missing.html", stderrors.New("no such file or directory")))
	sink.EXPECT().Release().Return(nil)
	tr.EXPECT().Release().Return(nil)
	src.EXPECT().Release().Return(nil)

	p := pipeline.New(pipeline.WithLogger(logger.Nop()))
	require.NoError(t, p.AddSteps(src, tr, sink))

	err := p.Process(context.Background(), pipeline.RawDocument{URI: "missing.html"}, cfg)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDocumentRead))
	assert.Equal(t, pipeline.StateFailed, p.State())
	require.NoError(t, p.Destroy())
}

func TestStepContract_ReleaseContinuesPastFailure(t *testing.T) {
	src, tr, sink := newMocks(t)
	gomock.InOrder(
		sink.EXPECT().Release().Return(stderrors.New("flush failed")),
		tr.EXPECT().Release().Return(nil),
		src.EXPECT().Release().Return(stderrors.New("handle leak")),
	)

	p := pipeline.New(pipeline.WithLogger(logger.Nop()))
	require.NoError(t, p.AddSteps(src, tr, sink))

	err := p.Destroy()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flush failed")
	assert.Contains(t, err.Error(), "handle leak")
	assert.Equal(t, pipeline.StateDestroyed, p.State())

	// the mocks would fail on a second round of Release calls
	require.NoError(t, p.Destroy())
}

func TestStepContract_SinkFailureSkipsFinish(t *testing.T) {
	src, tr, sink := newMocks(t)
	text := event.Text(event.TextUnit{ID: "1", Text: "x"})

	src.EXPECT().Open(gomock.Any(), gomock.Any()).Return(stream.NewSliceIterator([]event.Event{text, text}), nil)
	sink.EXPECT().Configure(gomock.Any()).Return(nil)
	tr.EXPECT().Apply(gomock.Any(), text).Return([]event.Event{text}, nil)
	sink.EXPECT().Write(gomock.Any(), text).Return(stderrors.New("read-only file system"))

	p := pipeline.New(pipeline.WithLogger(logger.Nop()))
	require.NoError(t, p.AddSteps(src, tr, sink))

	err := p.Process(context.Background(), pipeline.RawDocument{URI: "in"}, cfg)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeSinkWrite))
	assert.Equal(t, pipeline.StateFailed, p.State())
}
