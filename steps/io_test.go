package steps

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	"github.com/kbukum/docflow/errors"
	"github.com/kbukum/docflow/event"
	"github.com/kbukum/docflow/logger"
	"github.com/kbukum/docflow/pipeline"
	"github.com/kbukum/docflow/stream"
)

func testConfig(dest string) pipeline.Config {
	return pipeline.Config{
		SourceLanguage:    "en",
		TargetLanguage:    "fr",
		InputEncoding:     "utf-8",
		OutputEncoding:    "utf-8",
		OutputDestination: dest,
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func leftovers(t *testing.T, dir string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, ".*.tmp"))
	require.NoError(t, err)
	return matches
}

func TestTextSource_Events(t *testing.T) {
	src := NewTextSource()
	doc := pipeline.RawDocument{URI: "mem.txt", Reader: strings.NewReader("one\n\ntwo\n"), SourceLocale: "en"}
	iter, err := src.Open(context.Background(), doc)
	require.NoError(t, err)
	defer iter.Close()

	var kinds []event.Kind
	var texts []string
	for {
		ev, ok, err := iter.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
		kinds = append(kinds, ev.Kind())
		texts = append(texts, ev.Text())
	}
	assert.Equal(t, []event.Kind{
		event.KindStartDocument,
		event.KindTextUnit,
		event.KindDocumentPart,
		event.KindTextUnit,
		event.KindEndDocument,
	}, kinds)
	assert.Equal(t, []string{"", "one", "", "two", ""}, texts)
}

// readAll pulls iter to the end or to its first error.
func readAll(t *testing.T, iter stream.Iterator[event.Event]) ([]event.Event, error) {
	t.Helper()
	defer iter.Close()
	var events []event.Event
	for {
		ev, ok, err := iter.Next(context.Background())
		if err != nil || !ok {
			return events, err
		}
		events = append(events, ev)
	}
}

func TestTextSource_UndecodableInput(t *testing.T) {
	tests := []struct {
		name     string
		encoding string
		input    string
	}{
		{"invalid utf-8", "utf-8", "ok\n\xff\xfe bad\n"},
		{"default encoding", "", "ok\n\xc3 bad\n"},
		{"unmapped shift_jis byte", "shift_jis", "ok\n\xa0\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc := pipeline.RawDocument{URI: "mem.txt", Reader: strings.NewReader(tc.input), Encoding: tc.encoding}
			iter, err := NewTextSource().Open(context.Background(), doc)
			require.NoError(t, err)

			events, err := readAll(t, iter)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeDocumentRead))
			assert.ErrorIs(t, err, encodingError(tc.encoding))
			for _, ev := range events {
				assert.NotContains(t, ev.Text(), "\uFFFD")
			}
		})
	}
}

func encodingError(name string) error {
	if name == "" || name == "utf-8" {
		return encoding.ErrInvalidUTF8
	}
	return errUndecodable
}

func TestRejectReplacement(t *testing.T) {
	got, err := io.ReadAll(transform.NewReader(iotest.OneByteReader(strings.NewReader("héllo")), rejectReplacement{}))
	require.NoError(t, err)
	assert.Equal(t, "héllo", string(got))

	got, err = io.ReadAll(transform.NewReader(iotest.OneByteReader(strings.NewReader("a\uFFFDb")), rejectReplacement{}))
	assert.ErrorIs(t, err, errUndecodable)
	assert.Equal(t, "a", string(got))
}

func TestTextSource_LongLine(t *testing.T) {
	line := strings.Repeat("a", 70*1024)
	doc := pipeline.RawDocument{URI: "mem.txt", Reader: strings.NewReader(line + "\n")}
	iter, err := NewTextSource().Open(context.Background(), doc)
	require.NoError(t, err)

	events, err := readAll(t, iter)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, event.KindTextUnit, events[1].Kind())
	assert.Len(t, events[1].Text(), 70*1024)

	doc.Reader = strings.NewReader(strings.Repeat("a", maxLineSize+1))
	iter, err = NewTextSource().Open(context.Background(), doc)
	require.NoError(t, err)
	_, err = readAll(t, iter)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDocumentRead))
	assert.ErrorIs(t, err, bufio.ErrTooLong)
}

func TestTextPipeline_Uppercase(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out", "result.txt")
	writeFile(t, in, "hello\n\nworld\n")

	up, err := Uppercase("fr")
	require.NoError(t, err)
	cfg := testConfig(out)
	err = pipeline.RunDocument(context.Background(), func(p *pipeline.Pipeline) error {
		return p.AddSteps(NewTextSource(), up, NewTextSink())
	}, cfg.Document("file://"+filepath.ToSlash(in)), cfg, pipeline.WithLogger(logger.Nop()))
	require.NoError(t, err)

	assert.Equal(t, "HELLO\n\nWORLD\n", readFile(t, out))
	assert.Empty(t, leftovers(t, filepath.Dir(out)))
}

func TestTextPipeline_Encodings(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.txt")
	// "café" in ISO-8859-1
	require.NoError(t, os.WriteFile(in, []byte{'c', 'a', 'f', 0xE9, '\n'}, 0o644))

	cfg := testConfig(out)
	cfg.InputEncoding = "iso-8859-1"
	cfg.OutputEncoding = "utf-16le"
	err := pipeline.RunDocument(context.Background(), func(p *pipeline.Pipeline) error {
		return p.AddSteps(NewTextSource(), NewTextSink())
	}, cfg.Document(in), cfg, pipeline.WithLogger(logger.Nop()))
	require.NoError(t, err)

	assert.Equal(t, []byte{'c', 0, 'a', 0, 'f', 0, 0xE9, 0, '\n', 0}, []byte(readFile(t, out)))
}

func TestTextSource_MissingFile(t *testing.T) {
	sink := NewCollectSink()
	cfg := testConfig(filepath.Join(t.TempDir(), "out.txt"))
	err := pipeline.RunDocument(context.Background(), func(p *pipeline.Pipeline) error {
		return p.AddSteps(NewTextSource(), sink)
	}, cfg.Document("/no/such/dir/input.txt"), cfg, pipeline.WithLogger(logger.Nop()))

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDocumentRead))
	assert.Empty(t, sink.Events())
	assert.Equal(t, pipeline.SinkOptions{}, sink.Options(), "sink must not be configured")
}

func TestTextSink_FailedRunKeepsPreviousOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")
	writeFile(t, out, "previous\n")

	up, err := Uppercase("en")
	require.NoError(t, err)
	src := NewSliceSource(
		event.StartDocument(event.Document{Name: "d"}),
		unit("1", "first"),
		event.Text(event.TextUnit{Text: "missing id", Translatable: true}),
		event.EndDocument("d"),
	)
	cfg := testConfig(out)
	err = pipeline.RunDocument(context.Background(), func(p *pipeline.Pipeline) error {
		return p.AddSteps(src, up, NewTextSink())
	}, cfg.Document("mem"), cfg, pipeline.WithLogger(logger.Nop()))

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeTransform))
	assert.Equal(t, "previous\n", readFile(t, out))
	assert.Empty(t, leftovers(t, dir), "release must remove the temporary file")
}

func TestTextSink_UnknownEncoding(t *testing.T) {
	sink := NewTextSink()
	err := sink.Configure(pipeline.SinkOptions{Destination: filepath.Join(t.TempDir(), "x"), Encoding: "klingon"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))

	err = sink.Configure(pipeline.SinkOptions{Encoding: "klingon"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
	assert.Contains(t, err.Error(), "destination: is required")
	assert.Contains(t, err.Error(), "encoding: must be a known character encoding")
}

func TestJSONL_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "events.jsonl")
	events := []event.Event{
		event.StartDocument(event.Document{Name: "doc", URI: "doc.html", Locale: "en", Encoding: "utf-8", MimeType: "text/html"}),
		event.StartGroup("g1", "table"),
		event.Text(event.TextUnit{ID: "1", Name: "cell", Text: "héllo \"quoted\"", Locale: "en", Translatable: true}),
		event.Part("p1", "<td/>"),
		event.Custom("note", "{\"k\":1}"),
		event.EndGroup("g1"),
		event.EndDocument("doc"),
	}

	cfg := testConfig(out)
	err := pipeline.RunDocument(context.Background(), func(p *pipeline.Pipeline) error {
		return p.AddSteps(NewSliceSource(events...), NewJSONLSink())
	}, cfg.Document("mem"), cfg, pipeline.WithLogger(logger.Nop()))
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(readFile(t, out)), "\n"), len(events))

	collect := NewCollectSink()
	err = pipeline.RunDocument(context.Background(), func(p *pipeline.Pipeline) error {
		return p.AddSteps(NewJSONLSource(), collect)
	}, cfg.Document(out), testConfig("unused"), pipeline.WithLogger(logger.Nop()))
	require.NoError(t, err)
	assert.Equal(t, events, collect.Events())
	assert.True(t, collect.Finished())
}

func TestJSONLSource_BadLine(t *testing.T) {
	doc := pipeline.RawDocument{URI: "mem.jsonl", Reader: strings.NewReader(
		"{\"kind\":\"START_DOCUMENT\",\"name\":\"d\"}\n\n{\"kind\":\"TEXT_UNIT\",\"text\":\"no id\"}\n")}
	iter, err := NewJSONLSource().Open(context.Background(), doc)
	require.NoError(t, err)
	defer iter.Close()

	ev, ok, err := iter.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, event.KindStartDocument, ev.Kind())

	_, _, err = iter.Next(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDocumentRead))
	appErr, _ := errors.AsAppError(err)
	assert.Equal(t, 3, appErr.Details["line"])
}

func TestCollectSink_Reset(t *testing.T) {
	sink := NewCollectSink()
	require.NoError(t, sink.Write(context.Background(), unit("1", "a")))
	require.NoError(t, sink.Finish(context.Background()))
	require.NoError(t, sink.Reset())
	assert.Empty(t, sink.Events())
	assert.False(t, sink.Finished())
}

func TestLocalPath(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain/path.txt", "plain/path.txt"},
		{"file:///tmp/a.txt", filepath.FromSlash("/tmp/a.txt")},
		{"file:rel.txt", "rel.txt"},
	}
	for _, tc := range tests {
		got, err := localPath(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.in)
	}
}
