package steps

import (
	"bufio"
	"bytes"
	stderrors "errors"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/kbukum/docflow/errors"
	"github.com/kbukum/docflow/pipeline"
)

// lookupEncoding resolves a charset name; empty means UTF-8.
func lookupEncoding(name string) (encoding.Encoding, error) {
	if name == "" {
		return unicode.UTF8, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, errors.InvalidInput("encoding", "unknown character encoding "+name).WithCause(err)
	}
	return enc, nil
}

// localPath turns a path or file:// URI into a filesystem path.
func localPath(uri string) (string, error) {
	if !strings.HasPrefix(uri, "file:") {
		return uri, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", err
	}
	if u.Path != "" {
		return filepath.FromSlash(u.Path), nil
	}
	return filepath.FromSlash(u.Opaque), nil
}

var errUndecodable = stderrors.New("input is not valid in the declared encoding")

// openDocument returns a decoded reader over doc and the closer for its
// underlying file, if any. Reads fail on input the encoding cannot decode.
func openDocument(doc pipeline.RawDocument) (io.Reader, io.Closer, error) {
	enc, err := lookupEncoding(doc.Encoding)
	if err != nil {
		return nil, nil, errors.DocumentRead(doc.URI, err)
	}

	var (
		r      = doc.Reader
		closer io.Closer
	)
	if r == nil {
		path, err := localPath(doc.URI)
		if err != nil {
			return nil, nil, errors.DocumentRead(doc.URI, err)
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, errors.DocumentRead(doc.URI, err)
		}
		r, closer = f, f
	}
	return strictDecoder(r, enc), closer, nil
}

// strictDecoder decodes r without substituting U+FFFD for bad input.
func strictDecoder(r io.Reader, enc encoding.Encoding) io.Reader {
	name, _ := htmlindex.Name(enc)
	switch name {
	case "utf-8":
		return transform.NewReader(r, encoding.UTF8Validator)
	case "utf-16be", "utf-16le", "gb18030":
		// U+FFFD is ordinary text in these.
		return enc.NewDecoder().Reader(r)
	}
	return transform.NewReader(r, transform.Chain(enc.NewDecoder(), rejectReplacement{}))
}

var replacementChar = []byte(string(utf8.RuneError))

// rejectReplacement passes UTF-8 through and fails at the first U+FFFD,
// which the legacy decoders write for bytes they cannot map.
type rejectReplacement struct{ transform.NopResetter }

func (rejectReplacement) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	n := len(src)
	if i := bytes.Index(src, replacementChar); i >= 0 {
		n, err = i, errUndecodable
	} else if !atEOF {
		for k := len(replacementChar) - 1; k > 0; k-- {
			if bytes.HasSuffix(src, replacementChar[:k]) {
				n, err = n-k, transform.ErrShortSrc
				break
			}
		}
	}
	if n > len(dst) {
		n, err = len(dst), transform.ErrShortDst
	}
	copy(dst, src[:n])
	return n, n, err
}

// output is an encoded, buffered writer over a temporary file beside the
// destination. Commit renames the temporary file over the destination.
type output struct {
	dest string
	tmp  *os.File
	enc  io.Writer
	*bufio.Writer
}

func createOutput(dest, charset string) (*output, error) {
	enc, err := lookupEncoding(charset)
	if err != nil {
		return nil, err
	}
	path, err := localPath(dest)
	if err != nil {
		return nil, errors.SinkWrite(dest, err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.SinkWrite(dest, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, errors.SinkWrite(dest, err)
	}
	ew := enc.NewEncoder().Writer(tmp)
	return &output{dest: path, tmp: tmp, enc: ew, Writer: bufio.NewWriter(ew)}, nil
}

// Commit flushes every layer and moves the temporary file into place. The
// temporary file is gone afterwards whether or not Commit succeeded.
func (o *output) Commit() error {
	err := o.Flush()
	if c, ok := o.enc.(io.Closer); ok && err == nil {
		err = c.Close()
	}
	if err == nil {
		err = o.tmp.Sync()
	}
	if err != nil {
		o.Abort()
		return err
	}
	if err := o.tmp.Close(); err != nil {
		_ = os.Remove(o.tmp.Name())
		return err
	}
	if err := os.Rename(o.tmp.Name(), o.dest); err != nil {
		_ = os.Remove(o.tmp.Name())
		return err
	}
	return nil
}

// Abort discards the temporary file.
func (o *output) Abort() {
	_ = o.tmp.Close()
	_ = os.Remove(o.tmp.Name())
}
