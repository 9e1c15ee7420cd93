package stream

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/klauspost/pgzip"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/cognicore/vrttools/pkg/vrt/internalerr"
)

// Stdin is the path naming standard input.
const Stdin = "-"

var gzipMagic = []byte{0x1f, 0x8b}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() error {
	var errs []error
	for i := len(rc.closers) - 1; i >= 0; i-- {
		if err := rc.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Open opens path for reading ("-" is standard input). See NewReader for
// the decoding applied.
func Open(path, enc string) (io.ReadCloser, error) {
	if path == Stdin || path == "" {
		return NewReader(os.Stdin, Stdin, enc)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rc, err := newReader(f, path, enc)
	if err != nil {
		f.Close()
		return nil, err
	}
	rc.closers = append([]io.Closer{f}, rc.closers...)
	return rc, nil
}

// NewReader decodes r: gzip-compressed input is detected by its magic bytes
// and decompressed, and a non-empty encoding other than UTF-8 is decoded to
// UTF-8. name identifies r in errors. Closing the result does not close r.
func NewReader(r io.Reader, name, enc string) (io.ReadCloser, error) {
	return newReader(r, name, enc)
}

func newReader(r io.Reader, name, enc string) (*readCloser, error) {
	rc := &readCloser{}
	br := bufio.NewReaderSize(r, 64*1024)
	var in io.Reader = br
	if magic, err := br.Peek(2); err == nil && string(magic) == string(gzipMagic) {
		zr, err := pgzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("gunzip %s: %w", name, err)
		}
		rc.closers = append(rc.closers, zr)
		in = zr
	}

	dec, err := decoder(enc)
	if err != nil {
		rc.Close()
		return nil, err
	}
	if dec != nil {
		in = transform.NewReader(in, dec)
	}
	rc.Reader = in
	return rc, nil
}

// decoder returns nil for UTF-8 input.
func decoder(enc string) (*encoding.Decoder, error) {
	name := strings.ToLower(strings.TrimSpace(enc))
	if name == "" || name == "utf-8" || name == "utf8" {
		return nil, nil
	}
	e, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("input encoding %q: %w", enc, internalerr.ErrInvalidConfig)
	}
	return e.NewDecoder(), nil
}

// OpenAll opens every path and concatenates them. No paths means standard
// input. A file other than the last that does not end in a newline gets
// one, so its final line is not joined to the first line of the next.
func OpenAll(paths []string, enc string) (io.ReadCloser, error) {
	if len(paths) == 0 {
		return Open(Stdin, enc)
	}
	all := &readCloser{}
	readers := make([]io.Reader, 0, len(paths))
	for i, p := range paths {
		r, err := Open(p, enc)
		if err != nil {
			all.Close()
			return nil, err
		}
		all.closers = append(all.closers, r)
		if i < len(paths)-1 {
			readers = append(readers, &terminated{r: r})
		} else {
			readers = append(readers, r)
		}
	}
	all.Reader = io.MultiReader(readers...)
	return all, nil
}

// terminated appends "\n" at EOF to non-empty input lacking one.
type terminated struct {
	r    io.Reader
	last byte
	eof  bool
}

func (t *terminated) Read(p []byte) (int, error) {
	if t.eof {
		if t.last != 0 && t.last != '\n' && len(p) > 0 {
			p[0] = '\n'
			t.last = '\n'
			return 1, io.EOF
		}
		return 0, io.EOF
	}
	n, err := t.r.Read(p)
	if n > 0 {
		t.last = p[n-1]
	}
	if err == io.EOF {
		t.eof = true
		if n == 0 {
			return t.Read(p)
		}
		return n, nil
	}
	return n, err
}

type writeCloser struct {
	*bufio.Writer
	zw *pgzip.Writer
	f  *os.File
}

func (w *writeCloser) Close() error {
	err := w.Writer.Flush()
	if w.zw != nil {
		if cerr := w.zw.Close(); err == nil {
			err = cerr
		}
	}
	if cerr := w.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// Create creates path and any missing parent directories. Output to a name
// ending in ".gz" is gzip-compressed.
func Create(path string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	wc := &writeCloser{f: f}
	if strings.HasSuffix(path, ".gz") {
		zw, err := pgzip.NewWriterLevel(f, pgzip.BestSpeed)
		if err != nil {
			f.Close()
			return nil, err
		}
		wc.zw = zw
		wc.Writer = bufio.NewWriter(zw)
	} else {
		wc.Writer = bufio.NewWriter(f)
	}
	return wc, nil
}

// IsBrokenPipe reports whether err comes from a consumer that closed its end
// of the output early. Callers treat it as a normal shutdown.
func IsBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE)
}
