package sink

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ru-addr/internal/normalize"
)

// Sink receives output rows. Flush makes written rows durable; Close
// flushes and releases resources.
type Sink interface {
	WriteHeader(columns []string) error
	Write(row []string) error
	Flush() error
	Close() error
}

// TSV writes tab-separated rows without quoting. Every field goes through
// normalize.TSVString, so a written row always has exactly as many columns
// as it was given.
type TSV struct {
	w           *bufio.Writer
	closer      io.Closer
	stripQuotes bool
}

// TSVOption customises a TSV sink
type TSVOption func(*TSV)

// WithStripQuotes removes double quotes from every field before writing
func WithStripQuotes() TSVOption {
	return func(t *TSV) { t.stripQuotes = true }
}

// NewTSV writes to w; if w is an io.Closer it is closed by Close
func NewTSV(w io.Writer, opts ...TSVOption) *TSV {
	t := &TSV{w: bufio.NewWriterSize(w, 64*1024)}
	if c, ok := w.(io.Closer); ok {
		t.closer = c
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// CreateTSV creates (truncating) the file at path
func CreateTSV(path string, opts ...TSVOption) (*TSV, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return NewTSV(f, opts...), nil
}

// WriteHeader writes the header line
func (t *TSV) WriteHeader(columns []string) error {
	return t.Write(columns)
}

// Write writes one sanitised row
func (t *TSV) Write(row []string) error {
	fields := make([]string, len(row))
	for i, f := range row {
		if t.stripQuotes {
			f = normalize.StripQuotes(f)
		}
		fields[i] = normalize.TSVString(f)
	}
	if _, err := t.w.WriteString(strings.Join(fields, "\t")); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	if err := t.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write row: %w", err)
	}
	return nil
}

// Flush pushes buffered rows to the underlying writer
func (t *TSV) Flush() error {
	if err := t.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying writer
func (t *TSV) Close() error {
	err := t.Flush()
	if t.closer != nil {
		if cerr := t.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
