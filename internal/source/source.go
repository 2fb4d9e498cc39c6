package source

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ru-addr/internal/address"
)

// Source yields raw records one at a time. Next returns io.EOF when done.
type Source interface {
	Next() (address.Record, error)
	Close() error
}

// Format names an input file format
type Format string

const (
	FormatLicenseXML Format = "license-xml"
	FormatTSV        Format = "tsv"
	FormatCSV        Format = "csv" // semicolon separated, no quoting
	FormatXLSX       Format = "xlsx"
	FormatOSM        Format = "osm"
)

// DetectFormat guesses the format from the file name
func DetectFormat(path string) Format {
	name := strings.TrimSuffix(strings.ToLower(path), ".gz")
	switch filepath.Ext(name) {
	case ".xml":
		return FormatLicenseXML
	case ".osm":
		return FormatOSM
	case ".xlsx":
		return FormatXLSX
	case ".csv":
		return FormatCSV
	}
	return FormatTSV
}

// Open opens path as a record source of the given format.
// An empty format is detected from the file name.
func Open(path string, format Format) (Source, error) {
	if format == "" {
		format = DetectFormat(path)
	}

	if format == FormatXLSX {
		x, err := OpenXLSX(path, "")
		if err != nil {
			return nil, err
		}
		return x, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	r, err := maybeGunzip(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var src Source
	switch format {
	case FormatLicenseXML:
		src = NewLicenseXML(r)
	case FormatOSM:
		src = NewOSM(r)
	case FormatTSV:
		src, err = NewDelimited(r, '\t')
	case FormatCSV:
		src, err = NewDelimited(r, ';')
	default:
		err = fmt.Errorf("unknown input format %q", format)
	}
	if err != nil {
		f.Close()
		return nil, err
	}

	return &fileSource{Source: src, file: f}, nil
}

// fileSource closes the underlying file along with the source
type fileSource struct {
	Source
	file *os.File
}

// Headers returns the column names when the wrapped source has them
func (fs *fileSource) Headers() []string {
	if h, ok := fs.Source.(interface{ Headers() []string }); ok {
		return h.Headers()
	}
	return nil
}

func (fs *fileSource) Close() error {
	err := fs.Source.Close()
	if cerr := fs.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// maybeGunzip wraps r in a gzip reader when it starts with the gzip magic
func maybeGunzip(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, err
	}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		return gzip.NewReader(br)
	}
	return br, nil
}

// RecordError is a problem with a single record; reading can continue
type RecordError struct {
	Line int
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record at line %d: %v", e.Line, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// ForEach drains src, calling fn for every record. A *RecordError is passed
// to onErr (if set) and the record skipped when onErr returns nil; any other
// error stops the loop.
func ForEach(src Source, fn func(address.Record) error, onErr func(error) error) error {
	for {
		rec, err := src.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			var recErr *RecordError
			if onErr == nil || !errors.As(err, &recErr) {
				return err
			}
			if err := onErr(err); err != nil {
				return err
			}
			continue
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}
