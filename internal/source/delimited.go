package source

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/ru-addr/internal/address"
)

// Delimited reads unquoted delimiter-separated rows with a header line.
// Quotes carry no meaning; a field may contain any character except the
// delimiter and line breaks.
type Delimited struct {
	r       *bufio.Reader
	delim   string
	headers []string
	line    int
}

// NewDelimited reads the header row and returns a reader for the rest
func NewDelimited(r io.Reader, delim rune) (*Delimited, error) {
	d := &Delimited{r: bufio.NewReaderSize(r, 64*1024), delim: string(delim)}

	header, err := d.readLine()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("missing header row")
		}
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	header = strings.TrimPrefix(header, "\ufeff")

	for _, h := range strings.Split(header, d.delim) {
		d.headers = append(d.headers, strings.TrimSpace(h))
	}
	return d, nil
}

// Headers returns the header names in column order
func (d *Delimited) Headers() []string {
	return d.headers
}

// Next returns the next row keyed by header. Blank lines are skipped.
// Rows with more columns than the header are reported as *RecordError.
func (d *Delimited) Next() (address.Record, error) {
	for {
		line, err := d.readLine()
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		cols := strings.Split(line, d.delim)
		if len(cols) > len(d.headers) {
			return nil, &RecordError{
				Line: d.line,
				Err:  fmt.Errorf("%d columns, header has %d", len(cols), len(d.headers)),
			}
		}

		rec := make(address.Record, len(cols))
		for i, c := range cols {
			rec[d.headers[i]] = c
		}
		return rec, nil
	}
}

func (d *Delimited) readLine() (string, error) {
	line, err := d.r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	d.line++
	return strings.TrimRight(line, "\r\n"), nil
}

// Close is a no-op; the caller owns the reader
func (d *Delimited) Close() error {
	return nil
}
