package training

import (
	"strings"

	"github.com/ru-addr/internal/debug"
	"github.com/ru-addr/internal/normalize"
	"github.com/ru-addr/internal/sink"
)

// Output file names used by the trainers
const (
	TaggedFilename      = "_formatted_addresses_tagged.tsv"
	UntaggedFilename    = "_formatted_addresses.tsv"
	OSMTaggedFilename   = "osm_formatted_addresses_tagged.tsv"
	OSMUntaggedFilename = "osm_formatted_addresses.tsv"
)

// FlushEvery is how many rows are written between flushes
const FlushEvery = 1000

// Example is one formatted training address
type Example struct {
	Language  string
	Country   string
	Formatted string
}

// Writer writes examples as (language, country, formatted) rows, or as a
// single formatted column when untagged
type Writer struct {
	sink   sink.Sink
	tagged bool
	count  int
}

// NewWriter wraps s
func NewWriter(s sink.Sink, tagged bool) *Writer {
	return &Writer{sink: s, tagged: tagged}
}

// Write writes ex, skipping addresses that are blank once sanitised
func (w *Writer) Write(ex Example) error {
	formatted := normalize.TSVString(ex.Formatted)
	if strings.TrimSpace(formatted) == "" {
		return nil
	}

	var row []string
	if w.tagged {
		row = []string{ex.Language, ex.Country, formatted}
	} else {
		row = []string{formatted}
	}
	if err := w.sink.Write(row); err != nil {
		return err
	}

	w.count++
	if debug.Progress(w.count, FlushEvery, "formatted addresses") {
		return w.sink.Flush()
	}
	return nil
}

// Count returns the number of rows written
func (w *Writer) Count() int {
	return w.count
}

// Close flushes and closes the underlying sink
func (w *Writer) Close() error {
	return w.sink.Close()
}
