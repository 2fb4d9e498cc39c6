package etl

import (
	"fmt"

	"github.com/ru-addr/internal/address"
	"github.com/ru-addr/internal/debug"
	"github.com/ru-addr/internal/normalize"
	"github.com/ru-addr/internal/sink"
	"github.com/ru-addr/internal/source"
)

// HeaderSource is a source that knows its column names
type HeaderSource interface {
	source.Source
	Headers() []string
}

// TrimHouseNumbers copies src to dst, cutting overlong values of column
// down with normalize.TrimHouseNumber. Column order is preserved.
func TrimHouseNumbers(localDebug bool, src HeaderSource, dst sink.Sink, column string, maxLen int) (Stats, error) {
	debug.DebugHeader(localDebug, "trim house numbers")
	defer debug.DebugFooter(localDebug, "trim house numbers")

	var stats Stats
	headers := src.Headers()

	found := false
	for _, h := range headers {
		found = found || h == column
	}
	if !found {
		return stats, fmt.Errorf("column %q not found in header %v", column, headers)
	}

	if err := dst.WriteHeader(headers); err != nil {
		return stats, fmt.Errorf("failed to write header: %w", err)
	}

	err := source.ForEach(src, func(rec address.Record) error {
		stats.Read++
		if v, ok := rec[column]; ok {
			if trimmed := normalize.TrimHouseNumber(v, maxLen); trimmed != v {
				debug.DebugOutput(localDebug, "Trimmed %q to %q", v, trimmed)
				rec[column] = trimmed
			}
		}

		row := make([]string, len(headers))
		for i, h := range headers {
			row[i] = rec[h]
		}
		if err := dst.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", stats.Read, err)
		}
		stats.Written++
		if debug.Progress(stats.Written, FlushEvery, "rows") {
			return dst.Flush()
		}
		return nil
	}, func(err error) error {
		debug.DebugOutput(localDebug, "Error reading row: %v", err)
		stats.Errors++
		return nil
	})
	if err != nil {
		return stats, err
	}
	return stats, dst.Flush()
}
