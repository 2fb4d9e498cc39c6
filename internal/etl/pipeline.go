package etl

import (
	"fmt"

	"github.com/ru-addr/internal/address"
	"github.com/ru-addr/internal/config"
	"github.com/ru-addr/internal/debug"
	"github.com/ru-addr/internal/normalize"
	"github.com/ru-addr/internal/sink"
	"github.com/ru-addr/internal/source"
	"github.com/ru-addr/internal/splitter"
)

// FlushEvery is how many written rows pass between sink flushes
const FlushEvery = 1000

// Stats counts what happened to the records of one run
type Stats struct {
	Read      int `json:"read"`
	Written   int `json:"written"`
	Discarded int `json:"discarded"`
	Errors    int `json:"errors"`
}

func (s Stats) String() string {
	return fmt.Sprintf("read %d, written %d, discarded %d, errors %d", s.Read, s.Written, s.Discarded, s.Errors)
}

// Pipeline reads records, splits their composite fields and writes one
// row per kept record in field map order
type Pipeline struct {
	splitter *splitter.Splitter
	fieldMap address.FieldMap
	clean    func(address.ComponentKey, string) string
}

// NewPipeline creates a pipeline. Values are only trimmed of whitespace,
// commas and dashes before splitting.
func NewPipeline(s *splitter.Splitter, fm address.FieldMap) *Pipeline {
	return &Pipeline{
		splitter: s,
		fieldMap: fm,
		clean: func(_ address.ComponentKey, v string) string {
			return normalize.TrimValue(v)
		},
	}
}

// NewLicensePipeline builds the separated-address export for licence
// registry records: encoding repair on, licence field map
func NewLicensePipeline(tokens config.TokenLists, localDebug bool) *Pipeline {
	s := splitter.New(tokens,
		splitter.WithRepairer(normalize.FixEncoding),
		splitter.WithDebug(localDebug),
	)
	return NewPipeline(s, address.LicenseFieldMap)
}

// Header returns the output column names
func (p *Pipeline) Header() []string {
	return p.fieldMap.Names()
}

// SplitRecord turns one record into components and runs the splitter.
// A record with no usable fields is discarded.
func (p *Pipeline) SplitRecord(rec address.Record) (*address.ComponentSet, splitter.Verdict) {
	cs := rec.Components(p.fieldMap, p.clean)
	if cs.Len() == 0 {
		return cs, splitter.Discard
	}
	return cs, p.splitter.Process(cs)
}

// Run drains src into dst. Unreadable records are counted and skipped;
// sink errors stop the run.
func (p *Pipeline) Run(localDebug bool, src source.Source, dst sink.Sink) (Stats, error) {
	debug.DebugHeader(localDebug, "split")
	defer debug.DebugFooter(localDebug, "split")
	defer debug.DebugTiming(localDebug, "split pipeline")()

	var stats Stats
	if err := dst.WriteHeader(p.Header()); err != nil {
		return stats, fmt.Errorf("failed to write header: %w", err)
	}

	keys := p.fieldMap.Keys()
	err := source.ForEach(src, func(rec address.Record) error {
		stats.Read++

		cs, verdict := p.SplitRecord(rec)
		if verdict == splitter.Discard {
			debug.DebugOutput(localDebug, "Discarding record %d: %s", stats.Read, cs)
			stats.Discarded++
			return nil
		}

		if err := dst.Write(cs.Row(keys)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", stats.Read, err)
		}
		stats.Written++

		if debug.Progress(stats.Written, FlushEvery, "formatted addresses") {
			if err := dst.Flush(); err != nil {
				return err
			}
		}
		return nil
	}, func(err error) error {
		debug.DebugOutput(localDebug, "Error reading record: %v", err)
		stats.Errors++
		return nil
	})
	if err != nil {
		return stats, err
	}

	if err := dst.Flush(); err != nil {
		return stats, err
	}

	debug.DebugOutput(localDebug, "Split complete: %s", stats)
	return stats, nil
}
