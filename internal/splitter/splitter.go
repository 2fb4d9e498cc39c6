package splitter

import (
	"github.com/ru-addr/internal/address"
	"github.com/ru-addr/internal/config"
	"github.com/ru-addr/internal/debug"
	"github.com/ru-addr/internal/normalize"
)

// Repairer fixes broken text encodings. It must never fail.
type Repairer func(string) string

// Verdict tells the caller whether a processed record is worth keeping
type Verdict int

const (
	Keep Verdict = iota
	// Discard: nothing useful survived (empty, or a lone state)
	Discard
)

func (v Verdict) String() string {
	if v == Discard {
		return "discard"
	}
	return "keep"
}

// Step names used in reports
const (
	StepRepair        = "repair_encoding"
	StepPostcode      = "drop_zero_postcode"
	StepStateDistrict = "state_district_from_road"
	StepCity          = "city_from_road"
	StepCityDistrict  = "city_district_from_road"
	StepRoadHouse     = "road_house_number"
	StepHouseUnit     = "house_number_unit"
)

// StepResult records what one pipeline step did
type StepResult struct {
	Step    string `json:"step"`
	Outcome string `json:"outcome"`
	Token   string `json:"token,omitempty"`
}

// Report lists the steps of one Process call in execution order
type Report struct {
	Steps   []StepResult `json:"steps"`
	Verdict Verdict      `json:"-"`
}

func (r *Report) add(step, outcome, token string) {
	if r != nil {
		r.Steps = append(r.Steps, StepResult{Step: step, Outcome: outcome, Token: token})
	}
}

// Splitter decomposes composite address fields using configured token lists.
// It holds no per-record state and is safe for concurrent use.
type Splitter struct {
	tokens     config.TokenLists
	repair     Repairer
	localDebug bool
}

// Option customises a Splitter
type Option func(*Splitter)

// WithRepairer replaces the encoding repair step; nil disables it
func WithRepairer(r Repairer) Option {
	return func(s *Splitter) { s.repair = r }
}

// WithDebug enables debug output
func WithDebug(enabled bool) Option {
	return func(s *Splitter) { s.localDebug = enabled }
}

// New creates a Splitter over the given token lists
func New(tokens config.TokenLists, opts ...Option) *Splitter {
	s := &Splitter{
		tokens: tokens,
		repair: normalize.FixEncoding,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tokens returns the token lists in use
func (s *Splitter) Tokens() config.TokenLists {
	return s.tokens
}

// Process runs the fixed decomposition pipeline over components, in place:
//
//  1. encoding repair of every value
//  2. removal of a "0" postcode
//  3. when city is absent: state_district, then city, from the head of road
//  4. when city is now present: city_district from the head of road
//  5. road "street, rest" split, rest becoming house_number; a road with
//     an empty street part is left as it is
//  6. house_number "number, unit" split at the unit tokens
//
// Steps whose inputs are missing are skipped. Running Process twice gives
// the same result as running it once.
func (s *Splitter) Process(components *address.ComponentSet) Verdict {
	return s.ProcessReport(components, nil)
}

// ProcessReport is Process with a per-step report; report may be nil
func (s *Splitter) ProcessReport(components *address.ComponentSet, report *Report) Verdict {
	debug.DebugOutput(s.localDebug, "Splitting %s", components)

	if s.repair != nil {
		components.Apply(func(_ address.ComponentKey, v string) string { return s.repair(v) })
		report.add(StepRepair, "done", "")
	}

	if components.Value(address.Postcode) == "0" {
		components.Delete(address.Postcode)
		report.add(StepPostcode, "dropped", "")
	}

	if !components.Has(address.City) {
		s.reclassify(components, address.StateDistrict, s.tokens.District, StepStateDistrict, report)
		s.reclassify(components, address.City, s.tokens.City, StepCity, report)
	}

	if components.Has(address.City) {
		s.reclassify(components, address.CityDistrict, s.tokens.Suburb, StepCityDistrict, report)
	}

	if road, ok := components.Get(address.Road); ok {
		street, rest, split := Decompose(road)
		switch {
		case split && street == "":
			report.add(StepRoadHouse, "unchanged", "")
		case split:
			components.Set(address.Road, street)
			if rest != "" {
				components.Set(address.HouseNumber, rest)
			}
			report.add(StepRoadHouse, "split", "")
		default:
			report.add(StepRoadHouse, NoSeparator.String(), "")
		}
	}

	if hn, ok := components.Get(address.HouseNumber); ok && !components.Has(address.Unit) {
		number, unit, split := ExtractHouseNumberSuffix(hn, s.tokens.Unit)
		if split {
			components.Set(address.HouseNumber, number)
			components.Set(address.Unit, unit)
			report.add(StepHouseUnit, "split", "")
		} else {
			report.add(StepHouseUnit, "unchanged", "")
		}
	}

	verdict := Judge(components)
	if report != nil {
		report.Verdict = verdict
	}
	debug.DebugOutput(s.localDebug, "Result %s (%s)", components, verdict)
	return verdict
}

func (s *Splitter) reclassify(components *address.ComponentSet, target address.ComponentKey, tokens []string, step string, report *Report) {
	outcome, m := ReclassifyLeadingSegment(components, address.Road, target, tokens)
	report.add(step, outcome.String(), m.Token)
}

// Judge returns Discard for an empty set or one holding only a state
func Judge(components *address.ComponentSet) Verdict {
	switch components.Len() {
	case 0:
		return Discard
	case 1:
		if components.Has(address.State) {
			return Discard
		}
	}
	return Keep
}

// SplitHouseNumber applies the unit split to a bare house-number value
func (s *Splitter) SplitHouseNumber(value string) (houseNumber, unit string, ok bool) {
	return ExtractHouseNumberSuffix(value, s.tokens.Unit)
}
