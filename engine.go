package krholiday

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabitt1ove/kr-holidays/lunar"
)

// Writer receives the holidays produced while a year is populated. The
// calendar date of t as written (t.Date()) is used; no timezone conversion
// takes place.
type Writer interface {
	Write(t time.Time, name string)
}

// RuleProvider computes the holidays of one year of a jurisdiction.
// Populate must write only through w; it must not call back into the
// HolidaySet that invoked it.
type RuleProvider interface {
	Populate(year int, w Writer) error
}

// EngineConfig configures an Engine.
type EngineConfig struct {
	Rules *RuleTable
	// Converter resolves lunar rules. Required if the table has lunar rules.
	Converter lunar.Converter
	// Overrides, if set, supplies literal holidays applied last.
	Overrides OverrideSource
	Language  Language
	// Observed enables substitute rules.
	Observed bool
	Logger   *slog.Logger
}

// Engine is the generic RuleProvider: one evaluation loop over a RuleTable.
type Engine struct {
	rules     *RuleTable
	converter lunar.Converter
	overrides OverrideSource
	lang      Language
	observed  bool
	logger    *slog.Logger
}

var _ RuleProvider = (*Engine)(nil)

// NewEngine validates cfg and returns an Engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Rules == nil {
		return nil, errors.New("krholiday: engine requires a rule table")
	}
	if err := cfg.Rules.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.Rules.Lunar) > 0 && cfg.Converter == nil {
		return nil, errors.New("krholiday: lunar rules require a converter")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = discardLogger
	}
	return &Engine{
		rules:     cfg.Rules,
		converter: cfg.Converter,
		overrides: cfg.Overrides,
		lang:      cfg.Language,
		observed:  cfg.Observed,
		logger:    logger,
	}, nil
}

// anchor is a holiday placed by a fixed or lunar rule, kept for the
// substitute pass.
type anchor struct {
	date date
	name string
}

// Populate writes the holidays of year to w in four passes: fixed rules,
// lunar rules (anchor, then cluster days), substitute rules when observed,
// then overrides. A lunar date the converter cannot resolve skips that rule
// only. An override source error aborts the pass.
func (e *Engine) Populate(year int, w Writer) error {
	anchors := make(map[string]anchor)
	write := func(d date, name string) {
		w.Write(d.toTime(), name)
	}

	for _, r := range e.rules.Fixed {
		if !r.Window.Contains(year) {
			continue
		}
		if r.Day > daysIn(r.Month, year) {
			// February 29 outside leap years.
			continue
		}
		d := date{year: year, month: r.Month, day: r.Day}
		name := r.Name.In(e.lang)
		write(d, name)
		anchors[r.Key] = anchor{date: d, name: name}
	}

	for _, r := range e.rules.Lunar {
		if !r.Window.Contains(year) {
			continue
		}
		t, err := e.converter.Solar(year, r.Month, r.Day, r.Leap)
		if err != nil {
			e.logger.Warn("skipping lunar rule",
				"rule", r.Key, "year", year, "lunar_month", r.Month, "lunar_day", r.Day, "error", err)
			continue
		}
		d := civilDate(t)
		name := r.Name.In(e.lang)
		write(d, name)
		for _, c := range r.Cluster {
			if c.Window.Contains(year) {
				write(d.addDays(c.Offset), c.Name.In(e.lang))
			}
		}
		anchors[r.Key] = anchor{date: d, name: name}
	}

	if e.observed {
		for _, s := range e.rules.Substitutes {
			if !s.Window.Contains(year) {
				continue
			}
			a, ok := anchors[s.Anchor]
			if !ok {
				continue
			}
			sub, ok := s.substitute(a.date)
			if !ok {
				continue
			}
			suffix := s.Suffix
			if suffix.isZero() {
				suffix = e.rules.Suffix
			}
			write(sub, a.name+suffix.In(e.lang))
		}
	}

	if e.overrides != nil {
		overrides, err := e.overrides.Overrides(year)
		if err != nil {
			return fmt.Errorf("overrides for %d: %w", year, err)
		}
		for _, o := range overrides {
			write(civilDate(o.Date), o.Name.In(e.lang))
		}
	}
	return nil
}
