package krholiday

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rabitt1ove/kr-holidays/lunar"
)

var discardLogger = slog.New(slog.DiscardHandler)

// Option configures a HolidaySet created by New or NewSet.
type Option func(*settings)

type settings struct {
	code        string
	subdivision string
	years       []int
	expand      bool
	observed    bool
	lang        Language
	logger      *slog.Logger
	location    *time.Location
	converter   lunar.Converter
	overrides   OverrideSource
}

func defaultSettings() settings {
	return settings{
		expand:   true,
		observed: true,
		lang:     English,
		logger:   discardLogger,
	}
}

// WithSubdivision selects a subdivision of the jurisdiction.
func WithSubdivision(code string) Option {
	return func(s *settings) { s.subdivision = code }
}

// WithYears populates the given years at construction.
func WithYears(years ...int) Option {
	return func(s *settings) { s.years = append(s.years, years...) }
}

// WithExpand controls whether a year is populated the first time one of its
// dates is queried. It defaults to true.
func WithExpand(expand bool) Option {
	return func(s *settings) { s.expand = expand }
}

// WithObserved controls whether substitute holidays are included. It
// defaults to true.
func WithObserved(observed bool) Option {
	return func(s *settings) { s.observed = observed }
}

// WithLanguage selects the label language. It defaults to English.
func WithLanguage(lang Language) Option {
	return func(s *settings) { s.lang = lang }
}

// WithLogger sets the logger for population events. By default nothing is
// logged.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLocation sets the timezone time.Time inputs are normalized to before
// the calendar date is taken. It defaults to the jurisdiction's timezone.
func WithLocation(loc *time.Location) Option {
	return func(s *settings) { s.location = loc }
}

// WithConverter replaces the jurisdiction's lunar converter.
func WithConverter(c lunar.Converter) Option {
	return func(s *settings) { s.converter = c }
}

// WithOverrides replaces the jurisdiction's override source.
func WithOverrides(src OverrideSource) Option {
	return func(s *settings) { s.overrides = src }
}

// New returns a HolidaySet for a registered jurisdiction code or alias,
// e.g. "KR" or "Korea".
func New(code string, opts ...Option) (*HolidaySet, error) {
	j, ok := Lookup(code)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownJurisdiction, code)
	}

	st := defaultSettings()
	for _, opt := range opts {
		opt(&st)
	}
	st.code = j.Code
	if st.subdivision != "" && !j.hasSubdivision(st.subdivision) {
		return nil, fmt.Errorf("%w: %q for %s", ErrUnknownSubdivision, st.subdivision, j.Code)
	}
	if st.location == nil {
		st.location = j.Location
	}
	if st.location == nil {
		st.location = time.UTC
	}

	p, err := j.NewProvider(ProviderConfig{
		Subdivision: strings.ToUpper(st.subdivision),
		Observed:    st.observed,
		Language:    st.lang,
		Logger:      st.logger,
		Converter:   st.converter,
		Overrides:   st.overrides,
	})
	if err != nil {
		return nil, fmt.Errorf("krholiday: %s: %w", j.Code, err)
	}
	return build(p, st)
}

// NewSet returns a HolidaySet over an arbitrary provider. WithObserved and
// WithLanguage are recorded on the set but it is up to the provider to honor
// them; WithConverter and WithOverrides are ignored.
func NewSet(p RuleProvider, opts ...Option) (*HolidaySet, error) {
	st := defaultSettings()
	for _, opt := range opts {
		opt(&st)
	}
	if st.location == nil {
		st.location = time.UTC
	}
	return build(p, st)
}

func build(p RuleProvider, st settings) (*HolidaySet, error) {
	s := newHolidaySet(p, st)
	for _, y := range st.years {
		if err := s.ForceExpand(y); err != nil {
			return nil, err
		}
	}
	return s, nil
}
