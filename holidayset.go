// Package krholiday computes public holidays year by year from declarative
// rule tables and serves them from a lazily populated, date-queryable set.
//
// Holidays are not precomputed. A HolidaySet starts empty (or with the years
// requested at construction) and, unless expansion is disabled, computes a
// whole year the first time any date of that year is queried. The reference
// jurisdiction is South Korea ("KR"), whose rule table covers fixed-date
// holidays, lunar-calendar holidays, substitute holidays and the historical
// elections and temporary holidays declared since 1950.
//
// All time.Time inputs are normalized to the jurisdiction's timezone (KST
// for KR) before extracting the calendar date. Strings and POSIX timestamps
// are accepted wherever a date is:
//
//	kr, _ := krholiday.New("KR")
//	kr.Contains("2024-09-17")        // true, nil
//	kr.Get(time.Date(2024, 1, 1, ...)) // "New Year's", true, nil
//
// Package-level functions use a default KR set with English labels:
//
//	krholiday.IsHoliday(t)
//	krholiday.HolidayName(t)
package krholiday

import (
	"fmt"
	"iter"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// DefaultName labels dates added through Update without a name.
const DefaultName = "Holiday"

// Holiday represents a single holiday entry.
type Holiday struct {
	Date time.Time // The date of the holiday (midnight UTC).
	Name string    // The label, e.g. "Chuseok".
}

// HolidaySet is a sparse, lazily populated date→label set.
// Create one with [New] or [NewSet]. All methods are safe for concurrent use.
type HolidaySet struct {
	code        string
	subdivision string
	expand      bool
	observed    bool
	lang        Language
	loc         *time.Location
	provider    RuleProvider
	logger      *slog.Logger

	mu        sync.RWMutex
	entries   map[date]string // rule-derived
	custom    map[date]string // caller overlay, wins over entries
	populated map[int]bool
	inflight  map[int]*population
}

// testHookWait is called before a caller blocks on another caller's
// population of the same year.
var testHookWait = func(year int) {}

// population tracks a year being computed.
type population struct {
	done chan struct{}
	err  error
}

// staging collects one population pass; it is merged only on success.
type staging map[date]string

func (s staging) Write(t time.Time, name string) {
	s[civilDate(t)] = name
}

func newHolidaySet(p RuleProvider, st settings) *HolidaySet {
	return &HolidaySet{
		code:        st.code,
		subdivision: st.subdivision,
		expand:      st.expand,
		observed:    st.observed,
		lang:        st.lang,
		loc:         st.location,
		provider:    p,
		logger:      st.logger,
		entries:     make(map[date]string),
		custom:      make(map[date]string),
		populated:   make(map[int]bool),
		inflight:    make(map[int]*population),
	}
}

// Code returns the jurisdiction code the set was created for.
func (s *HolidaySet) Code() string { return s.code }

// Subdivision returns the subdivision code, or "".
func (s *HolidaySet) Subdivision() string { return s.subdivision }

// Observed reports whether substitute holidays are included.
func (s *HolidaySet) Observed() bool { return s.observed }

// Expand reports whether unknown years are populated on first access.
func (s *HolidaySet) Expand() bool { return s.expand }

// Language returns the label language.
func (s *HolidaySet) Language() Language { return s.lang }

// Location returns the timezone time.Time inputs are normalized to.
func (s *HolidaySet) Location() *time.Location { return s.loc }

// ForceExpand populates year if it has not been populated yet, regardless of
// the expand setting. Repeated calls are no-ops.
func (s *HolidaySet) ForceExpand(year int) error {
	return s.ensureYear(year)
}

// ensureYear populates year at most once. Concurrent callers for the same
// year wait for the first one; a failed population leaves the year unmarked.
func (s *HolidaySet) ensureYear(year int) error {
	s.mu.RLock()
	done := s.populated[year]
	s.mu.RUnlock()
	if done {
		return nil
	}

	for {
		s.mu.Lock()
		if s.populated[year] {
			s.mu.Unlock()
			return nil
		}
		if p, ok := s.inflight[year]; ok {
			s.mu.Unlock()
			testHookWait(year)
			<-p.done
			if p.err != nil {
				return fmt.Errorf("%w: year %d: %v", ErrPopulationInProgress, year, p.err)
			}
			continue
		}
		p := &population{done: make(chan struct{})}
		s.inflight[year] = p
		s.mu.Unlock()

		return s.populate(year, p)
	}
}

func (s *HolidaySet) populate(year int, p *population) (err error) {
	buf := make(staging)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("krholiday: populating %d: panic: %v", year, r)
		}
		s.mu.Lock()
		if err == nil {
			for d, name := range buf {
				s.entries[d] = name
			}
			s.populated[year] = true
		}
		delete(s.inflight, year)
		p.err = err
		close(p.done)
		s.mu.Unlock()

		if err != nil {
			s.logger.Error("population failed", "code", s.code, "year", year, "error", err)
		} else {
			s.logger.Debug("populated year", "code", s.code, "year", year, "holidays", len(buf))
		}
	}()

	if err := s.provider.Populate(year, buf); err != nil {
		return fmt.Errorf("krholiday: populating %d: %w", year, err)
	}
	return nil
}

// lookup returns the label for a date, checking caller overlays first, then
// rule-derived entries. The date's year is populated first when expand is set.
func (s *HolidaySet) lookup(d date) (string, bool, error) {
	if s.expand {
		if err := s.ensureYear(d.year); err != nil {
			return "", false, err
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if name, ok := s.custom[d]; ok {
		return name, true, nil
	}
	name, ok := s.entries[d]
	return name, ok, nil
}

// Get returns the label of a date-like value: a time.Time, a date string or
// a POSIX timestamp. ok is false if the date is not a holiday, or if its year
// has not been populated and expansion is disabled.
func (s *HolidaySet) Get(v any) (name string, ok bool, err error) {
	d, err := parseDate(v, s.loc)
	if err != nil {
		return "", false, err
	}
	return s.lookup(d)
}

// Date coerces a date-like value to the calendar date the set uses for it,
// returned as midnight UTC. The result can be passed back to any method and
// names the same date whatever the set's location.
func (s *HolidaySet) Date(v any) (time.Time, error) {
	d, err := parseDate(v, s.loc)
	if err != nil {
		return time.Time{}, err
	}
	return d.toTime(), nil
}

// Contains reports whether a date-like value is a holiday, with the same
// coercion and expansion rules as Get.
func (s *HolidaySet) Contains(v any) (bool, error) {
	_, ok, err := s.Get(v)
	return ok, err
}

// IsHoliday reports whether the given date is a holiday. The input time is
// converted to the jurisdiction's timezone before extracting the calendar
// date. A population failure reports false.
func (s *HolidaySet) IsHoliday(t time.Time) bool {
	_, ok, _ := s.lookup(dateFromTime(t, s.loc))
	return ok
}

// HolidayName returns the holiday name for the given date, or an empty string
// if it is not a holiday.
func (s *HolidaySet) HolidayName(t time.Time) string {
	name, _, _ := s.lookup(dateFromTime(t, s.loc))
	return name
}

// Range returns the holiday dates in [start, end), ascending. Only years
// already populated are searched; Range never populates. If end is not
// after start the result is empty.
func (s *HolidaySet) Range(start, end any) ([]time.Time, error) {
	from, err := parseDate(start, s.loc)
	if err != nil {
		return nil, err
	}
	to, err := parseDate(end, s.loc)
	if err != nil {
		return nil, err
	}
	if !from.before(to) {
		return []time.Time{}, nil
	}

	holidays := s.holidaysInRange(from, to.addDays(-1))
	dates := make([]time.Time, len(holidays))
	for i, h := range holidays {
		dates[i] = h.Date
	}
	return dates, nil
}

// HolidaysInYear populates year if needed and returns its holidays, sorted
// by date.
func (s *HolidaySet) HolidaysInYear(year int) ([]Holiday, error) {
	if err := s.ensureYear(year); err != nil {
		return nil, err
	}
	from := date{year: year, month: time.January, day: 1}
	to := date{year: year, month: time.December, day: 31}
	return s.holidaysInRange(from, to), nil
}

// HolidaysInMonth populates year if needed and returns the holidays of the
// given month, sorted by date.
func (s *HolidaySet) HolidaysInMonth(year int, month time.Month) ([]Holiday, error) {
	if err := s.ensureYear(year); err != nil {
		return nil, err
	}
	from := date{year: year, month: month, day: 1}
	to := date{year: year, month: month, day: daysIn(month, year)}
	return s.holidaysInRange(from, to), nil
}

// HolidaysBetween returns all holidays in the range [from, to] inclusive,
// sorted by date. When expand is set, every year of the range is populated
// first. If from is after to, returns nil.
func (s *HolidaySet) HolidaysBetween(from, to time.Time) ([]Holiday, error) {
	fromD := dateFromTime(from, s.loc)
	toD := dateFromTime(to, s.loc)
	if toD.before(fromD) {
		return nil, nil
	}
	if s.expand {
		for y := fromD.year; y <= toD.year; y++ {
			if err := s.ensureYear(y); err != nil {
				return nil, err
			}
		}
	}
	return s.holidaysInRange(fromD, toD), nil
}

// Holidays returns every materialized holiday, rule-derived and custom,
// sorted by date. If both exist on the same date, only the custom holiday is
// returned.
func (s *HolidaySet) Holidays() []Holiday {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Holiday, 0, len(s.entries)+len(s.custom))
	for d, name := range s.entries {
		if _, ok := s.custom[d]; ok {
			continue
		}
		result = append(result, Holiday{Date: d.toTime(), Name: name})
	}
	for d, name := range s.custom {
		result = append(result, Holiday{Date: d.toTime(), Name: name})
	}
	sortHolidays(result)
	return result
}

// All iterates over the materialized holidays in ascending date order. It
// works on a snapshot taken when iteration starts.
func (s *HolidaySet) All() iter.Seq2[time.Time, string] {
	return func(yield func(time.Time, string) bool) {
		for _, h := range s.Holidays() {
			if !yield(h.Date, h.Name) {
				return
			}
		}
	}
}

// Len returns the number of materialized holidays.
func (s *HolidaySet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.entries)
	for d := range s.custom {
		if _, ok := s.entries[d]; !ok {
			n++
		}
	}
	return n
}

// Years returns the populated years, ascending.
func (s *HolidaySet) Years() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	years := make([]int, 0, len(s.populated))
	for y := range s.populated {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// holidaysInRange collects materialized holidays within the given date range
// (inclusive).
func (s *HolidaySet) holidaysInRange(from, to date) []Holiday {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Holiday
	for d, name := range s.entries {
		if _, ok := s.custom[d]; ok {
			continue
		}
		if d.inRange(from, to) {
			result = append(result, Holiday{Date: d.toTime(), Name: name})
		}
	}
	for d, name := range s.custom {
		if d.inRange(from, to) {
			result = append(result, Holiday{Date: d.toTime(), Name: name})
		}
	}
	sortHolidays(result)
	return result
}

func sortHolidays(hs []Holiday) {
	sort.Slice(hs, func(i, j int) bool {
		return hs[i].Date.Before(hs[j].Date)
	})
}

// Write adds a custom holiday on a date-like value, overwriting any custom
// holiday already there. It never populates.
func (s *HolidaySet) Write(v any, name string) error {
	d, err := parseDate(v, s.loc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.custom[d] = name
	return nil
}

// Update merges custom holidays into the set. src may be:
//
//   - a map from date-like keys to names (map[string]string,
//     map[time.Time]string or map[any]string);
//   - a slice of date-like values ([]string, []time.Time, []int64 or []any),
//     each named [DefaultName];
//   - a single date-like value, named [DefaultName].
//
// Entries are validated first; if any is invalid nothing is written. Update
// never populates.
func (s *HolidaySet) Update(src any) error {
	staged := make(map[date]string)
	add := func(v any, name string) error {
		d, err := parseDate(v, s.loc)
		if err != nil {
			return err
		}
		staged[d] = name
		return nil
	}

	var err error
	switch x := src.(type) {
	case map[string]string:
		for k, name := range x {
			if err = add(k, name); err != nil {
				break
			}
		}
	case map[time.Time]string:
		for k, name := range x {
			if err = add(k, name); err != nil {
				break
			}
		}
	case map[any]string:
		for k, name := range x {
			if err = add(k, name); err != nil {
				break
			}
		}
	case []string:
		for _, v := range x {
			if err = add(v, DefaultName); err != nil {
				break
			}
		}
	case []time.Time:
		for _, v := range x {
			if err = add(v, DefaultName); err != nil {
				break
			}
		}
	case []int64:
		for _, v := range x {
			if err = add(v, DefaultName); err != nil {
				break
			}
		}
	case []any:
		for _, v := range x {
			if err = add(v, DefaultName); err != nil {
				break
			}
		}
	default:
		err = add(src, DefaultName)
	}
	if err != nil {
		return fmt.Errorf("krholiday: update: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for d, name := range staged {
		s.custom[d] = name
	}
	return nil
}

// AddCustomHoliday registers a custom holiday on the given date.
// If a custom holiday already exists on that date, it is overwritten.
// If a rule-derived holiday exists on the same date, this custom holiday
// takes precedence in lookups and list APIs.
func (s *HolidaySet) AddCustomHoliday(t time.Time, name string) {
	d := dateFromTime(t, s.loc)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.custom[d] = name
}

// RemoveCustomHoliday removes a previously added custom holiday.
// Has no effect if no custom holiday exists on that date.
func (s *HolidaySet) RemoveCustomHoliday(t time.Time) {
	d := dateFromTime(t, s.loc)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.custom, d)
}
