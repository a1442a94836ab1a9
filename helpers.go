package krholiday

import "time"

// searchLimit bounds the year-by-year scans of NextHoliday and
// PreviousHoliday.
const searchLimit = 5

// IsBusinessDay reports whether the given date is a business day
// (neither a weekend nor a holiday). The date is interpreted in the set's
// location.
func (s *HolidaySet) IsBusinessDay(t time.Time) bool {
	return s.isBusinessDay(dateFromTime(t, s.loc))
}

func (s *HolidaySet) isBusinessDay(d date) bool {
	if Weekend.Contains(d.weekday()) {
		return false
	}
	_, ok, _ := s.lookup(d)
	return !ok
}

// NextHoliday returns the next holiday strictly after the given date.
// With expansion enabled the following years are populated as needed;
// otherwise only materialized holidays are searched. Returns false if none
// is found within five years.
func (s *HolidaySet) NextHoliday(t time.Time) (Holiday, bool) {
	d := dateFromTime(t, s.loc)
	if !s.expand {
		return s.scanMaterialized(d, true)
	}
	for y := d.year; y <= d.year+searchLimit; y++ {
		if err := s.ensureYear(y); err != nil {
			return Holiday{}, false
		}
		to := date{year: y, month: time.December, day: 31}
		if hs := s.holidaysInRange(d.addDays(1), to); len(hs) > 0 {
			return hs[0], true
		}
	}
	return Holiday{}, false
}

// PreviousHoliday returns the most recent holiday strictly before the given
// date, searching back at most five years.
func (s *HolidaySet) PreviousHoliday(t time.Time) (Holiday, bool) {
	d := dateFromTime(t, s.loc)
	if !s.expand {
		return s.scanMaterialized(d, false)
	}
	for y := d.year; y >= d.year-searchLimit; y-- {
		if err := s.ensureYear(y); err != nil {
			return Holiday{}, false
		}
		from := date{year: y, month: time.January, day: 1}
		hs := s.holidaysInRange(from, d.addDays(-1))
		if len(hs) > 0 {
			return hs[len(hs)-1], true
		}
	}
	return Holiday{}, false
}

// scanMaterialized finds the nearest materialized holiday after (or before)
// d without populating anything.
func (s *HolidaySet) scanMaterialized(d date, next bool) (Holiday, bool) {
	var best Holiday
	found := false
	for _, h := range s.Holidays() {
		hd := civilDate(h.Date)
		if next && hd.after(d) {
			return h, true
		}
		if !next && hd.before(d) {
			best, found = h, true
		}
	}
	return best, found
}

// NextBusinessDay returns the next business day on or after the given date.
// If t itself is a business day, it returns t (normalized to midnight UTC).
// Returns the zero time if no business day is found within 366 days.
func (s *HolidaySet) NextBusinessDay(t time.Time) time.Time {
	cur := dateFromTime(t, s.loc)
	for i := 0; i < 366; i++ {
		if s.isBusinessDay(cur) {
			return cur.toTime()
		}
		cur = cur.addDays(1)
	}
	return time.Time{}
}

// PreviousBusinessDay returns the most recent business day on or before the given date.
// If t itself is a business day, it returns t (normalized to midnight UTC).
// Returns the zero time if no business day is found within 366 days.
func (s *HolidaySet) PreviousBusinessDay(t time.Time) time.Time {
	cur := dateFromTime(t, s.loc)
	for i := 0; i < 366; i++ {
		if s.isBusinessDay(cur) {
			return cur.toTime()
		}
		cur = cur.addDays(-1)
	}
	return time.Time{}
}

// BusinessDaysBetween returns the count of business days in the range [from, to] inclusive.
// If from is after to, returns 0.
func (s *HolidaySet) BusinessDaysBetween(from, to time.Time) int {
	cur := dateFromTime(from, s.loc)
	end := dateFromTime(to, s.loc)

	count := 0
	for !cur.after(end) {
		if s.isBusinessDay(cur) {
			count++
		}
		cur = cur.addDays(1)
	}
	return count
}

// --- Package-level convenience functions ---

// IsBusinessDay reports whether the given date is a business day.
func IsBusinessDay(t time.Time) bool { return defaultSet().IsBusinessDay(t) }

// NextHoliday returns the next holiday strictly after the given date.
func NextHoliday(t time.Time) (Holiday, bool) { return defaultSet().NextHoliday(t) }

// PreviousHoliday returns the most recent holiday strictly before the given date.
func PreviousHoliday(t time.Time) (Holiday, bool) { return defaultSet().PreviousHoliday(t) }

// NextBusinessDay returns the next business day on or after the given date.
func NextBusinessDay(t time.Time) time.Time { return defaultSet().NextBusinessDay(t) }

// PreviousBusinessDay returns the most recent business day on or before the given date.
func PreviousBusinessDay(t time.Time) time.Time { return defaultSet().PreviousBusinessDay(t) }

// BusinessDaysBetween returns the count of business days in the range [from, to].
func BusinessDaysBetween(from, to time.Time) int { return defaultSet().BusinessDaysBetween(from, to) }
