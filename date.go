package krholiday

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// kstZone is the Asia/Seoul timezone (UTC+9) used by the KR jurisdiction to
// normalize input times to the Korean calendar date.
var kstZone = time.FixedZone("Asia/Seoul", 9*60*60)

// date is an internal comparable key for map lookups.
// Users work with time.Time; this type is not exported.
type date struct {
	year  int
	month time.Month
	day   int
}

// dateFromTime converts a time.Time to a date by first normalizing to loc.
// This ensures that a moment in time always maps to the jurisdiction's
// calendar date regardless of the input timezone.
//
// Midnight UTC is the form dates are handed out in (Holiday.Date, Range,
// HolidaySet.Date) and is read back as the calendar date it names, so that
// output round-trips in zones west of UTC.
func dateFromTime(t time.Time, loc *time.Location) date {
	if isUTCMidnight(t) {
		return civilDate(t)
	}
	y, m, d := t.In(loc).Date()
	return date{year: y, month: m, day: d}
}

func isUTCMidnight(t time.Time) bool {
	if t.Location() != time.UTC {
		return false
	}
	h, m, s := t.Clock()
	return h == 0 && m == 0 && s == 0 && t.Nanosecond() == 0
}

// civilDate takes the calendar date of t as written, without conversion.
func civilDate(t time.Time) date {
	y, m, d := t.Date()
	return date{year: y, month: m, day: d}
}

func (d date) toTime() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

func (d date) addDays(n int) date {
	return civilDate(d.toTime().AddDate(0, 0, n))
}

func (d date) weekday() time.Weekday {
	return d.toTime().Weekday()
}

func (d date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.year, int(d.month), d.day)
}

func (d date) before(other date) bool {
	if d.year != other.year {
		return d.year < other.year
	}
	if d.month != other.month {
		return d.month < other.month
	}
	return d.day < other.day
}

func (d date) after(other date) bool {
	return other.before(d)
}

func (d date) inRange(from, to date) bool {
	return !d.before(from) && !to.before(d)
}

// dateLayouts are the string forms accepted wherever a date-like value is.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"2006.01.02",
	"20060102",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// parseDate coerces a date-like value into a date. Accepted values are
// time.Time (normalized to loc), strings in one of dateLayouts or RFC 3339,
// and integer or floating-point POSIX timestamps in seconds.
func parseDate(v any, loc *time.Location) (date, error) {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return date{}, fmt.Errorf("%w: zero time", ErrInvalidDateFormat)
		}
		return dateFromTime(x, loc), nil
	case *time.Time:
		if x == nil {
			return date{}, fmt.Errorf("%w: nil time", ErrInvalidDateFormat)
		}
		return parseDate(*x, loc)
	case string:
		return parseDateString(x, loc)
	case int:
		return dateFromUnix(int64(x), loc), nil
	case int32:
		return dateFromUnix(int64(x), loc), nil
	case int64:
		return dateFromUnix(x, loc), nil
	case uint32:
		return dateFromUnix(int64(x), loc), nil
	case float32:
		return dateFromFloat(float64(x), loc)
	case float64:
		return dateFromFloat(x, loc)
	case nil:
		return date{}, fmt.Errorf("%w: nil", ErrInvalidDateFormat)
	default:
		return date{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidDateFormat, v)
	}
}

func parseDateString(s string, loc *time.Location) (date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return date{}, fmt.Errorf("%w: empty string", ErrInvalidDateFormat)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civilDate(t), nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return dateFromTime(t, loc), nil
	}
	return date{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, s)
}

func dateFromUnix(sec int64, loc *time.Location) date {
	return dateFromTime(time.Unix(sec, 0), loc)
}

func dateFromFloat(f float64, loc *time.Location) (date, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return date{}, fmt.Errorf("%w: %v", ErrInvalidDateFormat, f)
	}
	sec, frac := math.Modf(f)
	return dateFromTime(time.Unix(int64(sec), int64(frac*1e9)), loc), nil
}
