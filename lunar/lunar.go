// Package lunar converts dates of the Korean lunisolar calendar to the
// Gregorian calendar.
//
// Month boundaries are computed astronomically rather than read from a
// table: a lunar month starts on the civil day (Korean standard time) of a
// new moon, month 11 is the month containing the December solstice, and in a
// span of thirteen months between two such months the first month that
// contains no principal solar term is the leap month.
//
// Basic usage:
//
//	var conv lunar.Korean
//	seollal, err := conv.Solar(2020, 1, 1, false) // 2020-01-25
package lunar

import (
	"errors"
	"fmt"
	"time"
)

// Supported range of lunar years.
const (
	MinYear = 1900
	MaxYear = 2100
)

// ErrUnsupportedDate is returned for lunar dates outside the supported range
// or that do not exist (day 30 of a short month, a leap flag on a month that
// is not the leap month of the year).
var ErrUnsupportedDate = errors.New("lunar: unsupported date")

// Converter resolves a lunar date to a solar (Gregorian) date.
type Converter interface {
	Solar(year, month, day int, leap bool) (time.Time, error)
}

// Korean is the Korean lunisolar calendar. The zero value is ready to use
// and safe for concurrent use.
type Korean struct{}

var _ Converter = Korean{}

// Solar returns the Gregorian date (midnight UTC) of the given lunar date.
func (Korean) Solar(year, month, day int, leap bool) (time.Time, error) {
	if day < 1 || day > 30 {
		return time.Time{}, fmt.Errorf("%w: day %d", ErrUnsupportedDate, day)
	}
	start, length, err := monthBounds(year, month, leap)
	if err != nil {
		return time.Time{}, err
	}
	if day > length {
		return time.Time{}, fmt.Errorf("%w: %s has %d days", ErrUnsupportedDate, monthLabel(year, month, leap), length)
	}
	return dayToTime(start + day - 1), nil
}

// MonthLength returns the number of days (29 or 30) of a lunar month.
func (Korean) MonthLength(year, month int, leap bool) (int, error) {
	_, length, err := monthBounds(year, month, leap)
	return length, err
}

// LeapMonth returns the leap month of a lunar year, or 0 if the year has none.
func (Korean) LeapMonth(year int) (int, error) {
	if year < MinYear || year > MaxYear {
		return 0, fmt.Errorf("%w: year %d", ErrUnsupportedDate, year)
	}
	// A leap month numbered 1-10 lies between month 11 of the previous year
	// and month 11 of this one; a leap 11 or 12 lies after this year's month 11.
	if lo, ok := leapOffsetAfter(year - 1); ok && lo >= 3 {
		return lo - 2, nil
	}
	if lo, ok := leapOffsetAfter(year); ok && lo <= 2 {
		return lo + 10, nil
	}
	return 0, nil
}

func monthLabel(year, month int, leap bool) string {
	if leap {
		return fmt.Sprintf("%d/leap %d", year, month)
	}
	return fmt.Sprintf("%d/%d", year, month)
}

// monthBounds returns the day number of the first day of a lunar month and
// the month's length.
func monthBounds(year, month int, leap bool) (int, int, error) {
	if year < MinYear || year > MaxYear {
		return 0, 0, fmt.Errorf("%w: year %d outside %d-%d", ErrUnsupportedDate, year, MinYear, MaxYear)
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("%w: month %d", ErrUnsupportedDate, month)
	}

	base := year - 1
	if month >= 11 {
		base = year
	}
	k11, a11 := month11(base)
	_, b11 := month11(base + 1)

	off := month - 11
	if off < 0 {
		off += 12
	}
	if b11-a11 > 365 {
		lo := leapOffset(k11)
		if leap && month != leapMonthNumber(lo) {
			return 0, 0, fmt.Errorf("%w: %s is not a leap month", ErrUnsupportedDate, monthLabel(year, month, leap))
		}
		if leap || off >= lo {
			off++
		}
	} else if leap {
		return 0, 0, fmt.Errorf("%w: lunar year %d has no leap month", ErrUnsupportedDate, year)
	}

	start := newMoonDay(k11 + off)
	next := newMoonDay(k11 + off + 1)
	return start, next - start, nil
}

// leapOffsetAfter reports the leap offset of the span starting at month 11 of
// the given year, if that span has thirteen months.
func leapOffsetAfter(year int) (int, bool) {
	k11, a11 := month11(year)
	_, b11 := month11(year + 1)
	if b11-a11 <= 365 {
		return 0, false
	}
	return leapOffset(k11), true
}

// leapMonthNumber maps an offset from month 11 to the number of the month the
// leap month repeats.
func leapMonthNumber(offset int) int {
	n := (offset - 2 + 12) % 12
	if n == 0 {
		return 12
	}
	return n
}

// month11 returns the lunation number and the first day of the lunar month
// containing the December solstice of the given Gregorian year.
func month11(year int) (int, int) {
	end := float64(julianDayNumber(year, 12, 31))
	k := int(floor((end - newMoonEpoch) / synodicMonth))
	day := newMoonDay(k)
	if sector(day) >= 9 {
		k--
		day = newMoonDay(k)
	}
	return k, day
}

// leapOffset returns the offset from month 11 (lunation k) of the first month
// without a principal term. Such a month starts in the same 30-degree sector
// of solar longitude as the month after it.
func leapOffset(k int) int {
	i := 1
	arc := sector(newMoonDay(k + i))
	for {
		last := arc
		i++
		arc = sector(newMoonDay(k + i))
		if arc == last || i >= 14 {
			break
		}
	}
	return i - 1
}
