package lunar

import (
	"math"
	"time"
)

const (
	synodicMonth = 29.530588861
	// JDE of the first new moon of 2000 (2000-01-06), lunation 0.
	newMoonEpoch = 2451550.09766
	j2000        = 2451545.0
	unixEpochJDN = 2440588
)

var unixEpoch = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

func floor(x float64) float64 { return math.Floor(x) }

func sin(deg float64) float64 { return math.Sin(deg * math.Pi / 180) }

// julianDayNumber returns the Julian day number of a Gregorian date.
func julianDayNumber(year, month, day int) int {
	a := (14 - month) / 12
	y := year + 4800 - a
	m := month + 12*a - 3
	return day + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045
}

func dayToTime(jdn int) time.Time {
	return unixEpoch.AddDate(0, 0, jdn-unixEpochJDN)
}

// Korean standard time changed meridian twice since 1908.
var (
	kst1912 = julianDayNumber(1912, 1, 1)
	kst1954 = julianDayNumber(1954, 3, 21)
	kst1961 = julianDayNumber(1961, 8, 10)
)

// utcOffset returns the civil time offset in hours in effect in Korea on the
// given Julian date.
func utcOffset(jd float64) float64 {
	d := int(floor(jd + 0.5))
	switch {
	case d < kst1912:
		return 8.5
	case d < kst1954:
		return 9
	case d < kst1961:
		return 8.5
	default:
		return 9
	}
}

// deltaT estimates TT-UT in seconds (Espenak and Meeus polynomials).
func deltaT(jd float64) float64 {
	y := 2000 + (jd-j2000)/365.25
	switch {
	case y < 1900:
		u := (y - 1820) / 100
		return -20 + 32*u*u
	case y < 1920:
		t := y - 1900
		return -2.79 + 1.494119*t - 0.0598939*t*t + 0.0061966*t*t*t - 0.000197*t*t*t*t
	case y < 1941:
		t := y - 1920
		return 21.20 + 0.84493*t - 0.076100*t*t + 0.0020936*t*t*t
	case y < 1961:
		t := y - 1950
		return 29.07 + 0.407*t - t*t/233 + t*t*t/2547
	case y < 1986:
		t := y - 1975
		return 45.45 + 1.067*t - t*t/260 - t*t*t/718
	case y < 2005:
		t := y - 2000
		return 63.86 + 0.3345*t - 0.060374*t*t + 0.0017275*t*t*t + 0.000651814*t*t*t*t + 0.00002373599*t*t*t*t*t
	case y < 2050:
		t := y - 2000
		return 62.92 + 0.32217*t + 0.005589*t*t
	case y < 2150:
		u := (y - 1820) / 100
		return -20 + 32*u*u - 0.5628*(2150-y)
	default:
		u := (y - 1820) / 100
		return -20 + 32*u*u
	}
}

// newMoonJDE returns the Julian Ephemeris Day of the true new moon of
// lunation k (Meeus, Astronomical Algorithms, ch. 49).
func newMoonJDE(k int) float64 {
	kf := float64(k)
	t := kf / 1236.85
	t2 := t * t
	t3 := t2 * t
	t4 := t3 * t

	jde := newMoonEpoch + synodicMonth*kf + 0.00015437*t2 - 0.000000150*t3 + 0.00000000073*t4

	e := 1 - 0.002516*t - 0.0000074*t2
	m := 2.5534 + 29.10535670*kf - 0.0000014*t2 - 0.00000011*t3
	mp := 201.5643 + 385.81693528*kf + 0.0107582*t2 + 0.00001238*t3 - 0.000000058*t4
	f := 160.7108 + 390.67050284*kf - 0.0016118*t2 - 0.00000227*t3 + 0.000000011*t4
	om := 124.7746 - 1.56375588*kf + 0.0020672*t2 + 0.00000215*t3

	jde += -0.40720*sin(mp) +
		0.17241*e*sin(m) +
		0.01608*sin(2*mp) +
		0.01039*sin(2*f) +
		0.00739*e*sin(mp-m) -
		0.00514*e*sin(mp+m) +
		0.00208*e*e*sin(2*m) -
		0.00111*sin(mp-2*f) -
		0.00057*sin(mp+2*f) +
		0.00056*e*sin(2*mp+m) -
		0.00042*sin(3*mp) +
		0.00042*e*sin(m+2*f) +
		0.00038*e*sin(m-2*f) -
		0.00024*e*sin(2*mp-m) -
		0.00017*sin(om) -
		0.00007*sin(mp+2*m) +
		0.00004*sin(2*mp-2*f) +
		0.00004*sin(3*m) +
		0.00003*sin(mp+m-2*f) +
		0.00003*sin(2*mp+2*f) -
		0.00003*sin(mp+m+2*f) +
		0.00003*sin(mp-m+2*f) -
		0.00002*sin(mp-m-2*f) -
		0.00002*sin(3*mp+m) +
		0.00002*sin(4*mp)

	// Planetary arguments.
	jde += 0.000325*sin(299.77+0.107408*kf-0.009173*t2) +
		0.000165*sin(251.88+0.016321*kf) +
		0.000164*sin(251.83+26.651886*kf) +
		0.000126*sin(349.42+36.412478*kf) +
		0.000110*sin(84.66+18.206239*kf) +
		0.000062*sin(141.74+53.303771*kf) +
		0.000060*sin(207.14+2.453732*kf) +
		0.000056*sin(154.84+7.306860*kf) +
		0.000047*sin(34.52+27.261239*kf) +
		0.000042*sin(207.19+0.121824*kf) +
		0.000040*sin(291.34+1.844379*kf) +
		0.000037*sin(161.72+24.198154*kf) +
		0.000035*sin(239.56+25.513099*kf) +
		0.000023*sin(331.55+3.592518*kf)

	return jde
}

// newMoonDay returns the Julian day number of the Korean civil day on which
// the new moon of lunation k falls.
func newMoonDay(k int) int {
	jde := newMoonJDE(k)
	jd := jde - deltaT(jde)/86400
	return int(floor(jd + 0.5 + utcOffset(jd)/24))
}

// sunLongitude returns the apparent geocentric longitude of the sun in
// degrees, [0, 360), at the given Julian date (UT) (Meeus ch. 25).
func sunLongitude(jd float64) float64 {
	t := (jd + deltaT(jd)/86400 - j2000) / 36525
	l0 := 280.46646 + 36000.76983*t + 0.0003032*t*t
	m := 357.52911 + 35999.05029*t - 0.0001537*t*t
	c := (1.914602-0.004817*t-0.000014*t*t)*sin(m) +
		(0.019993-0.000101*t)*sin(2*m) +
		0.000289*sin(3*m)
	om := 125.04 - 1934.136*t
	lambda := l0 + c - 0.00569 - 0.00478*sin(om)
	lambda = math.Mod(lambda, 360)
	if lambda < 0 {
		lambda += 360
	}
	return lambda
}

// sector returns which 30-degree sector of solar longitude the sun is in at
// the start (Korean civil midnight) of the given day.
func sector(jdn int) int {
	midnight := float64(jdn) - 0.5
	midnight -= utcOffset(midnight) / 24
	return int(sunLongitude(midnight) / 30)
}
