/*
Copyright (c) ntproto authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package calendar is the presentation-only date/time value model: a
// proleptic Gregorian DateTime built on a Julian Day Number plus a
// nanosecond-of-day offset, used to render NtpTimestamp and Packet
// fields in logs and CLI output. It is not a general-purpose calendar
// library: no time zones, no locales, no leap seconds.
package calendar

import "time"

// julianDayUnixEpoch is the Julian Day Number of 1970-01-01.
const julianDayUnixEpoch = 2440588

const nanosPerDay = int64(24 * time.Hour)

// DateTime is an immutable proleptic-Gregorian civil date plus a
// nanosecond-of-day offset. The zero value is JDN 0 at midnight, a
// date far in the past; callers are expected to build values via New,
// FromTime or FromJulianDay rather than the zero value.
type DateTime struct {
	jdn   int64
	nanos int64 // [0, nanosPerDay)
}

// New builds a DateTime from a proleptic Gregorian civil date and
// time-of-day. month is 1-12. Out-of-range hour/min/sec/nanos values
// are normalized (carrying into the date) the way time.Date does.
func New(year int, month, day, hour, min, sec, nanos int) DateTime {
	total := int64(hour)*int64(time.Hour) + int64(min)*int64(time.Minute) +
		int64(sec)*int64(time.Second) + int64(nanos)

	jdn := daysFromCivil(int64(year), month, day) + julianDayUnixEpoch
	dayCarry := floorDiv(total, nanosPerDay)
	jdn += dayCarry
	total -= dayCarry * nanosPerDay
	return DateTime{jdn: jdn, nanos: total}
}

// FromJulianDay builds a DateTime directly from a Julian Day Number and
// a nanosecond-of-day offset; nanos must be in [0, 24h).
func FromJulianDay(jdn int64, nanosOfDay int64) DateTime {
	return DateTime{jdn: jdn, nanos: nanosOfDay}
}

// FromTime converts a time.Time, interpreted in UTC, discarding any
// location/zone information (time zones are out of scope).
func FromTime(t time.Time) DateTime {
	t = t.UTC()
	y, m, d := t.Date()
	jdn := daysFromCivil(int64(y), int(m), d) + julianDayUnixEpoch
	nanos := int64(t.Hour())*int64(time.Hour) + int64(t.Minute())*int64(time.Minute) +
		int64(t.Second())*int64(time.Second) + int64(t.Nanosecond())
	return DateTime{jdn: jdn, nanos: nanos}
}

// ToTime renders the DateTime as a UTC time.Time.
func (dt DateTime) ToTime() time.Time {
	y, m, d := civilFromDays(dt.jdn - julianDayUnixEpoch)
	return time.Date(int(y), time.Month(m), d, 0, 0, 0, 0, time.UTC).Add(time.Duration(dt.nanos))
}

// JulianDayNumber returns the Julian Day Number of the civil date
// (ignoring time-of-day, i.e. as if at midnight).
func (dt DateTime) JulianDayNumber() int64 { return dt.jdn }

func (dt DateTime) civil() (year int64, month, day int) {
	return civilFromDays(dt.jdn - julianDayUnixEpoch)
}

// Year returns the proleptic Gregorian astronomical year (0 == 1 BCE,
// -1 == 2 BCE, and so on).
func (dt DateTime) Year() int {
	y, _, _ := dt.civil()
	return int(y)
}

// Month returns the month, 1-12.
func (dt DateTime) Month() int {
	_, m, _ := dt.civil()
	return m
}

// Day returns the day of month, 1-31.
func (dt DateTime) Day() int {
	_, _, d := dt.civil()
	return d
}

// IsCE reports whether the astronomical year is >= 1.
func (dt DateTime) IsCE() bool { return dt.Year() >= 1 }

// EraYear is the 1-based year displayed alongside the era sign/word:
// astronomical year 0 displays as "1 BCE", -1 as "2 BCE", and so on.
func (dt DateTime) EraYear() int {
	y := dt.Year()
	if y >= 1 {
		return y
	}
	return 1 - y
}

// Weekday returns the day of week; 1970-01-01 (JDN 2440588) was a
// Thursday.
func (dt DateTime) Weekday() time.Weekday {
	days := dt.jdn - julianDayUnixEpoch
	idx := ((days%7)+7+4)%7 + 0
	return time.Weekday(idx)
}

// Hour24 returns the hour of day in [0, 24).
func (dt DateTime) Hour24() int { return int(dt.nanos / int64(time.Hour)) }

// Hour12 returns the hour of day in [1, 12] (12-hour clock).
func (dt DateTime) Hour12() int {
	h := dt.Hour24() % 12
	if h == 0 {
		h = 12
	}
	return h
}

// IsPM reports whether the time-of-day falls in the PM half of the day.
func (dt DateTime) IsPM() bool { return dt.Hour24() >= 12 }

// Minute returns the minute of hour, 0-59.
func (dt DateTime) Minute() int { return int((dt.nanos / int64(time.Minute)) % 60) }

// Second returns the second of minute, 0-59.
func (dt DateTime) Second() int { return int((dt.nanos / int64(time.Second)) % 60) }

// Nanosecond returns the nanosecond of second, 0-999999999.
func (dt DateTime) Nanosecond() int { return int(dt.nanos % int64(time.Second)) }

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// daysFromCivil and civilFromDays implement Howard Hinnant's public
// domain proleptic-Gregorian day-count algorithm
// (http://howardhinnant.github.io/date_algorithms.html), returning/
// accepting a day count relative to 1970-01-01.

func daysFromCivil(y int64, m, d int) int64 {
	if m <= 2 {
		y--
	}
	era := y
	if y < 0 {
		era = y - 399
	}
	era /= 400
	yoe := y - era*400
	mp := (int64(m) + 9) % 12
	doy := (153*mp+2)/5 + int64(d) - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

func civilFromDays(z int64) (year int64, month, day int) {
	z += 719468
	era := z
	if z < 0 {
		era = z - 146096
	}
	era /= 146097
	doe := z - era*146097
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	y := yoe + era*400
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	d := doy - (153*mp+2)/5 + 1
	var m int64
	if mp < 10 {
		m = mp + 3
	} else {
		m = mp - 9
	}
	if m <= 2 {
		y++
	}
	return y, int(m), int(d)
}
