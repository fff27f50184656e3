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

package calendar

import (
	"fmt"
	"strings"
)

var longMonthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

var shortMonthNames = [...]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

var longWeekdayNames = [...]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

var shortWeekdayNames = [...]string{
	"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat",
}

// patternLetters is every rune the grammar recognizes as the start of
// a pattern run; anything else passes through as a literal.
const patternLetters = "#EyMdhHmsfaA"

// Format renders dt according to layout. Recognized pattern letters
// (run-length sensitive) are: # (era sign), E (era word), y/yy/yyyy
// (year), M/MM/MMM/MMMM (month), d/dd/ddd/dddd (day-of-month /
// day-of-week), h/hh (24-hour), H/HH (12-hour), m/mm (minute), s/ss
// (second), f..fffffffff (1-9 digit fractional second), a/A
// (meridiem). A run of a known letter at an unrecognized length, and
// any other character, is copied through literally.
func (dt DateTime) Format(layout string) string {
	var b strings.Builder
	runes := []rune(layout)
	for i := 0; i < len(runes); {
		r := runes[i]
		if !strings.ContainsRune(patternLetters, r) {
			b.WriteRune(r)
			i++
			continue
		}
		j := i
		for j < len(runes) && runes[j] == r {
			j++
		}
		run := string(runes[i:j])
		b.WriteString(dt.formatRun(r, j-i, run))
		i = j
	}
	return b.String()
}

func (dt DateTime) formatRun(letter rune, n int, literal string) string {
	switch letter {
	case '#':
		if n == 1 {
			if dt.IsCE() {
				return "+"
			}
			return "-"
		}
	case 'E':
		if n == 1 {
			if dt.IsCE() {
				return "CE"
			}
			return "BCE"
		}
	case 'y':
		switch n {
		case 1:
			return fmt.Sprintf("%d", dt.EraYear())
		case 2:
			return fmt.Sprintf("%02d", dt.EraYear()%100)
		case 4:
			return fmt.Sprintf("%04d", dt.EraYear())
		}
	case 'M':
		switch n {
		case 1:
			return fmt.Sprintf("%d", dt.Month())
		case 2:
			return fmt.Sprintf("%02d", dt.Month())
		case 3:
			return shortMonthNames[dt.Month()-1]
		case 4:
			return longMonthNames[dt.Month()-1]
		}
	case 'd':
		switch n {
		case 1:
			return fmt.Sprintf("%d", dt.Day())
		case 2:
			return fmt.Sprintf("%02d", dt.Day())
		case 3:
			return shortWeekdayNames[int(dt.Weekday())]
		case 4:
			return longWeekdayNames[int(dt.Weekday())]
		}
	case 'h':
		switch n {
		case 1:
			return fmt.Sprintf("%d", dt.Hour24())
		case 2:
			return fmt.Sprintf("%02d", dt.Hour24())
		}
	case 'H':
		switch n {
		case 1:
			return fmt.Sprintf("%d", dt.Hour12())
		case 2:
			return fmt.Sprintf("%02d", dt.Hour12())
		}
	case 'm':
		switch n {
		case 1:
			return fmt.Sprintf("%d", dt.Minute())
		case 2:
			return fmt.Sprintf("%02d", dt.Minute())
		}
	case 's':
		switch n {
		case 1:
			return fmt.Sprintf("%d", dt.Second())
		case 2:
			return fmt.Sprintf("%02d", dt.Second())
		}
	case 'f':
		if n >= 1 && n <= 9 {
			digits := fmt.Sprintf("%09d", dt.Nanosecond())
			return digits[:n]
		}
	case 'a':
		if n == 1 {
			if dt.IsPM() {
				return "pm"
			}
			return "am"
		}
	case 'A':
		if n == 1 {
			if dt.IsPM() {
				return "PM"
			}
			return "AM"
		}
	}
	return literal
}

// ParseMonthName resolves an English month name (short or long form,
// case-insensitive) to its 1-12 number. It returns false if name
// matches neither form of any month.
func ParseMonthName(name string) (int, bool) {
	for i, full := range longMonthNames {
		if strings.EqualFold(full, name) || strings.EqualFold(shortMonthNames[i], name) {
			return i + 1, true
		}
	}
	return 0, false
}

// ParseWeekdayName resolves an English weekday name (short or long
// form, case-insensitive) to a time.Weekday-compatible index (0 ==
// Sunday). It returns false if name matches neither form of any
// weekday.
func ParseWeekdayName(name string) (int, bool) {
	for i, full := range longWeekdayNames {
		if strings.EqualFold(full, name) || strings.EqualFold(shortWeekdayNames[i], name) {
			return i, true
		}
	}
	return 0, false
}
