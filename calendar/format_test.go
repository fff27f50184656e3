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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatCommonLayout(t *testing.T) {
	dt := New(2024, 3, 7, 13, 5, 9, 123000000)
	require.Equal(t, "2024-03-07 13:05:09.123", dt.Format("yyyy-MM-dd hh:mm:ss.fff"))
}

func TestFormatMonthAndWeekdayNames(t *testing.T) {
	dt := New(2024, 3, 7, 0, 0, 0, 0) // a Thursday
	require.Equal(t, "Thursday, March 07 2024", dt.Format("dddd, MMMM dd yyyy"))
	require.Equal(t, "Thu Mar", dt.Format("ddd MMM"))
}

func TestFormatMeridiemAnd12Hour(t *testing.T) {
	dt := New(2024, 3, 7, 15, 30, 0, 0)
	require.Equal(t, "03:30 PM", dt.Format("HH:mm A"))
	require.Equal(t, "3:30 pm", dt.Format("H:mm a"))
}

func TestFormatEraSignAndWord(t *testing.T) {
	ce := New(2024, 1, 1, 0, 0, 0, 0)
	require.Equal(t, "+2024 CE", ce.Format("#yyyy E"))

	bce := New(0, 1, 1, 0, 0, 0, 0)
	require.Equal(t, "-1 BCE", bce.Format("#y E"))
}

func TestFormatUnrecognizedLengthPreservedLiterally(t *testing.T) {
	dt := New(2024, 3, 7, 0, 0, 0, 0)
	require.Equal(t, "yyy", dt.Format("yyy"))
	require.Equal(t, "MMMMM", dt.Format("MMMMM"))
}

func TestFormatFractionalSecondDigitCounts(t *testing.T) {
	dt := New(2024, 3, 7, 0, 0, 0, 123456789)
	require.Equal(t, "1", dt.Format("f"))
	require.Equal(t, "12", dt.Format("ff"))
	require.Equal(t, "123456789", dt.Format("fffffffff"))
}

func TestParseMonthAndWeekdayNames(t *testing.T) {
	m, ok := ParseMonthName("march")
	require.True(t, ok)
	require.Equal(t, 3, m)

	m, ok = ParseMonthName("MAR")
	require.True(t, ok)
	require.Equal(t, 3, m)

	_, ok = ParseMonthName("marchly")
	require.False(t, ok)

	wd, ok := ParseWeekdayName("thursday")
	require.True(t, ok)
	require.Equal(t, 4, wd)
}
