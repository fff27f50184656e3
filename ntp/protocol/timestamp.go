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

package protocol

import "time"

// EraDelta is the number of seconds between the NTP prime epoch
// (1900-01-01 00:00:00 UTC) and the Unix epoch (1970-01-01 00:00:00 UTC).
const EraDelta = 2208988800

// NtpTimestamp is a 32.32 fixed-point NTP timestamp: the top 32 bits are
// seconds since the NTP prime epoch, the low 32 bits are a fraction of a
// second in units of 2^-32 s. The zero value is the "unknown /
// unsynchronized" sentinel.
type NtpTimestamp uint64

// NewNtpTimestamp builds a timestamp from its raw 64-bit value.
func NewNtpTimestamp(value uint64) NtpTimestamp {
	return NtpTimestamp(value)
}

// NewNtpTimestampFromParts builds a timestamp from its seconds and
// fraction fields.
func NewNtpTimestampFromParts(seconds, fraction uint32) NtpTimestamp {
	return NtpTimestamp(uint64(seconds)<<32 | uint64(fraction))
}

// NtpTimestampFromDuration encodes a system-clock duration measured
// since the NTP prime epoch. The fractional field is
// round(subSecondNanos * 2^32 / 1e9), which keeps the ±1-tick round-trip
// property required by the duration() accessor.
func NtpTimestampFromDuration(d time.Duration) NtpTimestamp {
	sec := int64(d / time.Second)
	nanos := int64(d % time.Second)
	if nanos < 0 {
		nanos += int64(time.Second)
		sec--
	}
	frac, carry := fractionFromNanos(nanos)
	if carry {
		sec++
	}
	return NewNtpTimestampFromParts(uint32(sec), frac)
}

// NtpTimestampFromTime encodes a wall-clock time point as an NTP
// timestamp, shifting it from the Unix epoch to the NTP prime epoch by
// EraDelta seconds.
func NtpTimestampFromTime(t time.Time) NtpTimestamp {
	sec := t.Unix() + EraDelta
	frac, carry := fractionFromNanos(int64(t.Nanosecond()))
	if carry {
		sec++
	}
	return NewNtpTimestampFromParts(uint32(sec), frac)
}

// Value returns the raw 64-bit value.
func (t NtpTimestamp) Value() uint64 { return uint64(t) }

// Seconds returns the top 32 bits: seconds since the start of the
// timestamp's NTP era.
func (t NtpTimestamp) Seconds() uint32 { return uint32(t >> 32) }

// Fraction returns the low 32 bits: the fractional second, in units of
// 2^-32 s.
func (t NtpTimestamp) Fraction() uint32 { return uint32(t) }

// IsUnknown reports whether t is the zero sentinel.
func (t NtpTimestamp) IsUnknown() bool { return t == 0 }

// Duration reconstructs the system-clock duration this timestamp
// encodes, relative to the start of its NTP era:
// seconds*1s + round(fraction * 1e9 / 2^32).
func (t NtpTimestamp) Duration() time.Duration {
	return time.Duration(t.Seconds())*time.Second + time.Duration(nanosFromFraction(t.Fraction()))
}

// Time renders t as a wall-clock time.Time, assuming t lies in NTP era
// 0 (1900-01-01 to 2036-02-07 06:28:15 UTC) — the only era a client
// observing a present-day server clock will ever see. Presentation
// code (calendar formatting of query results) uses this; arithmetic
// between timestamps still goes through Sub/OffsetAt.
func (t NtpTimestamp) Time() time.Time {
	return time.Unix(int64(t.Seconds())-EraDelta, nanosFromFraction(t.Fraction())).UTC()
}

// Sub returns the signed system-clock duration a-b, computed as the
// difference of their reconstructed era-relative durations. Per §4.2,
// this is well-defined only when a and b lie in the same NTP era; the
// caller is responsible for era resolution (see Packet.OffsetAt).
func (t NtpTimestamp) Sub(o NtpTimestamp) time.Duration {
	return t.Duration() - o.Duration()
}

// fractionFromNanos rounds subSecondNanos (0 <= n < 1e9) into a 32-bit
// NTP fraction. Returns (0, true) when rounding would carry into the
// next second; the caller bumps the seconds field and uses fraction 0.
func fractionFromNanos(n int64) (frac uint32, carry bool) {
	num := uint64(n) * (uint64(1) << 32)
	rounded := (num + uint64(time.Second)/2) / uint64(time.Second)
	if rounded>>32 != 0 {
		return 0, true
	}
	return uint32(rounded), false
}

// nanosFromFraction rounds a 32-bit NTP fraction back into nanoseconds.
func nanosFromFraction(frac uint32) int64 {
	num := uint64(frac) * uint64(time.Second)
	return int64((num + (uint64(1) << 31)) >> 32)
}
