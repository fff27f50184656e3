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

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPacketNull(t *testing.T) {
	var p Packet
	require.True(t, p.IsNull())

	nonNull := NewPacket(LeapNone, VersionDefault, ModeClient, 1, 0, 0, 0, 0, 0,
		NewNtpTimestamp(0), NewNtpTimestamp(0), NewNtpTimestamp(0), NewNtpTimestamp(0))
	require.False(t, nonNull.IsNull())

	var other Packet
	require.True(t, p.Equal(other))
}

func TestPacketFromBytesRejectsWrongSize(t *testing.T) {
	_, err := NewPacketFromBytes(make([]byte, 40))
	require.Error(t, err)
}

func TestPacketFieldAccessors(t *testing.T) {
	p := NewPacket(LeapUnsync, 4, ModeServer, StratumPrimary, -6, -20,
		0x00010000, 0x00020000, 0x4c4f434c, // "LOCL"
		NewNtpTimestampFromParts(100, 0), NewNtpTimestampFromParts(200, 0),
		NewNtpTimestampFromParts(300, 0), NewNtpTimestampFromParts(400, 0))

	require.Equal(t, uint8(LeapUnsync), p.Leap())
	require.Equal(t, uint8(4), p.Version())
	require.Equal(t, uint8(ModeServer), p.Mode())
	require.Equal(t, uint8(StratumPrimary), p.Stratum())
	require.Equal(t, int8(-6), p.Poll())
	require.Equal(t, int8(-20), p.Precision())
	require.Equal(t, uint32(0x00010000), p.RootDelay())
	require.Equal(t, uint32(0x00020000), p.RootDispersion())
	require.Equal(t, uint32(0x4c4f434c), p.ReferenceID())
	require.Equal(t, uint32(100), p.ReferenceTimestamp().Seconds())
	require.Equal(t, uint32(200), p.OriginTimestamp().Seconds())
	require.Equal(t, uint32(300), p.ReceiveTimestamp().Seconds())
	require.Equal(t, uint32(400), p.TransmitTimestamp().Seconds())
}

func sameEraPacket(originSec, originFrac, receiveSec, receiveFrac, transmitSec, transmitFrac uint32) Packet {
	return NewPacket(LeapNone, VersionDefault, ModeServer, StratumPrimary, 0, 0, 0, 0, 0,
		NewNtpTimestamp(0),
		NewNtpTimestampFromParts(originSec, originFrac),
		NewNtpTimestampFromParts(receiveSec, receiveFrac),
		NewNtpTimestampFromParts(transmitSec, transmitFrac))
}

func TestDelayOffsetSameEra(t *testing.T) {
	const quarter = uint32(1) << 30    // 0.25s
	const half = uint32(1) << 31       // 0.50s
	const threeQuarter = half + quarter // 0.75s

	t.Run("quarter-second ladder", func(t *testing.T) {
		p := sameEraPacket(1000, 0, 1000, quarter, 1000, half)
		destination := NewNtpTimestampFromParts(1000, threeQuarter)

		require.Equal(t, 500*time.Millisecond, p.Delay(destination))
		require.Equal(t, time.Duration(0), p.Offset(destination))
	})

	t.Run("zero delay zero offset", func(t *testing.T) {
		p := sameEraPacket(1000, 0, 1000, 0, 1000, half)
		destination := NewNtpTimestampFromParts(1000, half)

		require.Equal(t, time.Duration(0), p.Delay(destination))
		require.Equal(t, time.Duration(0), p.Offset(destination))
	})
}

// TestOffsetAtEraCrossing exercises the era-resolving overload documented
// in §4.3/§9: origin sits at the very end of NTP era 0, receive/transmit
// sit just after era 1 begins. The raw (timestamp-only) Offset form is
// off by roughly one era; OffsetAt must recover a small, correctly
// signed result given a destinationTime whose era matches receive and
// transmit.
func TestOffsetAtEraCrossing(t *testing.T) {
	origin := NewNtpTimestampFromParts(0xFFFFFFFF, 0)
	receive := NewNtpTimestampFromParts(0, 1<<28)
	transmit := NewNtpTimestampFromParts(0, 2<<28)

	p := NewPacket(LeapNone, VersionDefault, ModeServer, StratumPrimary, 0, 0, 0, 0, 0,
		NewNtpTimestamp(0), origin, receive, transmit)

	// destinationTime corresponds to era 1, second 0, matching receive
	// and transmit's era.
	destinationTime := time.Unix(1<<32-EraDelta, 0)

	rawOffset := p.Offset(NtpTimestampFromTime(destinationTime))
	resolved := p.OffsetAt(destinationTime)

	// The raw, era-ambiguous form differs from the era-resolved form by
	// a large multiple of seconds; OffsetAt must land far closer to
	// zero, which is what "project the seconds field as signed 32-bit"
	// buys us across an era boundary.
	require.NotEqual(t, rawOffset, resolved)
	require.Less(t, resolved.Abs(), time.Duration(1<<31)*time.Second)
}
