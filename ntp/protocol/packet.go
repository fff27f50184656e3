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
	"fmt"
	"time"
)

// Size is the fixed length of an NTPv4 message this package understands.
// No extension fields, no authentication trailer.
const Size = 48

// Leap indicator values (byte 0, bits 0-1).
const (
	LeapNone      = 0 // no warning
	LeapAddSecond = 1 // last minute has 61 seconds
	LeapDelSecond = 2 // last minute has 59 seconds
	LeapUnsync    = 3 // clock not synchronized
)

// Mode values (byte 0, bits 5-7). See RFC 5905 §7.3.
const (
	ModeReserved         = 0
	ModeSymmetricActive  = 1
	ModeSymmetricPassive = 2
	ModeClient           = 3
	ModeServer           = 4
	ModeBroadcast        = 5
	ModeControl          = 6
	ModePrivate          = 7
)

// Stratum values (byte 1).
const (
	StratumKissOrUnspecified = 0
	StratumPrimary           = 1
	StratumUnsync            = 16
)

// VersionDefault is the NTP version this client speaks on the wire.
const VersionDefault = 4

// Packet is an immutable NTPv4 message: a 48-byte payload with typed
// field access per §3's layout table. The zero value is the "null"
// sentinel: all 48 bytes zero, meaning "no packet".
type Packet struct {
	data [Size]byte
}

// field byte offsets, per §3
const (
	offSettings   = 0
	offStratum    = 1
	offPoll       = 2
	offPrecision  = 3
	offRootDelay  = 4
	offRootDisp   = 8
	offRefID      = 12
	offRefTime    = 16
	offOrigTime   = 24
	offRecvTime   = 32
	offXmitTime   = 40
)

// NewPacket constructs a Packet from its 13 typed fields.
func NewPacket(leap, version, mode, stratum uint8, poll, precision int8, rootDelay, rootDispersion, referenceID uint32, referenceTimestamp, originTimestamp, receiveTimestamp, transmitTimestamp NtpTimestamp) Packet {
	var p Packet
	p.data[offSettings] = (leap << 6) | (version << 3) | mode
	p.data[offStratum] = stratum
	p.data[offPoll] = byte(poll)
	p.data[offPrecision] = byte(precision)
	Serialize(rootDelay, p.data[offRootDelay:])
	Serialize(rootDispersion, p.data[offRootDisp:])
	Serialize(referenceID, p.data[offRefID:])
	Serialize(referenceTimestamp.Value(), p.data[offRefTime:])
	Serialize(originTimestamp.Value(), p.data[offOrigTime:])
	Serialize(receiveTimestamp.Value(), p.data[offRecvTime:])
	Serialize(transmitTimestamp.Value(), p.data[offXmitTime:])
	return p
}

// NewPacketFromBytes wraps a 48-byte payload as a Packet. It returns an
// error if b is not exactly Size bytes.
func NewPacketFromBytes(b []byte) (Packet, error) {
	var p Packet
	if len(b) != Size {
		return p, fmt.Errorf("ntp packet must be %d bytes, got %d", Size, len(b))
	}
	copy(p.data[:], b)
	return p, nil
}

// IsNull reports whether p is the sentinel "no packet" value: all 48
// bytes zero.
func (p Packet) IsNull() bool {
	return p.data == [Size]byte{}
}

// Data returns the 48-byte wire payload. A null packet yields all zeros.
func (p Packet) Data() [Size]byte { return p.data }

// Bytes returns the 48-byte wire payload as a slice, safe for the
// caller to mutate without affecting p.
func (p Packet) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, p.data[:])
	return out
}

// Equal reports byte-equality of the two packets' payloads. Two null
// packets are equal.
func (p Packet) Equal(o Packet) bool { return p.data == o.data }

// Leap returns the leap indicator (0-3).
func (p Packet) Leap() uint8 { return p.data[offSettings] >> 6 }

// Version returns the NTP version (expect 3 or 4).
func (p Packet) Version() uint8 { return (p.data[offSettings] >> 3) & 0x07 }

// Mode returns the NTP mode.
func (p Packet) Mode() uint8 { return p.data[offSettings] & 0x07 }

// Stratum returns the stratum level.
func (p Packet) Stratum() uint8 { return p.data[offStratum] }

// Poll returns the poll interval exponent (log2 seconds).
func (p Packet) Poll() int8 { return int8(p.data[offPoll]) }

// Precision returns the clock precision exponent (log2 seconds).
func (p Packet) Precision() int8 { return int8(p.data[offPrecision]) }

// RootDelay returns the total delay to the reference clock, NTP short
// (16.16) format.
func (p Packet) RootDelay() uint32 { return Deserialize[uint32](p.data[offRootDelay:]) }

// RootDispersion returns the total dispersion to the reference clock,
// NTP short format.
func (p Packet) RootDispersion() uint32 { return Deserialize[uint32](p.data[offRootDisp:]) }

// ReferenceID returns the reference identifier.
func (p Packet) ReferenceID() uint32 { return Deserialize[uint32](p.data[offRefID:]) }

// ReferenceTimestamp returns the time the local clock was last set.
func (p Packet) ReferenceTimestamp() NtpTimestamp {
	return NewNtpTimestamp(Deserialize[uint64](p.data[offRefTime:]))
}

// OriginTimestamp returns the client's transmit time as echoed back by
// the server.
func (p Packet) OriginTimestamp() NtpTimestamp {
	return NewNtpTimestamp(Deserialize[uint64](p.data[offOrigTime:]))
}

// ReceiveTimestamp returns the server's time of reception.
func (p Packet) ReceiveTimestamp() NtpTimestamp {
	return NewNtpTimestamp(Deserialize[uint64](p.data[offRecvTime:]))
}

// TransmitTimestamp returns the server's time of transmission.
func (p Packet) TransmitTimestamp() NtpTimestamp {
	return NewNtpTimestamp(Deserialize[uint64](p.data[offXmitTime:]))
}

// Delay computes (destination-origin) - (transmit-receive), the
// round-trip time minus the server's service time. Each subtraction is
// performed via NtpTimestamp.Sub and is therefore only correctly signed
// when all four timestamps lie in the same NTP era; the caller may clamp
// a negative result.
func (p Packet) Delay(destination NtpTimestamp) time.Duration {
	return destination.Sub(p.OriginTimestamp()) - p.TransmitTimestamp().Sub(p.ReceiveTimestamp())
}

// Offset computes ((receive-origin)+(transmit-destination))/2, the raw
// NTP clock offset formula. This form is only valid when client and
// server are in the same NTP era; it is exposed for testing. Production
// code must use OffsetAt.
func (p Packet) Offset(destination NtpTimestamp) time.Duration {
	return (p.ReceiveTimestamp().Sub(p.OriginTimestamp()) + p.TransmitTimestamp().Sub(destination)) / 2
}

// OffsetAt is the era-resolving form of Offset: it encodes destinationTime
// (a wall-clock time.Time) into an NtpTimestamp itself, then takes the
// two differences of the offset formula, (receive-origin) and
// (transmit-destination), and reinterprets the whole-seconds part of
// each as a signed 32-bit two's-complement quantity (recombined with its
// sub-second remainder) before summing and halving them. This yields a
// correctly signed result whenever the client and server clocks are
// within roughly 2^31 seconds (~68 years) of each other, which is the
// assumption documented in §4.3/§9 for era-ambiguous raw timestamps.
func (p Packet) OffsetAt(destinationTime time.Time) time.Duration {
	destination := NtpTimestampFromTime(destinationTime)
	toServer := resolveEraSeconds(p.ReceiveTimestamp().Sub(p.OriginTimestamp()))
	fromServer := resolveEraSeconds(p.TransmitTimestamp().Sub(destination))
	return (toServer + fromServer) / 2
}

// resolveEraSeconds takes a duration computed from era-ambiguous raw NTP
// subtraction and reduces its integer-seconds component modulo 2^32,
// reinterpreting it as a signed 32-bit quantity, while preserving the
// sub-second remainder.
func resolveEraSeconds(raw time.Duration) time.Duration {
	sec, remNanos := floorDivSeconds(raw)
	wrapped := int32(uint32(sec))
	return time.Duration(wrapped)*time.Second + time.Duration(remNanos)
}

// floorDivSeconds splits a duration into a whole-seconds count (rounded
// toward negative infinity) and a non-negative nanosecond remainder in
// [0, 1s), matching NTP's fixed-point convention where the fractional
// part is always a forward offset.
func floorDivSeconds(d time.Duration) (sec int64, remNanos int64) {
	nanos := d.Nanoseconds()
	const nsPerSec = int64(time.Second)
	sec = nanos / nsPerSec
	remNanos = nanos % nsPerSec
	if remNanos < 0 {
		sec--
		remNanos += nsPerSec
	}
	return sec, remNanos
}

// String renders a short diagnostic summary of the packet.
func (p Packet) String() string {
	if p.IsNull() {
		return "ntp.Packet(null)"
	}
	return fmt.Sprintf("ntp.Packet{leap:%d version:%d mode:%d stratum:%d poll:%d precision:%d}",
		p.Leap(), p.Version(), p.Mode(), p.Stratum(), p.Poll(), p.Precision())
}
