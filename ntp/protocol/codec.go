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

// Package protocol implements the NTPv4 wire format: a stateless
// big-endian codec, the 32.32 fixed-point NtpTimestamp, and the
// immutable 48-byte Packet built on top of them.
package protocol

import "unsafe"

// Unsigned is the set of unsigned integer widths the codec knows how to
// serialize/deserialize: 1, 2, 4 and 8 bytes.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Serialize writes v into dst in network byte order (most significant
// byte first). dst must be at least sizeof(T) bytes; Serialize panics
// otherwise, the same way binary.BigEndian.PutUint* does.
func Serialize[T Unsigned](v T, dst []byte) {
	n := int(unsafe.Sizeof(v))
	for i := 0; i < n; i++ {
		shift := uint((n - 1 - i) * 8)
		dst[i] = byte(v >> shift)
	}
}

// Deserialize reads sizeof(T) bytes from src as a big-endian unsigned
// integer. src must be at least sizeof(T) bytes; Deserialize panics
// otherwise.
func Deserialize[T Unsigned](src []byte) T {
	var v T
	n := int(unsafe.Sizeof(v))
	for i := 0; i < n; i++ {
		v = v<<8 | T(src[i])
	}
	return v
}
