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

// Package xsocket wraps the ephemeral-port IPv4 UDP socket SingleQuery
// sends and receives on. Closing the socket is how a pending receive is
// aborted: the collaborator contract in §1 assumes this, and Go's
// net.UDPConn actually delivers on it — a blocked ReadFromUDP returns
// immediately with an error once the conn is closed from another
// goroutine.
package xsocket

import (
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/ipv4"
	"golang.org/x/sys/unix"

	"net"
)

// Socket is the narrow UDP collaborator contract SingleQuery depends on.
type Socket interface {
	WriteToUDP(b []byte, addr *net.UDPAddr) (int, error)
	ReadFromUDP(b []byte) (int, *net.UDPAddr, error)
	Close() error
}

// udpSocket adapts *net.UDPConn to Socket, with the outgoing TTL pinned
// the way ptp4u's server configures its event sockets through typed
// helpers rather than raw syscalls.
type udpSocket struct {
	*net.UDPConn
}

// Bind opens an ephemeral-port IPv4 UDP socket suitable for one
// SingleQuery exchange.
func Bind() (Socket, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: 0})
	if err != nil {
		return nil, err
	}

	pc := ipv4.NewPacketConn(conn)
	if err := pc.SetTTL(64); err != nil {
		log.Debugf("xsocket: failed to set TTL on ephemeral socket: %v", err)
	}

	if rawConn, err := conn.SyscallConn(); err == nil {
		_ = rawConn.Control(func(fd uintptr) {
			if err := unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
				log.Debugf("xsocket: failed to set SO_REUSEADDR: %v", err)
			}
		})
	}

	return &udpSocket{UDPConn: conn}, nil
}
