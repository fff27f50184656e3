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

package query

import (
	"net"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	log "github.com/sirupsen/logrus"

	"github.com/ntproto/ntproto/internal/xsocket"
	"github.com/ntproto/ntproto/ntp/protocol"
)

// SingleTimeoutDefault is the default SingleQuery timeout (§4.4).
const SingleTimeoutDefault = 3000 * time.Millisecond

// SingleResult is the one-shot outcome a SingleQuery delivers to its
// callback exactly once.
type SingleResult struct {
	Endpoint *net.UDPAddr
	Err      error // nil on success; one of the §4.4 taxonomy otherwise
	Packet   protocol.Packet
	RTT      time.Duration
}

// singleExpiry models the spec's sentinel-expiry 3-way flag (§9 design
// note) as an explicit enum read and written under the same mutex that
// guards the rest of the query's terminal state, rather than overloading
// a timer deadline value.
type singleExpiry int

const (
	expiryNone singleExpiry = iota
	expiryTimedOut
	expiryCancelled
)

// Single runs one request/response exchange against one UDP endpoint.
// It owns its own ephemeral socket and timer for the lifetime of the
// exchange; both are released before the callback fires. The handle
// RunSingle returns exposes only Cancel and Wait — the query itself is kept
// alive by its own goroutine until it reports its one outcome, the
// Go equivalent of the spec's "handler closures hold the strong
// reference" ownership model (§9): no caller-visible reference keeps
// the query alive, and the garbage collector reclaims it once the
// goroutine returns.
type Single struct {
	mu      sync.Mutex
	expiry  singleExpiry
	sock    xsocket.Socket
	done    chan struct{}
}

// RunSingle starts a SingleQuery against endpoint and returns a handle
// that can be used to cancel it. cb is invoked exactly once, from the
// query's own goroutine, once the exchange concludes. timeout<=0 selects
// SingleTimeoutDefault.
func RunSingle(endpoint *net.UDPAddr, timeout time.Duration, cb func(SingleResult)) *Single {
	if timeout <= 0 {
		timeout = SingleTimeoutDefault
	}

	s := &Single{done: make(chan struct{})}

	sock, err := xsocket.Bind()
	if err != nil {
		go func() {
			defer close(s.done)
			cb(SingleResult{Endpoint: endpoint, Err: err})
		}()
		return s
	}

	s.mu.Lock()
	s.sock = sock
	s.mu.Unlock()

	timer := time.AfterFunc(timeout, func() {
		s.mu.Lock()
		if s.expiry == expiryNone {
			s.expiry = expiryTimedOut
		}
		sock := s.sock
		s.mu.Unlock()
		if sock != nil {
			sock.Close() // aborts the pending receive, per §4.4 step 2
		}
	})

	go s.run(sock, endpoint, timer, cb)
	return s
}

// Wait blocks until the query's goroutine has returned, i.e. until after
// the callback has been invoked. Tests use this to avoid racing on
// goroutine exit; production code has no need to call it.
func (s *Single) Wait() {
	<-s.done
}

// Cancel marks the query cancelled and closes its socket, aborting any
// pending receive. Safe to call concurrently and more than once.
func (s *Single) Cancel() {
	s.mu.Lock()
	if s.expiry == expiryNone {
		s.expiry = expiryCancelled
	}
	sock := s.sock
	s.mu.Unlock()
	if sock != nil {
		sock.Close()
	}
}

func (s *Single) run(sock xsocket.Socket, endpoint *net.UDPAddr, timer *time.Timer, cb func(SingleResult)) {
	defer close(s.done)

	clientPacket := protocol.NewPacket(
		protocol.LeapNone, protocol.VersionDefault, protocol.ModeClient,
		0, 0, 0, 0, 0, 0,
		protocol.NtpTimestamp(0), protocol.NtpTimestamp(0), protocol.NtpTimestamp(0),
		protocol.NtpTimestampFromTime(time.Now()),
	)

	tSend := time.Now()
	buf := clientPacket.Bytes()

	if _, err := sock.WriteToUDP(buf, endpoint); err != nil {
		timer.Stop()
		sock.Close()
		cb(SingleResult{Endpoint: endpoint, Err: err, Packet: clientPacket, RTT: time.Since(tSend)})
		return
	}

	reply := make([]byte, protocol.Size+16) // slack so an oversized reply is detected, not truncated
	n, _, err := sock.ReadFromUDP(reply)
	timer.Stop()
	sock.Close()
	rtt := time.Since(tSend)

	s.mu.Lock()
	expiry := s.expiry
	s.mu.Unlock()

	switch {
	case expiry == expiryCancelled:
		cb(SingleResult{Endpoint: endpoint, Err: ErrAborted, RTT: rtt})
	case expiry == expiryTimedOut:
		cb(SingleResult{Endpoint: endpoint, Err: ErrTimedOut, RTT: rtt})
	case err != nil:
		cb(SingleResult{Endpoint: endpoint, Err: err, RTT: rtt})
	case n != protocol.Size:
		cb(SingleResult{Endpoint: endpoint, Err: ErrMessageSize, RTT: rtt})
	default:
		pkt, perr := protocol.NewPacketFromBytes(reply[:n])
		if perr != nil {
			cb(SingleResult{Endpoint: endpoint, Err: ErrMessageSize, RTT: rtt})
			return
		}
		log.WithField("endpoint", endpoint).Tracef("ntp: received packet: %s", spew.Sdump(pkt))
		cb(SingleResult{Endpoint: endpoint, Packet: pkt, RTT: rtt})
	}
}
