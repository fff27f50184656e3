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
)

// SeriesTimeoutDefault is the default SeriesQuery/NamedQuery overall
// timeout (§4.4/§4.6). It is deliberately larger than
// SingleTimeoutDefault so that the outer timeout can still catch at
// least one inner SingleQuery timing out during fail-over (§9).
const SeriesTimeoutDefault = 5000 * time.Millisecond

// SeriesResult is the outcome a SeriesQuery reports exactly once: either
// the first endpoint that succeeded, or the last endpoint tried if every
// endpoint failed, or a synthetic timeout/cancellation result.
type SeriesResult = SingleResult

// Series sequentially fails over across a fixed, ordered list of
// endpoints until one succeeds or the list is exhausted.
type Series struct {
	mu      sync.Mutex
	expiry  singleExpiry
	active  *Single
	timer   *time.Timer
	done    chan struct{}
}

// RunSeries starts a SeriesQuery. If endpoints is empty or cb is nil, it
// returns nil and performs no work, per §4.5.
func RunSeries(endpoints []*net.UDPAddr, perEndpointTimeout, overall time.Duration, cb func(SeriesResult)) *Series {
	if len(endpoints) == 0 || cb == nil {
		return nil
	}
	if overall <= 0 {
		overall = SeriesTimeoutDefault
	}

	sr := &Series{done: make(chan struct{})}

	sr.timer = time.AfterFunc(overall, func() {
		sr.mu.Lock()
		if sr.expiry == expiryNone {
			sr.expiry = expiryTimedOut
		}
		active := sr.active
		sr.mu.Unlock()
		if active != nil {
			active.Cancel()
		}
	})

	go sr.step(0, endpoints, perEndpointTimeout, cb)
	return sr
}

// Cancel marks the series cancelled and cancels whichever SingleQuery is
// currently active. Safe to call concurrently and more than once.
func (sr *Series) Cancel() {
	sr.mu.Lock()
	if sr.expiry == expiryNone {
		sr.expiry = expiryCancelled
	}
	active := sr.active
	sr.mu.Unlock()
	if active != nil {
		active.Cancel()
	}
}

// Wait blocks until the series has finished and its callback fired.
func (sr *Series) Wait() {
	<-sr.done
}

func (sr *Series) step(i int, endpoints []*net.UDPAddr, perEndpointTimeout time.Duration, cb func(SeriesResult)) {
	single := RunSingle(endpoints[i], perEndpointTimeout, func(res SingleResult) {
		sr.forward(i, endpoints, perEndpointTimeout, res, cb)
	})

	sr.mu.Lock()
	sr.active = single
	cancelled := sr.expiry == expiryCancelled
	sr.mu.Unlock()
	if cancelled {
		single.Cancel()
	}
}

func (sr *Series) forward(i int, endpoints []*net.UDPAddr, perEndpointTimeout time.Duration, res SingleResult, cb func(SeriesResult)) {
	last := i == len(endpoints)-1
	if res.Err != nil && res.Err != ErrAborted && !last {
		go sr.step(i+1, endpoints, perEndpointTimeout, cb)
		return
	}

	sr.timer.Stop()

	sr.mu.Lock()
	expiry := sr.expiry
	sr.active = nil
	sr.mu.Unlock()

	switch expiry {
	case expiryCancelled:
		res.Err = ErrAborted
	case expiryTimedOut:
		res.Err = ErrTimedOut
	}

	defer close(sr.done)
	cb(res)
}
