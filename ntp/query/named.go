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
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ntproto/ntproto/internal/resolver"
	"github.com/ntproto/ntproto/ntp/protocol"
)

// DefaultPort is used when a server string carries no port/service.
const DefaultPort = "123"

// NamedResult is the outcome a NamedQuery reports exactly once.
type NamedResult struct {
	Name     string
	Resolved string // "ip:port", empty if resolution never completed
	Status   Status
	Packet   protocol.Packet
	RTT      time.Duration
}

// Named parses a server string, resolves it, and runs a SeriesQuery over
// the resolved endpoints, translating the result into the stable status
// taxonomy of §6. Each Named owns a private cancellable context, the Go
// analogue of the spec's "own execution context": cancelling it is how
// Cancel reaches the resolve step, and the series handle reached through
// it is how Cancel reaches an in-flight SeriesQuery.
type Named struct {
	name      string
	cancelCtx context.CancelFunc
	cb        func(NamedResult)
	done      chan struct{}

	mu        sync.Mutex
	finalized bool
	series    *Series
}

// RunNamed starts a NamedQuery. cb is invoked exactly once, from a
// goroutine owned by this query, once the query reaches a terminal
// outcome. timeout<=0 selects SeriesTimeoutDefault.
func RunNamed(res resolver.Resolver, server string, timeout time.Duration, cb func(NamedResult)) *Named {
	if timeout <= 0 {
		timeout = SeriesTimeoutDefault
	}
	host, port := splitHostPort(server)

	ctx, cancel := context.WithCancel(context.Background())
	n := &Named{name: server, cancelCtx: cancel, cb: cb, done: make(chan struct{})}

	go n.run(ctx, res, host, port, timeout)
	return n
}

// Done reports whether the query has already finalized (its callback
// has fired, or is about to under the same lock). The Client facade
// uses this to purge its weak-handle list.
func (n *Named) Done() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.finalized
}

// Wait blocks until the query has finalized, i.e. until its callback
// has fired exactly once. The Client facade's pool worker calls this
// so that a posted query occupies its worker for the query's full
// private-execution-context lifetime (§9), the same way the pool's
// Close join is only meaningful if a posted Job doesn't return early.
func (n *Named) Wait() {
	<-n.done
}

// Cancel finalizes the query with Cancelled, unless it has already
// finalized. Safe to call from any goroutine, any number of times.
func (n *Named) Cancel() {
	n.cancelCtx()
	n.mu.Lock()
	series := n.series
	n.mu.Unlock()
	if series != nil {
		series.Cancel()
	}
	go n.finalize(NamedResult{Name: n.name, Status: Cancelled})
}

func splitHostPort(server string) (host, port string) {
	if idx := strings.IndexByte(server, ':'); idx >= 0 {
		return server[:idx], server[idx+1:]
	}
	return server, DefaultPort
}

func (n *Named) run(ctx context.Context, res resolver.Resolver, host, port string, timeout time.Duration) {
	timer := time.AfterFunc(timeout, func() {
		n.cancelCtx()
		n.mu.Lock()
		series := n.series
		n.mu.Unlock()
		if series != nil {
			series.Cancel()
		}
		n.finalize(NamedResult{Name: n.name, Status: TimeoutError})
	})
	defer timer.Stop()

	endpoints, err := res.Resolve(ctx, host, port)
	if err != nil {
		n.finalize(NamedResult{Name: n.name, Status: ResolveError})
		return
	}
	if ctx.Err() != nil {
		// the overall timer (or Cancel) already fired while resolving;
		// whichever finalize() call already ran stands.
		return
	}

	done := make(chan struct{})
	sr := RunSeries(endpoints, 0, timeout, func(sres SeriesResult) {
		defer close(done)
		n.finalize(n.translate(sres))
	})
	if sr == nil {
		n.finalize(NamedResult{Name: n.name, Status: ResolveError})
		return
	}

	n.mu.Lock()
	n.series = sr
	n.mu.Unlock()

	<-done
}

// translate maps a SeriesResult onto the §6 status taxonomy per §4.6
// step 5.
func (n *Named) translate(sres SeriesResult) NamedResult {
	resolved := ""
	if sres.Endpoint != nil {
		resolved = sres.Endpoint.String()
	}
	res := NamedResult{Name: n.name, Resolved: resolved, Packet: sres.Packet, RTT: sres.RTT}

	switch {
	case sres.Err == nil:
		res.Status = Succeeded
	case sres.Err == ErrAborted:
		res.Status = Cancelled
	case sres.Err == ErrTimedOut:
		res.Status = TimeoutError
	case sres.Err == ErrMessageSize:
		res.Status = ReceiveError
	case !sres.Packet.IsNull():
		// a non-null client packet means the request was built and a
		// send was attempted before the transport error occurred.
		res.Status = SendError
	default:
		res.Status = ReceiveError
	}
	return res
}

// finalize is the at-most-once gate guaranteeing the callback fires no
// more than once.
func (n *Named) finalize(res NamedResult) {
	n.mu.Lock()
	if n.finalized {
		n.mu.Unlock()
		return
	}
	n.finalized = true
	n.mu.Unlock()
	if n.cb != nil {
		n.cb(res)
	}
	close(n.done)
}
