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

// Package client implements the thread-safe Client facade (§4.7): it
// owns a worker pool, registers a user callback, and multiplexes many
// concurrent NamedQuery instances.
package client

import (
	"runtime"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ntproto/ntproto/internal/resolver"
	"github.com/ntproto/ntproto/internal/workerpool"
	"github.com/ntproto/ntproto/ntp/metrics"
	"github.com/ntproto/ntproto/ntp/query"
)

// Callback receives the result of one NamedQuery.
type Callback func(query.NamedResult)

// Client is a thread-safe facade over the query pipeline. A live
// Client's weak-handle list (§3) is modeled here as a plain slice of
// *query.Named pointers purged of finalized entries on every mutating
// call — Go's garbage collector, not manual weak references, is what
// lets a purged entry's Named actually be reclaimed, since nothing else
// retains it once its own goroutine has returned.
type Client struct {
	pool *workerpool.Pool

	mu       sync.Mutex
	callback Callback
	inflight []*query.Named

	resolver resolver.Resolver
	metrics  *metrics.Metrics
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithWorkers overrides the worker pool size (default: GOMAXPROCS, floor 2).
func WithWorkers(n int) Option {
	return func(c *Client) { c.pool = workerpool.New(n) }
}

// WithResolver overrides the DNS/service-database collaborator (default:
// resolver.System{}). Tests substitute a mock here per §1's collaborator
// contract.
func WithResolver(r resolver.Resolver) Option {
	return func(c *Client) { c.resolver = r }
}

// WithMetrics attaches a metrics.Metrics instance; nil (the default)
// disables instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New constructs a Client with cb as its initial callback.
func New(cb Callback, opts ...Option) *Client {
	c := &Client{callback: cb, resolver: resolver.System{}}
	for _, opt := range opts {
		opt(c)
	}
	if c.pool == nil {
		n := runtime.GOMAXPROCS(0)
		if n < 2 {
			n = 2
		}
		c.pool = workerpool.New(n)
	}
	return c
}

// SetCallback replaces the callback used for subsequent queries. It does
// not affect queries already in flight.
func (c *Client) SetCallback(cb Callback) {
	c.mu.Lock()
	c.callback = cb
	c.mu.Unlock()
}

// Query starts a new NamedQuery against server and registers its weak
// handle. timeout<=0 selects query.SeriesTimeoutDefault.
func (c *Client) Query(server string, timeout time.Duration) {
	c.mu.Lock()
	cb := c.callback
	rslv := c.resolver
	c.purgeLocked()
	c.mu.Unlock()

	start := time.Now()
	c.pool.Post(func() {
		var handle *query.Named
		handle = query.RunNamed(rslv, server, timeout, func(res query.NamedResult) {
			if c.metrics != nil {
				c.metrics.Observe(res.Status, time.Since(start))
			}
			log.WithFields(log.Fields{
				"server": server,
				"status": res.Status,
				"rtt":    res.RTT,
			}).Debug("ntp: query finished")
			if cb != nil {
				cb(res)
			}
		})

		c.mu.Lock()
		c.inflight = append(c.inflight, handle)
		c.mu.Unlock()

		// Occupy this worker for the query's full lifetime, not just the
		// time it takes to start it: Close's pool join is only a
		// meaningful drain if a posted Job doesn't return before its
		// NamedQuery has actually finalized (§8 "destructor drain").
		handle.Wait()
	})
}

// Cancel cancels every currently registered query. Queries started after
// Cancel returns are unaffected.
func (c *Client) Cancel() {
	c.mu.Lock()
	handles := append([]*query.Named(nil), c.inflight...)
	c.mu.Unlock()

	for _, h := range handles {
		h.Cancel()
	}
}

// Close joins the worker pool, guaranteeing that every query started
// before Close was called has delivered its callback before Close
// returns.
func (c *Client) Close() {
	c.pool.Close()
}

// purgeLocked drops handles for queries that have already finalized. It
// must be called with c.mu held. This is the Go-idiomatic analogue of
// the spec's "the weak list is purged of expired entries on every
// mutating operation" invariant (§3): query.Named.Done reports finality
// without needing a separate weak-reference mechanism, since the
// garbage collector reclaims a *query.Named once both its own goroutine
// and this slice stop referencing it.
func (c *Client) purgeLocked() {
	live := c.inflight[:0]
	for _, h := range c.inflight {
		if !h.Done() {
			live = append(live, h)
		}
	}
	c.inflight = live
}
