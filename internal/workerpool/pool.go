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

// Package workerpool implements the fixed-size reactor pool shared by the
// Client facade: a handful of goroutines that drain a job queue, the way
// ptp4u/server's sendWorker pool drains its subscription queue.
package workerpool

import (
	"golang.org/x/sync/errgroup"
)

// Job is a unit of work posted to the pool. A NamedQuery posts its own
// private execution as one Job so that its handlers stay serialized with
// respect to each other while running in parallel with other queries'
// jobs on other workers.
type Job func()

// Pool is a fixed-size set of worker goroutines draining a shared job
// queue. It is the Go-idiomatic stand-in for the reactor thread pool the
// spec describes: posting a Job is the equivalent of "posting the
// execution context onto the pool", and Close joins every worker,
// guaranteeing that every posted Job has returned before it does.
type Pool struct {
	queue chan Job
	group *errgroup.Group
}

// New starts a pool of n workers. n must be at least 1.
func New(n int) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{
		queue: make(chan Job, n*4),
	}
	g := new(errgroup.Group)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			for job := range p.queue {
				job()
			}
			return nil
		})
	}
	p.group = g
	return p
}

// Post enqueues job to run on a worker. Post never blocks on the job's
// completion; it blocks only if every worker is currently busy and the
// queue is full.
func (p *Pool) Post(job Job) {
	p.queue <- job
}

// Close closes the job queue and waits for every worker to drain it and
// return. After Close returns, every Job ever posted has finished
// running.
func (p *Pool) Close() {
	close(p.queue)
	_ = p.group.Wait()
}
