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

// Package metrics instruments the query pipeline with always-on
// counters and a latency histogram, the way ptp4u/stats instruments the
// PTP server regardless of which clock-correction features are enabled.
// It counts query outcomes; it never fuses or filters samples, so it
// does not touch the Non-goal on statistical filtering of multiple
// samples (that binds the Client's reported result, not an external
// observability layer).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ntproto/ntproto/ntp/query"
)

// Metrics holds the prometheus collectors for one Client.
type Metrics struct {
	queries *prometheus.CounterVec
	rtt     prometheus.Histogram
}

// New registers the collectors against reg and returns a Metrics ready
// for use with client.WithMetrics.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ntproto",
			Name:      "queries_total",
			Help:      "Total NamedQuery outcomes by status.",
		}, []string{"status"}),
		rtt: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ntproto",
			Name:      "query_duration_seconds",
			Help:      "Time from Client.Query to the NamedQuery callback firing.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.queries, m.rtt)
	return m
}

// Observe records one NamedQuery outcome.
func (m *Metrics) Observe(status query.Status, d time.Duration) {
	m.queries.WithLabelValues(status.String()).Inc()
	m.rtt.Observe(d.Seconds())
}
