// Copyright 2025 Gramsetu Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package scoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type engineMetrics struct {
	recomputes prometheus.Counter
	failures   prometheus.Counter
	duration   prometheus.Histogram
}

func newEngineMetrics(promRegistry prometheus.Registerer) *engineMetrics {
	factory := promauto.With(promRegistry)
	return &engineMetrics{
		recomputes: factory.NewCounter(prometheus.CounterOpts{
			Name: "adarsh_score_recomputes_total",
			Help: "Village scores recomputed and stored",
		}),
		failures: factory.NewCounter(prometheus.CounterOpts{
			Name: "adarsh_score_recompute_failures_total",
			Help: "Village score recomputes that failed",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "adarsh_score_recompute_duration_seconds",
			Help:    "Time taken to recompute a village score",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

type dispatcherMetrics struct {
	requests  *prometheus.CounterVec
	failures  *prometheus.CounterVec
	fallbacks prometheus.Counter
}

func newDispatcherMetrics(promRegistry prometheus.Registerer) *dispatcherMetrics {
	factory := promauto.With(promRegistry)
	return &dispatcherMetrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adarsh_score_recompute_requests_total",
				Help: "Recompute requests by trigger reason",
			},
			[]string{"reason"},
		),
		failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adarsh_score_recompute_request_failures_total",
				Help: "Failed recompute requests by trigger reason",
			},
			[]string{"reason"},
		),
		fallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "adarsh_score_recompute_inline_fallbacks_total",
			Help: "Async recompute requests run inline because the queue was full",
		}),
	}
}
