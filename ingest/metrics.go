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

package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type ingestMetrics struct {
	items     *prometheus.CounterVec
	retries   *prometheus.CounterVec
	batchSize *prometheus.HistogramVec
}

func newIngestMetrics(promRegistry prometheus.Registerer) *ingestMetrics {
	factory := promauto.With(promRegistry)
	return &ingestMetrics{
		items: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adarsh_ingest_items_total",
				Help: "Ingested items by family and outcome",
			},
			[]string{"family", "outcome"},
		),
		retries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adarsh_ingest_conflict_retries_total",
				Help: "Items retried after a unique key conflict",
			},
			[]string{"family"},
		),
		batchSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "adarsh_ingest_batch_size",
				Help:    "Items per sync batch",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
			[]string{"family"},
		),
	}
}
