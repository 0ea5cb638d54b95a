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

package event

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type eventMetrics struct {
	eventsTotal   *prometheus.CounterVec
	subscribers   *prometheus.GaugeVec
	asyncDropped  *prometheus.CounterVec
	handlerPanics *prometheus.CounterVec
}

func newEventMetrics(promRegistry prometheus.Registerer) *eventMetrics {
	factory := promauto.With(promRegistry)
	return &eventMetrics{
		eventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adarsh_event_published_total",
				Help: "Events published by type",
			},
			[]string{"type"},
		),
		subscribers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "adarsh_event_subscribers",
				Help: "Active subscribers by event type",
			},
			[]string{"type"},
		),
		asyncDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adarsh_event_async_dropped_total",
				Help: "Async events dropped because the queue was full",
			},
			[]string{"type"},
		),
		handlerPanics: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adarsh_event_handler_panics_total",
				Help: "Recovered panics in event handlers",
			},
			[]string{"type"},
		),
	}
}
