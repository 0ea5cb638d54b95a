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

package blob

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the counters shared by the media plugins
type Metrics struct {
	Puts      prometheus.Counter
	PutBytes  prometheus.Counter
	Gets      prometheus.Counter
	GetMisses prometheus.Counter
}

// NewMetrics registers media counters labelled with the plugin name. A nil
// registry yields unregistered counters.
func NewMetrics(promRegistry prometheus.Registerer, pluginName string) *Metrics {
	labels := prometheus.Labels{"plugin": pluginName}
	factory := promauto.With(promRegistry)
	return &Metrics{
		Puts: factory.NewCounter(prometheus.CounterOpts{
			Name:        "adarsh_media_puts_total",
			Help:        "Number of evidence media objects stored",
			ConstLabels: labels,
		}),
		PutBytes: factory.NewCounter(prometheus.CounterOpts{
			Name:        "adarsh_media_put_bytes_total",
			Help:        "Bytes of evidence media stored",
			ConstLabels: labels,
		}),
		Gets: factory.NewCounter(prometheus.CounterOpts{
			Name:        "adarsh_media_gets_total",
			Help:        "Number of evidence media reads",
			ConstLabels: labels,
		}),
		GetMisses: factory.NewCounter(prometheus.CounterOpts{
			Name:        "adarsh_media_get_misses_total",
			Help:        "Number of evidence media reads for unknown keys",
			ConstLabels: labels,
		}),
	}
}
