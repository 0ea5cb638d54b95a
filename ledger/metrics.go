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

package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type ledgerMetrics struct {
	transactions       *prometheus.CounterVec
	rejections         *prometheus.CounterVec
	edits              prometheus.Counter
	autoReleaseClamped prometheus.Counter
	discrepancies      prometheus.Counter
}

func newLedgerMetrics(promRegistry prometheus.Registerer) *ledgerMetrics {
	factory := promauto.With(promRegistry)
	return &ledgerMetrics{
		transactions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adarsh_ledger_transactions_total",
				Help: "Fund transactions recorded by type",
			},
			[]string{"type"},
		),
		rejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adarsh_ledger_rejections_total",
				Help: "Ledger mutations rejected by reason",
			},
			[]string{"reason"},
		),
		edits: factory.NewCounter(prometheus.CounterOpts{
			Name: "adarsh_ledger_edits_total",
			Help: "Fund transactions edited",
		}),
		autoReleaseClamped: factory.NewCounter(prometheus.CounterOpts{
			Name: "adarsh_ledger_auto_release_clamped_total",
			Help: "Approval releases clamped to the remaining allocation",
		}),
		discrepancies: factory.NewCounter(prometheus.CounterOpts{
			Name: "adarsh_ledger_discrepancies_total",
			Help: "Projects found with totals that differ from their fund log",
		}),
	}
}
