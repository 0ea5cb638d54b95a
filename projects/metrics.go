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

package projects

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type projectsMetrics struct {
	projects *prometheus.CounterVec
	reviews  *prometheus.CounterVec
}

func newProjectsMetrics(promRegistry prometheus.Registerer) *projectsMetrics {
	factory := promauto.With(promRegistry)
	return &projectsMetrics{
		projects: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adarsh_projects_changes_total",
				Help: "Project changes by kind",
			},
			[]string{"change"},
		),
		reviews: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adarsh_projects_reviews_total",
				Help: "Submission reviews by resulting status",
			},
			[]string{"status"},
		),
	}
}
