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

package sqlite

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func (d *MetadataStoreSqlite) registerMetrics() {
	sqlDB, err := d.db.DB()
	if err != nil {
		d.logger.Warn(
			"unable to register sqlite connection metrics",
			"component", "database",
			"error", err,
		)
		return
	}
	collector := collectors.NewDBStatsCollector(sqlDB, "sqlite")
	if err := d.promRegistry.Register(collector); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			d.logger.Warn(
				"unable to register sqlite connection metrics",
				"component", "database",
				"error", err,
			)
		}
	}
}
