// metrics.go
//
// Content service and admin tooling of a church website
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of chapel-cms.
// chapel-cms is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// chapel-cms is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with chapel-cms.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the counters the content services report
type Metrics struct {
	Orphans   prometheus.Counter
	Mutations *prometheus.CounterVec
}

// NewMetrics creates the counters on reg. A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Orphans: factory.NewCounter(prometheus.CounterOpts{
			Name: "chapel_media_orphans_total",
			Help: "Uploaded objects left in storage after a failed compensating delete.",
		}),
		Mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chapel_mutations_total",
			Help: "Content mutations by resource, operation and outcome.",
		}, []string{"resource", "op", "outcome"}),
	}
}

func (m *Metrics) mutation(resource, op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Mutations.WithLabelValues(resource, op, outcome).Inc()
}

func (m *Metrics) orphan() {
	if m == nil {
		return
	}
	m.Orphans.Inc()
}
