// Copyright 2026 Blink Labs Software
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

type stateMetrics struct {
	operations    *prometheus.CounterVec
	collections   prometheus.Gauge
	membersAdded  prometheus.Counter
	openProposals prometheus.Gauge
	contributions prometheus.Counter
	payouts       prometheus.Counter
	penalties     prometheus.Counter
}

func (m *stateMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.operations = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rotary_ledger_operations_total",
			Help: "ledger operations by name and result",
		},
		[]string{"operation", "result"},
	)
	m.collections = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "rotary_ledger_collections",
		Help: "number of collections",
	})
	m.membersAdded = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "rotary_ledger_members_added_total",
		Help: "members added since start",
	})
	m.openProposals = promautoFactory.NewGauge(prometheus.GaugeOpts{
		Name: "rotary_ledger_open_proposals",
		Help: "proposals that have not been executed",
	})
	m.contributions = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "rotary_ledger_contributions_total",
		Help: "sum of accepted contributions in base units",
	})
	m.payouts = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "rotary_ledger_payouts_total",
		Help: "sum of early withdrawal payouts in base units",
	})
	m.penalties = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "rotary_ledger_penalties_total",
		Help: "sum of early withdrawal penalties retained in base units",
	})
}
