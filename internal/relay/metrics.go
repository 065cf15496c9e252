// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

package relay

import "github.com/prometheus/client_golang/prometheus"

var (
	keysIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gangway_keys_issued_total",
			Help: "Total number of ephemeral session keys issued",
		},
	)
	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gangway_active_sessions",
			Help: "Number of WebSocket sessions currently connected",
		},
	)
	sessionsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gangway_sessions_expired_total",
			Help: "Total number of unclaimed sessions reaped by the sweeper",
		},
	)
	framesRelayed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gangway_frames_relayed_total",
			Help: "Total number of frames relayed, by frame type",
		},
		[]string{"type"},
	)
	bridgeDialSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "gangway_bridge_dial_duration_seconds",
			Help: "Duration of SSH bridge establishment",
		},
	)
)

func init() {
	prometheus.MustRegister(keysIssued, activeSessions, sessionsExpired, framesRelayed, bridgeDialSeconds)
}
