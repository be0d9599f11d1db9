package moderation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pancyguard_events_handled_total",
	Help: "Inbound events processed by the moderation engine, by kind",
}, []string{"kind"})

var verdictsIssued = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pancyguard_verdicts_total",
	Help: "Classifier verdicts, by rule",
}, []string{"rule"})

var warningsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pancyguard_warnings_total",
	Help: "Ledger increments, by source (auto, manual)",
}, []string{"source"})

var bansIssued = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pancyguard_bans_total",
	Help: "Threshold bans attempted, by result (ok, failed)",
}, []string{"result"})

var actionsExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pancyguard_actions_total",
	Help: "Gateway actions run by the actuator, by action and result",
}, []string{"action", "result"})

var actionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "pancyguard_action_duration_seconds",
	Help:    "Duration of gateway actions run by the actuator",
	Buckets: prometheus.DefBuckets,
}, []string{"action"})
