package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AttendanceDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymflow_attendance_decisions_total",
			Help: "Total number of attendance decisions",
		},
		[]string{"status", "reason"},
	)

	SessionsConsumedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymflow_sessions_consumed_total",
			Help: "Total number of quota sessions consumed by check-ins",
		},
	)

	SubscriptionsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymflow_subscriptions_created_total",
			Help: "Total number of subscriptions created",
		},
		[]string{"plan_months"},
	)

	SubscriptionRenewalsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymflow_subscription_renewals_total",
			Help: "Total number of subscription renewals",
		},
	)

	SubscriptionFreezesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymflow_subscription_freezes_total",
			Help: "Total number of subscription freezes",
		},
	)

	GuestPassesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymflow_guest_passes_total",
			Help: "Total number of guest pass operations",
		},
		[]string{"action"},
	)

	CardCodesAllocatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymflow_card_codes_allocated_total",
			Help: "Total number of card codes allocated",
		},
	)
)

func RecordDecision(status, reason string) {
	AttendanceDecisionsTotal.WithLabelValues(status, reason).Inc()
}

func RecordSessionConsumed() {
	SessionsConsumedTotal.Inc()
}

func RecordSubscription(planMonths string) {
	SubscriptionsCreatedTotal.WithLabelValues(planMonths).Inc()
}

func RecordRenewal() {
	SubscriptionRenewalsTotal.Inc()
}

func RecordFreeze() {
	SubscriptionFreezesTotal.Inc()
}

func RecordGuestPass(action string) {
	GuestPassesTotal.WithLabelValues(action).Inc()
}

func RecordCardCodes(count int) {
	CardCodesAllocatedTotal.Add(float64(count))
}
