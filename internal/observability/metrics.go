package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebhookRequests counts inbound webhook requests by outcome.
	WebhookRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_webhook_requests_total",
		Help: "Inbound webhook requests by outcome",
	}, []string{"outcome"})

	// LLMRequestDuration observes completion provider call latency.
	LLMRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "relay_llm_request_duration_seconds",
		Help:    "Duration of completion provider calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})

	// LinksResolved counts media links attached to follow-up messages.
	LinksResolved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_links_resolved_total",
		Help: "Media links resolved for follow-up messages",
	})

	// DedupSkips counts inbound messages dropped as duplicates.
	DedupSkips = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_duplicate_messages_total",
		Help: "Inbound messages skipped as duplicates",
	})

	// DeliverySends counts messages pushed to the delivery channel.
	DeliverySends = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_delivery_sends_total",
		Help: "Messages pushed to the delivery channel by status",
	}, []string{"status"})
)
