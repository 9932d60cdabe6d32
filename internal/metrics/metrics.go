package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RelayTotal tracks webhook posts per platform and outcome
	RelayTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statusrelay_relay_total",
			Help: "Total number of webhook posts",
		},
		[]string{"platform", "result"},
	)

	// RelayLatency tracks webhook post latency
	RelayLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "statusrelay_relay_latency_seconds",
			Help:    "Webhook post latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"platform"},
	)

	// AlertsTotal tracks health check alerts by kind
	AlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statusrelay_alerts_total",
			Help: "Total number of block health alerts raised",
		},
		[]string{"network", "kind"},
	)

	// HealthChecksTotal tracks monitoring passes by outcome
	HealthChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statusrelay_health_checks_total",
			Help: "Total number of block health checks",
		},
		[]string{"network", "result"},
	)

	// ChainLatestBlock tracks the latest observed block height
	ChainLatestBlock = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "statusrelay_chain_latest_block",
			Help: "Latest block height observed by the monitor",
		},
		[]string{"network"},
	)

	// InboundWebhooksTotal tracks status webhooks received by outcome
	InboundWebhooksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statusrelay_inbound_webhooks_total",
			Help: "Total number of inbound status webhooks",
		},
		[]string{"result"},
	)

	// StoreErrorsTotal tracks swallowed message store failures
	StoreErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statusrelay_store_errors_total",
			Help: "Total number of message store failures",
		},
		[]string{"op"},
	)

	// StoredMessages tracks the message history size at the last read
	StoredMessages = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "statusrelay_stored_messages",
			Help: "Number of messages in the recent history",
		},
	)

	// DBConnectionPoolUsage tracks the percentage of open connections
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "statusrelay_db_connection_pool_usage_percent",
			Help: "Percentage of the database connection pool in use",
		},
	)
)
