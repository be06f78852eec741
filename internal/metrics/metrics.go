// Package metrics holds the prometheus collectors of the wallet.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "narwallet"

var (
	// RPCDuration observes every JSON-RPC round trip by method and outcome
	RPCDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "rpc",
		Name:      "request_duration_seconds",
		Help:      "Latency of JSON-RPC calls to the NEAR node",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"method", "result"})

	// RPCRetries counts read calls repeated after a network error
	RPCRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "rpc",
		Name:      "retries_total",
		Help:      "Read-only RPC calls retried after a network error",
	}, []string{"method"})

	// TransactionsSubmitted counts broadcast_tx_commit results
	TransactionsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tx",
		Name:      "submitted_total",
		Help:      "Signed transactions submitted, by final result",
	}, []string{"result"})

	// VaultUnlocks counts unlock attempts by method and outcome
	VaultUnlocks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "vault",
		Name:      "unlocks_total",
		Help:      "Vault unlock attempts",
	}, []string{"method", "result"})
)

// Result labels
const (
	ResultOK     = "ok"
	ResultError  = "error"
	ResultFailed = "failed"
)
