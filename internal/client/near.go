package client

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/AlexZinkM/narwallet/internal/metrics"
	"github.com/AlexZinkM/narwallet/internal/model"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultRetryBackoff = 250 * time.Millisecond
)

// Options configures a NearClient
type Options struct {
	RPCURL       string
	Timeout      time.Duration
	MaxRetries   int     // extra attempts for read-only calls after a network error
	RateLimit    float64 // requests per second, zero or less disables limiting
	RetryBackoff time.Duration
}

// NearClient is a client for the NEAR JSON-RPC API.
// It is safe for concurrent use.
type NearClient struct {
	rpcClient  jsonrpc.RPCClient
	rpcURL     string
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
}

// NewNearClient creates a new NEAR client for the given options.
func NewNearClient(opts Options) (*NearClient, error) {
	if opts.RPCURL == "" {
		return nil, errors.New("rpc url is empty")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBackoff < 0 {
		opts.RetryBackoff = 0
	} else if opts.RetryBackoff == 0 {
		opts.RetryBackoff = defaultRetryBackoff
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	return &NearClient{
		rpcClient: jsonrpc.NewClientWithOpts(opts.RPCURL, &jsonrpc.RPCClientOpts{
			HTTPClient: &http.Client{Timeout: opts.Timeout},
		}),
		rpcURL:     opts.RPCURL,
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: opts.MaxRetries,
		backoff:    opts.RetryBackoff,
	}, nil
}

// RPCURL returns the node endpoint
func (c *NearClient) RPCURL() string {
	return c.rpcURL
}

// call performs exactly one JSON-RPC request and classifies its failure
func (c *NearClient) call(ctx context.Context, out interface{}, method string, params []interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &model.NetworkError{Op: method, Err: err}
	}

	start := time.Now()
	err := c.rpcClient.CallForInto(ctx, out, method, params)
	result := metrics.ResultOK
	if err != nil {
		result = metrics.ResultError
	}
	metrics.RPCDuration.WithLabelValues(method, result).Observe(time.Since(start).Seconds())

	if err != nil {
		err = classifyError(method, err)
		log.Debug().Err(err).Str("method", method).Dur("took", time.Since(start)).Msg("RPC call failed")
		return err
	}
	log.Debug().Str("method", method).Dur("took", time.Since(start)).Msg("RPC call")
	return nil
}

// callRead is call with bounded retries on network errors. Never use it for submits.
func (c *NearClient) callRead(ctx context.Context, out interface{}, method string, params []interface{}) error {
	var err error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			metrics.RPCRetries.WithLabelValues(method).Inc()
			log.Warn().Err(err).Str("method", method).Int("attempt", attempt).Msg("Retrying RPC call")
			select {
			case <-ctx.Done():
				return &model.NetworkError{Op: method, Err: ctx.Err()}
			case <-time.After(c.backoff * time.Duration(attempt)):
			}
		}

		err = c.call(ctx, out, method, params)
		if err == nil || !model.IsNetworkError(err) {
			return err
		}
	}
	return err
}

// classifyError maps transport failures to NetworkError and everything
// the node said (or garbled) to ProtocolError
func classifyError(op string, err error) error {
	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		return &model.ProtocolError{Op: op, Err: errors.New(remoteReason(rpcErr))}
	}

	var httpErr *jsonrpc.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.Code >= http.StatusInternalServerError || httpErr.Code == http.StatusTooManyRequests {
			return &model.NetworkError{Op: op, Err: err}
		}
		return &model.ProtocolError{Op: op, Err: err}
	}

	if isTransportError(err) {
		return &model.NetworkError{Op: op, Err: err}
	}
	return &model.ProtocolError{Op: op, Err: err}
}

func isTransportError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	errStr := err.Error()
	for _, s := range []string{
		"connection refused",
		"connection reset",
		"no such host",
		"i/o timeout",
		"deadline exceeded",
		"EOF",
		"Client.Timeout",
		"network is unreachable",
	} {
		if strings.Contains(errStr, s) {
			return true
		}
	}
	return false
}

// remoteReason extracts the node's explanation, preferring the detailed data field
func remoteReason(e *jsonrpc.RPCError) string {
	reason := e.Message
	switch data := e.Data.(type) {
	case string:
		if data != "" {
			reason = data
		}
	case map[string]interface{}:
		if s, ok := data["message"].(string); ok && s != "" {
			reason = s
		}
	}
	return cleanReason(reason)
}

// cleanReason strips backend wording that should not reach the user
func cleanReason(reason string) string {
	reason = strings.ReplaceAll(reason, "while viewing", "")
	return strings.Join(strings.Fields(reason), " ")
}
