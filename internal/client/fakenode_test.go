package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type rpcFailure struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// handlerFunc answers one request with a result or an error
type handlerFunc func(req rpcRequest) (interface{}, *rpcFailure)

// fakeNode is a JSON-RPC NEAR node answering from handler
type fakeNode struct {
	*httptest.Server
	t       *testing.T
	handler handlerFunc

	mu       sync.Mutex
	calls    map[string]int
	requests []rpcRequest
	dropNext int // connections to close without answering
}

func newFakeNode(t *testing.T, handler handlerFunc) *fakeNode {
	t.Helper()
	n := &fakeNode{t: t, handler: handler, calls: make(map[string]int)}
	n.Server = httptest.NewServer(http.HandlerFunc(n.serve))
	t.Cleanup(n.Close)
	return n
}

func (n *fakeNode) serve(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	n.mu.Lock()
	n.calls[req.Method]++
	n.requests = append(n.requests, req)
	drop := n.dropNext > 0
	if drop {
		n.dropNext--
	}
	n.mu.Unlock()

	if drop {
		conn, _, err := w.(http.Hijacker).Hijack()
		require.NoError(n.t, err)
		conn.Close()
		return
	}

	resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	result, failure := n.handler(req)
	if failure != nil {
		resp["error"] = failure
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	require.NoError(n.t, json.NewEncoder(w).Encode(resp))
}

func (n *fakeNode) callCount(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[method]
}

func (n *fakeNode) lastRequest() rpcRequest {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.requests[len(n.requests)-1]
}

func (n *fakeNode) drop(count int) {
	n.mu.Lock()
	n.dropNext = count
	n.mu.Unlock()
}

func (n *fakeNode) client(t *testing.T, maxRetries int) *NearClient {
	t.Helper()
	c, err := NewNearClient(Options{
		RPCURL:       n.URL,
		Timeout:      5 * time.Second,
		MaxRetries:   maxRetries,
		RetryBackoff: time.Millisecond,
	})
	require.NoError(t, err)
	return c
}

// param returns the i-th positional param of req decoded as a string
func param(t *testing.T, req rpcRequest, i int) string {
	t.Helper()
	require.Greater(t, len(req.Params), i)
	var s string
	require.NoError(t, json.Unmarshal(req.Params[i], &s))
	return s
}

// viewBytes renders text the way the node returns view results
func viewBytes(text string) map[string]interface{} {
	nums := make([]int, len(text))
	for i := range []byte(text) {
		nums[i] = int(text[i])
	}
	return map[string]interface{}{"result": nums, "logs": []string{}, "block_height": 1, "block_hash": "h"}
}
