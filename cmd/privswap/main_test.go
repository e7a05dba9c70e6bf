package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type receivedRequest struct {
	method string
	path   string
	query  string
	body   map[string]string
}

type testDaemon struct {
	lock     sync.Mutex
	requests []receivedRequest
}

func (d *testDaemon) received() []receivedRequest {
	d.lock.Lock()
	defer d.lock.Unlock()
	return append([]receivedRequest{}, d.requests...)
}

// newTestDaemon points the local state to a fake daemon that records the
// requests it receives.
func newTestDaemon(t *testing.T) *testDaemon {
	daemon := &testDaemon{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		body := map[string]string{}
		_ = json.Unmarshal(buf, &body)
		daemon.lock.Lock()
		daemon.requests = append(daemon.requests, receivedRequest{
			r.Method, r.URL.Path, r.URL.RawQuery, body,
		})
		daemon.lock.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/private-orders/missing":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"private order not found"}`))
		default:
			_, _ = w.Write([]byte(`{"uuid":"order-1","status":"placing_first_leg"}`))
		}
	}))
	t.Cleanup(server.Close)

	datadir := t.TempDir()
	prevDatadir, prevStatePath := privswapDataDir, statePath
	privswapDataDir = datadir
	statePath = filepath.Join(datadir, "state.json")
	t.Cleanup(func() {
		privswapDataDir, statePath = prevDatadir, prevStatePath
	})

	require.NoError(t, setState(map[string]string{"rpcserver": server.URL}))
	return daemon
}

func runApp(t *testing.T, args ...string) (string, error) {
	out := &bytes.Buffer{}
	app := newApp()
	app.Writer = out
	app.ErrWriter = out
	err := app.Run(append([]string{"privswap"}, args...))
	return out.String(), err
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		expectedReq receivedRequest
	}{
		{
			name: "orderbook",
			args: []string{"orderbook", "--base", "XMR", "--quote", "USDT"},
			expectedReq: receivedRequest{
				method: http.MethodGet, path: "/v1/orderbook", query: "base=XMR&quote=USDT",
			},
		},
		{
			name: "private order submit",
			args: []string{
				"privateorder", "submit", "--base", "BTC", "--quote", "USDT", "--quote_amount", "100",
			},
			expectedReq: receivedRequest{
				method: http.MethodPost, path: "/v1/private-orders",
				body: map[string]string{"base": "BTC", "quote": "USDT", "quote_amount": "100"},
			},
		},
		{
			name: "private order cancel",
			args: []string{"privateorder", "cancel", "order-1"},
			expectedReq: receivedRequest{
				method: http.MethodPost, path: "/v1/private-orders/order-1/cancel",
			},
		},
		{
			name: "private order report",
			args: []string{"privateorder", "report", "order-1"},
			expectedReq: receivedRequest{
				method: http.MethodGet, path: "/v1/private-orders/order-1/report",
			},
		},
		{
			name: "list open private orders",
			args: []string{"privateorders", "--only_open"},
			expectedReq: receivedRequest{
				method: http.MethodGet, path: "/v1/private-orders", query: "only_open=true",
			},
		},
		{
			name: "list swaps",
			args: []string{"swaps", "--only_private", "--include_hidden"},
			expectedReq: receivedRequest{
				method: http.MethodGet, path: "/v1/swaps",
				query: "include_hidden=true&only_private=true",
			},
		},
		{
			name: "remove swap",
			args: []string{"swap", "remove", "swap-1"},
			expectedReq: receivedRequest{
				method: http.MethodDelete, path: "/v1/swaps/swap-1",
			},
		},
		{
			name: "add webhook",
			args: []string{"webhook", "add", "--endpoint", "http://localhost/hook"},
			expectedReq: receivedRequest{
				method: http.MethodPost, path: "/v1/webhooks",
				body: map[string]string{
					"action": "*", "endpoint": "http://localhost/hook", "secret": "",
				},
			},
		},
	}

	// Commands share the local state file, subtests can't run in parallel.
	for i := range tests {
		tt := tests[i]
		t.Run(tt.name, func(t *testing.T) {
			daemon := newTestDaemon(t)

			_, err := runApp(t, tt.args...)
			require.NoError(t, err)
			received := daemon.received()
			require.Len(t, received, 1)

			got := received[0]
			require.Equal(t, tt.expectedReq.method, got.method)
			require.Equal(t, tt.expectedReq.path, got.path)
			require.Equal(t, tt.expectedReq.query, got.query)
			if tt.expectedReq.body != nil {
				require.Equal(t, tt.expectedReq.body, got.body)
			}
		})
	}
}

func TestCommandOutput(t *testing.T) {
	newTestDaemon(t)

	out, err := runApp(t, "privateorder", "get", "order-1")
	require.NoError(t, err)
	require.Contains(t, out, `"uuid": "order-1"`)

	out, err = runApp(t, "config")
	require.NoError(t, err)
	require.Contains(t, out, "rpcserver: http://")
}

func TestFailingCommands(t *testing.T) {
	newTestDaemon(t)

	_, err := runApp(t, "privateorder", "get", "missing")
	require.EqualError(t, err, "private order not found (404)")

	_, err = runApp(t, "privateorder", "get")
	var usageErr *invalidUsageError
	require.ErrorAs(t, err, &usageErr)

	_, err = runApp(t, "orderbook", "--base", "XMR")
	require.Error(t, err)
}

func TestMissingState(t *testing.T) {
	datadir := t.TempDir()
	prevDatadir, prevStatePath := privswapDataDir, statePath
	privswapDataDir = datadir
	statePath = filepath.Join(datadir, "state.json")
	t.Cleanup(func() {
		privswapDataDir, statePath = prevDatadir, prevStatePath
	})

	_, err := runApp(t, "privateorders")
	require.Error(t, err)
	require.Contains(t, err.Error(), "config init")
}
