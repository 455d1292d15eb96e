package nanomock_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/form3tech-oss/nano-rpc/internal/app/fixtures"
	"github.com/form3tech-oss/nano-rpc/internal/app/mocknode"
	"github.com/form3tech-oss/nano-rpc/pkg/nanomock"
	"github.com/form3tech-oss/nano-rpc/pkg/nanorpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startNode(t *testing.T) (*nanomock.MockNode, *nanorpc.Client) {
	t.Helper()

	table := fixtures.Table{}
	table.Add(fixtures.Fixture{
		Action:   "version",
		Expected: json.RawMessage(`{"node_vendor": "Nano 18.0"}`),
		Request:  json.RawMessage(`{"action": "version"}`),
		Response: json.RawMessage(`{"node_vendor": "Nano 18.0"}`),
	})
	table.Add(fixtures.Fixture{
		Action:   "frontier_count",
		Expected: json.RawMessage(`920471`),
		Request:  json.RawMessage(`{"action": "frontier_count"}`),
		Response: json.RawMessage(`{"count": "920471"}`),
	})

	matcher, err := mocknode.NewMatcher(table)
	require.NoError(t, err)
	server := httptest.NewServer(mocknode.NewServer(mocknode.NewTransport(matcher),
		mocknode.WithWait(10*time.Millisecond, 200*time.Millisecond)))
	t.Cleanup(server.Close)

	return nanomock.New(server.URL + "/"), nanorpc.New(server.URL)
}

func TestWaitForReady(t *testing.T) {
	node, _ := startNode(t)
	assert.NoError(t, node.WaitForReady(5, 10*time.Millisecond))
}

func TestWaitForReadyUnreachable(t *testing.T) {
	node := nanomock.New("http://127.0.0.1:1")
	assert.Error(t, node.WaitForReady(2, time.Millisecond))
}

func TestRequests(t *testing.T) {
	node, client := startNode(t)

	report, err := node.Requests()
	require.NoError(t, err)
	assert.Equal(t, 0, report.Total)
	assert.Equal(t, []string{"frontier_count", "version"}, report.Unrequested)

	_, err = client.Version(context.Background())
	require.NoError(t, err)
	_, err = client.Version(context.Background())
	require.NoError(t, err)
	_, err = client.Call(context.Background(), "versions", nil)
	require.Error(t, err)

	report, err = node.Requests()
	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, map[string]int{"version": 2}, report.Actions)
	assert.Equal(t, []string{"frontier_count"}, report.Unrequested)
}

func TestWaitForAction(t *testing.T) {
	node, client := startNode(t)

	done := make(chan error, 1)
	go func() {
		done <- node.WaitForAction("version", 1)
	}()

	_, err := client.Version(context.Background())
	require.NoError(t, err)
	assert.NoError(t, <-done)
}

func TestWaitForActionTimesOut(t *testing.T) {
	node, client := startNode(t)

	_, err := client.Version(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, node.WaitForAction("version", 2), nanomock.ErrWaitTimeout)
}

func TestWaitForAll(t *testing.T) {
	node, client := startNode(t)

	_, err := client.Version(context.Background())
	require.NoError(t, err)
	assert.ErrorIs(t, node.WaitForAll(), nanomock.ErrWaitTimeout)

	_, err = client.FrontierCount(context.Background())
	require.NoError(t, err)
	assert.NoError(t, node.WaitForAll())
}

func TestWaitForReadyNotReady(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	err := nanomock.New(server.URL).WaitForReady(2, time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not ready: 503")
}
