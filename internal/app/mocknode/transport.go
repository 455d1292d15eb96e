package mocknode

import (
	"context"
	"net/http"
	"sort"
	"sync"

	"github.com/form3tech-oss/nano-rpc/pkg/nanomock"
	"github.com/form3tech-oss/nano-rpc/pkg/nanorpc"
)

// Transport answers requests from a Matcher without touching the network.
// It counts matched requests per action.
type Transport struct {
	matcher *Matcher
	matched *broadcast
	metrics *Metrics

	mu           sync.RWMutex
	lastRequest  []byte
	requestCount int
	actionCounts map[string]int
}

var _ nanorpc.Transport = (*Transport)(nil)

type TransportOption func(*Transport)

// WithMetrics counts served and unmatched requests in m.
func WithMetrics(m *Metrics) TransportOption {
	return func(t *Transport) {
		t.metrics = m
	}
}

func NewTransport(matcher *Matcher, opts ...TransportOption) *Transport {
	t := &Transport{
		matcher:      matcher,
		matched:      newBroadcast(),
		actionCounts: map[string]int{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Transport) Send(_ context.Context, _ string, body []byte) (*nanorpc.Response, error) {
	f, err := t.matcher.Match(body)
	if err != nil {
		if t.metrics != nil {
			t.metrics.Unmatched.Inc()
		}
		return nil, err
	}

	if t.metrics != nil {
		t.metrics.Requests.WithLabelValues(f.Action).Inc()
	}
	t.storeRequest(f.Action, body)
	t.matched.Signal()
	return &nanorpc.Response{
		StatusCode: http.StatusOK,
		Body:       append([]byte(nil), f.Response...),
	}, nil
}

func (t *Transport) storeRequest(action string, body []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastRequest = append([]byte(nil), body...)
	t.requestCount++
	t.actionCounts[action]++
}

// LastRequest returns a copy of the body of the last matched request, nil before any.
func (t *Transport) LastRequest() []byte {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.lastRequest == nil {
		return nil
	}
	return append([]byte(nil), t.lastRequest...)
}

func (t *Transport) RequestCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.requestCount
}

// HasRequests reports whether action has been matched at least count times.
func (t *Transport) HasRequests(action string, count int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.actionCounts[action] >= count
}

// Unrequested lists the served actions no request has matched yet.
func (t *Transport) Unrequested() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var names []string
	for _, action := range t.matcher.Actions() {
		if t.actionCounts[action] == 0 {
			names = append(names, action)
		}
	}
	return names
}

func (t *Transport) AllHaveRequests() bool {
	return len(t.Unrequested()) == 0
}

func (t *Transport) Report() nanomock.RequestReport {
	unrequested := t.Unrequested()

	t.mu.RLock()
	defer t.mu.RUnlock()
	report := nanomock.RequestReport{
		Total:       t.requestCount,
		Actions:     make(map[string]int, len(t.actionCounts)),
		Unrequested: unrequested,
	}
	for action, n := range t.actionCounts {
		report.Actions[action] = n
	}
	sort.Strings(report.Unrequested)
	return report
}
