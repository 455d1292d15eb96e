// Package nanomock is a client for the control endpoints of a running mock node.
package nanomock

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
)

var ErrWaitTimeout = errors.New("timeout waiting for requests")

type MockNode struct {
	client http.Client
	url    string
}

func New(url string) *MockNode {
	return &MockNode{
		client: http.Client{
			Timeout: 30 * time.Second,
		},
		url: strings.TrimSuffix(url, "/"),
	}
}

func (m *MockNode) URL() string {
	return m.url
}

// WaitForReady polls the readiness endpoint until the node answers or attempts run out.
func (m *MockNode) WaitForReady(attempts uint, delay time.Duration) error {
	return retry.Do(func() error {
		res, err := m.client.Get(m.url + "/ready")
		if err != nil {
			return err
		}
		res.Body.Close()
		if res.StatusCode != http.StatusOK {
			return errors.Errorf("not ready: %d", res.StatusCode)
		}
		return nil
	}, retry.Attempts(attempts), retry.Delay(delay), retry.DelayType(retry.FixedDelay), retry.LastErrorOnly(true))
}

func (m *MockNode) Requests() (RequestReport, error) {
	var report RequestReport

	res, err := m.client.Get(m.url + "/requests")
	if err != nil {
		return report, errors.Wrap(err, "get requests")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return report, errors.Errorf("get requests: %d %s", res.StatusCode, body)
	}
	if err := json.NewDecoder(res.Body).Decode(&report); err != nil {
		return report, errors.Wrap(err, "decode requests")
	}
	return report, nil
}

// WaitForAll blocks until every action the node serves has been requested.
func (m *MockNode) WaitForAll() error {
	return m.wait(url.Values{})
}

func (m *MockNode) WaitForAction(action string, count int) error {
	q := url.Values{}
	q.Add("action", action)
	q.Add("count", strconv.Itoa(count))
	return m.wait(q)
}

func (m *MockNode) wait(q url.Values) error {
	target := m.url + "/requests/wait"
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	res, err := m.client.Get(target)
	if err != nil {
		return err
	}
	res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusRequestTimeout:
		return ErrWaitTimeout
	default:
		return errors.Errorf("wait for requests: %d", res.StatusCode)
	}
}
