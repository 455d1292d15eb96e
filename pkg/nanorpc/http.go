package nanorpc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultRetryDelay = 500 * time.Millisecond
)

type HTTPConfig struct {
	Timeout time.Duration
	// Attempts is the total number of tries per request; 0 and 1 both mean a single try.
	Attempts   uint
	RetryDelay time.Duration
}

// HTTPTransport posts request bodies to a live node.
type HTTPTransport struct {
	client   http.Client
	attempts uint
	delay    time.Duration
}

func NewHTTPTransport(config HTTPConfig) *HTTPTransport {
	t := &HTTPTransport{
		client: http.Client{
			Timeout: config.Timeout,
		},
		attempts: config.Attempts,
		delay:    config.RetryDelay,
	}
	if t.client.Timeout == 0 {
		t.client.Timeout = defaultTimeout
	}
	if t.attempts == 0 {
		t.attempts = 1
	}
	if t.delay == 0 {
		t.delay = defaultRetryDelay
	}
	return t
}

type retryableStatus int

func (s retryableStatus) Error() string {
	return fmt.Sprintf("node answered %d %s", int(s), http.StatusText(int(s)))
}

func (t *HTTPTransport) Send(ctx context.Context, url string, body []byte) (*Response, error) {
	var res *Response
	err := retry.Do(func() error {
		var err error
		res, err = t.post(ctx, url, body)
		return err
	},
		retry.Context(ctx),
		retry.Attempts(t.attempts),
		retry.Delay(t.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.WithField("attempt", n+1).Warnf("retrying %s: %s", url, err)
		}),
	)

	var status retryableStatus
	if errors.As(err, &status) {
		// out of attempts; hand the last response to the caller for decoding
		return res, nil
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (t *HTTPTransport) post(ctx context.Context, url string, body []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, retry.Unrecoverable(errors.Wrap(err, "build request"))
	}
	req.Header.Set("Content-Type", "application/json")

	httpRes, err := t.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "post request")
	}
	defer httpRes.Body.Close()

	data, err := io.ReadAll(httpRes.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}

	res := &Response{StatusCode: httpRes.StatusCode, Body: data}
	switch httpRes.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return res, retryableStatus(httpRes.StatusCode)
	}
	return res, nil
}
