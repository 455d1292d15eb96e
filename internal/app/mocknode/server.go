package mocknode

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/form3tech-oss/nano-rpc/internal/app/httpresponse"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const (
	defaultDelay    = 500 * time.Millisecond
	defaultDuration = 15 * time.Second
)

type ServerOption func(*handler)

// WithWait sets how often and for how long the wait endpoint polls.
func WithWait(delay, duration time.Duration) ServerOption {
	return func(h *handler) {
		if delay > 0 {
			h.delay = delay
		}
		if duration > 0 {
			h.duration = duration
		}
	}
}

// WithMetricsEndpoint exposes gatherer on GET /metrics.
func WithMetricsEndpoint(gatherer prometheus.Gatherer) ServerOption {
	return func(h *handler) {
		h.gatherer = gatherer
	}
}

// NewServer serves the fixtures of transport over HTTP the way a node serves RPC:
// a JSON request POSTed to any path.
func NewServer(transport *Transport, opts ...ServerOption) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	h := &handler{
		transport: transport,
		delay:     defaultDelay,
		duration:  defaultDuration,
	}
	for _, opt := range opts {
		opt(h)
	}

	e.GET("/ready", h.readinessHandler)
	if h.gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}
	e.GET("/requests", h.requestsHandler)
	e.GET("/requests/wait", h.requestsWaitHandler)
	e.POST("/", h.rpcHandler)
	e.POST("/*", h.rpcHandler)
	return e
}

type handler struct {
	transport *Transport
	gatherer  prometheus.Gatherer
	delay     time.Duration
	duration  time.Duration
}

func (h *handler) readinessHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func (h *handler) requestsHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, h.transport.Report())
}

// requestsWaitHandler blocks until the requested action has been served count times,
// or every served action at least once when no action is given.
func (h *handler) requestsWaitHandler(c echo.Context) error {
	waitForCount, err := strconv.Atoi(c.QueryParam("count"))
	if err != nil {
		waitForCount = 1
	}

	met := h.transport.AllHaveRequests
	if waitFor := c.QueryParam("action"); waitFor != "" {
		log.WithFields(log.Fields{
			"wait_for": waitFor,
			"count":    waitForCount,
		}).Info("waiting")
		met = func() bool {
			return h.transport.HasRequests(waitFor, waitForCount)
		}
	} else {
		log.Info("waiting for all")
	}

	retryFor(func(timeLeft time.Duration) bool {
		changed := h.transport.matched.Changed()
		if met() {
			return true
		}
		if timeLeft > 0 {
			waitFor(changed, timeLeft)
			return met()
		}
		return false
	}, h.delay, h.duration)

	if !met() {
		for _, action := range h.transport.Unrequested() {
			log.Infof("'%s' has no requests", action)
		}
		return c.JSON(http.StatusRequestTimeout, httpresponse.Error("timeout waiting for requests"))
	}
	return c.NoContent(http.StatusOK)
}

func (h *handler) rpcHandler(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, httpresponse.Errorf("unable to read request. %s", err.Error()))
	}

	res, err := h.transport.Send(c.Request().Context(), c.Request().URL.Path, body)
	if err != nil {
		return c.JSON(http.StatusNotFound, httpresponse.Unmatched(body))
	}

	log.WithField("path", c.Request().URL.Path).Debugf("serving fixture for %s", body)
	return c.JSONBlob(res.StatusCode, res.Body)
}
