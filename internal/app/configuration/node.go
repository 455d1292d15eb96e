package configuration

import (
	"net/http"

	"github.com/form3tech-oss/nano-rpc/internal/app/fixtures"
	"github.com/form3tech-oss/nano-rpc/internal/app/mocknode"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

func LoadFixtures(config NodeConfig) (fixtures.Table, error) {
	if config.FixturesDir == "" {
		log.Info("loading embedded fixture corpus")
		return fixtures.LoadDefault()
	}
	log.Infof("loading fixture corpus from %s", config.FixturesDir)
	return fixtures.LoadDir(config.FixturesDir)
}

// ServeMockNode starts a mock node serving the configured corpus and returns once it is set up.
func ServeMockNode(config NodeConfig) (*echo.Echo, error) {
	table, err := LoadFixtures(config)
	if err != nil {
		return nil, errors.Wrap(err, "load fixtures")
	}

	matcher, err := mocknode.NewMatcher(table)
	if err != nil {
		return nil, errors.Wrap(err, "index fixtures")
	}

	registry := prometheus.NewRegistry()
	transport := mocknode.NewTransport(matcher, mocknode.WithMetrics(mocknode.NewMetrics(registry)))
	server := mocknode.NewServer(transport,
		mocknode.WithWait(config.WaitDelay, config.WaitDuration),
		mocknode.WithMetricsEndpoint(registry))
	go func() {
		log.Infof("serving %d fixtures on %s", matcher.Len(), config.ServerAddress)
		if err := server.Start(config.ServerAddress); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	return server, nil
}
