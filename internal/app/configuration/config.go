package configuration

import (
	"context"
	"time"

	"github.com/form3tech-oss/nano-rpc/pkg/nanorpc"
	"github.com/pkg/errors"
	"github.com/sethvargo/go-envconfig"
)

type ClientConfig struct {
	Host          string        `env:"NANO_RPC_HOST,default=http://localhost:7076"` // Node RPC endpoint
	Timeout       time.Duration `env:"NANO_RPC_TIMEOUT,default=30s"`
	RetryAttempts uint          `env:"NANO_RPC_RETRY_ATTEMPTS,default=1"` // Total tries per request, 1 disables retries
	RetryDelay    time.Duration `env:"NANO_RPC_RETRY_DELAY,default=500ms"`
}

type NodeConfig struct {
	ServerAddress string        `env:"SERVER_ADDRESS,default=:7076"` // Address the mock node listens on
	FixturesDir   string        `env:"FIXTURES_DIR"`                 // Corpus directory, the embedded corpus when empty
	LogLevel      string        `env:"LOG_LEVEL,default=info"`
	WaitDelay     time.Duration `env:"WAIT_DELAY,default=500ms"` // Poll interval of the requests wait endpoint
	WaitDuration  time.Duration `env:"WAIT_DURATION,default=15s"`
}

func NewClientConfigFromEnv() (ClientConfig, error) {
	return newClientConfig(envconfig.OsLookuper())
}

func NewNodeConfigFromEnv() (NodeConfig, error) {
	return newNodeConfig(envconfig.OsLookuper())
}

func newClientConfig(lookuper envconfig.Lookuper) (ClientConfig, error) {
	ctx := context.Background()

	var config ClientConfig
	err := envconfig.ProcessWith(ctx, &config, lookuper)
	if err != nil {
		return config, errors.Wrap(err, "process env config")
	}
	return config, nil
}

func newNodeConfig(lookuper envconfig.Lookuper) (NodeConfig, error) {
	ctx := context.Background()

	var config NodeConfig
	err := envconfig.ProcessWith(ctx, &config, lookuper)
	if err != nil {
		return config, errors.Wrap(err, "process env config")
	}
	return config, nil
}

// NewClient builds a client talking to a live node over HTTP.
func NewClient(config ClientConfig, opts ...nanorpc.Option) *nanorpc.Client {
	transport := nanorpc.NewHTTPTransport(nanorpc.HTTPConfig{
		Timeout:    config.Timeout,
		Attempts:   config.RetryAttempts,
		RetryDelay: config.RetryDelay,
	})
	return nanorpc.New(config.Host, append([]nanorpc.Option{nanorpc.WithTransport(transport)}, opts...)...)
}
