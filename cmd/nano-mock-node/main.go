package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/form3tech-oss/nano-rpc/internal/app/configuration"
	log "github.com/sirupsen/logrus"
)

func main() {
	config, err := configuration.NewNodeConfigFromEnv()
	if err != nil {
		log.Fatal(err)
	}

	level, err := log.ParseLevel(config.LogLevel)
	if err != nil {
		log.Warnf("unknown log level %q, using info", config.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	server, err := configuration.ServeMockNode(config)
	if err != nil {
		log.Fatal(err)
	}

	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	if err := server.Close(); err != nil {
		panic(err)
	}
}
