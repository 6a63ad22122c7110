package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/OldStager01/energy-forecaster/internal/loadgen"
	"github.com/OldStager01/energy-forecaster/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	port := flag.Int("port", 9100, "load generator server port")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger.Setup(*logLevel, "development")
	logger.Info("Starting synthetic load generator")

	srv := loadgen.NewServer(loadgen.ServerConfig{
		Port: *port,
	})

	if err := srv.Start(); err != nil {
		return fmt.Errorf("failed to start load generator: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down load generator")
	return srv.Stop()
}
