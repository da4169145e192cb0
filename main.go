package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/athapong/sample-graph/pkg/graph/metrics"
	"github.com/athapong/sample-graph/tools"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	envFile := flag.String("env", ".env", "Path to environment file")
	metricsAddr := flag.String("metrics-addr", "", "Address to expose Prometheus metrics on, e.g. :9090 (disabled when empty)")
	flag.Parse()

	// stdout carries the MCP protocol, so everything else goes to stderr
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if err := godotenv.Load(*envFile); err != nil {
		logger.WithError(err).Debugf("No env file loaded from %s", *envFile)
	}

	mcpServer := server.NewMCPServer(
		"sample-graph",
		"1.0.0",
		server.WithLogging(),
	)
	tools.RegisterGraphTools(mcpServer)

	var metricsServer *http.Server
	if *metricsAddr != "" {
		metricsServer = startMetricsServer(*metricsAddr, logger)
	}

	if err := server.ServeStdio(mcpServer); err != nil {
		panic(fmt.Sprintf("Server error: %v", err))
	}

	if metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(ctx); err != nil {
			logger.WithError(err).Error("Error during metrics server shutdown")
		}
	}
}

func startMetricsServer(addr string, logger *logrus.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			metrics.UpdateSystemMetrics()
		}
	}()

	go func() {
		logger.WithField("addr", addr).Info("Serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("Metrics server failed")
		}
	}()
	return srv
}
