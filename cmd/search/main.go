package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/NeuralTrust/TrustSearch/pkg/config"
	"github.com/NeuralTrust/TrustSearch/pkg/dependency_container"
	infraLogger "github.com/NeuralTrust/TrustSearch/pkg/infra/logger"
	"github.com/NeuralTrust/TrustSearch/pkg/infra/prometheus"
	"github.com/NeuralTrust/TrustSearch/pkg/server"
	"github.com/NeuralTrust/TrustSearch/pkg/version"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger, logCloser, err := infraLogger.NewLogger("search")
	if err != nil {
		log.Printf("file logging unavailable, using console: %v", err)
		logger = infraLogger.NewConsoleLogger()
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config"
	}
	if err := config.Load(configPath); err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	cfg := config.GetConfig()

	prometheus.Initialize(prometheus.MetricsConfig{
		EnableLatency: cfg.Metrics.EnableLatency,
	})

	container, err := dependency_container.NewContainer(dependency_container.ContainerDI{
		Cfg:    cfg,
		Logger: logger,
	})
	if err != nil {
		logger.Fatalf("failed to initialize dependencies: %v", err)
	}

	srv := server.NewSearchServer(server.SearchServerDI{
		Config:              cfg,
		Logger:              logger,
		MiddlewareTransport: container.MiddlewareTransport,
		HandlerTransport:    container.HandlerTransport,
	})

	logger.WithFields(logrus.Fields{
		"version":            version.Version,
		"search_provider":    cfg.Search.Provider,
		"embedding_provider": cfg.Embedding.Provider,
		"cache":              cfg.Cache.Enabled,
	}).Info("trustsearch initialized")

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	fmt.Println("shutting down server...")
	exitCode := 0
	if err := srv.Shutdown(); err != nil {
		fmt.Println("error shutting down server:", err)
		exitCode = 1
	}
	if err := container.Close(); err != nil {
		fmt.Println("error closing cache:", err)
	}
	if logCloser != nil {
		_ = logCloser.Close()
	}
	if exitCode == 0 {
		fmt.Println("server gracefully stopped")
	}
	os.Exit(exitCode)
}
