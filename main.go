package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmarkhas/sensorgrid/core/server"
	"github.com/dmarkhas/sensorgrid/internal/config"
	"github.com/dmarkhas/sensorgrid/internal/db"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	mongoClient, err := db.NewMongoConnection(cfg.Mongo.URI)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}

	options := []server.ConfigOption{
		server.WithLogger(logger),
		server.WithMongoDB(mongoClient, cfg.Mongo.Database),
		server.WithWorkerConfig(cfg.Worker.Count, cfg.Worker.BatchSize),
		server.WithPort(cfg.Server.Port),
	}

	switch cfg.Broker.Kind {
	case "kafka":
		options = append(options, server.WithKafka(cfg.Broker.KafkaBrokers, cfg.Broker.KafkaTopic, cfg.Broker.KafkaGroupID))
	case "rabbitmq":
		options = append(options, server.WithRabbitMQ(cfg.Broker.RabbitURL, cfg.Broker.RabbitQueue))
	}

	srv, err := server.NewServer(options...)
	if err != nil {
		logger.Fatal("failed to create server", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("shutdown signal received")
		cancel()
	}()

	if err := srv.Start(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}

	srv.Close()
	logger.Info("server shutdown complete")
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
