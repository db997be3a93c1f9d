package server

import (
	"github.com/dmarkhas/sensorgrid/internal/broker"
	"github.com/dmarkhas/sensorgrid/internal/db"
	"github.com/dmarkhas/sensorgrid/internal/domain"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"
)

type ServerConfig struct {
	MessageQueue broker.MessageQueue
	ReadingStore domain.ReadingStore
	Broadcaster  domain.Broadcaster
	Logger       *zap.Logger
	WorkerCount  int
	BatchSize    int
	Port         string
}

type ConfigOption func(*ServerConfig) error

func WithKafka(brokers, topic, groupID string) ConfigOption {
	return func(config *ServerConfig) error {
		mq, err := broker.NewKafkaQueue(brokers, topic, groupID, config.Logger)
		if err != nil {
			return err
		}
		config.MessageQueue = mq
		return nil
	}
}

func WithRabbitMQ(url, queueName string) ConfigOption {
	return func(config *ServerConfig) error {
		mq, err := broker.NewRabbitQueue(url, queueName, config.Logger)
		if err != nil {
			return err
		}
		config.MessageQueue = mq
		return nil
	}
}

func WithMongoDB(client *mongo.Client, database string) ConfigOption {
	return func(config *ServerConfig) error {
		store, err := db.NewMongoReadingStore(client, database)
		if err != nil {
			return err
		}
		config.ReadingStore = store
		return nil
	}
}

func WithMessageQueue(mq broker.MessageQueue) ConfigOption {
	return func(config *ServerConfig) error {
		config.MessageQueue = mq
		return nil
	}
}

func WithReadingStore(store domain.ReadingStore) ConfigOption {
	return func(config *ServerConfig) error {
		config.ReadingStore = store
		return nil
	}
}

func WithBroadcaster(b domain.Broadcaster) ConfigOption {
	return func(config *ServerConfig) error {
		config.Broadcaster = b
		return nil
	}
}

func WithWorkerConfig(workerCount, batchSize int) ConfigOption {
	return func(config *ServerConfig) error {
		config.WorkerCount = workerCount
		config.BatchSize = batchSize
		return nil
	}
}

func WithPort(port string) ConfigOption {
	return func(config *ServerConfig) error {
		config.Port = port
		return nil
	}
}

func WithLogger(logger *zap.Logger) ConfigOption {
	return func(config *ServerConfig) error {
		config.Logger = logger
		return nil
	}
}
