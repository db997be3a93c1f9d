package broker

import (
	"context"

	"github.com/pkg/errors"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// RabbitQueue is the broker the upstream ingestors publish to. Queue and
// exchange are declared durable so readings survive a broker restart.
type RabbitQueue struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	queueName string
	logger    *zap.Logger
}

func NewRabbitQueue(url, queueName string, logger *zap.Logger) (*RabbitQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to RabbitMQ")
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "failed to open channel")
	}

	_, err = channel.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, errors.Wrap(err, "failed to declare queue")
	}

	return &RabbitQueue{
		conn:      conn,
		channel:   channel,
		queueName: queueName,
		logger:    logger,
	}, nil
}

func (r *RabbitQueue) Publish(ctx context.Context, data []byte) error {
	err := r.channel.Publish(
		"",          // default exchange
		r.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         data,
			DeliveryMode: amqp.Persistent,
		},
	)
	return errors.Wrap(err, "failed to publish message")
}

func (r *RabbitQueue) Consume(ctx context.Context, handler func([]byte) error) error {
	deliveries, err := r.channel.Consume(
		r.queueName,
		"sensorgrid-processor", // consumer tag
		false,                  // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return errors.Wrap(err, "failed to start consumer")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}

			if err := handler(d.Body); err != nil {
				r.logger.Error("error processing message", zap.Error(err))
				// Malformed messages are dropped, not requeued; redelivery
				// would just fail again.
				d.Reject(false)
				continue
			}
			d.Ack(false)
		}
	}
}

func (r *RabbitQueue) Close() error {
	if r.channel != nil {
		r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}
