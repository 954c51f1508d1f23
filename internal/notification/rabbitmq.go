package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// RabbitClient holds one connection and one channel to the broker.
type RabbitClient struct {
	conn *amqp.Connection
	chn  *amqp.Channel
}

func NewRabbitClient(url string) (*RabbitClient, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	chn, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	return &RabbitClient{conn: conn, chn: chn}, nil
}

func (r *RabbitClient) Close() error {
	if err := r.chn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		return err
	}
	return r.conn.Close()
}

// DeclareQueue declares a durable queue.
func (r *RabbitClient) DeclareQueue(name string) error {
	_, err := r.chn.QueueDeclare(
		name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	return err
}

// Publish sends a persistent JSON message to queue through the default exchange.
func (r *RabbitClient) Publish(ctx context.Context, queue string, body []byte) error {
	return r.chn.PublishWithContext(ctx,
		"",    // exchange
		queue, // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// Consume starts a manual-ack consumer on queue.
func (r *RabbitClient) Consume(queue string) (<-chan amqp.Delivery, error) {
	return r.chn.Consume(
		queue,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
}

type publisher interface {
	Publish(ctx context.Context, queue string, body []byte) error
}

type consumer interface {
	Consume(queue string) (<-chan amqp.Delivery, error)
}

// QueuePublisher hands tasks to a broker queue. The publish itself runs off the
// caller's goroutine so Enqueue never waits on the network.
type QueuePublisher struct {
	client  publisher
	queue   string
	timeout time.Duration
	log     *zap.Logger
	wg      sync.WaitGroup
}

func NewQueuePublisher(client publisher, queue string, timeout time.Duration, log *zap.Logger) *QueuePublisher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &QueuePublisher{
		client:  client,
		queue:   queue,
		timeout: timeout,
		log:     log.With(zap.String("dispatcher", "rabbitmq"), zap.String("queue", queue)),
	}
}

func (p *QueuePublisher) Enqueue(task Task) error {
	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		if err := p.client.Publish(ctx, p.queue, body); err != nil {
			p.log.Error("Failed to publish confirmation task",
				zap.Error(err),
				zap.String("booking_id", task.BookingID.String()),
			)
			return
		}
		p.log.Debug("Confirmation task published", zap.String("booking_id", task.BookingID.String()))
	}()

	return nil
}

// Shutdown waits for in-flight publishes.
func (p *QueuePublisher) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// QueueConsumer delivers tasks read from the broker. A message is acked after
// the mail is sent and dropped (nack, no requeue) when decoding or sending fails.
type QueueConsumer struct {
	client      consumer
	mailer      Mailer
	queue       string
	sendTimeout time.Duration
	log         *zap.Logger
}

func NewQueueConsumer(client consumer, mailer Mailer, queue string, sendTimeout time.Duration, log *zap.Logger) *QueueConsumer {
	if sendTimeout <= 0 {
		sendTimeout = 30 * time.Second
	}
	return &QueueConsumer{
		client:      client,
		mailer:      mailer,
		queue:       queue,
		sendTimeout: sendTimeout,
		log:         log.With(zap.String("consumer", "rabbitmq"), zap.String("queue", queue)),
	}
}

// Run blocks until ctx is cancelled or the delivery channel closes.
func (c *QueueConsumer) Run(ctx context.Context) error {
	msgs, err := c.client.Consume(c.queue)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}

	c.log.Info("Consumer started")
	for {
		select {
		case <-ctx.Done():
			c.log.Info("Consumer stopping")
			return nil
		case d, ok := <-msgs:
			if !ok {
				c.log.Warn("Delivery channel closed")
				return nil
			}
			c.handle(ctx, d)
		}
	}
}

func (c *QueueConsumer) handle(ctx context.Context, d amqp.Delivery) {
	var task Task
	if err := json.Unmarshal(d.Body, &task); err != nil {
		c.log.Error("Malformed task, dropping", zap.Error(err))
		c.nack(d)
		return
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.sendTimeout)
	defer cancel()

	if err := deliver(sendCtx, c.mailer, task); err != nil {
		c.log.Error("Failed to deliver confirmation",
			zap.Error(err),
			zap.String("booking_id", task.BookingID.String()),
		)
		c.nack(d)
		return
	}

	if err := d.Ack(false); err != nil {
		c.log.Error("Failed to ack delivery", zap.Error(err))
	}
}

func (c *QueueConsumer) nack(d amqp.Delivery) {
	if err := d.Nack(false, false); err != nil {
		c.log.Error("Failed to nack delivery", zap.Error(err))
	}
}
