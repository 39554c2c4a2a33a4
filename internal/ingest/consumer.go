package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/rarchives/ir/internal/fetch"
	"github.com/rarchives/ir/internal/logger"
)

const exchangeName = "reddit"

// Consumer binds an exclusive queue to the firehose topic exchange,
// one `*.<sub>` binding per watched subreddit, and fans deliveries out
// to a pool of workers. Deliveries are auto-acked: a message that
// fails mid-pipeline is not worth a redelivery loop, the firehose will
// carry the content again.
type Consumer struct {
	amqpURL      string
	subs         []string
	workerCount  int
	proxyAddr    string
	fetchTimeout time.Duration
	pipeline     *Pipeline
	log          *logger.Logger
}

func NewConsumer(
	amqpURL string,
	subs []string,
	workerCount int,
	proxyAddr string,
	fetchTimeout time.Duration,
	pipeline *Pipeline,
	baseLog *logger.Logger,
) *Consumer {
	return &Consumer{
		amqpURL:      amqpURL,
		subs:         subs,
		workerCount:  workerCount,
		proxyAddr:    proxyAddr,
		fetchTimeout: fetchTimeout,
		pipeline:     pipeline,
		log:          baseLog.With("service", "Consumer"),
	}
}

// Run consumes until the context is cancelled. Each worker owns its
// own Fetcher so HTTP connection state is never shared across
// goroutines.
func (c *Consumer) Run(ctx context.Context) error {
	conn, err := amqp.Dial(c.amqpURL)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(exchangeName, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	for _, sub := range c.subs {
		if err := ch.QueueBind(q.Name, "*."+sub, exchangeName, false, nil); err != nil {
			return fmt.Errorf("bind %q: %w", sub, err)
		}
	}
	c.log.Info("Bound firehose queue", "queue", q.Name, "subs", len(c.subs))

	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	jobs := make(chan amqp.Delivery, c.workerCount)
	var wg sync.WaitGroup
	for i := 0; i < c.workerCount; i++ {
		fetcher, err := fetch.New(c.proxyAddr, c.fetchTimeout, c.log)
		if err != nil {
			close(jobs)
			wg.Wait()
			return fmt.Errorf("worker fetcher: %w", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range jobs {
				c.pipeline.HandleEnvelope(ctx, fetcher, d.Body)
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				close(jobs)
				wg.Wait()
				return fmt.Errorf("delivery channel closed")
			}
			jobs <- d
		}
	}
}
