package kafka

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Handler must return nil only when the message is handled and the
// offset may be committed.
type Handler func(ctx context.Context, m kafka.Message) error

type Consumer struct {
	brokers []string
	group   string
	topic   string
	workers int
}

func NewConsumer(brokers []string, group, topic string, workers int) *Consumer {
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{brokers: brokers, group: group, topic: topic, workers: workers}
}

// Run keeps the subscription alive until ctx is cancelled. On a
// transport failure the reader is torn down and rebuilt after a
// backoff, resubscribing to the topic.
func (c *Consumer) Run(ctx context.Context, h Handler) {
	backoff := time.Second
	for {
		err := c.consume(ctx, h)
		if ctx.Err() != nil {
			return
		}
		log.Printf("consumer %s disconnected: %v, reconnect in %s", c.topic, err, backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

// reader is the slice of kafka.Reader the dispatch loop needs. Fetch
// must not commit; CommitMessages is the only commit.
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

func (c *Consumer) consume(ctx context.Context, h Handler) error {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        c.brokers,
		GroupID:        c.group,
		Topic:          c.topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	defer r.Close()
	return c.dispatch(ctx, r, h)
}

func (c *Consumer) dispatch(ctx context.Context, r reader, h Handler) error {
	jobs := make(chan kafka.Message, 1024)
	var wg sync.WaitGroup

	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for m := range jobs {
				if err := h(ctx, m); err != nil {
					log.Printf("handler %s: %v", c.topic, err)
					time.Sleep(200 * time.Millisecond) // light backoff, redelivered later
					continue
				}
				// commit on success only
				if err := r.CommitMessages(ctx, m); err != nil {
					log.Printf("commit %s: %v", c.topic, err)
				}
			}
		}()
	}

	for {
		// FetchMessage, not ReadMessage: with a group id ReadMessage
		// commits as it reads, which would make the error branch above
		// lose messages instead of leaving them for redelivery
		m, err := r.FetchMessage(ctx)
		if err != nil {
			close(jobs)
			wg.Wait()
			return err
		}
		select {
		case jobs <- m:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		}
	}
}
