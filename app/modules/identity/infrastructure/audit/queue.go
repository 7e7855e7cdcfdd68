package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	rosterdomain "github.com/Black-And-White-Club/ttbw-roster/app/modules/roster/domain"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// FuzzyMatchTopic carries accepted fuzzy matches.
const FuzzyMatchTopic = "identity.fuzzy_match.accepted"

// Sink persists audit records.
type Sink interface {
	RecordFuzzyMatch(ctx context.Context, match rosterdomain.FuzzyMatch) error
}

// Queue funnels fuzzy matches from concurrent resolvers to one writer.
// Publish blocks until the writer has handled the record, so Close never
// drops accepted matches.
type Queue struct {
	pubsub   *gochannel.GoChannel
	sink     Sink
	logger   *slog.Logger
	failures atomic.Int64
	wg       sync.WaitGroup
	once     sync.Once
}

// NewQueue subscribes the writer before returning.
func NewQueue(ctx context.Context, sink Sink, logger *slog.Logger) (*Queue, error) {
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            64,
		BlockPublishUntilSubscriberAck: true,
	}, watermill.NewSlogLogger(logger))

	messages, err := pubsub.Subscribe(ctx, FuzzyMatchTopic)
	if err != nil {
		return nil, fmt.Errorf("audit.NewQueue: %w", err)
	}

	q := &Queue{pubsub: pubsub, sink: sink, logger: logger}
	q.wg.Add(1)
	go q.consume(context.WithoutCancel(ctx), messages)
	return q, nil
}

// RecordFuzzyMatch publishes match and waits for the writer.
func (q *Queue) RecordFuzzyMatch(ctx context.Context, match rosterdomain.FuzzyMatch) error {
	if match.ID == "" {
		match.ID = watermill.NewUUID()
	}
	payload, err := json.Marshal(match)
	if err != nil {
		return fmt.Errorf("audit.RecordFuzzyMatch: %w", err)
	}
	msg := message.NewMessage(match.ID, payload)
	msg.SetContext(ctx)
	if err := q.pubsub.Publish(FuzzyMatchTopic, msg); err != nil {
		return fmt.Errorf("audit.RecordFuzzyMatch: %w", err)
	}
	return nil
}

// Failures counts records the sink rejected.
func (q *Queue) Failures() int64 {
	return q.failures.Load()
}

// Close stops the writer after in-flight records are handled.
func (q *Queue) Close() error {
	var err error
	q.once.Do(func() {
		err = q.pubsub.Close()
		q.wg.Wait()
	})
	return err
}

func (q *Queue) consume(ctx context.Context, messages <-chan *message.Message) {
	defer q.wg.Done()
	for msg := range messages {
		var match rosterdomain.FuzzyMatch
		if err := json.Unmarshal(msg.Payload, &match); err != nil {
			q.failures.Add(1)
			q.logger.ErrorContext(ctx, "Discarding malformed fuzzy match message",
				slog.String("message_id", msg.UUID),
				slog.Any("error", err),
			)
			msg.Ack()
			continue
		}
		// Redelivery would loop forever on a broken store; count and move on.
		if err := q.sink.RecordFuzzyMatch(ctx, match); err != nil {
			q.failures.Add(1)
			q.logger.ErrorContext(ctx, "Failed to persist fuzzy match",
				slog.String("player_id", match.PlayerID),
				slog.String("strategy", match.Strategy),
				slog.Any("error", err),
			)
		}
		msg.Ack()
	}
}
