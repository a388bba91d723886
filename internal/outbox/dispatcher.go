package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/liftlog/internal/telemetry/metrics"
)

// DefaultTopic is where record events land unless configured otherwise.
const DefaultTopic = "liftlog.records"

// claimRetryAfter is how long a claimed but unpublished event stays
// off limits before it is picked up again. Covers a dispatcher dying
// between claim and publish.
const claimRetryAfter = time.Minute

type messageWriter interface {
	WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error
}

// Event is one row of the record outbox.
type Event struct {
	ID           int64
	EventType    string
	PartitionKey string
	Payload      json.RawMessage
}

// Dispatcher drains the record outbox and delivers the events to the
// broker. Events are claimed first, so several dispatchers can run
// side by side without double delivery.
type Dispatcher struct {
	db           *pgxpool.Pool
	producer     messageWriter
	topic        string
	pollInterval time.Duration
	batchSize    int
	metrics      *metrics.Manager
	done         chan struct{}
}

func NewDispatcher(
	db *pgxpool.Pool,
	producer messageWriter,
	topic string,
	pollInterval time.Duration,
	batchSize int,
	metricsManager *metrics.Manager,
) *Dispatcher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Dispatcher{
		db:           db,
		producer:     producer,
		topic:        topic,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		metrics:      metricsManager,
		done:         make(chan struct{}),
	}
}

// Start runs the polling loop until the context is cancelled. Meant
// to be called in a goroutine; Wait blocks until the loop is done.
func (d *Dispatcher) Start(ctx context.Context) {
	log.Debugf("outbox dispatcher starting, topic %s, poll every %s", d.topic, d.pollInterval)

	ticker := time.NewTicker(d.pollInterval)
	defer func() {
		ticker.Stop()
		close(d.done)
		log.Debugln("outbox dispatcher stopped")
	}()

	for {
		if err := d.processBatch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Errorf("outbox dispatcher: %s", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Wait blocks until the dispatcher loop has stopped.
func (d *Dispatcher) Wait() {
	<-d.done
}

func (d *Dispatcher) processBatch(ctx context.Context) error {
	if err := d.updatePendingGauge(ctx); err != nil {
		return err
	}

	events, err := d.fetchAndClaim(ctx)
	if err != nil {
		return fmt.Errorf("fetch events: %w", err)
	}
	if len(events) == 0 {
		return nil
	}

	if err := d.deliver(ctx, events); err != nil {
		d.metrics.CounterEventsPublishErrors.Add(float64(len(events)))
		// events stay claimed and get retried after the claim expires
		return fmt.Errorf("deliver %d events: %w", len(events), err)
	}
	d.metrics.CounterEventsPublished.Add(float64(len(events)))

	if err := d.markPublished(ctx, events); err != nil {
		return fmt.Errorf("mark %d events published: %w", len(events), err)
	}

	log.Tracef("outbox dispatcher: delivered %d record events", len(events))
	return nil
}

func (d *Dispatcher) updatePendingGauge(ctx context.Context) error {
	var pending int
	if err := d.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM record_outbox WHERE published_at IS NULL;`,
	).Scan(&pending); err != nil {
		return fmt.Errorf("count pending events: %w", err)
	}
	d.metrics.GaugeOutboxPending.Set(float64(pending))
	return nil
}

// fetchAndClaim picks the oldest unpublished, unclaimed events and
// stamps their claim, all in one transaction. Rows locked by a
// concurrent dispatcher are skipped.
func (d *Dispatcher) fetchAndClaim(ctx context.Context) (_ []Event, err error) {
	tx, err := d.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				err = fmt.Errorf("%w [rollback err: %s]", err, rollbackErr)
			}
			return
		}
		err = tx.Commit(ctx)
	}()

	rows, err := tx.Query(
		ctx,
		`SELECT id, event_type, partition_key, payload
			FROM record_outbox
			WHERE published_at IS NULL
				AND (claimed_at IS NULL OR claimed_at < $1)
			ORDER BY id
			LIMIT $2
			FOR UPDATE SKIP LOCKED;`,
		time.Now().Add(-claimRetryAfter), d.batchSize,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var events []Event
	var ids []int64
	for rows.Next() {
		var event Event
		if err := rows.Scan(&event.ID, &event.EventType, &event.PartitionKey, &event.Payload); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		events = append(events, event)
		ids = append(ids, event.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	if len(ids) == 0 {
		return nil, nil
	}

	if _, err := tx.Exec(
		ctx,
		`UPDATE record_outbox SET claimed_at = now() WHERE id = ANY($1);`,
		ids,
	); err != nil {
		return nil, fmt.Errorf("claim events: %w", err)
	}

	return events, nil
}

func (d *Dispatcher) deliver(ctx context.Context, events []Event) error {
	messages := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		messages = append(messages, kafka.Message{
			Key:   []byte(event.PartitionKey),
			Value: event.Payload,
			Time:  time.Now().UTC(),
			Headers: []kafka.Header{
				{Key: "event-type", Value: []byte(event.EventType)},
			},
		})
	}
	return d.producer.WriteMessages(ctx, d.topic, messages...)
}

func (d *Dispatcher) markPublished(ctx context.Context, events []Event) error {
	ids := make([]int64, 0, len(events))
	for _, event := range events {
		ids = append(ids, event.ID)
	}
	_, err := d.db.Exec(
		ctx,
		`UPDATE record_outbox SET published_at = now() WHERE id = ANY($1);`,
		ids,
	)
	return err
}
