package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"garantia/internal/domain"
)

// KafkaConfig configures the Kafka-backed queue. Topic and group defaults
// live in platform/config; this package takes them as given.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	Group   string
}

// KafkaPublisher publishes drafts with synchronous acks so intake never
// reports success before the broker has the record.
type KafkaPublisher struct {
	client *kgo.Client
	topic  string
}

// NewKafkaPublisher connects to the brokers and makes sure the topic exists.
func NewKafkaPublisher(ctx context.Context, cfg KafkaConfig) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(kgo.SeedBrokers(cfg.Brokers...))
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	if err := ensureTopic(ctx, client, cfg.Topic); err != nil {
		client.Close()
		return nil, err
	}
	return &KafkaPublisher{client: client, topic: cfg.Topic}, nil
}

// Publish produces the draft keyed by ticket id and waits for the broker ack.
func (p *KafkaPublisher) Publish(ctx context.Context, draft domain.TicketDraft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	record := &kgo.Record{Topic: p.topic, Key: []byte(draft.TicketID), Value: payload}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce draft %s: %w", draft.TicketID, err)
	}
	return nil
}

// Close flushes and closes the underlying client.
func (p *KafkaPublisher) Close() {
	p.client.Close()
}

// KafkaConsumer consumes drafts in a consumer group with auto-commit
// disabled. Offsets are committed only for the contiguous run of processed
// records at the head of each partition, so acking a later record never
// commits past an earlier one that is nacked or still in flight. A nacked
// record is retried in process; if the worker dies first, the group resumes
// behind it and redelivers.
type KafkaConsumer struct {
	client *kgo.Client
	logger *slog.Logger

	// one poll at a time keeps per-partition delivery order in inflight
	pollMu sync.Mutex

	mu       sync.Mutex
	pending  []*kgo.Record
	inflight map[topicPartition][]*inflightRecord

	commitMu  sync.Mutex
	committed map[topicPartition]int64
}

type topicPartition struct {
	topic     string
	partition int32
}

type inflightRecord struct {
	record *kgo.Record
	acked  bool
}

// NewKafkaConsumer joins the consumer group for the draft topic.
func NewKafkaConsumer(cfg KafkaConfig, logger *slog.Logger) (*KafkaConsumer, error) {
	c := &KafkaConsumer{
		logger:    logger,
		inflight:  make(map[topicPartition][]*inflightRecord),
		committed: make(map[topicPartition]int64),
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.ConsumerGroup(cfg.Group),
		kgo.DisableAutoCommit(),
		kgo.OnPartitionsRevoked(c.dropRevoked),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	c.client = client
	return c, nil
}

// Receive blocks until a draft is available. Records that fail to decode are
// acknowledged and skipped: redelivering a poison message forever helps
// nobody, and intake only ever publishes well-formed drafts.
func (c *KafkaConsumer) Receive(ctx context.Context) (Delivery, error) {
	for {
		if delivery, err := c.nextPending(ctx); delivery != nil || err != nil {
			return delivery, err
		}

		c.pollMu.Lock()
		// another worker may have filled pending while this one waited
		if delivery, err := c.nextPending(ctx); delivery != nil || err != nil {
			c.pollMu.Unlock()
			return delivery, err
		}
		fetches := c.client.PollFetches(ctx)
		if err := pollError(ctx, fetches); err != nil {
			c.pollMu.Unlock()
			return nil, err
		}
		c.mu.Lock()
		fetches.EachRecord(func(rec *kgo.Record) {
			c.pending = append(c.pending, rec)
			tp := topicPartition{rec.Topic, rec.Partition}
			c.inflight[tp] = append(c.inflight[tp], &inflightRecord{record: rec})
		})
		c.mu.Unlock()
		c.pollMu.Unlock()
	}
}

// nextPending hands out the oldest pending record, skipping poison records.
// Returns (nil, nil) when nothing is pending.
func (c *KafkaConsumer) nextPending(ctx context.Context) (Delivery, error) {
	for {
		c.mu.Lock()
		if len(c.pending) == 0 {
			c.mu.Unlock()
			return nil, nil
		}
		rec := c.pending[0]
		c.pending = c.pending[1:]

		var draft domain.TicketDraft
		if err := json.Unmarshal(rec.Value, &draft); err != nil {
			commit := c.markAckedLocked(rec)
			c.mu.Unlock()
			c.logger.Error("dropping undecodable queue record",
				"topic", rec.Topic, "partition", rec.Partition, "offset", rec.Offset,
				"error", err.Error(),
			)
			if commit != nil {
				if err := c.commit(ctx, commit); err != nil {
					return nil, fmt.Errorf("commit poison record: %w", err)
				}
			}
			continue
		}
		c.mu.Unlock()
		return &kafkaDelivery{consumer: c, record: rec, draft: draft}, nil
	}
}

// ack marks the record processed and commits whatever became safe.
func (c *KafkaConsumer) ack(ctx context.Context, rec *kgo.Record) error {
	c.mu.Lock()
	commit := c.markAckedLocked(rec)
	c.mu.Unlock()
	if commit == nil {
		return nil
	}
	return c.commit(ctx, commit)
}

// nack returns the record to the head of the in-process queue for another
// attempt. Its offset stays unacked, so no later ack can commit past it.
func (c *KafkaConsumer) nack(rec *kgo.Record) {
	c.mu.Lock()
	c.pending = append([]*kgo.Record{rec}, c.pending...)
	c.mu.Unlock()
}

// markAckedLocked flags the record processed and pops the contiguous run of
// processed records at the head of its partition. It returns the newest
// record of that run, the highest offset safe to commit, or nil while an
// earlier record is still unresolved.
func (c *KafkaConsumer) markAckedLocked(rec *kgo.Record) *kgo.Record {
	tp := topicPartition{rec.Topic, rec.Partition}
	flights := c.inflight[tp]
	for _, f := range flights {
		if f.record.Offset == rec.Offset {
			f.acked = true
			break
		}
	}

	var commit *kgo.Record
	for len(flights) > 0 && flights[0].acked {
		commit = flights[0].record
		flights = flights[1:]
	}
	if len(flights) == 0 {
		delete(c.inflight, tp)
	} else {
		c.inflight[tp] = flights
	}
	return commit
}

// commit advances the group offset. Commits are serialized and deduplicated
// per partition so a slow commit finishing late can never rewind a newer one.
func (c *KafkaConsumer) commit(ctx context.Context, rec *kgo.Record) error {
	c.commitMu.Lock()
	defer c.commitMu.Unlock()

	tp := topicPartition{rec.Topic, rec.Partition}
	if last, ok := c.committed[tp]; ok && last >= rec.Offset {
		return nil
	}
	if err := c.client.CommitRecords(ctx, rec); err != nil {
		return err
	}
	c.committed[tp] = rec.Offset
	return nil
}

// dropRevoked discards local state for partitions that moved to another group
// member. Their uncommitted records are redelivered to the new owner, and the
// stale entries must not gate commits after a future reassignment.
func (c *KafkaConsumer) dropRevoked(_ context.Context, _ *kgo.Client, revoked map[string][]int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for topic, partitions := range revoked {
		for _, partition := range partitions {
			tp := topicPartition{topic, partition}
			delete(c.inflight, tp)
			kept := c.pending[:0]
			for _, rec := range c.pending {
				if rec.Topic == topic && rec.Partition == partition {
					continue
				}
				kept = append(kept, rec)
			}
			c.pending = kept
		}
	}
}

// Close leaves the group and closes the client.
func (c *KafkaConsumer) Close() {
	c.client.Close()
}

func pollError(ctx context.Context, fetches kgo.Fetches) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, fe := range fetches.Errors() {
		if errors.Is(fe.Err, context.Canceled) || errors.Is(fe.Err, context.DeadlineExceeded) {
			return fe.Err
		}
		return fmt.Errorf("poll %s/%d: %w", fe.Topic, fe.Partition, fe.Err)
	}
	return nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopics(ctx, 1, 1, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, res := range resp {
		if res.Err != nil && !errors.Is(res.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", res.Topic, res.Err)
		}
	}
	return nil
}

type kafkaDelivery struct {
	consumer *KafkaConsumer
	record   *kgo.Record
	draft    domain.TicketDraft
}

func (d *kafkaDelivery) Draft() domain.TicketDraft { return d.draft }

// Ack marks the record processed; the offset is committed once every earlier
// record on the partition is processed too.
func (d *kafkaDelivery) Ack(ctx context.Context) error {
	if err := d.consumer.ack(ctx, d.record); err != nil {
		return fmt.Errorf("commit draft %s: %w", d.draft.TicketID, err)
	}
	return nil
}

// Nack puts the draft back in line for in-process retry. The offset stays
// uncommitted, so a worker crash also leads to redelivery after rebalance.
func (d *kafkaDelivery) Nack(context.Context) error {
	d.consumer.nack(d.record)
	return nil
}
