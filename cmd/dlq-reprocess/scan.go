package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

const headerReplayedFrom = "x-replayed-from"

// offsetReader реализует sarama.Client.
type offsetReader interface {
	Partitions(topic string) ([]int32, error)
	GetOffset(topic string, partition int32, at int64) (int64, error)
}

type partitionReader interface {
	Messages() <-chan *sarama.ConsumerMessage
	Errors() <-chan *sarama.ConsumerError
	Close() error
}

type partitionOpener interface {
	ConsumePartition(topic string, partition int32, offset int64) (partitionReader, error)
}

// replaySink реализует kafka.Producer.
type replaySink interface {
	PublishRaw(topic, key string, body []byte, headers ...sarama.RecordHeader) error
}

// tally: итог прогона.
type tally struct {
	scanned  int
	replayed int
	skipped  int
	perKind  map[string]int
}

func (t *tally) merge(o tally) {
	t.scanned += o.scanned
	t.replayed += o.replayed
	t.skipped += o.skipped
	for kind, n := range o.perKind {
		t.hit(kind, n)
	}
}

func (t *tally) hit(kind string, n int) {
	if t.perKind == nil {
		t.perKind = make(map[string]int)
	}
	t.perKind[kind] += n
}

// scanner читает DLQ по партициям в порядке их номеров, пока не наберёт
// opts.limit сообщений.
type scanner struct {
	opts    options
	offsets offsetReader
	opener  partitionOpener
	sink    replaySink
	logger  *log.Entry
}

func (s *scanner) run(ctx context.Context) (tally, error) {
	var total tally
	if s.offsets == nil || s.opener == nil {
		return total, errors.New("kafka client and consumer are required")
	}
	if s.opts.execute && s.sink == nil {
		return total, errors.New("producer is required in execute mode")
	}

	partitions, err := s.offsets.Partitions(s.opts.dlqTopic)
	if err != nil {
		return total, fmt.Errorf("list partitions of %s: %w", s.opts.dlqTopic, err)
	}
	if len(partitions) == 0 {
		s.logger.WithField("topic", s.opts.dlqTopic).Warn("dlq topic has no partitions")
		return total, nil
	}
	slices.Sort(partitions)

	for _, p := range partitions {
		left := s.opts.limit - total.scanned
		if left <= 0 {
			break
		}
		part, err := s.partition(ctx, p, left)
		total.merge(part)
		if err != nil {
			return total, err
		}
	}

	s.logger.WithFields(log.Fields{
		"mode":     s.opts.mode(),
		"scanned":  total.scanned,
		"replayed": total.replayed,
		"skipped":  total.skipped,
		"tracking": total.perKind[kindTracking],
		"outbox":   total.perKind[kindOutbox],
	}).Info("dlq replay finished")
	return total, nil
}

// partition читает не более limit сообщений, записанных до запуска.
// Чтение прекращается и при тишине дольше opts.idle.
func (s *scanner) partition(ctx context.Context, p int32, limit int) (tally, error) {
	var t tally

	first, err := s.offsets.GetOffset(s.opts.dlqTopic, p, sarama.OffsetOldest)
	if err != nil {
		return t, fmt.Errorf("oldest offset of partition %d: %w", p, err)
	}
	end, err := s.offsets.GetOffset(s.opts.dlqTopic, p, sarama.OffsetNewest)
	if err != nil {
		return t, fmt.Errorf("newest offset of partition %d: %w", p, err)
	}
	if end <= first {
		return t, nil
	}
	start := first
	if s.opts.tail {
		start = max(end-int64(limit), first)
	}

	reader, err := s.opener.ConsumePartition(s.opts.dlqTopic, p, start)
	if err != nil {
		return t, fmt.Errorf("consume partition %d: %w", p, err)
	}
	defer func() { _ = reader.Close() }()

	idle := time.NewTimer(s.opts.idle)
	defer idle.Stop()

	for t.scanned < limit {
		select {
		case <-ctx.Done():
			return t, ctx.Err()
		case <-idle.C:
			return t, nil
		case cerr := <-reader.Errors():
			if cerr != nil {
				return t, fmt.Errorf("partition %d: %w", p, cerr)
			}
		case msg, ok := <-reader.Messages():
			if !ok || msg == nil || msg.Offset >= end {
				return t, nil
			}
			idle.Reset(s.opts.idle)
			t.scanned++

			if err := s.handle(msg, &t); err != nil {
				return t, err
			}
			if msg.Offset+1 >= end {
				return t, nil
			}
		}
	}
	return t, nil
}

func (s *scanner) handle(msg *sarama.ConsumerMessage, t *tally) error {
	entry := s.logger.WithFields(log.Fields{"partition": msg.Partition, "offset": msg.Offset})

	r, err := decodeLetter(msg, s.opts)
	if err != nil {
		t.skipped++
		entry.WithError(err).Warn("skip dlq message")
		return nil
	}
	if !s.opts.wants(r.kind) {
		t.skipped++
		return nil
	}

	entry = entry.WithFields(log.Fields{"kind": r.kind, "target_topic": r.topic, "key": r.key})
	if s.opts.execute {
		header := sarama.RecordHeader{Key: []byte(headerReplayedFrom), Value: []byte(s.opts.dlqTopic)}
		if err := s.sink.PublishRaw(r.topic, r.key, r.value, header); err != nil {
			return fmt.Errorf("replay offset %d: %w", msg.Offset, err)
		}
		entry.Debug("dlq message replayed")
	} else {
		entry.Info("dlq replay candidate")
	}
	t.replayed++
	t.hit(r.kind, 1)
	return nil
}
