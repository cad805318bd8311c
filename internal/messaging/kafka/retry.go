package kafka

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent помечает ошибку, которую повтор не исправит: сообщение сразу
// уходит в DLQ.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func IsPermanent(err error) bool {
	var perm *permanentError
	return errors.As(err, &perm)
}

// priorAttempts читает x-retry-count: сколько попыток уже сделал
// предыдущий обработчик.
func priorAttempts(msg *sarama.ConsumerMessage) int {
	for _, h := range msg.Headers {
		if h == nil || string(h.Key) != HeaderRetryCount {
			continue
		}
		if n, err := strconv.Atoi(string(h.Value)); err == nil {
			return n
		}
	}
	return 0
}

// deliver вызывает handler, пока не кончатся попытки, и перекладывает
// сообщение в DLQ. nil означает, что offset можно коммитить.
func (c *Consumer) deliver(ctx context.Context, msg *sarama.ConsumerMessage) error {
	attempt := priorAttempts(msg)
	var err error
	for {
		if err = c.handler(ctx, msg); err == nil {
			return nil
		}
		if IsPermanent(err) || attempt+1 >= c.maxRetries {
			break
		}
		attempt++

		c.logger.WithError(err).WithFields(log.Fields{
			"topic":       msg.Topic,
			"retry_count": attempt,
			"max_retries": c.maxRetries,
		}).Warn("message processing failed, will retry")

		if err := sleepCtx(ctx, c.retryDelay); err != nil {
			return err
		}
	}

	if c.dlq == nil {
		return err
	}
	if dlqErr := c.deadLetter(msg, err, attempt); dlqErr != nil {
		return fmt.Errorf("failed to send to DLQ: %w", dlqErr)
	}
	c.metrics.RecordInboundMessage("dlq")
	c.logger.WithFields(log.Fields{
		"topic":       msg.Topic,
		"offset":      msg.Offset,
		"retry_count": attempt,
		"permanent":   IsPermanent(err),
	}).Info("message sent to DLQ")
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// inboundLetter: запись DLQ для входящего сообщения. Исходное тело
// хранится строкой без изменений, чтобы dlq-reprocess вернул его как есть.
type inboundLetter struct {
	OriginalTopic     string `json:"original_topic"`
	OriginalPartition int32  `json:"original_partition"`
	OriginalOffset    int64  `json:"original_offset"`
	OriginalKey       string `json:"original_key"`
	OriginalValue     string `json:"original_value"`
	ErrorMessage      string `json:"error_message"`
	FailedAt          string `json:"failed_at"`
	RetryCount        int    `json:"retry_count"`
}

func (c *Consumer) deadLetter(msg *sarama.ConsumerMessage, cause error, attempts int) error {
	failedAt := time.Now().UTC().Format(time.RFC3339)
	letter := inboundLetter{
		OriginalTopic:     msg.Topic,
		OriginalPartition: msg.Partition,
		OriginalOffset:    msg.Offset,
		OriginalKey:       string(msg.Key),
		OriginalValue:     string(msg.Value),
		ErrorMessage:      cause.Error(),
		FailedAt:          failedAt,
		RetryCount:        attempts,
	}
	header := func(k, v string) sarama.RecordHeader {
		return sarama.RecordHeader{Key: []byte(k), Value: []byte(v)}
	}
	return c.dlq.PublishEvent(TopicDeadLetterQueue, letter.OriginalKey, letter,
		header(HeaderOriginalTopic, msg.Topic),
		header(HeaderErrorMessage, letter.ErrorMessage),
		header(HeaderFailedAt, failedAt),
		header(HeaderRetryCount, strconv.Itoa(attempts)),
	)
}
