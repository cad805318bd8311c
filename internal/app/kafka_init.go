package app

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/scm/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/scm/internal/metrics"
)

// splitBrokers разбирает список брокеров через запятую, пропуская пустые элементы.
func splitBrokers(brokers string) []string {
	parts := strings.Split(brokers, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

// initKafkaProducer инициализирует Kafka producer если brokers не пустой.
// Возвращает nil, nil если brokers пустой.
func initKafkaProducer(brokers string, logger *log.Entry) (*kafka.Producer, error) {
	brokerList := splitBrokers(brokers)
	if len(brokerList) == 0 {
		return nil, nil
	}

	producer, err := kafka.NewProducer(brokerList)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil, err
	}

	logger.WithField("brokers", brokerList).Info("kafka producer initialized")
	return producer, nil
}

// initTrackingConsumer подписывается на входящую телеметрию. Сообщения,
// которые не удалось обработать, уходят в scm.dlq через producer.
func initTrackingConsumer(cfg Config, appender kafka.EventAppender, producer *kafka.Producer, m *metrics.Metrics, logger *log.Entry) (*kafka.Consumer, error) {
	brokerList := splitBrokers(cfg.KafkaBrokers)
	if len(brokerList) == 0 {
		return nil, nil
	}

	group := cfg.KafkaConsumerGroup
	if group == "" {
		group = kafka.DefaultConsumerGroup
	}

	consumerLogger := logger.WithField("layer", "tracking-ingest")
	opts := []kafka.ConsumerOption{
		kafka.WithConsumerLogger(consumerLogger),
		kafka.WithConsumerMetrics(m),
	}
	if producer != nil {
		opts = append(opts, kafka.WithDLQ(producer))
	}

	handler := kafka.NewTrackingHandler(appender, m, consumerLogger)
	return kafka.NewConsumer(brokerList, group, []string{kafka.TopicTrackingInbound}, handler, opts...)
}

// closeKafkaProducer закрывает Kafka producer если он не nil.
func closeKafkaProducer(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}

// stopTrackingConsumer останавливает consumer если он не nil.
func stopTrackingConsumer(consumer *kafka.Consumer, logger *log.Entry) {
	if consumer == nil {
		return
	}
	if err := consumer.Stop(); err != nil {
		logger.WithError(err).Warn("failed to stop tracking consumer")
	}
}
