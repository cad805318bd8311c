// Command dlq-reprocess перечитывает scm.dlq и возвращает сообщения в
// исходные топики: входящую телеметрию в scm.tracking.inbound, доменные
// события outbox в scm.domain.events. Без -execute только показывает,
// что было бы отправлено.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/scm/internal/messaging/kafka"
)

const clientID = "scm-dlq-reprocess"

// deps: подключения к Kafka; closeAll освобождает всё, что было открыто.
type deps struct {
	offsets  offsetReader
	opener   partitionOpener
	sink     replaySink
	closeAll func()
}

// consumerOpener приводит sarama.Consumer к partitionOpener.
type consumerOpener struct {
	consumer sarama.Consumer
}

func (o consumerOpener) ConsumePartition(topic string, partition int32, offset int64) (partitionReader, error) {
	return o.consumer.ConsumePartition(topic, partition, offset)
}

var connect = func(opts options) (deps, error) {
	cfg := sarama.NewConfig()
	cfg.ClientID = clientID
	cfg.Consumer.Return.Errors = true

	client, err := sarama.NewClient(opts.brokers, cfg)
	if err != nil {
		return deps{}, fmt.Errorf("create kafka client: %w", err)
	}
	consumer, err := sarama.NewConsumerFromClient(client)
	if err != nil {
		_ = client.Close()
		return deps{}, fmt.Errorf("create kafka consumer: %w", err)
	}

	d := deps{
		offsets: client,
		opener:  consumerOpener{consumer: consumer},
		closeAll: func() {
			_ = consumer.Close()
			_ = client.Close()
		},
	}
	if !opts.execute {
		return d, nil
	}

	producer, err := kafka.NewProducer(opts.brokers)
	if err != nil {
		d.closeAll()
		return deps{}, err
	}
	closeReaders := d.closeAll
	d.sink = producer
	d.closeAll = func() {
		_ = producer.Close()
		closeReaders()
	}
	return d, nil
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Getenv, os.Stderr))
}

func run(ctx context.Context, args []string, getenv func(string) string, stderr io.Writer) int {
	opts, err := parseOptions(args, getenv, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "dlq-reprocess: %v\n", err)
		return 2
	}

	logger := log.WithField("component", "dlq-reprocess")
	logger.WithFields(log.Fields{
		"topic":       opts.dlqTopic,
		"kind":        opts.kind,
		"limit":       opts.limit,
		"mode":        opts.mode(),
		"from_newest": opts.tail,
	}).Info("starting dlq replay")

	d, err := connect(opts)
	if err != nil {
		fmt.Fprintf(stderr, "dlq-reprocess: %v\n", err)
		return 1
	}
	defer d.closeAll()

	s := &scanner{opts: opts, offsets: d.offsets, opener: d.opener, sink: d.sink, logger: logger}
	if _, err := s.run(ctx); err != nil {
		fmt.Fprintf(stderr, "dlq-reprocess: %v\n", err)
		return 1
	}
	return 0
}
