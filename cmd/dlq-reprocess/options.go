package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/scm/internal/messaging/kafka"
)

// Что именно переигрывать.
const (
	kindTracking = "tracking"
	kindOutbox   = "outbox"
	kindAll      = "all"
)

type options struct {
	brokers       []string
	dlqTopic      string
	trackingTopic string
	eventsTopic   string
	kind          string
	limit         int
	execute       bool
	tail          bool
	validate      bool
	idle          time.Duration
}

func (o options) wants(kind string) bool {
	return o.kind == kindAll || o.kind == kind
}

func (o options) mode() string {
	if o.execute {
		return "execute"
	}
	return "dry-run"
}

// parseOptions читает флаги; брокеры без -brokers берутся из SCM_KAFKA_BROKERS.
func parseOptions(args []string, getenv func(string) string, stderr io.Writer) (options, error) {
	opts := options{}
	var brokers string

	fs := flag.NewFlagSet("dlq-reprocess", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&brokers, "brokers", "", "comma-separated Kafka brokers (default $SCM_KAFKA_BROKERS)")
	fs.StringVar(&opts.dlqTopic, "source-topic", kafka.TopicDeadLetterQueue, "dead letter topic to scan")
	fs.StringVar(&opts.trackingTopic, "tracking-topic", kafka.TopicTrackingInbound, "target for tracking messages that lost their original topic")
	fs.StringVar(&opts.eventsTopic, "events-topic", kafka.TopicDomainEvents, "target for outbox domain events")
	fs.StringVar(&opts.kind, "kind", kindAll, "tracking | outbox | all")
	fs.IntVar(&opts.limit, "limit", 100, "max messages to scan")
	fs.BoolVar(&opts.execute, "execute", false, "publish replays; without it only candidates are logged")
	fs.BoolVar(&opts.tail, "from-newest", false, "scan the last -limit messages instead of the oldest")
	fs.BoolVar(&opts.validate, "validate", true, "skip tracking messages the service would reject again")
	fs.DurationVar(&opts.idle, "idle-timeout", 2*time.Second, "stop reading a partition after this much silence")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if strings.TrimSpace(brokers) == "" {
		brokers = getenv("SCM_KAFKA_BROKERS")
	}
	opts.brokers = splitList(brokers)
	opts.kind = strings.ToLower(strings.TrimSpace(opts.kind))
	return opts, opts.check()
}

func (o options) check() error {
	var errs []error
	if len(o.brokers) == 0 {
		errs = append(errs, errors.New("kafka brokers are required (-brokers or SCM_KAFKA_BROKERS)"))
	}
	for flagName, topic := range map[string]string{
		"source-topic":   o.dlqTopic,
		"tracking-topic": o.trackingTopic,
		"events-topic":   o.eventsTopic,
	} {
		if strings.TrimSpace(topic) == "" {
			errs = append(errs, fmt.Errorf("-%s must not be empty", flagName))
		}
	}
	if o.kind != kindTracking && o.kind != kindOutbox && o.kind != kindAll {
		errs = append(errs, fmt.Errorf("-kind %q: want tracking, outbox or all", o.kind))
	}
	if o.limit <= 0 {
		errs = append(errs, errors.New("-limit must be > 0"))
	}
	if o.idle <= 0 {
		errs = append(errs, errors.New("-idle-timeout must be > 0"))
	}
	return errors.Join(errs...)
}

func splitList(raw string) []string {
	var out []string
	for item := range strings.SplitSeq(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
