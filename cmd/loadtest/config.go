package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

type loadMode string

const (
	modeDashboard loadMode = "dashboard" // только Dashboard
	modeReports   loadMode = "reports"   // пять фильтруемых отчётов
	modeMixed     loadMode = "mixed"     // отчёты, затем Dashboard
)

// options: параметры прогона. Без -duration выполняется ровно total
// сценариев; с -duration прогон ограничен временем, а total учитывается,
// только если задан явно.
type options struct {
	target      string
	total       int
	totalSet    bool
	runFor      time.Duration
	workers     int
	conns       int
	rpcTimeout  time.Duration
	mode        loadMode
	contractors []int64
	window      time.Duration
	output      string
}

func parseOptions(args []string, stderr io.Writer) (options, error) {
	opts := options{mode: modeMixed}

	fs := flag.NewFlagSet("loadtest", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.target, "addr", "localhost:50051", "report service gRPC address")
	fs.IntVar(&opts.total, "total", 400, "scenarios to run; with -duration acts as an upper bound when set")
	fs.DurationVar(&opts.runFor, "duration", 0, "run for this long instead of a fixed count (e.g. 10m)")
	fs.IntVar(&opts.workers, "concurrency", 40, "scenarios in flight")
	fs.IntVar(&opts.conns, "connections", 20, "gRPC client connections shared by workers")
	fs.DurationVar(&opts.rpcTimeout, "timeout", 5*time.Second, "deadline of a single RPC")
	fs.DurationVar(&opts.window, "window", 0, "date window ending now added to report filters (e.g. 720h)")
	fs.StringVar(&opts.output, "output", "", "write the JSON summary to this file")
	fs.Func("mode", "dashboard | reports | mixed (default mixed)", func(v string) error {
		mode, err := parseMode(v)
		opts.mode = mode
		return err
	})
	fs.Func("contractors", "comma-separated contractor ids rotated across scenarios", func(v string) error {
		ids, err := parseContractorIDs(v)
		opts.contractors = ids
		return err
	})

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	fs.Visit(func(f *flag.Flag) {
		opts.totalSet = opts.totalSet || f.Name == "total"
	})
	return opts, opts.validate()
}

// validate возвращает все нарушения сразу.
func (o options) validate() error {
	var errs []error
	check := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, errors.New(msg))
		}
	}
	check(o.runFor >= 0, "duration must be >= 0")
	check(o.runFor > 0 || o.total > 0, "total must be > 0 without duration")
	check(!(o.runFor > 0 && o.totalSet) || o.total > 0, "explicit total must be > 0")
	check(o.workers > 0, "concurrency must be > 0")
	check(o.conns > 0, "connections must be > 0")
	check(o.rpcTimeout > 0, "timeout must be > 0")
	check(o.window >= 0, "window must be >= 0")
	return errors.Join(errs...)
}

// budget описывает ограничение прогона для сводки.
func (o options) budget() string {
	switch {
	case o.runFor <= 0:
		return fmt.Sprintf("%d scenarios", o.total)
	case o.totalSet:
		return fmt.Sprintf("%s or %d scenarios", o.runFor, o.total)
	default:
		return o.runFor.String()
	}
}

func parseMode(value string) (loadMode, error) {
	mode := loadMode(strings.ToLower(strings.TrimSpace(value)))
	switch mode {
	case modeDashboard, modeReports, modeMixed:
		return mode, nil
	}
	return "", fmt.Errorf("unknown mode %q", value)
}

func parseContractorIDs(raw string) ([]int64, error) {
	var ids []int64
	for part := range strings.SplitSeq(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid contractor id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
