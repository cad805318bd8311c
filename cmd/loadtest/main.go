// Command loadtest нагружает gRPC-сервис отчётов SCM сценариями из
// фильтруемых отчётов и сводки дашборда и печатает распределение задержек.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	scmv1 "github.com/vladislavdragonenkov/scm/proto/scm/v1"
)

// Коды выхода.
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(stderr, "loadtest: %v\n", err)
		return exitUsage
	}

	clients, closeAll, err := dial(opts.target, opts.conns)
	if err != nil {
		fmt.Fprintf(stderr, "loadtest: %v\n", err)
		return exitFailed
	}
	defer closeAll()

	rec := newRecorder()
	started := time.Now()
	drive(clients, opts, rec)
	result := rec.summarize(opts, started, time.Since(started))

	printSummary(stdout, result, opts.budget())
	if opts.output != "" {
		if err := writeSummary(opts.output, result); err != nil {
			fmt.Fprintf(stderr, "loadtest: %v\n", err)
			return exitFailed
		}
	}
	if result.Scenarios.Errors > 0 {
		return exitFailed
	}
	return exitOK
}

// dial открывает n соединений; сценарии распределяются по ним по кругу.
func dial(target string, n int) ([]scmv1.ReportServiceClient, func(), error) {
	conns := make([]*grpc.ClientConn, 0, n)
	closeAll := func() {
		for _, conn := range conns {
			_ = conn.Close()
		}
	}

	clients := make([]scmv1.ReportServiceClient, 0, n)
	for range n {
		conn, err := grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("dial %s: %w", target, err)
		}
		conns = append(conns, conn)
		clients = append(clients, scmv1.NewReportServiceClient(conn))
	}
	return clients, closeAll, nil
}
