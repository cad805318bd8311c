// Command scm-report запрашивает отчёт у gRPC-сервиса SCM и печатает его
// в JSON.
//
//	scm-report [-addr host:port] [-from DATE] [-to DATE] [-contractor ID] orders|tracking|carriers|warehouses|kpi|dashboard
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/vladislavdragonenkov/scm/internal/report"
	scmv1 "github.com/vladislavdragonenkov/scm/proto/scm/v1"
)

const envGRPCAddr = "SCM_GRPC_ADDR"

// fetch вызывает одну RPC и возвращает ответ для печати.
type fetch func(ctx context.Context, c scmv1.ReportServiceClient, req *scmv1.ReportRequest) (any, error)

var reports = map[string]fetch{
	"orders": func(ctx context.Context, c scmv1.ReportServiceClient, req *scmv1.ReportRequest) (any, error) {
		return c.OrderStatus(ctx, req)
	},
	"tracking": func(ctx context.Context, c scmv1.ReportServiceClient, req *scmv1.ReportRequest) (any, error) {
		return c.CargoTracking(ctx, req)
	},
	"carriers": func(ctx context.Context, c scmv1.ReportServiceClient, req *scmv1.ReportRequest) (any, error) {
		return c.CarrierEfficiency(ctx, req)
	},
	"warehouses": func(ctx context.Context, c scmv1.ReportServiceClient, req *scmv1.ReportRequest) (any, error) {
		return c.WarehouseLoad(ctx, req)
	},
	"kpi": func(ctx context.Context, c scmv1.ReportServiceClient, req *scmv1.ReportRequest) (any, error) {
		return c.KPI(ctx, req)
	},
	"dashboard": func(ctx context.Context, c scmv1.ReportServiceClient, _ *scmv1.ReportRequest) (any, error) {
		return c.Dashboard(ctx, &scmv1.DashboardRequest{})
	},
}

var dial = func(target string) (*grpc.ClientConn, error) {
	return grpc.NewClient(target, grpc.WithTransportCredentials(insecure.NewCredentials()))
}

type request struct {
	addr    string
	name    string
	filter  *scmv1.ReportRequest
	timeout time.Duration
	compact bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Getenv, os.Stdout, os.Stderr))
}

func run(args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	req, err := parseArgs(args, getenv, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "scm-report: %v\n", err)
		return 2
	}

	conn, err := dial(req.addr)
	if err != nil {
		fmt.Fprintf(stderr, "scm-report: dial %s: %v\n", req.addr, err)
		return 1
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), req.timeout)
	defer cancel()

	resp, err := reports[req.name](ctx, scmv1.NewReportServiceClient(conn), req.filter)
	if err != nil {
		st := status.Convert(err)
		fmt.Fprintf(stderr, "scm-report: %s: %s: %s\n", req.name, st.Code(), st.Message())
		return 1
	}

	enc := json.NewEncoder(stdout)
	if !req.compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(resp); err != nil {
		fmt.Fprintf(stderr, "scm-report: encode: %v\n", err)
		return 1
	}
	return 0
}

func parseArgs(args []string, getenv func(string) string, stderr io.Writer) (request, error) {
	req := request{filter: &scmv1.ReportRequest{}}
	var from, to string
	var contractor int64

	fs := flag.NewFlagSet("scm-report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&req.addr, "addr", "", "gRPC address (default $"+envGRPCAddr+" or localhost:50051)")
	fs.StringVar(&from, "from", "", "period start, RFC 3339 or YYYY-MM-DD")
	fs.StringVar(&to, "to", "", "period end, RFC 3339 or YYYY-MM-DD (a date means end of day)")
	fs.Int64Var(&contractor, "contractor", 0, "only rows involving this contractor")
	fs.DurationVar(&req.timeout, "timeout", 10*time.Second, "RPC deadline")
	fs.BoolVar(&req.compact, "compact", false, "print JSON on one line")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: scm-report [flags] %s\n", strings.Join(slices.Sorted(maps.Keys(reports)), "|"))
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return req, err
	}

	if fs.NArg() != 1 {
		return req, errors.New("exactly one report name is required")
	}
	req.name = strings.ToLower(fs.Arg(0))
	if _, ok := reports[req.name]; !ok {
		return req, fmt.Errorf("unknown report %q", fs.Arg(0))
	}

	req.addr = firstNonBlank(req.addr, getenv(envGRPCAddr), "localhost:50051")
	if req.timeout <= 0 {
		return req, errors.New("-timeout must be > 0")
	}

	var errs []error
	if from != "" {
		ts, err := report.ParseBound(from, false)
		if err != nil {
			errs = append(errs, fmt.Errorf("-from: %w", err))
		}
		req.filter.DateFrom = &ts
	}
	if to != "" {
		ts, err := report.ParseBound(to, true)
		if err != nil {
			errs = append(errs, fmt.Errorf("-to: %w", err))
		}
		req.filter.DateTo = &ts
	}
	if contractor < 0 {
		errs = append(errs, errors.New("-contractor must be > 0"))
	}
	if contractor > 0 {
		req.filter.ContractorId = &contractor
	}
	return req, errors.Join(errs...)
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
