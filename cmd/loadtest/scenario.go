package main

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	scmv1 "github.com/vladislavdragonenkov/scm/proto/scm/v1"
)

type rpc struct {
	name string
	call func(ctx context.Context, c scmv1.ReportServiceClient, req *scmv1.ReportRequest) error
}

func discard[T any](_ T, err error) error { return err }

var reportRPCs = []rpc{
	{"OrderStatus", func(ctx context.Context, c scmv1.ReportServiceClient, req *scmv1.ReportRequest) error {
		return discard(c.OrderStatus(ctx, req))
	}},
	{"CargoTracking", func(ctx context.Context, c scmv1.ReportServiceClient, req *scmv1.ReportRequest) error {
		return discard(c.CargoTracking(ctx, req))
	}},
	{"CarrierEfficiency", func(ctx context.Context, c scmv1.ReportServiceClient, req *scmv1.ReportRequest) error {
		return discard(c.CarrierEfficiency(ctx, req))
	}},
	{"WarehouseLoad", func(ctx context.Context, c scmv1.ReportServiceClient, req *scmv1.ReportRequest) error {
		return discard(c.WarehouseLoad(ctx, req))
	}},
	{"KPI", func(ctx context.Context, c scmv1.ReportServiceClient, req *scmv1.ReportRequest) error {
		return discard(c.KPI(ctx, req))
	}},
}

// Dashboard фильтров не принимает.
var dashboardRPC = rpc{"Dashboard", func(ctx context.Context, c scmv1.ReportServiceClient, _ *scmv1.ReportRequest) error {
	return discard(c.Dashboard(ctx, &scmv1.DashboardRequest{}))
}}

func plan(mode loadMode) []rpc {
	switch mode {
	case modeDashboard:
		return []rpc{dashboardRPC}
	case modeReports:
		return reportRPCs
	default:
		return append(append([]rpc(nil), reportRPCs...), dashboardRPC)
	}
}

// filterFor строит фильтр n-го сценария: подрядчики чередуются по кругу,
// окно дат заканчивается в now.
func filterFor(opts options, n int, now time.Time) *scmv1.ReportRequest {
	req := &scmv1.ReportRequest{}
	if len(opts.contractors) > 0 {
		id := opts.contractors[n%len(opts.contractors)]
		req.ContractorId = &id
	}
	if opts.window > 0 {
		to := now.UTC()
		from := to.Add(-opts.window)
		req.DateFrom, req.DateTo = &from, &to
	}
	return req
}

// scenario вызывает RPC плана по очереди и останавливается на первой ошибке.
func scenario(client scmv1.ReportServiceClient, opts options, n int, rec *recorder) (err error) {
	started := time.Now()
	defer func() { rec.observe(scenarioKey, time.Since(started), codeOf(err)) }()

	req := filterFor(opts, n, started)
	for _, r := range plan(opts.mode) {
		if err := timedCall(client, opts.rpcTimeout, r, req, rec); err != nil {
			return fmt.Errorf("%s: %w", r.name, err)
		}
	}
	return nil
}

func timedCall(client scmv1.ReportServiceClient, timeout time.Duration, r rpc, req *scmv1.ReportRequest, rec *recorder) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	started := time.Now()
	err := r.call(ctx, client, req)
	rec.observe(r.name, time.Since(started), codeOf(err))
	return err
}

// codeOf достаёт gRPC-код и через обёртки fmt.Errorf.
func codeOf(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if s, ok := status.FromError(err); ok {
		return s.Code()
	}
	return codes.Unknown
}

// drive запускает сценарии не более opts.workers одновременно, пока не
// исчерпан бюджет. Ошибки сценариев только учитываются в recorder.
func drive(clients []scmv1.ReportServiceClient, opts options, rec *recorder) {
	var g errgroup.Group
	g.SetLimit(opts.workers)

	var deadline time.Time
	if opts.runFor > 0 {
		deadline = time.Now().Add(opts.runFor)
	}
	for n := 0; more(opts, n, deadline); n++ {
		client := clients[n%len(clients)]
		g.Go(func() error {
			_ = scenario(client, opts, n, rec)
			return nil
		})
	}
	_ = g.Wait()
}

func more(opts options, n int, deadline time.Time) bool {
	if deadline.IsZero() {
		return n < opts.total
	}
	if opts.totalSet && n >= opts.total {
		return false
	}
	return time.Now().Before(deadline)
}
