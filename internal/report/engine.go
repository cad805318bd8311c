package report

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/vladislavdragonenkov/scm/internal/domain"
	"github.com/vladislavdragonenkov/scm/internal/metrics"
)

// Названия отчётов для метрик и логов.
const (
	ReportOrderStatus       = "order_status"
	ReportCargoTracking     = "cargo_tracking"
	ReportCarrierEfficiency = "carrier_efficiency"
	ReportWarehouseLoad     = "warehouse_load"
	ReportKPI               = "kpi"
	ReportDashboard         = "dashboard"
)

const (
	snapshotKey     = "snapshot"
	snapshotTimeout = 10 * time.Second
)

// Engine загружает снимок данных из репозиториев и строит по нему отчёты.
// Параллельные запросы отчётов разделяют одну загрузку снимка.
type Engine struct {
	repos   domain.Repositories
	logger  *log.Entry
	metrics *metrics.Metrics
	group   singleflight.Group
}

// Option настраивает Engine.
type Option func(*Engine)

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics задаёт метрики; nil отключает запись.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine создаёт движок отчётов поверх репозиториев.
func NewEngine(repos domain.Repositories, opts ...Option) *Engine {
	e := &Engine{
		repos:  repos,
		logger: log.WithField("component", "report-engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Snapshot загружает все семь списков параллельно. Если загрузка уже идёт,
// вызывающий получает её результат.
func (e *Engine) Snapshot(ctx context.Context) (*Snapshot, error) {
	ch := e.group.DoChan(snapshotKey, func() (any, error) {
		// Загрузка не должна обрываться отменой контекста одного из ожидающих.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), snapshotTimeout)
		defer cancel()
		return e.load(loadCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		e.metrics.RecordSnapshotLoad(res.Shared)
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	}
}

func (e *Engine) load(ctx context.Context) (*Snapshot, error) {
	var data Data
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		data.Contractors, err = e.repos.Contractors.List(gctx, domain.ContractorFilter{})
		return wrapLoad("contractors", err)
	})
	g.Go(func() (err error) {
		data.Warehouses, err = e.repos.Warehouses.List(gctx, domain.WarehouseFilter{})
		return wrapLoad("warehouses", err)
	})
	g.Go(func() (err error) {
		data.Transport, err = e.repos.Transport.List(gctx, domain.TransportFilter{})
		return wrapLoad("transport", err)
	})
	g.Go(func() (err error) {
		data.Orders, err = e.repos.Orders.List(gctx, domain.OrderFilter{})
		return wrapLoad("orders", err)
	})
	g.Go(func() (err error) {
		data.Cargos, err = e.repos.Cargos.List(gctx, domain.CargoFilter{})
		return wrapLoad("cargos", err)
	})
	g.Go(func() (err error) {
		data.RouteLegs, err = e.repos.RouteLegs.List(gctx, domain.RouteLegFilter{})
		return wrapLoad("route legs", err)
	})
	g.Go(func() (err error) {
		data.Events, err = e.repos.Events.List(gctx, domain.TrackingEventFilter{})
		return wrapLoad("tracking events", err)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return NewSnapshot(data), nil
}

func wrapLoad(what string, err error) error {
	if err != nil {
		return fmt.Errorf("load %s: %w", what, err)
	}
	return nil
}

// OrderStatus строит отчёт по статусам заказов.
func (e *Engine) OrderStatus(ctx context.Context, f Filter) ([]OrderStatusItem, error) {
	return run(ctx, e, ReportOrderStatus, f, BuildOrderStatus)
}

// CargoTracking строит отчёт отслеживания грузов.
func (e *Engine) CargoTracking(ctx context.Context, f Filter) ([]CargoTrackingItem, error) {
	return run(ctx, e, ReportCargoTracking, f, BuildCargoTracking)
}

// CarrierEfficiency строит отчёт эффективности перевозчиков.
func (e *Engine) CarrierEfficiency(ctx context.Context, f Filter) ([]CarrierEfficiencyItem, error) {
	return run(ctx, e, ReportCarrierEfficiency, f, BuildCarrierEfficiency)
}

// WarehouseLoad строит отчёт загрузки складов.
func (e *Engine) WarehouseLoad(ctx context.Context, f Filter) ([]WarehouseLoadItem, error) {
	return run(ctx, e, ReportWarehouseLoad, f, BuildWarehouseLoad)
}

// KPI строит сводный KPI-отчёт.
func (e *Engine) KPI(ctx context.Context, f Filter) (KPIReport, error) {
	return run(ctx, e, ReportKPI, f, BuildKPI)
}

// Dashboard считает сводку главной страницы.
func (e *Engine) Dashboard(ctx context.Context) (DashboardStats, error) {
	return run(ctx, e, ReportDashboard, Filter{}, func(s *Snapshot, _ Filter) DashboardStats {
		return BuildDashboard(s)
	})
}

func run[T any](ctx context.Context, e *Engine, name string, f Filter, build func(*Snapshot, Filter) T) (result T, err error) {
	started := time.Now()
	defer func() {
		e.metrics.RecordReport(name, time.Since(started), err)
		if err != nil {
			e.logger.WithError(err).WithField("report", name).Warn("report failed")
		}
	}()

	f, err = f.Normalize()
	if err != nil {
		return result, err
	}
	snapshot, err := e.Snapshot(ctx)
	if err != nil {
		return result, err
	}
	result = build(snapshot, f)

	e.logger.WithFields(log.Fields{
		"report":   name,
		"duration": time.Since(started),
	}).Debug("report built")
	return result, nil
}
