// Package httpapi: REST API дашборда поверх сервиса логистики и движка отчётов.
package httpapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/scm/internal/domain"
	"github.com/vladislavdragonenkov/scm/internal/report"
	"github.com/vladislavdragonenkov/scm/internal/service/logistics"
)

// Handler обслуживает JSON API.
type Handler struct {
	svc     *logistics.Service
	reports *report.Engine
	logger  *log.Entry
	mux     *http.ServeMux
}

// NewHandler регистрирует все маршруты.
func NewHandler(svc *logistics.Service, reports *report.Engine, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.WithField("component", "httpapi")
	}
	h := &Handler{svc: svc, reports: reports, logger: logger, mux: http.NewServeMux()}
	h.routes()
	return h
}

func (h *Handler) routes() {
	m := h.mux

	m.HandleFunc("GET /contractors", list(h, parseContractorFilter, h.svc.ListContractors))
	m.HandleFunc("POST /contractors", create(h, h.svc.CreateContractor))
	m.HandleFunc("GET /contractors/{id}", get(h, parseInt64ID, h.svc.GetContractor))
	m.HandleFunc("PATCH /contractors/{id}", update(h, parseInt64ID, h.svc.UpdateContractor))
	m.HandleFunc("DELETE /contractors/{id}", remove(h, parseInt64ID, h.svc.DeleteContractor))

	m.HandleFunc("GET /warehouses", list(h, parseWarehouseFilter, h.svc.ListWarehouses))
	m.HandleFunc("POST /warehouses", create(h, h.svc.CreateWarehouse))
	m.HandleFunc("GET /warehouses/{id}", get(h, parseStringID, h.svc.GetWarehouse))
	m.HandleFunc("PATCH /warehouses/{id}", update(h, parseStringID, h.svc.UpdateWarehouse))
	m.HandleFunc("DELETE /warehouses/{id}", remove(h, parseStringID, h.svc.DeleteWarehouse))

	m.HandleFunc("GET /transport", list(h, parseTransportFilter, h.svc.ListTransport))
	m.HandleFunc("POST /transport", create(h, h.svc.CreateTransport))
	m.HandleFunc("GET /transport/{id}", get(h, parseStringID, h.svc.GetTransport))
	m.HandleFunc("PATCH /transport/{id}", update(h, parseStringID, h.svc.UpdateTransport))
	m.HandleFunc("DELETE /transport/{id}", remove(h, parseStringID, h.svc.DeleteTransport))

	m.HandleFunc("GET /orders", list(h, parseOrderFilter, h.svc.ListOrders))
	m.HandleFunc("POST /orders", create(h, h.svc.CreateOrder))
	m.HandleFunc("GET /orders/{id}", get(h, parseStringID, h.svc.GetOrder))
	m.HandleFunc("PATCH /orders/{id}", update(h, parseStringID, h.svc.UpdateOrder))
	m.HandleFunc("DELETE /orders/{id}", remove(h, parseStringID, h.svc.DeleteOrder))
	m.HandleFunc("GET /orders/{id}/cargos", h.listOrderCargos)
	m.HandleFunc("POST /orders/{id}/cargos", h.createOrderCargo)

	m.HandleFunc("GET /cargos", list(h, parseCargoFilter, h.svc.ListCargos))
	m.HandleFunc("POST /cargos", create(h, h.svc.CreateCargo))
	m.HandleFunc("GET /cargos/{id}", get(h, parseStringID, h.svc.GetCargo))
	m.HandleFunc("PATCH /cargos/{id}", update(h, parseStringID, h.svc.UpdateCargo))
	m.HandleFunc("DELETE /cargos/{id}", remove(h, parseStringID, h.svc.DeleteCargo))
	m.HandleFunc("GET /cargos/{id}/route-legs", h.listCargoRouteLegs)
	m.HandleFunc("POST /cargos/{id}/route-legs", h.createCargoRouteLeg)

	m.HandleFunc("GET /route-legs", list(h, parseRouteLegFilter, h.svc.ListRouteLegs))
	m.HandleFunc("POST /route-legs", create(h, h.svc.CreateRouteLeg))
	m.HandleFunc("GET /route-legs/{id}", get(h, parseStringID, h.svc.GetRouteLeg))
	m.HandleFunc("PATCH /route-legs/{id}", update(h, parseStringID, h.svc.UpdateRouteLeg))
	m.HandleFunc("DELETE /route-legs/{id}", remove(h, parseStringID, h.svc.DeleteRouteLeg))
	m.HandleFunc("GET /route-legs/{id}/events", h.listRouteLegEvents)
	m.HandleFunc("POST /route-legs/{id}/events", h.appendRouteLegEvent)

	m.HandleFunc("GET /events", list(h, parseEventFilter, h.svc.ListEvents))
	m.HandleFunc("POST /events", create(h, h.svc.AppendEvent))
	m.HandleFunc("GET /events/{id}", get(h, parseStringID, h.svc.GetEvent))
	m.HandleFunc("DELETE /events/{id}", remove(h, parseStringID, h.svc.DeleteEvent))

	m.HandleFunc("GET /dashboard/stats", h.dashboardStats)
	m.HandleFunc("GET /reports/orders", reportHandler(h, h.reports.OrderStatus))
	m.HandleFunc("GET /reports/tracking", reportHandler(h, h.reports.CargoTracking))
	m.HandleFunc("GET /reports/carriers", reportHandler(h, h.reports.CarrierEfficiency))
	m.HandleFunc("GET /reports/warehouses", reportHandler(h, h.reports.WarehouseLoad))
	m.HandleFunc("GET /reports/kpi", reportHandler(h, h.reports.KPI))
}

// ServeHTTP добавляет к маршрутизатору журнал запросов и перехват паник.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

	defer func() {
		if p := recover(); p != nil {
			h.logger.WithField("panic", p).WithField("path", r.URL.Path).Error("handler panicked")
			writeJSON(rec, http.StatusInternalServerError, errorBody{Error: errorPayload{Code: "internal", Message: "internal error"}})
		}
		h.logger.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(started),
		}).Debug("http request")
	}()

	h.mux.ServeHTTP(rec, r)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func parseInt64ID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(domain.FieldError{Field: "id", Message: "must be a positive integer"})
	}
	return id, nil
}

func parseStringID(raw string) (string, error) {
	if raw == "" {
		return "", domain.NewValidationError(domain.FieldError{Field: "id", Message: "is required"})
	}
	return raw, nil
}

func list[F, T any](h *Handler, parse func(url.Values) (F, error), fetch func(context.Context, F) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parse(r.URL.Query())
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		items, err := fetch(r.Context(), filter)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(items))
	}
}

func get[K, T any](h *Handler, parseID func(string) (K, error), fetch func(context.Context, K) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r.PathValue("id"))
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		item, err := fetch(r.Context(), id)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func create[T any](h *Handler, save func(context.Context, T) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in T
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, h.logger, err)
			return
		}
		created, err := save(r.Context(), in)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func update[K, P, T any](h *Handler, parseID func(string) (K, error), apply func(context.Context, K, P) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r.PathValue("id"))
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		var patch P
		if err := decodeJSON(w, r, &patch); err != nil {
			writeError(w, h.logger, err)
			return
		}
		updated, err := apply(r.Context(), id, patch)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func remove[K any](h *Handler, parseID func(string) (K, error), del func(context.Context, K) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r.PathValue("id"))
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		if err := del(r.Context(), id); err != nil {
			writeError(w, h.logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func reportHandler[T any](h *Handler, build func(context.Context, report.Filter) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseReportFilter(r.URL.Query())
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		result, err := build(r.Context(), filter)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (h *Handler) dashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reports.Dashboard(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
