package httpapi

import (
	"net/http"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

// Вложенные маршруты: родитель берётся из пути и должен существовать.

func (h *Handler) listOrderCargos(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("id")
	if _, err := h.svc.GetOrder(r.Context(), orderID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	items, err := h.svc.ListCargos(r.Context(), domain.CargoFilter{OrderID: orderID})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (h *Handler) createOrderCargo(w http.ResponseWriter, r *http.Request) {
	var cargo domain.Cargo
	if err := decodeJSON(w, r, &cargo); err != nil {
		writeError(w, h.logger, err)
		return
	}
	cargo.OrderID = r.PathValue("id")
	if _, err := h.svc.GetOrder(r.Context(), cargo.OrderID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	created, err := h.svc.CreateCargo(r.Context(), cargo)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) listCargoRouteLegs(w http.ResponseWriter, r *http.Request) {
	cargoID := r.PathValue("id")
	if _, err := h.svc.GetCargo(r.Context(), cargoID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	items, err := h.svc.ListRouteLegs(r.Context(), domain.RouteLegFilter{CargoID: cargoID})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (h *Handler) createCargoRouteLeg(w http.ResponseWriter, r *http.Request) {
	var leg domain.RouteLeg
	if err := decodeJSON(w, r, &leg); err != nil {
		writeError(w, h.logger, err)
		return
	}
	leg.CargoID = r.PathValue("id")
	if _, err := h.svc.GetCargo(r.Context(), leg.CargoID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	created, err := h.svc.CreateRouteLeg(r.Context(), leg)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) listRouteLegEvents(w http.ResponseWriter, r *http.Request) {
	legID := r.PathValue("id")
	if _, err := h.svc.GetRouteLeg(r.Context(), legID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	items, err := h.svc.ListEvents(r.Context(), domain.TrackingEventFilter{RouteLegID: legID})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (h *Handler) appendRouteLegEvent(w http.ResponseWriter, r *http.Request) {
	var event domain.TrackingEvent
	if err := decodeJSON(w, r, &event); err != nil {
		writeError(w, h.logger, err)
		return
	}
	event.RouteLegID = r.PathValue("id")
	if _, err := h.svc.GetRouteLeg(r.Context(), event.RouteLegID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	created, err := h.svc.AppendEvent(r.Context(), event)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
