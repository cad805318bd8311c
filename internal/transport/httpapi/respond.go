package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

const maxBodyBytes = 1 << 20

// errorBody: формат ответа об ошибке.
type errorBody struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  []domain.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).WithField("component", "httpapi").Warn("encode response failed")
	}
}

// writeError переводит доменную ошибку в HTTP-статус.
func writeError(w http.ResponseWriter, logger *log.Entry, err error) {
	var (
		verr *domain.ValidationError
		rerr *domain.ReferentialError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: errorPayload{Code: "validation_failed", Message: verr.Error(), Fields: verr.Fields}})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: errorPayload{Code: "not_found", Message: err.Error()}})
	case errors.As(err, &rerr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: errorPayload{
			Code:    "unresolved_reference",
			Message: rerr.Error(),
			Fields:  []domain.FieldError{{Field: rerr.Field, Message: "references unknown id " + rerr.ID}},
		}})
	case errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody{Error: errorPayload{Code: "conflict", Message: err.Error()}})
	default:
		logger.WithError(err).Error("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: errorPayload{Code: "internal", Message: "internal error"}})
	}
}

// decodeJSON читает тело запроса. Неизвестные поля и мусор после объекта: ошибка валидации.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return badBody(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return badBody(fmt.Errorf("unexpected data after JSON object"))
	}
	return nil
}

func badBody(err error) error {
	return domain.NewValidationError(domain.FieldError{Field: "body", Message: err.Error()})
}
