package domain

import (
	"sort"
	"time"
)

// EventType: тип события отслеживания.
type EventType string

const (
	EventTypeCreated   EventType = "created"
	EventTypeDeparted  EventType = "departed"
	EventTypeArrived   EventType = "arrived"
	EventTypeDelivered EventType = "delivered"
	EventTypeDelayed   EventType = "delayed"
	EventTypeCustoms   EventType = "customs"
)

// DelayReason: категория причины задержки, заполняется только для delayed-событий.
type DelayReason string

const (
	DelayReasonCustoms   DelayReason = "customs"
	DelayReasonWeather   DelayReason = "weather"
	DelayReasonTechnical DelayReason = "technical"
	DelayReasonDocuments DelayReason = "documents"
	DelayReasonOther     DelayReason = "other"
)

// Valid проверяет, что причина относится к известным категориям.
func (r DelayReason) Valid() bool {
	switch r {
	case DelayReasonCustoms, DelayReasonWeather, DelayReasonTechnical, DelayReasonDocuments, DelayReasonOther:
		return true
	default:
		return false
	}
}

// Label: человекочитаемое название причины для отчётов.
func (r DelayReason) Label() string {
	switch r {
	case DelayReasonCustoms:
		return "Задержка на таможне"
	case DelayReasonWeather:
		return "Погодные условия"
	case DelayReasonTechnical:
		return "Технические неисправности"
	case DelayReasonDocuments:
		return "Проблемы с документами"
	default:
		return "Прочее"
	}
}

// TrackingEvent: неизменяемая запись о событии на участке маршрута.
// После создания не обновляется, только удаляется.
type TrackingEvent struct {
	ID          string       `json:"id"`
	RouteLegID  string       `json:"routeLegId" validate:"required"`
	EventType   EventType    `json:"eventType" validate:"oneof=created departed arrived delivered delayed customs"`
	Timestamp   time.Time    `json:"timestamp"`
	Coordinates *Coordinates `json:"coordinates,omitempty" validate:"omitempty"`
	Description string       `json:"description"`
	DelayReason DelayReason  `json:"delayReason,omitempty"`
}

// Validate проверяет поля события.
func (e *TrackingEvent) Validate() error {
	verr := validateStruct(e)
	if e.Timestamp.IsZero() {
		verr.Add("timestamp", "is required")
	}
	switch {
	case e.EventType == EventTypeDelayed && !e.DelayReason.Valid():
		verr.Add("delayReason", "must be one of: customs, weather, technical, documents, other")
	case e.EventType != EventTypeDelayed && e.DelayReason != "":
		verr.Add("delayReason", "allowed only for delayed events")
	}
	return verr.OrNil()
}

// SortEvents упорядочивает события по времени по возрастанию, при равенстве: по ID.
// Хранилища не гарантируют порядок, поэтому потребители сортируют сами.
func SortEvents(events []TrackingEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].Timestamp.Before(events[j].Timestamp)
		}
		return events[i].ID < events[j].ID
	})
}
