package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/scm/internal/domain"
)

func mustTime(t *testing.T, value string) *time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return &ts
}

// helper для создания корректного заказа.
func makeOrder() domain.Order {
	return domain.Order{
		OrderNumber: "ORD-2024-001",
		CreatedAt:   time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC),
		TotalCost:   decimal.NewFromInt(150000),
		Status:      domain.OrderStatusInTransit,
		SenderID:    4,
		RecipientID: 1,
	}
}

func TestOrderValidate_Ok(t *testing.T) {
	order := makeOrder()
	if err := order.Validate(); err != nil {
		t.Fatalf("expected no validation errors, got %v", err)
	}
}

func TestOrderValidate_Errors(t *testing.T) {
	cases := []struct {
		name  string
		field string
		mut   func(o *domain.Order)
	}{
		{
			name:  "same sender and recipient",
			field: "senderId",
			mut: func(o *domain.Order) {
				o.SenderID = 4
				o.RecipientID = 4
			},
		},
		{
			name:  "no order number",
			field: "orderNumber",
			mut: func(o *domain.Order) {
				o.OrderNumber = ""
			},
		},
		{
			name:  "no sender",
			field: "senderId",
			mut: func(o *domain.Order) {
				o.SenderID = 0
			},
		},
		{
			name:  "no recipient",
			field: "recipientId",
			mut: func(o *domain.Order) {
				o.RecipientID = 0
			},
		},
		{
			name:  "negative cost",
			field: "totalCost",
			mut: func(o *domain.Order) {
				o.TotalCost = decimal.NewFromInt(-1)
			},
		},
		{
			name:  "unknown status",
			field: "status",
			mut: func(o *domain.Order) {
				o.Status = "lost"
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := makeOrder()
			tc.mut(&order)

			err := order.Validate()
			if err == nil {
				t.Fatalf("expected validation error for case %s", tc.name)
			}
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			var verr *domain.ValidationError
			if !errors.As(err, &verr) || !verr.Has(tc.field) {
				t.Fatalf("expected error on field %s, got %v", tc.field, err)
			}
		})
	}
}

func TestOrderValidate_DeliveryBeforeShipment(t *testing.T) {
	order := makeOrder()
	order.ShipmentDate = mustTime(t, "2024-01-17T18:00:00Z")
	order.DeliveryDate = mustTime(t, "2024-01-15T14:00:00Z")

	err := order.Validate()
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || !verr.Has("deliveryDate") {
		t.Fatalf("expected deliveryDate error, got %v", err)
	}
}

func TestOrderCycleDays(t *testing.T) {
	tests := []struct {
		name     string
		shipment string
		delivery string
		want     int
	}{
		{name: "partial day rounds up", shipment: "2024-01-15T14:00:00Z", delivery: "2024-01-17T18:00:00Z", want: 3},
		{name: "exact days", shipment: "2024-01-10T12:00:00Z", delivery: "2024-01-14T12:00:00Z", want: 4},
		{name: "same instant", shipment: "2024-01-10T12:00:00Z", delivery: "2024-01-10T12:00:00Z", want: 0},
		{name: "no shipment", delivery: "2024-01-14T12:00:00Z", want: 0},
		{name: "no delivery", shipment: "2024-01-10T12:00:00Z", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := makeOrder()
			if tt.shipment != "" {
				order.ShipmentDate = mustTime(t, tt.shipment)
			}
			if tt.delivery != "" {
				order.DeliveryDate = mustTime(t, tt.delivery)
			}
			if got := order.CycleDays(); got != tt.want {
				t.Fatalf("CycleDays() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestOrderPatchApply_OnlyProvidedFields(t *testing.T) {
	order := makeOrder()
	status := domain.OrderStatusDelivered
	patch := domain.OrderPatch{Status: &status}

	patch.Apply(&order)

	if order.Status != domain.OrderStatusDelivered {
		t.Fatalf("expected status delivered, got %s", order.Status)
	}
	if order.SenderID != 4 || order.RecipientID != 1 {
		t.Fatalf("unexpected participants change: %+v", order)
	}
	if !order.TotalCost.Equal(decimal.NewFromInt(150000)) {
		t.Fatalf("unexpected cost change: %s", order.TotalCost)
	}
}
