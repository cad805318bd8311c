package httpapi

import (
	"net/url"
	"strconv"
	"time"

	"github.com/vladislavdragonenkov/scm/internal/domain"
	"github.com/vladislavdragonenkov/scm/internal/report"
)

// queryParser разбирает параметры строки запроса и копит ошибки по полям.
type queryParser struct {
	values url.Values
	verr   domain.ValidationError
}

func newQueryParser(values url.Values) *queryParser {
	return &queryParser{values: values}
}

func (p *queryParser) str(name string) string {
	return p.values.Get(name)
}

func (p *queryParser) int64Ptr(name string) *int64 {
	raw := p.values.Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		p.verr.Add(name, "must be a positive integer")
		return nil
	}
	return &v
}

// timePtr разбирает границу периода, см. report.ParseBound.
func (p *queryParser) timePtr(name string, upper bool) *time.Time {
	raw := p.values.Get(name)
	if raw == "" {
		return nil
	}
	ts, err := report.ParseBound(raw, upper)
	if err != nil {
		p.verr.Add(name, err.Error())
		return nil
	}
	return &ts
}

func (p *queryParser) err() error {
	return p.verr.OrNil()
}

func parseReportFilter(values url.Values) (report.Filter, error) {
	p := newQueryParser(values)
	f := report.Filter{
		DateFrom:     p.timePtr("dateFrom", false),
		DateTo:       p.timePtr("dateTo", true),
		ContractorID: p.int64Ptr("contractorId"),
	}
	return f, p.err()
}

func parseContractorFilter(values url.Values) (domain.ContractorFilter, error) {
	p := newQueryParser(values)
	return domain.ContractorFilter{
		Role:   domain.ContractorRole(p.str("role")),
		Search: p.str("search"),
	}, p.err()
}

func parseWarehouseFilter(values url.Values) (domain.WarehouseFilter, error) {
	p := newQueryParser(values)
	return domain.WarehouseFilter{
		Type:   domain.WarehouseType(p.str("type")),
		Search: p.str("search"),
	}, p.err()
}

func parseTransportFilter(values url.Values) (domain.TransportFilter, error) {
	p := newQueryParser(values)
	return domain.TransportFilter{
		Type:         domain.TransportType(p.str("type")),
		ContractorID: p.int64Ptr("contractorId"),
		Search:       p.str("search"),
	}, p.err()
}

func parseOrderFilter(values url.Values) (domain.OrderFilter, error) {
	p := newQueryParser(values)
	return domain.OrderFilter{
		Status:      domain.OrderStatus(p.str("status")),
		SenderID:    p.int64Ptr("senderId"),
		RecipientID: p.int64Ptr("recipientId"),
		DateFrom:    p.timePtr("dateFrom", false),
		DateTo:      p.timePtr("dateTo", true),
		Search:      p.str("search"),
	}, p.err()
}

func parseCargoFilter(values url.Values) (domain.CargoFilter, error) {
	p := newQueryParser(values)
	return domain.CargoFilter{
		Status:  domain.CargoStatus(p.str("status")),
		OrderID: p.str("orderId"),
		Search:  p.str("search"),
	}, p.err()
}

func parseRouteLegFilter(values url.Values) (domain.RouteLegFilter, error) {
	p := newQueryParser(values)
	return domain.RouteLegFilter{
		CargoID:             p.str("cargoId"),
		Status:              domain.RouteLegStatus(p.str("status")),
		AssignedTransportID: p.str("transportId"),
		WarehouseID:         p.str("warehouseId"),
	}, p.err()
}

func parseEventFilter(values url.Values) (domain.TrackingEventFilter, error) {
	p := newQueryParser(values)
	return domain.TrackingEventFilter{
		RouteLegID: p.str("routeLegId"),
		EventType:  domain.EventType(p.str("eventType")),
		From:       p.timePtr("from", false),
		To:         p.timePtr("to", true),
	}, p.err()
}
