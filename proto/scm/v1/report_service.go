// Package scmv1 описывает gRPC-контракт scm.v1.ReportService. Сообщения
// передаются в JSON через зарегистрированный кодек.
package scmv1

import (
	"time"

	"github.com/vladislavdragonenkov/scm/internal/report"
)

// ReportRequest: фильтр любого отчёта.
type ReportRequest struct {
	DateFrom     *time.Time `json:"dateFrom,omitempty"`
	DateTo       *time.Time `json:"dateTo,omitempty"`
	ContractorId *int64     `json:"contractorId,omitempty"`
}

func (x *ReportRequest) GetDateFrom() *time.Time {
	if x != nil {
		return x.DateFrom
	}
	return nil
}

func (x *ReportRequest) GetDateTo() *time.Time {
	if x != nil {
		return x.DateTo
	}
	return nil
}

func (x *ReportRequest) GetContractorId() *int64 {
	if x != nil {
		return x.ContractorId
	}
	return nil
}

// Filter переводит запрос в фильтр отчётов.
func (x *ReportRequest) Filter() report.Filter {
	return report.Filter{
		DateFrom:     x.GetDateFrom(),
		DateTo:       x.GetDateTo(),
		ContractorID: x.GetContractorId(),
	}
}

type DashboardRequest struct{}

type OrderStatusResponse struct {
	Items []report.OrderStatusItem `json:"items"`
}

type CargoTrackingResponse struct {
	Items []report.CargoTrackingItem `json:"items"`
}

type CarrierEfficiencyResponse struct {
	Items []report.CarrierEfficiencyItem `json:"items"`
}

type WarehouseLoadResponse struct {
	Items []report.WarehouseLoadItem `json:"items"`
}

type KPIResponse struct {
	Report report.KPIReport `json:"report"`
}

type DashboardResponse struct {
	Stats report.DashboardStats `json:"stats"`
}
