package report_test

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"github.com/vladislavdragonenkov/scm/internal/domain"
	"github.com/vladislavdragonenkov/scm/internal/report"
)

type reportTestContext struct {
	data     report.Data
	orders   []report.OrderStatusItem
	kpi      report.KPIReport
	carriers []report.CarrierEfficiencyItem
	load     []report.WarehouseLoadItem
}

func (c *reportTestContext) reset() {
	*c = reportTestContext{}
}

func (c *reportTestContext) givenOrders(table *godog.Table) error {
	for _, row := range table.Rows[1:] {
		createdAt, err := time.Parse(time.RFC3339, row.Cells[1].Value)
		if err != nil {
			return err
		}
		sender, err := strconv.ParseInt(row.Cells[2].Value, 10, 64)
		if err != nil {
			return err
		}
		recipient, err := strconv.ParseInt(row.Cells[3].Value, 10, 64)
		if err != nil {
			return err
		}
		c.data.Orders = append(c.data.Orders, domain.Order{
			ID:          row.Cells[0].Value,
			OrderNumber: "ORD-" + row.Cells[0].Value,
			CreatedAt:   createdAt,
			SenderID:    sender,
			RecipientID: recipient,
			Status:      domain.OrderStatus(row.Cells[4].Value),
		})
	}
	return nil
}

func (c *reportTestContext) orderShippedAndDelivered(id, shipped, delivered string) error {
	for i := range c.data.Orders {
		if c.data.Orders[i].ID != id {
			continue
		}
		shipment, err := time.Parse(time.RFC3339, shipped)
		if err != nil {
			return err
		}
		delivery, err := time.Parse(time.RFC3339, delivered)
		if err != nil {
			return err
		}
		c.data.Orders[i].ShipmentDate = &shipment
		c.data.Orders[i].DeliveryDate = &delivery
		return nil
	}
	return fmt.Errorf("order %s not found", id)
}

func (c *reportTestContext) carrierOwnsTransport(id int, name, regNumber string) error {
	carrierID := int64(id)
	c.data.Contractors = append(c.data.Contractors, domain.Contractor{ID: carrierID, Name: name, Role: domain.ContractorRoleCarrier})
	c.data.Transport = append(c.data.Transport, domain.Transport{RegNumber: regNumber, Type: domain.TransportTypeTruck, Capacity: 10, ContractorID: &carrierID})
	return nil
}

func (c *reportTestContext) warehouse(id, name string) error {
	c.data.Warehouses = append(c.data.Warehouses, domain.Warehouse{ID: id, Name: name, Type: domain.WarehouseTypeTransit})
	return nil
}

func (c *reportTestContext) cargoHasRouteLegs(cargoID string, table *godog.Table) error {
	c.data.Cargos = append(c.data.Cargos, domain.Cargo{ID: cargoID, CargoID: strings.ToUpper(cargoID), Weight: 1, Volume: 1, CurrentStatus: domain.CargoStatusInTransit})
	for _, row := range table.Rows[1:] {
		seq, err := strconv.Atoi(row.Cells[3].Value)
		if err != nil {
			return err
		}
		leg := domain.RouteLeg{
			ID:               row.Cells[0].Value,
			CargoID:          cargoID,
			StartWarehouseID: row.Cells[1].Value,
			EndWarehouseID:   row.Cells[2].Value,
			SequenceOrder:    seq,
			Status:           domain.RouteLegStatus(row.Cells[4].Value),
		}
		if transport := row.Cells[5].Value; transport != "" {
			leg.AssignedTransportID = &transport
		}
		c.data.RouteLegs = append(c.data.RouteLegs, leg)
	}
	return nil
}

func (c *reportTestContext) buildOrderStatus(f report.Filter) error {
	normalized, err := f.Normalize()
	if err != nil {
		return err
	}
	c.orders = report.BuildOrderStatus(report.NewSnapshot(c.data), normalized)
	return nil
}

func (c *reportTestContext) iBuildTheOrderStatusReport() error {
	return c.buildOrderStatus(report.Filter{})
}

func (c *reportTestContext) iBuildTheOrderStatusReportForContractor(id int) error {
	contractorID := int64(id)
	return c.buildOrderStatus(report.Filter{ContractorID: &contractorID})
}

func (c *reportTestContext) iBuildTheOrderStatusReportFromTo(from, to string) error {
	dateFrom, err := time.Parse(time.RFC3339, from)
	if err != nil {
		return err
	}
	dateTo, err := time.Parse(time.RFC3339, to)
	if err != nil {
		return err
	}
	return c.buildOrderStatus(report.Filter{DateFrom: &dateFrom, DateTo: &dateTo})
}

func (c *reportTestContext) iBuildTheKPIReport() error {
	c.kpi = report.BuildKPI(report.NewSnapshot(c.data), report.Filter{})
	return nil
}

func (c *reportTestContext) iBuildTheCarrierEfficiencyReport() error {
	c.carriers = report.BuildCarrierEfficiency(report.NewSnapshot(c.data), report.Filter{})
	return nil
}

func (c *reportTestContext) iBuildTheWarehouseLoadReport() error {
	c.load = report.BuildWarehouseLoad(report.NewSnapshot(c.data), report.Filter{})
	return nil
}

func (c *reportTestContext) orderHasCycleDays(id string, days int) error {
	for _, item := range c.orders {
		if item.ID == id {
			if item.CycleDays != days {
				return fmt.Errorf("expected cycle days %d, got %d", days, item.CycleDays)
			}
			return nil
		}
	}
	return fmt.Errorf("order %s not in report", id)
}

func (c *reportTestContext) theOnTimePercentageIs(expected int) error {
	if c.kpi.OnTimePercentage != expected {
		return fmt.Errorf("expected on-time percentage %d, got %d", expected, c.kpi.OnTimePercentage)
	}
	return nil
}

func (c *reportTestContext) ordersAreInProgress(expected int) error {
	if c.kpi.OrdersInProgress != expected {
		return fmt.Errorf("expected %d orders in progress, got %d", expected, c.kpi.OrdersInProgress)
	}
	return nil
}

func (c *reportTestContext) carrierHasCompletedOfLegs(id, completed, total int) error {
	for _, item := range c.carriers {
		if item.ContractorID != int64(id) {
			continue
		}
		if item.CompletedLegs != completed || item.TotalLegs != total {
			return fmt.Errorf("expected %d/%d legs, got %d/%d", completed, total, item.CompletedLegs, item.TotalLegs)
		}
		return nil
	}
	return fmt.Errorf("carrier %d not in report", id)
}

func (c *reportTestContext) warehouseHasIncomingAndOutgoing(id string, incoming, outgoing int) error {
	for _, item := range c.load {
		if item.WarehouseID != id {
			continue
		}
		if item.Incoming != incoming || item.Outgoing != outgoing {
			return fmt.Errorf("expected incoming %d outgoing %d, got %d and %d", incoming, outgoing, item.Incoming, item.Outgoing)
		}
		return nil
	}
	return fmt.Errorf("warehouse %s not in report", id)
}

func (c *reportTestContext) theReportContainsOrders(list string) error {
	ids := make([]string, 0, len(c.orders))
	for _, item := range c.orders {
		ids = append(ids, item.ID)
	}
	if got := strings.Join(ids, ","); got != list {
		return fmt.Errorf("expected orders %s, got %s", list, got)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &reportTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^orders:$`, tc.givenOrders)
	ctx.Step(`^order "([^"]*)" shipped at "([^"]*)" and delivered at "([^"]*)"$`, tc.orderShippedAndDelivered)
	ctx.Step(`^carrier (\d+) "([^"]*)" owns transport "([^"]*)"$`, tc.carrierOwnsTransport)
	ctx.Step(`^warehouse "([^"]*)" "([^"]*)"$`, tc.warehouse)
	ctx.Step(`^cargo "([^"]*)" has route legs:$`, tc.cargoHasRouteLegs)

	ctx.Step(`^I build the order status report$`, tc.iBuildTheOrderStatusReport)
	ctx.Step(`^I build the order status report for contractor (\d+)$`, tc.iBuildTheOrderStatusReportForContractor)
	ctx.Step(`^I build the order status report from "([^"]*)" to "([^"]*)"$`, tc.iBuildTheOrderStatusReportFromTo)
	ctx.Step(`^I build the KPI report$`, tc.iBuildTheKPIReport)
	ctx.Step(`^I build the carrier efficiency report$`, tc.iBuildTheCarrierEfficiencyReport)
	ctx.Step(`^I build the warehouse load report$`, tc.iBuildTheWarehouseLoadReport)

	ctx.Step(`^order "([^"]*)" has cycle days (\d+)$`, tc.orderHasCycleDays)
	ctx.Step(`^the on-time percentage is (\d+)$`, tc.theOnTimePercentageIs)
	ctx.Step(`^(\d+) orders are in progress$`, tc.ordersAreInProgress)
	ctx.Step(`^carrier (\d+) has (\d+) completed of (\d+) legs$`, tc.carrierHasCompletedOfLegs)
	ctx.Step(`^warehouse "([^"]*)" has (\d+) incoming and (\d+) outgoing$`, tc.warehouseHasIncomingAndOutgoing)
	ctx.Step(`^the report contains orders "([^"]*)"$`, tc.theReportContainsOrders)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"testdata/features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
