package services

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"lunch-menu/models"
)

func sampleOrders(n, itemsEach int) []models.Order {
	base := time.Date(2026, 10, 19, 12, 30, 0, 0, time.UTC)
	orders := make([]models.Order, n)
	for i := range orders {
		o := models.Order{
			ID:           fmt.Sprintf("order-%d", i),
			UserName:     "José da Silva",
			Registration: "1234",
			Observations: "Sem cebola, por favor!",
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
		}
		for j := 0; j < itemsEach; j++ {
			o.Items = append(o.Items, models.OrderItem{DishID: fmt.Sprint(j), DishName: "Frango grelhado"})
		}
		orders[i] = o
	}
	return orders
}

func TestWriteOrdersReport(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOrdersReport(&buf, sampleOrders(2, 2), time.UTC, ReportTitle("Restaurante")); err != nil {
		t.Fatalf("WriteOrdersReport: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Errorf("output does not start with %%PDF header")
	}
}

func TestOrdersReportPagination(t *testing.T) {
	tests := []struct {
		name      string
		orders    []models.Order
		wantPages int
	}{
		{"empty", nil, 1},
		{"one order", sampleOrders(1, 1), 1},
		// title (20) + 3 orders of 7 lines + gap (80 each) passes the bound
		{"spills to second page", sampleOrders(3, 1), 2},
		{"long order breaks mid-order", sampleOrders(1, 30), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pdf := buildOrdersReport(tt.orders, time.UTC, "t")
			if err := pdf.Error(); err != nil {
				t.Fatalf("build: %v", err)
			}
			if got := pdf.PageCount(); got != tt.wantPages {
				t.Errorf("PageCount() = %d, want %d", got, tt.wantPages)
			}
		})
	}
}
