package extractor

import (
	"context"
	"testing"

	"github.com/noneca/meli-sync/internal/meli"
)

func fakeOrders(n int) []*meli.Order {
	orders := make([]*meli.Order, n)
	for i := range orders {
		orders[i] = &meli.Order{ID: int64(2000000 + i), Status: "paid"}
	}
	return orders
}

func TestOrdersExtractsAll(t *testing.T) {
	testCases := []struct {
		name  string
		total int
	}{
		{"Multiple pages", 120},
		{"Single short page", 10},
		{"No orders", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gateway := newFakeGateway(0)
			gateway.orders = fakeOrders(tc.total)

			orders := newTestExtractor(gateway).Orders(context.Background(), "354140329", OrdersOptions{Limit: 50})
			if len(orders) != tc.total {
				t.Errorf("Expected %d orders, got %d", tc.total, len(orders))
			}
		})
	}
}

func TestOrdersTrimsToMaxRecords(t *testing.T) {
	gateway := newFakeGateway(0)
	gateway.orders = fakeOrders(120)

	orders := newTestExtractor(gateway).Orders(context.Background(), "354140329", OrdersOptions{
		Limit:      50,
		MaxRecords: 75,
	})

	if len(orders) != 75 {
		t.Errorf("Expected exactly 75 orders, got %d", len(orders))
	}
	if orders[74].ID != 2000074 {
		t.Errorf("Expected last order 2000074, got %d", orders[74].ID)
	}
}

func TestOrdersFollowsServerPaging(t *testing.T) {
	// The server returns smaller pages than requested; the extractor must
	// advance by the server-reported limit, not the requested one.
	gateway := newFakeGateway(0)
	gateway.orders = fakeOrders(60)
	gateway.orderPageSize = 20

	orders := newTestExtractor(gateway).Orders(context.Background(), "354140329", OrdersOptions{Limit: 50})

	if len(orders) != 60 {
		t.Errorf("Expected 60 orders via server paging, got %d", len(orders))
	}
	seen := map[int64]bool{}
	for _, o := range orders {
		if seen[o.ID] {
			t.Fatalf("Order %d fetched twice - paging advanced wrong", o.ID)
		}
		seen[o.ID] = true
	}
}

func TestOrdersEmptySellerID(t *testing.T) {
	gateway := newFakeGateway(0)
	gateway.orders = fakeOrders(10)

	if orders := newTestExtractor(gateway).Orders(context.Background(), "", OrdersOptions{}); orders != nil {
		t.Errorf("Expected nil for empty seller id, got %d orders", len(orders))
	}
}
