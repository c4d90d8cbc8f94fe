package extractor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/noneca/meli-sync/internal/meli"
)

// fakeGateway serves a fixed set of items and orders from memory, recording
// request counts and failing on demand.
type fakeGateway struct {
	itemIDs       []string
	failDetails   map[string]bool
	failSearchAt  int // offset at which SearchItemIDs fails, -1 to disable
	descriptions  map[string]string
	failDesc      map[string]bool
	reviews       map[string]meli.Reviews
	orders        []*meli.Order
	orderPageSize int

	searchCalls int
	detailCalls int
}

func newFakeGateway(itemCount int) *fakeGateway {
	g := &fakeGateway{
		failDetails:  map[string]bool{},
		failSearchAt: -1,
		descriptions: map[string]string{},
		failDesc:     map[string]bool{},
		reviews:      map[string]meli.Reviews{},
	}
	for i := 0; i < itemCount; i++ {
		g.itemIDs = append(g.itemIDs, fmt.Sprintf("MLB%04d", i))
	}
	return g
}

func (g *fakeGateway) SearchItemIDs(_ context.Context, _ string, limit, offset int, _ string) (*meli.ItemSearchResponse, error) {
	g.searchCalls++
	if g.failSearchAt >= 0 && offset >= g.failSearchAt {
		return nil, fmt.Errorf("search blew up at offset %d", offset)
	}
	end := offset + limit
	if end > len(g.itemIDs) {
		end = len(g.itemIDs)
	}
	var page []string
	if offset < len(g.itemIDs) {
		page = g.itemIDs[offset:end]
	}
	return &meli.ItemSearchResponse{
		Results: page,
		Paging:  meli.Paging{Total: len(g.itemIDs), Offset: offset, Limit: limit},
	}, nil
}

func (g *fakeGateway) GetItem(_ context.Context, itemID string) (*meli.Item, error) {
	g.detailCalls++
	if g.failDetails[itemID] {
		return nil, fmt.Errorf("detail fetch failed for %s", itemID)
	}
	return &meli.Item{ID: itemID, Title: "Item " + itemID, Price: 10.0}, nil
}

func (g *fakeGateway) GetDescription(_ context.Context, itemID string) (*meli.Description, error) {
	if g.failDesc[itemID] {
		return nil, fmt.Errorf("description fetch failed for %s", itemID)
	}
	return &meli.Description{PlainText: g.descriptions[itemID]}, nil
}

func (g *fakeGateway) GetReviews(_ context.Context, itemID string) (*meli.Reviews, error) {
	r := g.reviews[itemID]
	return &r, nil
}

func (g *fakeGateway) SearchOrders(_ context.Context, p meli.OrderSearchParams) (*meli.OrderSearchResponse, error) {
	pageSize := g.orderPageSize
	if pageSize == 0 {
		pageSize = p.Limit
	}
	end := p.Offset + pageSize
	if end > len(g.orders) {
		end = len(g.orders)
	}
	var page []*meli.Order
	if p.Offset < len(g.orders) {
		page = g.orders[p.Offset:end]
	}
	return &meli.OrderSearchResponse{
		Results: page,
		Paging:  meli.Paging{Total: len(g.orders), Offset: p.Offset, Limit: pageSize},
	}, nil
}

func newTestExtractor(g *fakeGateway) *Extractor {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(g, 100000, logger)
}

func TestItemsExtractsAllWithoutLimit(t *testing.T) {
	testCases := []struct {
		name  string
		total int
	}{
		{"Multiple full pages plus remainder", 250},
		{"Exactly one page", 100},
		{"Less than one page", 7},
		{"No items", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gateway := newFakeGateway(tc.total)
			items := newTestExtractor(gateway).Items(context.Background(), "354140329", 0)

			if len(items) != tc.total {
				t.Errorf("Expected %d items, got %d", tc.total, len(items))
			}
		})
	}
}

func TestItemsHonorsLimit(t *testing.T) {
	gateway := newFakeGateway(250)
	items := newTestExtractor(gateway).Items(context.Background(), "354140329", 120)

	if len(items) != 120 {
		t.Errorf("Expected exactly 120 items, got %d", len(items))
	}
	if gateway.detailCalls != 120 {
		t.Errorf("Expected 120 detail fetches, got %d", gateway.detailCalls)
	}
}

func TestItemsSkipsFailedDetails(t *testing.T) {
	gateway := newFakeGateway(10)
	gateway.failDetails["MLB0003"] = true
	gateway.failDetails["MLB0007"] = true

	items := newTestExtractor(gateway).Items(context.Background(), "354140329", 0)

	if len(items) != 8 {
		t.Errorf("Expected 8 items after 2 skips, got %d", len(items))
	}
	for _, item := range items {
		if item.ID == "MLB0003" || item.ID == "MLB0007" {
			t.Errorf("Failed item %s should have been skipped", item.ID)
		}
	}
}

func TestItemsSearchFailureReturnsPartial(t *testing.T) {
	gateway := newFakeGateway(250)
	gateway.failSearchAt = 200

	items := newTestExtractor(gateway).Items(context.Background(), "354140329", 0)

	if len(items) != 200 {
		t.Errorf("Expected 200 items collected before the failure, got %d", len(items))
	}
}

func TestItemsEmptySellerID(t *testing.T) {
	gateway := newFakeGateway(10)
	items := newTestExtractor(gateway).Items(context.Background(), "", 0)

	if items != nil {
		t.Errorf("Expected nil for empty seller id, got %d items", len(items))
	}
	if gateway.searchCalls != 0 {
		t.Error("No API call should be made for an empty seller id")
	}
}

func TestItemsWithEnrichment(t *testing.T) {
	gateway := newFakeGateway(3)
	gateway.descriptions["MLB0000"] = "first description"
	gateway.descriptions["MLB0001"] = "second description"
	gateway.failDesc["MLB0002"] = true
	gateway.reviews["MLB0000"] = meli.Reviews{RatingAverage: 4.5, TotalReviews: 12}

	items := newTestExtractor(gateway).ItemsWithEnrichment(context.Background(), "354140329", 0, true, true)

	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d", len(items))
	}
	if items[0].Description != "first description" {
		t.Errorf("Expected description on first item, got %q", items[0].Description)
	}
	if items[0].RatingAverage != 4.5 || items[0].TotalReviews != 12 {
		t.Errorf("Expected review aggregates on first item, got %+v", items[0])
	}
	// Enrichment failure degrades to a missing field, not a dropped item.
	if items[2].Description != "" {
		t.Errorf("Expected missing description on failed enrichment, got %q", items[2].Description)
	}
}

func TestItemsWithEnrichmentDisabledFlags(t *testing.T) {
	gateway := newFakeGateway(2)
	gateway.descriptions["MLB0000"] = "should not be fetched"

	items := newTestExtractor(gateway).ItemsWithEnrichment(context.Background(), "354140329", 0, false, false)

	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[0].Description != "" {
		t.Error("Description must not be fetched when the flag is off")
	}
}
