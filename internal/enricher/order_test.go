package enricher

import (
	"testing"
	"time"

	"github.com/noneca/meli-sync/internal/meli"
)

func TestOrderNilInput(t *testing.T) {
	if got := Order(nil); got != nil {
		t.Errorf("Expected nil record for nil input, got %+v", got)
	}
}

func TestProfitMargin(t *testing.T) {
	testCases := []struct {
		name     string
		total    float64
		fees     float64
		expected float64
	}{
		{"Typical order", 200.0, 30.0, 85.0},
		{"Zero total", 0.0, 10.0, 0.0},
		{"Negative total", -5.0, 0.0, 0.0},
		{"No fees", 100.0, 0.0, 100.0},
		{"Rounding", 150.0, 22.5, 85.0},
		{"Two decimals", 90.0, 12.34, 86.29},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := profitMargin(tc.total, tc.fees)
			if got != tc.expected {
				t.Errorf("profitMargin(%v, %v) = %v, expected %v", tc.total, tc.fees, got, tc.expected)
			}
		})
	}
}

func TestParseTime(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		valid bool
	}{
		{"Zulu suffix", "2024-01-15T10:30:00.000Z", true},
		{"Literal offset", "2024-01-15T10:30:00.000-04:00", true},
		{"No fraction", "2024-01-15T10:30:00Z", true},
		{"Empty", "", false},
		{"Garbage", "not-a-date", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := parseTime(tc.input)
			if tc.valid && got == nil {
				t.Errorf("Expected parsed time for %q, got nil", tc.input)
			}
			if !tc.valid && got != nil {
				t.Errorf("Expected nil for %q, got %v", tc.input, got)
			}
		})
	}
}

func TestParseTimeConvertsToUTC(t *testing.T) {
	got := parseTime("2024-01-15T10:30:00.000-04:00")
	if got == nil {
		t.Fatal("Expected parsed time, got nil")
	}
	expected := time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)
	if !got.Equal(expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestOrderTimestampsNormalizedToSaoPaulo(t *testing.T) {
	raw := &meli.Order{
		ID:          2000001,
		DateCreated: "2024-01-15T10:30:00.000Z",
	}

	rec := Order(raw)
	if rec.DateCreated == nil {
		t.Fatal("Expected date_created, got nil")
	}

	// São Paulo is UTC-3 (no DST since 2019).
	_, offset := rec.DateCreated.Zone()
	if offset != -3*3600 {
		t.Errorf("Expected UTC-3 offset, got %d", offset)
	}

	expected := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	if !rec.DateCreated.Equal(expected) {
		t.Errorf("Instant changed during normalization: %v != %v", rec.DateCreated, expected)
	}
}

func testOrder() *meli.Order {
	return &meli.Order{
		ID:          2000001,
		Status:      "paid",
		TotalAmount: 200.0,
		PaidAmount:  200.0,
		CurrencyID:  "BRL",
		DateCreated: "2024-01-15T10:30:00.000-03:00",
		Buyer:       meli.Participant{ID: 111, Nickname: "BUYER1"},
		Seller:      meli.Participant{ID: 354140329, Nickname: "NONECA"},
		OrderItems: []meli.OrderLine{
			{
				Item: meli.LineItem{
					ID:          "MLB123",
					Title:       "Bodysuit",
					VariationID: 555,
					VariationAttributes: []meli.VariationAttribute{
						{Name: "Cor", ValueName: "Preto"},
						{Name: "Tamanho", ValueName: "M"},
					},
				},
				Quantity:      2,
				UnitPrice:     61.7,
				FullUnitPrice: 75.0,
				SaleFee:       12.0,
				ListingTypeID: "gold_special",
			},
			{
				Item:      meli.LineItem{ID: "MLB456"},
				Quantity:  1,
				UnitPrice: 35.0,
				SaleFee:   8.0,
			},
		},
		Payments: []meli.Payment{
			{
				PaymentMethodID:   "pix",
				Installments:      1,
				Status:            "approved",
				TransactionAmount: 200.0,
				TaxesAmount:       3.5,
				DateApproved:      "2024-01-15T10:31:00.000-03:00",
			},
			{
				PaymentMethodID: "credit_card",
				Status:          "rejected",
			},
		},
	}
}

func TestOrderLineExtraction(t *testing.T) {
	rec := Order(testOrder())

	if len(rec.Items) != 2 {
		t.Fatalf("Expected 2 line items, got %d", len(rec.Items))
	}

	first := rec.Items[0]
	if first.ItemID != "MLB123" {
		t.Errorf("Expected item MLB123, got %s", first.ItemID)
	}
	if first.Color != "Preto" {
		t.Errorf("Expected color Preto, got %q", first.Color)
	}
	if first.Size != "M" {
		t.Errorf("Expected size M, got %q", first.Size)
	}
	if first.VariationID != 555 {
		t.Errorf("Expected variation 555, got %d", first.VariationID)
	}
	if first.UnitPrice != 61.7 || first.FullUnitPrice != 75.0 || first.SaleFee != 12.0 {
		t.Errorf("Unexpected prices: %+v", first)
	}
}

func TestOrderFirstPaymentOnly(t *testing.T) {
	rec := Order(testOrder())

	if rec.PaymentMethod != "pix" {
		t.Errorf("Expected first payment method pix, got %q", rec.PaymentMethod)
	}
	if rec.PaymentStatus != "approved" {
		t.Errorf("Expected payment status approved, got %q", rec.PaymentStatus)
	}
	if rec.TransactionAmount != 200.0 {
		t.Errorf("Expected transaction amount 200.0, got %v", rec.TransactionAmount)
	}
	if rec.TaxesAmount != 3.5 {
		t.Errorf("Expected taxes amount 3.5, got %v", rec.TaxesAmount)
	}
	if rec.DatePaymentApproved == nil {
		t.Error("Expected approved date, got nil")
	}
}

func TestOrderNoPayments(t *testing.T) {
	raw := testOrder()
	raw.Payments = nil

	rec := Order(raw)
	if rec.PaymentMethod != "" || rec.Installments != 0 || rec.DatePaymentApproved != nil {
		t.Errorf("Expected empty payment info, got %+v", rec)
	}
}

func TestOrderMetrics(t *testing.T) {
	rec := Order(testOrder())

	if rec.TotalFees != 20.0 {
		t.Errorf("Expected total fees 20.0, got %v", rec.TotalFees)
	}
	if rec.ProfitMargin != 90.0 {
		t.Errorf("Expected profit margin 90.0, got %v", rec.ProfitMargin)
	}
	if rec.TotalItems != 2 {
		t.Errorf("Expected 2 items, got %d", rec.TotalItems)
	}
	if rec.TotalQuantity != 3 {
		t.Errorf("Expected total quantity 3, got %d", rec.TotalQuantity)
	}
	if rec.AvgItemPrice != 100.0 {
		t.Errorf("Expected avg item price 100.0, got %v", rec.AvgItemPrice)
	}
}

func TestOrderZeroTotalGuard(t *testing.T) {
	raw := testOrder()
	raw.TotalAmount = 0

	rec := Order(raw)
	if rec.ProfitMargin != 0.0 {
		t.Errorf("Expected zero margin on zero total, got %v", rec.ProfitMargin)
	}
	if rec.AvgItemPrice != 0.0 {
		t.Errorf("Expected zero avg price on zero total, got %v", rec.AvgItemPrice)
	}
}

func TestOrdersFiltersNilEntries(t *testing.T) {
	raws := []*meli.Order{nil, testOrder(), nil}

	records := Orders(raws)
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].OrderID != 2000001 {
		t.Errorf("Expected order 2000001, got %d", records[0].OrderID)
	}
}

func TestOrdersEmptyInput(t *testing.T) {
	if got := Orders(nil); got != nil {
		t.Errorf("Expected nil for nil input, got %v", got)
	}
}
