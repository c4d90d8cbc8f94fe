// Package models defines the enriched analytics records produced by the
// enrichers and consumed by the persistence layer. These are the canonical
// in-memory format, normalized from the raw API payloads.
package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ItemRecord is a normalized catalog listing with computed business metrics.
type ItemRecord struct {
	ItemID            string `validate:"required"`
	Title             string
	CategoryID        string
	CurrentPrice      float64
	OriginalPrice     float64
	AvailableQuantity int
	SoldQuantity      int
	Condition         string

	// Extracted business attributes. Empty string means absent.
	Brand  string
	Size   string
	Color  string
	Gender string

	Views              int
	ConversionRate     float64
	DiscountPercentage float64
	SellerID           int64

	// Optional enrichment fields, present when the extractor was asked to
	// fetch descriptions/reviews.
	Description   string
	RatingAverage float64
	TotalReviews  int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate reports whether the record carries its required external id.
func (r *ItemRecord) Validate() error {
	return validate.Struct(r)
}

// OrderItemRecord is a normalized order line item.
type OrderItemRecord struct {
	ItemID        string `validate:"required"`
	Title         string
	CategoryID    string
	VariationID   int64
	Condition     string
	Quantity      int
	UnitPrice     float64
	FullUnitPrice float64
	SaleFee       float64
	ListingType   string
	Color         string
	Size          string
	SellerSKU     string
}

// OrderRecord is a normalized order transaction with computed metrics.
// All timestamps are normalized to America/Sao_Paulo.
type OrderRecord struct {
	OrderID      int64 `validate:"required"`
	PackID       int64
	Status       string
	StatusDetail string

	TotalAmount  float64
	PaidAmount   float64
	CurrencyID   string
	TotalFees    float64
	ProfitMargin float64

	PaymentMethod       string
	Installments        int
	PaymentStatus       string
	TransactionAmount   float64
	TaxesAmount         float64
	DatePaymentApproved *time.Time

	BuyerID        int64
	BuyerNickname  string
	SellerID       int64
	SellerNickname string

	DateCreated *time.Time
	DateClosed  *time.Time
	LastUpdated *time.Time
	ProcessedAt time.Time

	TotalItems    int
	TotalQuantity int
	AvgItemPrice  float64

	ShippingID   int64
	ShippingCost float64

	Tags           []string
	ContextChannel string
	ContextSite    string

	Items []OrderItemRecord
}

// Validate reports whether the record carries its required external id.
func (r *OrderRecord) Validate() error {
	return validate.Struct(r)
}
