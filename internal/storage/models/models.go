// Package models defines the relational entities of the analytics store,
// laid out as a small star schema: item/order facts with seller and buyer
// dimensions and an append-only price history.
package models

import "time"

// Item is a catalog listing row. Identified by its natural external id;
// mutable fields are overwritten on re-extraction, history never is.
type Item struct {
	ItemID            string `gorm:"primaryKey;size:50"`
	Title             string `gorm:"size:500"`
	CategoryID        string `gorm:"size:50;index"`
	CurrentPrice      float64
	OriginalPrice     float64
	AvailableQuantity int
	SoldQuantity      int
	Condition         string `gorm:"size:20"`
	Brand             string `gorm:"size:100;index"`
	Size              string `gorm:"size:20"`
	Color             string `gorm:"size:50"`
	Gender            string `gorm:"size:20"`
	Views             int
	ConversionRate    float64
	Description       string
	RatingAverage     float64
	TotalReviews      int
	SellerID          int64 `gorm:"index"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Item) TableName() string { return "items" }

// PriceHistory is an append-only snapshot of an item's price and discount.
// Rows are only ever inserted, one per load cycle per item.
type PriceHistory struct {
	ID                 uint   `gorm:"primaryKey;autoIncrement"`
	ItemID             string `gorm:"size:50;index"`
	Price              float64
	DiscountPercentage float64
	RecordedAt         time.Time `gorm:"index"`
}

func (PriceHistory) TableName() string { return "price_history" }

// Seller is a dimension row, upserted opportunistically whenever richer
// metadata is observed.
type Seller struct {
	SellerID              int64  `gorm:"primaryKey"`
	Nickname              string `gorm:"size:100"`
	ReputationScore       float64
	TransactionsCompleted int
}

func (Seller) TableName() string { return "sellers" }

// Buyer is a dimension row for order counterparties.
type Buyer struct {
	BuyerID  int64  `gorm:"primaryKey"`
	Nickname string `gorm:"size:100"`
}

func (Buyer) TableName() string { return "buyers" }

// Order is an order header row. Status and financial fields stay mutable
// while the order can still change upstream.
type Order struct {
	OrderID             int64  `gorm:"primaryKey"`
	PackID              int64
	Status              string `gorm:"size:50;index"`
	StatusDetail        string `gorm:"size:100"`
	TotalAmount         float64
	PaidAmount          float64
	TotalFees           float64
	ProfitMargin        float64
	CurrencyID          string `gorm:"size:10"`
	PaymentMethod       string `gorm:"size:50"`
	Installments        int
	PaymentStatus       string `gorm:"size:50"`
	TransactionAmount   float64
	TaxesAmount         float64
	DatePaymentApproved *time.Time
	DateCreated         *time.Time `gorm:"index"`
	DateClosed          *time.Time
	LastUpdated         *time.Time
	TotalItems          int
	TotalQuantity       int
	AvgItemPrice        float64
	ShippingID          int64
	ShippingCost        float64
	SellerID            int64 `gorm:"index"`
	BuyerID             int64 `gorm:"index"`
}

func (Order) TableName() string { return "orders" }

// OrderItem is an order line row. Lines are inserted fresh on every
// ingestion of their order; there is no update path.
type OrderItem struct {
	OrderItemID   uint   `gorm:"primaryKey;autoIncrement"`
	OrderID       int64  `gorm:"index"`
	ItemID        string `gorm:"size:50;index"`
	VariationID   int64
	Quantity      int
	UnitPrice     float64
	FullUnitPrice float64
	SaleFee       float64
	ListingType   string `gorm:"size:50"`
	Color         string `gorm:"size:50"`
	Size          string `gorm:"size:20"`
	SellerSKU     string `gorm:"size:100"`
}

func (OrderItem) TableName() string { return "order_items" }
