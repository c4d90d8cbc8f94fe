package meli

// Raw API payload types, normalized from Mercado Livre's JSON. These carry
// exactly what the upstream returns; enrichment into analytics records
// happens in the enricher package.

// User is the seller/user profile payload.
type User struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
	SiteID   string `json:"site_id"`
}

// Attribute is one entry of an item's attributes list.
type Attribute struct {
	ID        string `json:"id"`
	ValueName string `json:"value_name"`
	ValueID   string `json:"value_id"`
}

// Item is a catalog listing detail payload. Description, RatingAverage and
// TotalReviews are filled by the extractor's optional enrichment fetches, not
// by the item detail endpoint itself.
type Item struct {
	ID                string      `json:"id"`
	Title             string      `json:"title"`
	CategoryID        string      `json:"category_id"`
	Price             float64     `json:"price"`
	OriginalPrice     float64     `json:"original_price"`
	AvailableQuantity int         `json:"available_quantity"`
	SoldQuantity      int         `json:"sold_quantity"`
	Condition         string      `json:"condition"`
	Views             int         `json:"views"`
	SellerID          int64       `json:"seller_id"`
	Attributes        []Attribute `json:"attributes"`

	Description   string  `json:"description,omitempty"`
	RatingAverage float64 `json:"rating_average,omitempty"`
	TotalReviews  int     `json:"total_reviews,omitempty"`
}

// ItemSearchResponse is the payload of /users/{id}/items/search, which
// returns item IDs only.
type ItemSearchResponse struct {
	Results []string `json:"results"`
	Paging  Paging   `json:"paging"`
}

// Description is the payload of /items/{id}/description.
type Description struct {
	PlainText string `json:"plain_text"`
}

// Reviews is the aggregate payload of /reviews/item/{id}.
type Reviews struct {
	RatingAverage float64 `json:"rating_average"`
	TotalReviews  int     `json:"total_reviews"`
}

// Paging is the upstream pagination metadata echoed by search endpoints.
type Paging struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Participant identifies a buyer or seller embedded in an order.
type Participant struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
}

// VariationAttribute is a line-item variation such as color or size.
type VariationAttribute struct {
	Name      string `json:"name"`
	ValueName string `json:"value_name"`
}

// LineItem is the nested item object inside an order line.
type LineItem struct {
	ID                  string               `json:"id"`
	Title               string               `json:"title"`
	CategoryID          string               `json:"category_id"`
	VariationID         int64                `json:"variation_id"`
	Condition           string               `json:"condition"`
	SellerSKU           string               `json:"seller_sku"`
	VariationAttributes []VariationAttribute `json:"variation_attributes"`
}

// OrderLine is one order_items entry: a line item with its quantities and fees.
type OrderLine struct {
	Item          LineItem `json:"item"`
	Quantity      int      `json:"quantity"`
	UnitPrice     float64  `json:"unit_price"`
	FullUnitPrice float64  `json:"full_unit_price"`
	SaleFee       float64  `json:"sale_fee"`
	ListingTypeID string   `json:"listing_type_id"`
}

// Payment is one payments entry of an order.
type Payment struct {
	TotalPaidAmount   float64 `json:"total_paid_amount"`
	TransactionAmount float64 `json:"transaction_amount"`
	TaxesAmount       float64 `json:"taxes_amount"`
	PaymentMethodID   string  `json:"payment_method_id"`
	Installments      int     `json:"installments"`
	Status            string  `json:"status"`
	DateApproved      string  `json:"date_approved"`
}

// Shipping is the shipping sub-object of an order.
type Shipping struct {
	ID int64 `json:"id"`
}

// OrderContext carries sale channel metadata.
type OrderContext struct {
	Channel string `json:"channel"`
	Site    string `json:"site"`
}

// Order is an order header payload including embedded line items and
// payments. No separate detail fetch is needed.
type Order struct {
	ID           int64        `json:"id"`
	PackID       int64        `json:"pack_id"`
	Status       string       `json:"status"`
	StatusDetail string       `json:"status_detail"`
	TotalAmount  float64      `json:"total_amount"`
	PaidAmount   float64      `json:"paid_amount"`
	CurrencyID   string       `json:"currency_id"`
	DateCreated  string       `json:"date_created"`
	DateClosed   string       `json:"date_closed"`
	LastUpdated  string       `json:"last_updated"`
	Buyer        Participant  `json:"buyer"`
	Seller       Participant  `json:"seller"`
	OrderItems   []OrderLine  `json:"order_items"`
	Payments     []Payment    `json:"payments"`
	Shipping     Shipping     `json:"shipping"`
	ShippingCost float64      `json:"shipping_cost"`
	Tags         []string     `json:"tags"`
	Context      OrderContext `json:"context"`
}

// OrderSearchResponse is the payload of /orders/search.
type OrderSearchResponse struct {
	Results []*Order `json:"results"`
	Paging  Paging   `json:"paging"`
}

// Question is one entry of the questions search payload.
type Question struct {
	ID     int64  `json:"id"`
	Text   string `json:"text"`
	Status string `json:"status"`
}

// QuestionsResponse is the payload of /questions/search.
type QuestionsResponse struct {
	Questions []Question `json:"questions"`
	Total     int        `json:"total"`
}

// ListingType is one site listing type entry.
type ListingType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListingExposure is one site listing exposure level.
type ListingExposure struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	HomePage         bool   `json:"home_page"`
	PriorityInSearch int    `json:"priority_in_search"`
}

// Trend is one trending search keyword entry.
type Trend struct {
	Keyword string `json:"keyword"`
	URL     string `json:"url"`
}

// Category is a site category or category detail payload.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
