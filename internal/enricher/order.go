package enricher

import (
	"strings"
	"time"

	"github.com/noneca/meli-sync/internal/meli"
	"github.com/noneca/meli-sync/internal/models"
	"github.com/noneca/meli-sync/utils"
)

// parseTime parses an ISO 8601 timestamp (with Z or a literal UTC offset)
// and converts it to UTC. Unparseable or empty strings yield nil.
func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}

// toSaoPaulo normalizes a parsed timestamp to the storage timezone.
func toSaoPaulo(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	sp := utils.ToSaoPaulo(*t)
	return &sp
}

// paymentInfo is the flattened view of an order's first payment. Orders with
// multiple payments are not split.
type paymentInfo struct {
	method            string
	installments      int
	status            string
	transactionAmount float64
	taxesAmount       float64
	dateApproved      *time.Time
}

// extractPayment flattens the first payment entry, if any.
func extractPayment(payments []meli.Payment) paymentInfo {
	if len(payments) == 0 {
		return paymentInfo{}
	}

	p := payments[0]
	return paymentInfo{
		method:            p.PaymentMethodID,
		installments:      p.Installments,
		status:            p.Status,
		transactionAmount: p.TransactionAmount,
		taxesAmount:       p.TaxesAmount,
		dateApproved:      toSaoPaulo(parseTime(p.DateApproved)),
	}
}

// extractLines normalizes embedded order lines, pulling color and size out of
// the variation attribute list.
func extractLines(lines []meli.OrderLine) []models.OrderItemRecord {
	if len(lines) == 0 {
		return nil
	}

	records := make([]models.OrderItemRecord, 0, len(lines))
	for _, line := range lines {
		variations := make(map[string]string, len(line.Item.VariationAttributes))
		for _, attr := range line.Item.VariationAttributes {
			variations[strings.ToLower(attr.Name)] = attr.ValueName
		}

		records = append(records, models.OrderItemRecord{
			ItemID:        line.Item.ID,
			Title:         line.Item.Title,
			CategoryID:    line.Item.CategoryID,
			VariationID:   line.Item.VariationID,
			Condition:     line.Item.Condition,
			Quantity:      line.Quantity,
			UnitPrice:     line.UnitPrice,
			FullUnitPrice: line.FullUnitPrice,
			SaleFee:       line.SaleFee,
			ListingType:   line.ListingTypeID,
			Color:         variations["cor"],
			Size:          variations["tamanho"],
			SellerSKU:     line.Item.SellerSKU,
		})
	}
	return records
}

// profitMargin computes net revenue after fees as a percentage of the gross
// amount, guarding against zero or missing totals.
func profitMargin(totalAmount, fees float64) float64 {
	if totalAmount <= 0 {
		return 0.0
	}
	return round((totalAmount-fees)/totalAmount*100, 2)
}

// Order enriches a single raw order: timestamps normalized to São Paulo,
// line items and first payment flattened, fee and margin metrics computed.
// A nil input yields nil rather than an error.
func Order(raw *meli.Order) *models.OrderRecord {
	if raw == nil {
		return nil
	}

	items := extractLines(raw.OrderItems)
	payment := extractPayment(raw.Payments)

	totalFees := 0.0
	totalQuantity := 0
	for _, item := range items {
		totalFees += item.SaleFee
		totalQuantity += item.Quantity
	}

	avgItemPrice := 0.0
	if len(items) > 0 {
		avgItemPrice = round(raw.TotalAmount/float64(len(items)), 2)
	}

	return &models.OrderRecord{
		OrderID:      raw.ID,
		PackID:       raw.PackID,
		Status:       raw.Status,
		StatusDetail: raw.StatusDetail,

		TotalAmount:  raw.TotalAmount,
		PaidAmount:   raw.PaidAmount,
		CurrencyID:   raw.CurrencyID,
		TotalFees:    totalFees,
		ProfitMargin: profitMargin(raw.TotalAmount, totalFees),

		PaymentMethod:       payment.method,
		Installments:        payment.installments,
		PaymentStatus:       payment.status,
		TransactionAmount:   payment.transactionAmount,
		TaxesAmount:         payment.taxesAmount,
		DatePaymentApproved: payment.dateApproved,

		BuyerID:        raw.Buyer.ID,
		BuyerNickname:  raw.Buyer.Nickname,
		SellerID:       raw.Seller.ID,
		SellerNickname: raw.Seller.Nickname,

		DateCreated: toSaoPaulo(parseTime(raw.DateCreated)),
		DateClosed:  toSaoPaulo(parseTime(raw.DateClosed)),
		LastUpdated: toSaoPaulo(parseTime(raw.LastUpdated)),
		ProcessedAt: time.Now().UTC(),

		TotalItems:    len(items),
		TotalQuantity: totalQuantity,
		AvgItemPrice:  avgItemPrice,

		ShippingID:   raw.Shipping.ID,
		ShippingCost: raw.ShippingCost,

		Tags:           raw.Tags,
		ContextChannel: raw.Context.Channel,
		ContextSite:    raw.Context.Site,

		Items: items,
	}
}

// Orders enriches a list of raw orders, filtering out nil entries.
func Orders(raws []*meli.Order) []*models.OrderRecord {
	if len(raws) == 0 {
		return nil
	}

	records := make([]*models.OrderRecord, 0, len(raws))
	for _, raw := range raws {
		if raw == nil {
			continue
		}
		records = append(records, Order(raw))
	}
	return records
}
