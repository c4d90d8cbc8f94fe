// Package enricher turns raw API payloads into normalized analytics records.
// Everything here is a pure function: no I/O, no shared state.
package enricher

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/noneca/meli-sync/internal/meli"
	"github.com/noneca/meli-sync/internal/models"
)

// Attribute keys scanned from the raw attributes list.
const (
	attrBrand  = "BRAND"
	attrSize   = "SIZE"
	attrColor  = "MAIN_COLOR"
	attrGender = "GENDER"
)

// round rounds half away from zero to the given number of decimal places.
func round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// getAttr extracts an attribute value by key, preferring value_name over
// value_id. Empty strings count as absent.
func getAttr(attrs []meli.Attribute, key string) string {
	for _, a := range attrs {
		if a.ID != key {
			continue
		}
		if a.ValueName != "" {
			return a.ValueName
		}
		return a.ValueID
	}
	return ""
}

// safeDivide divides guarding against a zero denominator, rounding to the
// given precision.
func safeDivide(numerator, denominator float64, places int32) float64 {
	if denominator == 0 {
		return 0.0
	}
	return round(numerator/denominator, places)
}

// discountPercentage computes the discount between original and current
// price. Price increases are never reported as a discount.
func discountPercentage(original, current float64) float64 {
	if original == 0 || original <= current {
		return 0.0
	}
	return round((original-current)/original*100, 2)
}

// Item enriches a single raw listing with computed metrics and extracted
// attributes. A nil or id-less input yields nil rather than an error.
func Item(raw *meli.Item) *models.ItemRecord {
	if raw == nil || raw.ID == "" {
		return nil
	}

	currentPrice := raw.Price
	originalPrice := raw.OriginalPrice
	if originalPrice == 0 {
		originalPrice = currentPrice
	}

	now := time.Now().UTC()

	return &models.ItemRecord{
		ItemID:             raw.ID,
		Title:              raw.Title,
		CategoryID:         raw.CategoryID,
		CurrentPrice:       currentPrice,
		OriginalPrice:      originalPrice,
		AvailableQuantity:  raw.AvailableQuantity,
		SoldQuantity:       raw.SoldQuantity,
		Condition:          raw.Condition,
		Brand:              getAttr(raw.Attributes, attrBrand),
		Size:               getAttr(raw.Attributes, attrSize),
		Color:              getAttr(raw.Attributes, attrColor),
		Gender:             getAttr(raw.Attributes, attrGender),
		Views:              raw.Views,
		ConversionRate:     safeDivide(float64(raw.SoldQuantity), float64(raw.Views), 4),
		DiscountPercentage: discountPercentage(originalPrice, currentPrice),
		SellerID:           raw.SellerID,
		Description:        raw.Description,
		RatingAverage:      raw.RatingAverage,
		TotalReviews:       raw.TotalReviews,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// Items enriches a list of raw listings, filtering out nil and id-less entries.
func Items(raws []*meli.Item) []*models.ItemRecord {
	if len(raws) == 0 {
		return nil
	}

	records := make([]*models.ItemRecord, 0, len(raws))
	for _, raw := range raws {
		if rec := Item(raw); rec != nil {
			records = append(records, rec)
		}
	}
	return records
}
