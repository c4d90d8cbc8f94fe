package extractor

import (
	"context"

	"github.com/noneca/meli-sync/internal/meli"
)

// defaultOrderPageLimit is used when the caller does not set a page size.
const defaultOrderPageLimit = 50

// OrdersOptions are the filters and bounds for order extraction.
type OrdersOptions struct {
	// DateFrom / DateTo bound the order creation date (ISO 8601, optional).
	DateFrom string
	DateTo   string

	// Sort is the sort field; "date_created" (the default) maps to the
	// API's date_asc ordering.
	Sort string

	// Limit is the page size per search call.
	Limit int

	// MaxRecords caps the total number of records. 0 means all available.
	MaxRecords int
}

// Orders extracts order headers for a seller. Unlike catalog extraction the
// search results embed line items and payments, so there is no detail fetch.
// Paging follows the endpoint's own returned metadata rather than a
// client-computed cursor, since the upstream API dictates page boundaries.
func (e *Extractor) Orders(ctx context.Context, sellerID string, opts OrdersOptions) []*meli.Order {
	if sellerID == "" {
		e.logger.Error("Seller ID is required")
		return nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultOrderPageLimit
	}

	e.logger.Info("Starting order extraction",
		"seller", sellerID, "from", opts.DateFrom, "to", opts.DateTo)

	var collected []*meli.Order
	offset := 0

	for {
		page, err := e.client.SearchOrders(ctx, meli.OrderSearchParams{
			SellerID: sellerID,
			DateFrom: opts.DateFrom,
			DateTo:   opts.DateTo,
			Sort:     opts.Sort,
			Limit:    limit,
			Offset:   offset,
		})
		if err != nil {
			e.logger.Error("Order search page failed", "seller", sellerID, "offset", offset, "error", err)
			break
		}

		if len(page.Results) == 0 {
			break
		}

		collected = append(collected, page.Results...)
		e.logger.Info("Fetched order page",
			"seller", sellerID, "batch", len(page.Results), "offset", offset, "total", len(collected))

		if opts.MaxRecords > 0 && len(collected) >= opts.MaxRecords {
			collected = collected[:opts.MaxRecords]
			e.logger.Info("Reached max records cap", "seller", sellerID, "max", opts.MaxRecords)
			break
		}

		// Advance using the server-reported paging, falling back to our own
		// cursor when the response omits it.
		if page.Paging.Limit > 0 {
			offset = page.Paging.Offset + page.Paging.Limit
		} else {
			offset += limit
		}
	}

	e.logger.Info("Order extraction completed", "seller", sellerID, "orders", len(collected))
	return collected
}
