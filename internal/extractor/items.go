// Package extractor assembles complete resource sets by paging over the API
// gateway. Per-record failures are logged and skipped; an empty result is the
// soft-failure signal callers must handle, extraction never panics the run.
package extractor

import (
	"context"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/noneca/meli-sync/internal/meli"
)

// itemPageSize is the fixed page size used against the item search endpoint.
const itemPageSize = 100

// defaultItemStatus filters the item search to active listings.
const defaultItemStatus = "active"

// Gateway is the slice of the API client the extractors depend on.
type Gateway interface {
	SearchItemIDs(ctx context.Context, sellerID string, limit, offset int, status string) (*meli.ItemSearchResponse, error)
	GetItem(ctx context.Context, itemID string) (*meli.Item, error)
	GetDescription(ctx context.Context, itemID string) (*meli.Description, error)
	GetReviews(ctx context.Context, itemID string) (*meli.Reviews, error)
	SearchOrders(ctx context.Context, p meli.OrderSearchParams) (*meli.OrderSearchResponse, error)
}

// Extractor pages over the gateway to assemble catalog and order batches.
// Detail fetches are issued one at a time, paced by a shared limiter, to
// respect the gateway's call quota.
type Extractor struct {
	client Gateway
	logger *slog.Logger
	pace   *rate.Limiter
}

// New creates an extractor. requestsPerSecond paces the per-item detail and
// enrichment fetches; the hard per-minute quota still lives in the gateway.
func New(client Gateway, requestsPerSecond float64, logger *slog.Logger) *Extractor {
	return &Extractor{
		client: client,
		logger: logger.With("component", "extractor"),
		pace:   rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// Items extracts up to limit catalog listings for a seller. limit <= 0 means
// all available. The search endpoint returns identifiers only, so every id
// costs one extra detail fetch; a failed detail fetch skips that id.
func (e *Extractor) Items(ctx context.Context, sellerID string, limit int) []*meli.Item {
	if sellerID == "" {
		e.logger.Error("Seller ID is required")
		return nil
	}

	if limit <= 0 {
		e.logger.Info("Starting extraction of all items", "seller", sellerID)
	} else {
		e.logger.Info("Starting item extraction", "seller", sellerID, "limit", limit)
	}

	var collected []*meli.Item
	offset := 0

	for {
		pageLimit := itemPageSize
		if limit > 0 {
			remaining := limit - len(collected)
			if remaining <= 0 {
				break
			}
			if remaining < pageLimit {
				pageLimit = remaining
			}
		}

		page, err := e.client.SearchItemIDs(ctx, sellerID, pageLimit, offset, defaultItemStatus)
		if err != nil {
			e.logger.Error("Item search page failed", "seller", sellerID, "offset", offset, "error", err)
			break
		}
		if len(page.Results) == 0 {
			break
		}

		for _, itemID := range page.Results {
			if err := e.pace.Wait(ctx); err != nil {
				e.logger.Error("Extraction cancelled", "seller", sellerID, "error", err)
				return e.trim(collected, limit, sellerID)
			}

			item, err := e.client.GetItem(ctx, itemID)
			if err != nil {
				e.logger.Warn("Failed to fetch item detail, skipping", "item", itemID, "error", err)
				continue
			}
			collected = append(collected, item)
		}

		offset += len(page.Results)

		// A short page signals end of data.
		if len(page.Results) < pageLimit {
			break
		}
	}

	return e.trim(collected, limit, sellerID)
}

func (e *Extractor) trim(items []*meli.Item, limit int, sellerID string) []*meli.Item {
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	e.logger.Info("Item extraction completed", "seller", sellerID, "items", len(items))
	return items
}

// ItemsWithEnrichment extracts items and augments each with description text
// and/or review aggregates. Per-item enrichment failures degrade to missing
// fields rather than aborting the batch.
func (e *Extractor) ItemsWithEnrichment(ctx context.Context, sellerID string, limit int, includeDescriptions, includeReviews bool) []*meli.Item {
	items := e.Items(ctx, sellerID, limit)
	if len(items) == 0 || (!includeDescriptions && !includeReviews) {
		return items
	}

	e.logger.Info("Starting item enrichment", "seller", sellerID, "items", len(items))

	for i, item := range items {
		if err := e.pace.Wait(ctx); err != nil {
			e.logger.Error("Enrichment cancelled", "seller", sellerID, "error", err)
			break
		}

		if includeDescriptions {
			desc, err := e.client.GetDescription(ctx, item.ID)
			if err != nil {
				e.logger.Warn("Failed to fetch description", "item", item.ID, "error", err)
			} else {
				item.Description = desc.PlainText
			}
		}

		if includeReviews {
			reviews, err := e.client.GetReviews(ctx, item.ID)
			if err != nil {
				e.logger.Warn("Failed to fetch reviews", "item", item.ID, "error", err)
			} else {
				item.RatingAverage = reviews.RatingAverage
				item.TotalReviews = reviews.TotalReviews
			}
		}

		if (i+1)%25 == 0 {
			e.logger.Info("Enrichment progress", "seller", sellerID, "done", i+1, "total", len(items))
		}
	}

	return items
}
