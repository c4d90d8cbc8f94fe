// Package pipeline sequences extraction, enrichment and persistence per
// seller and aggregates the results. It is the only component aware of both
// the catalog and order tracks at once.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/noneca/meli-sync/configs"
	"github.com/noneca/meli-sync/internal/enricher"
	"github.com/noneca/meli-sync/internal/extractor"
	"github.com/noneca/meli-sync/internal/models"
	"github.com/noneca/meli-sync/internal/storage"
)

// Track names used in results.
const (
	TrackItems  = "items"
	TrackOrders = "orders"
)

// TrackResult records the outcome of one track for one seller. An empty
// extraction is a soft failure: Success is false but the run continues.
type TrackResult struct {
	SellerID string
	Track    string
	Success  bool
	Records  int
	Error    string
	Duration time.Duration
}

// Results aggregates all track outcomes of a run.
type Results struct {
	Start  time.Time
	End    time.Time
	Tracks []TrackResult
}

// Failed reports whether any seller/track failed.
func (r *Results) Failed() bool {
	for _, t := range r.Tracks {
		if !t.Success {
			return true
		}
	}
	return false
}

// add appends a track result and returns it for logging convenience.
func (r *Results) add(t TrackResult) {
	r.Tracks = append(r.Tracks, t)
}

// Pipeline wires the extractor, enrichers and storage into sequential
// per-seller runs.
type Pipeline struct {
	extractor *extractor.Extractor
	store     storage.Storage
	cfg       *configs.PipelineConfig
	logger    *slog.Logger
}

// New creates a pipeline with injected collaborators.
func New(ext *extractor.Extractor, store storage.Storage, cfg *configs.PipelineConfig, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		extractor: ext,
		store:     store,
		cfg:       cfg,
		logger:    logger.With("component", "pipeline"),
	}
}

// Run processes every configured seller end-to-end, one at a time. Sellers
// and tracks are strictly sequential to respect the shared rate limiter.
func (p *Pipeline) Run(ctx context.Context) *Results {
	results := &Results{Start: time.Now()}
	defer func() { results.End = time.Now() }()

	for _, sellerID := range p.cfg.Sellers {
		if ctx.Err() != nil {
			p.logger.Warn("Run cancelled", "seller", sellerID)
			break
		}

		p.logger.Info("Processing seller", "seller", sellerID, "track", p.cfg.Track)

		if p.cfg.Track == "items" || p.cfg.Track == "full" {
			results.add(p.runItems(ctx, sellerID))
		}
		if p.cfg.Track == "orders" || p.cfg.Track == "full" {
			results.add(p.runOrders(ctx, sellerID))
		}
	}

	return results
}

// runItems executes extract -> enrich -> load for the catalog track.
func (p *Pipeline) runItems(ctx context.Context, sellerID string) TrackResult {
	start := time.Now()
	result := TrackResult{SellerID: sellerID, Track: TrackItems}

	raws := p.extractor.ItemsWithEnrichment(ctx, sellerID, p.cfg.MaxItems,
		p.cfg.IncludeDescriptions, p.cfg.IncludeReviews)
	if len(raws) == 0 {
		result.Error = "no items extracted"
		result.Duration = time.Since(start)
		p.logger.Warn("Item track soft failure", "seller", sellerID, "reason", result.Error)
		return result
	}

	records := p.validateItems(enricher.Items(raws))

	if err := p.store.LoadItems(ctx, records); err != nil {
		result.Error = err.Error()
		result.Duration = time.Since(start)
		p.logger.Error("Item load failed", "seller", sellerID, "error", err)
		return result
	}

	result.Success = true
	result.Records = len(records)
	result.Duration = time.Since(start)
	p.logger.Info("Item track completed", "seller", sellerID, "records", result.Records, "duration", result.Duration)
	return result
}

// runOrders executes extract -> enrich -> load for the order track.
func (p *Pipeline) runOrders(ctx context.Context, sellerID string) TrackResult {
	start := time.Now()
	result := TrackResult{SellerID: sellerID, Track: TrackOrders}

	raws := p.extractor.Orders(ctx, sellerID, extractor.OrdersOptions{
		DateFrom:   p.cfg.OrdersDateFrom,
		DateTo:     p.cfg.OrdersDateTo,
		Limit:      p.cfg.PageLimit,
		MaxRecords: p.cfg.MaxOrders,
	})
	if len(raws) == 0 {
		result.Error = "no orders extracted"
		result.Duration = time.Since(start)
		p.logger.Warn("Order track soft failure", "seller", sellerID, "reason", result.Error)
		return result
	}

	records := p.validateOrders(enricher.Orders(raws))

	if err := p.store.LoadOrders(ctx, records); err != nil {
		result.Error = err.Error()
		result.Duration = time.Since(start)
		p.logger.Error("Order load failed", "seller", sellerID, "error", err)
		return result
	}

	result.Success = true
	result.Records = len(records)
	result.Duration = time.Since(start)
	p.logger.Info("Order track completed", "seller", sellerID, "records", result.Records, "duration", result.Duration)
	return result
}

// validateItems drops records missing required fields, logging each one.
func (p *Pipeline) validateItems(records []*models.ItemRecord) []*models.ItemRecord {
	valid := make([]*models.ItemRecord, 0, len(records))
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			p.logger.Warn("Dropping invalid item record", "error", err)
			continue
		}
		valid = append(valid, rec)
	}
	return valid
}

// validateOrders drops records missing required fields, logging each one.
func (p *Pipeline) validateOrders(records []*models.OrderRecord) []*models.OrderRecord {
	valid := make([]*models.OrderRecord, 0, len(records))
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			p.logger.Warn("Dropping invalid order record", "error", err)
			continue
		}
		valid = append(valid, rec)
	}
	return valid
}
