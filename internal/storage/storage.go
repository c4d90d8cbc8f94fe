// Package storage persists enriched records into the relational store.
// Each Load call is one transactional unit of work: mutable entities are
// upserted by their natural external id, history rows are appended, and any
// failure rolls the whole batch back.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	appmodels "github.com/noneca/meli-sync/internal/models"
	"github.com/noneca/meli-sync/internal/storage/models"
)

// ErrPersistence wraps every transactional failure so callers can classify
// storage errors without knowing the backend.
var ErrPersistence = errors.New("persistence failure")

// Storage defines the persistence interface for enriched records.
// Implementations must commit each batch atomically.
type Storage interface {
	// LoadItems upserts item records and appends one price history row per
	// record, upserting seller dimensions opportunistically.
	LoadItems(ctx context.Context, records []*appmodels.ItemRecord) error

	// LoadOrders upserts order records with their buyer/seller dimensions
	// and inserts line items fresh.
	LoadOrders(ctx context.Context, records []*appmodels.OrderRecord) error

	// Close releases database connection resources.
	Close() error
}

// gormStorage implements Storage on gorm with a DSN-selected relational
// driver (SQLite by default, Postgres for postgres:// DSNs).
type gormStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// openDialector picks the gorm driver from the DSN shape.
func openDialector(dsn string) gorm.Dialector {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return postgres.Open(dsn)
	}
	return sqlite.Open(dsn)
}

// New opens the store and creates the schema if absent. Schema creation is
// idempotent and always runs before any load.
func New(dsn string, logger *slog.Logger) (Storage, error) {
	db, err := gorm.Open(openDialector(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Seller{},
		&models.Buyer{},
		&models.Item{},
		&models.PriceHistory{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &gormStorage{db: db, logger: logger.With("component", "storage")}, nil
}

// LoadItems upserts each record into items, appends exactly one
// price_history row per record (even on update) and upserts the seller
// dimension when seller metadata is present. The batch commits atomically.
func (s *gormStorage) LoadItems(ctx context.Context, records []*appmodels.ItemRecord) error {
	if len(records) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		for _, rec := range records {
			if rec == nil || rec.ItemID == "" {
				continue // skip invalid entries
			}

			var existing models.Item
			err := tx.First(&existing, "item_id = ?", rec.ItemID).Error
			switch {
			case err == nil:
				// Overwrite only the mutable fields, never history.
				updates := map[string]any{
					"title":              rec.Title,
					"category_id":        rec.CategoryID,
					"current_price":      rec.CurrentPrice,
					"original_price":     rec.OriginalPrice,
					"available_quantity": rec.AvailableQuantity,
					"sold_quantity":      rec.SoldQuantity,
					"condition":          rec.Condition,
					"brand":              rec.Brand,
					"size":               rec.Size,
					"color":              rec.Color,
					"gender":             rec.Gender,
					"views":              rec.Views,
					"conversion_rate":    rec.ConversionRate,
					"description":        rec.Description,
					"rating_average":     rec.RatingAverage,
					"total_reviews":      rec.TotalReviews,
					"seller_id":          rec.SellerID,
					"updated_at":         now,
				}
				if err := tx.Model(&existing).Updates(updates).Error; err != nil {
					return err
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				item := models.Item{
					ItemID:            rec.ItemID,
					Title:             rec.Title,
					CategoryID:        rec.CategoryID,
					CurrentPrice:      rec.CurrentPrice,
					OriginalPrice:     rec.OriginalPrice,
					AvailableQuantity: rec.AvailableQuantity,
					SoldQuantity:      rec.SoldQuantity,
					Condition:         rec.Condition,
					Brand:             rec.Brand,
					Size:              rec.Size,
					Color:             rec.Color,
					Gender:            rec.Gender,
					Views:             rec.Views,
					ConversionRate:    rec.ConversionRate,
					Description:       rec.Description,
					RatingAverage:     rec.RatingAverage,
					TotalReviews:      rec.TotalReviews,
					SellerID:          rec.SellerID,
					CreatedAt:         rec.CreatedAt,
					UpdatedAt:         rec.UpdatedAt,
				}
				if err := tx.Create(&item).Error; err != nil {
					return err
				}
			default:
				return err
			}

			if rec.SellerID != 0 {
				if err := upsertSeller(tx, rec.SellerID, ""); err != nil {
					return err
				}
			}

			// Append-only audit trail of price/discount over time.
			history := models.PriceHistory{
				ItemID:             rec.ItemID,
				Price:              rec.CurrentPrice,
				DiscountPercentage: rec.DiscountPercentage,
				RecordedAt:         now,
			}
			if err := tx.Create(&history).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: load items: %w", ErrPersistence, err)
	}

	s.logger.Info("Loaded item batch", "records", len(records))
	return nil
}

// LoadOrders upserts order headers and dimensions; line items are inserted
// fresh for every line in the batch. Re-ingesting the same order id updates
// the header but duplicates its lines - at-least-once semantics, kept
// intentionally. The batch commits atomically.
func (s *gormStorage) LoadOrders(ctx context.Context, records []*appmodels.OrderRecord) error {
	if len(records) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rec := range records {
			if rec == nil || rec.OrderID == 0 {
				continue
			}

			if rec.SellerID != 0 {
				if err := upsertSeller(tx, rec.SellerID, rec.SellerNickname); err != nil {
					return err
				}
			}
			if rec.BuyerID != 0 {
				if err := upsertBuyer(tx, rec.BuyerID, rec.BuyerNickname); err != nil {
					return err
				}
			}

			var existing models.Order
			err := tx.First(&existing, "order_id = ?", rec.OrderID).Error
			switch {
			case err == nil:
				updates := map[string]any{
					"status":                rec.Status,
					"status_detail":         rec.StatusDetail,
					"total_amount":          rec.TotalAmount,
					"paid_amount":           rec.PaidAmount,
					"total_fees":            rec.TotalFees,
					"profit_margin":         rec.ProfitMargin,
					"currency_id":           rec.CurrencyID,
					"payment_method":        rec.PaymentMethod,
					"installments":          rec.Installments,
					"payment_status":        rec.PaymentStatus,
					"transaction_amount":    rec.TransactionAmount,
					"taxes_amount":          rec.TaxesAmount,
					"date_payment_approved": rec.DatePaymentApproved,
					"date_closed":           rec.DateClosed,
					"last_updated":          rec.LastUpdated,
					"total_items":           rec.TotalItems,
					"total_quantity":        rec.TotalQuantity,
					"avg_item_price":        rec.AvgItemPrice,
				}
				if err := tx.Model(&existing).Updates(updates).Error; err != nil {
					return err
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				order := models.Order{
					OrderID:             rec.OrderID,
					PackID:              rec.PackID,
					Status:              rec.Status,
					StatusDetail:        rec.StatusDetail,
					TotalAmount:         rec.TotalAmount,
					PaidAmount:          rec.PaidAmount,
					TotalFees:           rec.TotalFees,
					ProfitMargin:        rec.ProfitMargin,
					CurrencyID:          rec.CurrencyID,
					PaymentMethod:       rec.PaymentMethod,
					Installments:        rec.Installments,
					PaymentStatus:       rec.PaymentStatus,
					TransactionAmount:   rec.TransactionAmount,
					TaxesAmount:         rec.TaxesAmount,
					DatePaymentApproved: rec.DatePaymentApproved,
					DateCreated:         rec.DateCreated,
					DateClosed:          rec.DateClosed,
					LastUpdated:         rec.LastUpdated,
					TotalItems:          rec.TotalItems,
					TotalQuantity:       rec.TotalQuantity,
					AvgItemPrice:        rec.AvgItemPrice,
					ShippingID:          rec.ShippingID,
					ShippingCost:        rec.ShippingCost,
					SellerID:            rec.SellerID,
					BuyerID:             rec.BuyerID,
				}
				if err := tx.Create(&order).Error; err != nil {
					return err
				}
			default:
				return err
			}

			for _, line := range rec.Items {
				orderItem := models.OrderItem{
					OrderID:       rec.OrderID,
					ItemID:        line.ItemID,
					VariationID:   line.VariationID,
					Quantity:      line.Quantity,
					UnitPrice:     line.UnitPrice,
					FullUnitPrice: line.FullUnitPrice,
					SaleFee:       line.SaleFee,
					ListingType:   line.ListingType,
					Color:         line.Color,
					Size:          line.Size,
					SellerSKU:     line.SellerSKU,
				}
				if err := tx.Create(&orderItem).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: load orders: %w", ErrPersistence, err)
	}

	s.logger.Info("Loaded order batch", "records", len(records))
	return nil
}

// upsertSeller inserts or refreshes a seller dimension row. The nickname is
// only written when observed, so a bare seller id never erases richer data.
func upsertSeller(tx *gorm.DB, sellerID int64, nickname string) error {
	var seller models.Seller
	err := tx.First(&seller, "seller_id = ?", sellerID).Error
	switch {
	case err == nil:
		if nickname != "" && nickname != seller.Nickname {
			return tx.Model(&seller).Update("nickname", nickname).Error
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return tx.Create(&models.Seller{SellerID: sellerID, Nickname: nickname}).Error
	default:
		return err
	}
}

// upsertBuyer inserts or refreshes a buyer dimension row.
func upsertBuyer(tx *gorm.DB, buyerID int64, nickname string) error {
	var buyer models.Buyer
	err := tx.First(&buyer, "buyer_id = ?", buyerID).Error
	switch {
	case err == nil:
		if nickname != "" && nickname != buyer.Nickname {
			return tx.Model(&buyer).Update("nickname", nickname).Error
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return tx.Create(&models.Buyer{BuyerID: buyerID, Nickname: nickname}).Error
	default:
		return err
	}
}

// Close closes the underlying database connection.
func (s *gormStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
