package inventory

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"erp.GO/config"
	catalogEntity "erp.GO/model/entity/catalog"
	inventoryEntity "erp.GO/model/entity/inventory"
	catalogRepo "erp.GO/model/repository/catalog"
	inventoryRepo "erp.GO/model/repository/inventory"
	entity "erp.GO/model/entity"
	"erp.GO/service/audit"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrProductNotFound   = errors.New("product not found")
	ErrEntryNotFound     = errors.New("inventory record not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// statusCacheKey holds the cached stock status report in Redis.
const statusCacheKey = "erp:inventory:status"
const statusCacheTTL = 60 * time.Second

// LedgerService owns every mutation of Product.quantity. Each operation runs
// inside one transaction that writes the ledger row and the quantity change
// together; the product row is read under a row lock so concurrent
// check-then-write sequences serialize.
type LedgerService struct {
	db    *gorm.DB
	repo  *inventoryRepo.InventoryRepository
	redis *redis.Client
}

func NewLedgerService(db *gorm.DB, redisClient *redis.Client) *LedgerService {
	return &LedgerService{
		db:    db,
		repo:  inventoryRepo.NewInventoryRepository(db),
		redis: redisClient,
	}
}

// InvalidateStatusCache drops the cached status report after any stock change.
func InvalidateStatusCache(rdb *redis.Client) {
	if rdb == nil {
		return
	}
	if err := rdb.Del(config.RedisCtx(), statusCacheKey).Err(); err != nil {
		log.Printf("inventory: status cache invalidation failed: %v", err)
	}
}

// StockInRequest creates one stock-increasing ledger entry.
type StockInRequest struct {
	ProductID     uint    `json:"productId"`
	Quantity      int     `json:"quantity"`
	UnitPrice     float64 `json:"unitPrice"`
	Supplier      string  `json:"supplier"`
	InvoiceNumber *string `json:"invoiceNumber"`
}

func (r StockInRequest) validate() error {
	if r.ProductID == 0 {
		return fmt.Errorf("%w: productId is required", ErrValidation)
	}
	if r.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	if r.UnitPrice < 0 {
		return fmt.Errorf("%w: unitPrice must not be negative", ErrValidation)
	}
	if r.Supplier == "" {
		return fmt.Errorf("%w: supplier is required", ErrValidation)
	}
	return nil
}

// StockOutRequest creates one stock-decreasing ledger entry.
type StockOutRequest struct {
	ProductID uint   `json:"productId"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
}

func (r StockOutRequest) validate() error {
	if r.ProductID == 0 {
		return fmt.Errorf("%w: productId is required", ErrValidation)
	}
	if r.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	return nil
}

// RecordStockIn creates an InventoryIn entry and increments the product
// quantity atomically.
func (s *LedgerService) RecordStockIn(req StockInRequest, actor *entity.User) (*inventoryEntity.InventoryIn, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var entryID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		product, err := lockProduct(tx, req.ProductID)
		if err != nil {
			return err
		}

		entry := inventoryEntity.InventoryIn{
			ProductID:     product.EntityID,
			Quantity:      req.Quantity,
			UnitPrice:     req.UnitPrice,
			TotalPrice:    float64(req.Quantity) * req.UnitPrice,
			Supplier:      req.Supplier,
			InvoiceNumber: req.InvoiceNumber,
			CreatedByID:   actorID(actor),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		if err := adjustQuantity(tx, product.EntityID, req.Quantity); err != nil {
			return err
		}
		entryID = entry.EntryID
		return audit.Record(tx, actor, "inventory_in.create", "inventory_in", entry.EntryID, req)
	})
	if err != nil {
		return nil, err
	}

	InvalidateStatusCache(s.redis)
	return s.repo.FindInByID(entryID)
}

// RecordStockOut creates an InventoryOut entry and decrements the product
// quantity, failing when the request exceeds on-hand stock.
func (s *LedgerService) RecordStockOut(req StockOutRequest, actor *entity.User) (*inventoryEntity.InventoryOut, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var entryID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		product, err := lockProduct(tx, req.ProductID)
		if err != nil {
			return err
		}
		if product.Quantity < req.Quantity {
			return fmt.Errorf("product %s: %w", product.Name, ErrInsufficientStock)
		}

		entry := inventoryEntity.InventoryOut{
			ProductID:   product.EntityID,
			Quantity:    req.Quantity,
			Reason:      req.Reason,
			CreatedByID: actorID(actor),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		if err := adjustQuantity(tx, product.EntityID, -req.Quantity); err != nil {
			return err
		}
		entryID = entry.EntryID
		return audit.Record(tx, actor, "inventory_out.create", "inventory_out", entry.EntryID, req)
	})
	if err != nil {
		return nil, err
	}

	InvalidateStatusCache(s.redis)
	return s.repo.FindOutByID(entryID)
}

// UpdateStockIn rewrites an InventoryIn entry: the old quantity is reversed
// off the product before the new one is applied, all in one transaction.
func (s *LedgerService) UpdateStockIn(id uint, req StockInRequest, actor *entity.User) (*inventoryEntity.InventoryIn, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	if req.UnitPrice < 0 {
		return nil, fmt.Errorf("%w: unitPrice must not be negative", ErrValidation)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var entry inventoryEntity.InventoryIn
		if err := tx.First(&entry, "entry_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEntryNotFound
			}
			return err
		}
		product, err := lockProduct(tx, entry.ProductID)
		if err != nil {
			return err
		}

		// Reversing the old intake must not strand stock that was already
		// consumed by later outflows.
		newQuantity := product.Quantity - entry.Quantity + req.Quantity
		if newQuantity < 0 {
			return fmt.Errorf("product %s: %w", product.Name, ErrInsufficientStock)
		}

		entry.Quantity = req.Quantity
		entry.UnitPrice = req.UnitPrice
		entry.TotalPrice = float64(req.Quantity) * req.UnitPrice
		if req.Supplier != "" {
			entry.Supplier = req.Supplier
		}
		if req.InvoiceNumber != nil {
			entry.InvoiceNumber = req.InvoiceNumber
		}
		if err := tx.Save(&entry).Error; err != nil {
			return err
		}
		if err := setQuantity(tx, product.EntityID, newQuantity); err != nil {
			return err
		}
		return audit.Record(tx, actor, "inventory_in.update", "inventory_in", entry.EntryID, req)
	})
	if err != nil {
		return nil, err
	}

	InvalidateStatusCache(s.redis)
	return s.repo.FindInByID(id)
}

// UpdateStockOut rewrites an InventoryOut entry, re-checking available stock
// after the old effect has been reversed.
func (s *LedgerService) UpdateStockOut(id uint, req StockOutRequest, actor *entity.User) (*inventoryEntity.InventoryOut, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var entry inventoryEntity.InventoryOut
		if err := tx.First(&entry, "entry_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEntryNotFound
			}
			return err
		}
		product, err := lockProduct(tx, entry.ProductID)
		if err != nil {
			return err
		}

		restored := product.Quantity + entry.Quantity
		if restored < req.Quantity {
			return fmt.Errorf("product %s: %w", product.Name, ErrInsufficientStock)
		}

		entry.Quantity = req.Quantity
		if req.Reason != "" {
			entry.Reason = req.Reason
		}
		if err := tx.Save(&entry).Error; err != nil {
			return err
		}
		if err := setQuantity(tx, product.EntityID, restored-req.Quantity); err != nil {
			return err
		}
		return audit.Record(tx, actor, "inventory_out.update", "inventory_out", entry.EntryID, req)
	})
	if err != nil {
		return nil, err
	}

	InvalidateStatusCache(s.redis)
	return s.repo.FindOutByID(id)
}

// DeleteStockIn removes an intake entry, reversing its effect on the product.
func (s *LedgerService) DeleteStockIn(id uint, actor *entity.User) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var entry inventoryEntity.InventoryIn
		if err := tx.First(&entry, "entry_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEntryNotFound
			}
			return err
		}
		product, err := lockProduct(tx, entry.ProductID)
		if err != nil {
			return err
		}
		if product.Quantity < entry.Quantity {
			return fmt.Errorf("product %s: %w", product.Name, ErrInsufficientStock)
		}
		if err := adjustQuantity(tx, product.EntityID, -entry.Quantity); err != nil {
			return err
		}
		if err := tx.Delete(&entry).Error; err != nil {
			return err
		}
		return audit.Record(tx, actor, "inventory_in.delete", "inventory_in", entry.EntryID, nil)
	})
	if err != nil {
		return err
	}
	InvalidateStatusCache(s.redis)
	return nil
}

// DeleteStockOut removes an outflow entry, restoring the product quantity.
func (s *LedgerService) DeleteStockOut(id uint, actor *entity.User) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var entry inventoryEntity.InventoryOut
		if err := tx.First(&entry, "entry_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEntryNotFound
			}
			return err
		}
		product, err := lockProduct(tx, entry.ProductID)
		if err != nil {
			return err
		}
		if err := adjustQuantity(tx, product.EntityID, entry.Quantity); err != nil {
			return err
		}
		if err := tx.Delete(&entry).Error; err != nil {
			return err
		}
		return audit.Record(tx, actor, "inventory_out.delete", "inventory_out", entry.EntryID, nil)
	})
	if err != nil {
		return err
	}
	InvalidateStatusCache(s.redis)
	return nil
}

// lockProduct loads the product row under a FOR UPDATE lock within tx.
func lockProduct(tx *gorm.DB, id uint) (*catalogEntity.Product, error) {
	product, err := catalogRepo.FindByIDForUpdate(tx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, ErrProductNotFound)
		}
		return nil, err
	}
	return product, nil
}

// adjustQuantity applies a relative quantity change as a SQL expression.
func adjustQuantity(tx *gorm.DB, productID uint, delta int) error {
	return tx.Model(&catalogEntity.Product{}).
		Where("entity_id = ?", productID).
		Update("quantity", gorm.Expr("quantity + ?", delta)).Error
}

func setQuantity(tx *gorm.DB, productID uint, quantity int) error {
	return tx.Model(&catalogEntity.Product{}).
		Where("entity_id = ?", productID).
		Update("quantity", quantity).Error
}

func actorID(actor *entity.User) *uint {
	if actor == nil {
		return nil
	}
	id := actor.UserID
	return &id
}

// ProductStatus is one row of the stock status report.
type ProductStatus struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	SKU             string `json:"sku"`
	Quantity        int    `json:"quantity"`
	MinimumQuantity int    `json:"minimumQuantity"`
	Unit            string `json:"unit"`
	Status          string `json:"status"`
}

// Status reports every product with its derived low/normal flag. The report
// is cached in Redis when configured; ledger and order writes invalidate it.
func (s *LedgerService) Status() ([]ProductStatus, error) {
	if s.redis != nil {
		if raw, err := s.redis.Get(config.RedisCtx(), statusCacheKey).Result(); err == nil {
			var cached []ProductStatus
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return cached, nil
			}
		}
	}

	var products []catalogEntity.Product
	if err := s.db.Order("entity_id").Find(&products).Error; err != nil {
		return nil, err
	}
	report := make([]ProductStatus, 0, len(products))
	for i := range products {
		p := &products[i]
		report = append(report, ProductStatus{
			ID:              p.EntityID,
			Name:            p.Name,
			SKU:             p.SKU,
			Quantity:        p.Quantity,
			MinimumQuantity: p.MinimumQuantity,
			Unit:            p.Unit,
			Status:          p.StockStatus(),
		})
	}

	if s.redis != nil {
		if raw, err := json.Marshal(report); err == nil {
			s.redis.Set(config.RedisCtx(), statusCacheKey, raw, statusCacheTTL)
		}
	}
	return report, nil
}

// sortMovements orders a merged history newest first.
func sortMovements(movements []Movement) {
	sort.SliceStable(movements, func(i, j int) bool {
		return movements[i].CreatedAt.After(movements[j].CreatedAt)
	})
}
