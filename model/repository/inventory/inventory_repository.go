package inventory

import (
	"time"

	"gorm.io/gorm"

	inventoryEntity "erp.GO/model/entity/inventory"
)

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// HistoryFilter narrows ledger queries. Nil fields match everything.
type HistoryFilter struct {
	ProductID *uint
	StartDate *time.Time
	EndDate   *time.Time
}

func (f HistoryFilter) apply(q *gorm.DB) *gorm.DB {
	if f.ProductID != nil {
		q = q.Where("product_id = ?", *f.ProductID)
	}
	if f.StartDate != nil && f.EndDate != nil {
		q = q.Where("created_at BETWEEN ? AND ?", *f.StartDate, *f.EndDate)
	}
	return q
}

func (r *InventoryRepository) AllIn() ([]inventoryEntity.InventoryIn, error) {
	var entries []inventoryEntity.InventoryIn
	err := r.db.Preload("Product").Preload("CreatedBy").
		Order("entry_id DESC").Find(&entries).Error
	return entries, err
}

func (r *InventoryRepository) FindInByID(id uint) (*inventoryEntity.InventoryIn, error) {
	var entry inventoryEntity.InventoryIn
	err := r.db.Preload("Product").Preload("CreatedBy").
		First(&entry, "entry_id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *InventoryRepository) AllOut() ([]inventoryEntity.InventoryOut, error) {
	var entries []inventoryEntity.InventoryOut
	err := r.db.Preload("Product").Preload("CreatedBy").Preload("Order").
		Order("entry_id DESC").Find(&entries).Error
	return entries, err
}

func (r *InventoryRepository) FindOutByID(id uint) (*inventoryEntity.InventoryOut, error) {
	var entry inventoryEntity.InventoryOut
	err := r.db.Preload("Product").Preload("CreatedBy").Preload("Order").
		First(&entry, "entry_id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// HistoryIn returns stock-in entries matching the filter, newest first.
func (r *InventoryRepository) HistoryIn(f HistoryFilter) ([]inventoryEntity.InventoryIn, error) {
	var entries []inventoryEntity.InventoryIn
	err := f.apply(r.db.Preload("Product").Preload("CreatedBy")).
		Order("created_at DESC").Find(&entries).Error
	return entries, err
}

// HistoryOut returns stock-out entries matching the filter, newest first.
func (r *InventoryRepository) HistoryOut(f HistoryFilter) ([]inventoryEntity.InventoryOut, error) {
	var entries []inventoryEntity.InventoryOut
	err := f.apply(r.db.Preload("Product").Preload("CreatedBy").Preload("Order")).
		Order("created_at DESC").Find(&entries).Error
	return entries, err
}
