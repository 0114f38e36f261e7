package catalog

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	catalogEntity "erp.GO/model/entity/catalog"
	inventoryEntity "erp.GO/model/entity/inventory"
	salesEntity "erp.GO/model/entity/sales"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) FindByID(id uint) (*catalogEntity.Product, error) {
	var p catalogEntity.Product
	if err := r.db.First(&p, "entity_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) FindBySKU(sku string) (*catalogEntity.Product, error) {
	var p catalogEntity.Product
	if err := r.db.First(&p, "sku = ?", sku).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByIDForUpdate loads a product inside tx holding a row lock, so a
// check-then-decrement of quantity cannot race a concurrent writer. SQLite
// (tests) has no FOR UPDATE; its single-writer model covers the same case.
func FindByIDForUpdate(tx *gorm.DB, id uint) (*catalogEntity.Product, error) {
	q := tx
	if tx.Dialector.Name() == "mysql" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var p catalogEntity.Product
	if err := q.First(&p, "entity_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns products, optionally filtered by a name/sku/description LIKE
// match and/or restricted to low-stock rows.
func (r *ProductRepository) List(search string, lowOnly bool) ([]catalogEntity.Product, error) {
	q := r.db.Order("entity_id")
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("name LIKE ? OR sku LIKE ? OR description LIKE ?", like, like, like)
	}
	if lowOnly {
		q = q.Where("quantity <= minimum_quantity")
	}
	var products []catalogEntity.Product
	err := q.Find(&products).Error
	return products, err
}

// LowStock returns products at or below their reorder threshold.
func (r *ProductRepository) LowStock() ([]catalogEntity.Product, error) {
	var products []catalogEntity.Product
	err := r.db.Where("quantity <= minimum_quantity").Order("entity_id").Find(&products).Error
	return products, err
}

func (r *ProductRepository) Create(p *catalogEntity.Product) error {
	return r.db.Create(p).Error
}

func (r *ProductRepository) Save(p *catalogEntity.Product) error {
	return r.db.Save(p).Error
}

func (r *ProductRepository) Delete(id uint) error {
	return r.db.Delete(&catalogEntity.Product{}, "entity_id = ?", id).Error
}

// HasMovements reports whether any ledger entry or order line references the
// product. Deleting such a product would orphan the ledger.
func (r *ProductRepository) HasMovements(id uint) (bool, error) {
	var count int64
	if err := r.db.Model(&inventoryEntity.InventoryIn{}).Where("product_id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	if err := r.db.Model(&inventoryEntity.InventoryOut{}).Where("product_id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	if err := r.db.Model(&salesEntity.OrderItem{}).Where("product_id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
