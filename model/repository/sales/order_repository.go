package sales

import (
	"gorm.io/gorm"

	salesEntity "erp.GO/model/entity/sales"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) All() ([]salesEntity.Order, error) {
	var orders []salesEntity.Order
	err := r.db.Preload("Items").Preload("Items.Product").
		Order("order_id DESC").Find(&orders).Error
	return orders, err
}

func (r *OrderRepository) FindByID(id uint) (*salesEntity.Order, error) {
	var order salesEntity.Order
	err := r.db.Preload("Items").Preload("Items.Product").
		First(&order, "order_id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) ItemsByOrder(orderID uint) ([]salesEntity.OrderItem, error) {
	var items []salesEntity.OrderItem
	err := r.db.Preload("Product").
		Where("order_id = ?", orderID).Order("item_id").Find(&items).Error
	return items, err
}

// NumberExists checks order-number uniqueness inside the given tx.
func NumberExists(tx *gorm.DB, number string) (bool, error) {
	var count int64
	err := tx.Model(&salesEntity.Order{}).Where("order_number = ?", number).Count(&count).Error
	return count > 0, err
}
