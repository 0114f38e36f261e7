package inventory

import (
	"time"

	entity "erp.GO/model/entity"
	catalogEntity "erp.GO/model/entity/catalog"
	salesEntity "erp.GO/model/entity/sales"
)

// InventoryOut is a single stock-decreasing ledger entry. OrderID is set when
// the movement was created by order fulfillment, nil for manual adjustments.
type InventoryOut struct {
	EntryID     uint                   `gorm:"column:entry_id;primaryKey;autoIncrement" json:"id"`
	ProductID   uint                   `gorm:"column:product_id;not null;index" json:"productId"`
	Product     *catalogEntity.Product `gorm:"foreignKey:ProductID;references:EntityID" json:"product,omitempty"`
	Quantity    int                    `gorm:"column:quantity;not null" json:"quantity"`
	OrderID     *uint                  `gorm:"column:order_id;index" json:"orderId,omitempty"`
	Order       *salesEntity.Order     `gorm:"foreignKey:OrderID;references:OrderID" json:"order,omitempty"`
	Reason      string                 `gorm:"column:reason;type:varchar(255)" json:"reason"`
	CreatedByID *uint                  `gorm:"column:created_by;index" json:"createdById,omitempty"`
	CreatedBy   *entity.User           `gorm:"foreignKey:CreatedByID;references:UserID" json:"createdBy,omitempty"`
	Status      string                 `gorm:"column:status;type:varchar(16);not null;default:'pending'" json:"status"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time              `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (InventoryOut) TableName() string {
	return "inventory_out"
}
