package inventory

import (
	"time"

	entity "erp.GO/model/entity"
	catalogEntity "erp.GO/model/entity/catalog"
)

// InventoryIn is a single stock-increasing ledger entry. TotalPrice is always
// quantity × unit price; the service recomputes it on every write.
type InventoryIn struct {
	EntryID       uint                   `gorm:"column:entry_id;primaryKey;autoIncrement" json:"id"`
	ProductID     uint                   `gorm:"column:product_id;not null;index" json:"productId"`
	Product       *catalogEntity.Product `gorm:"foreignKey:ProductID;references:EntityID" json:"product,omitempty"`
	Quantity      int                    `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice     float64                `gorm:"column:unit_price;type:decimal(10,2);not null" json:"unitPrice"`
	TotalPrice    float64                `gorm:"column:total_price;type:decimal(10,2);not null" json:"totalPrice"`
	Supplier      string                 `gorm:"column:supplier;type:varchar(128);not null" json:"supplier"`
	InvoiceNumber *string                `gorm:"column:invoice_number;type:varchar(64)" json:"invoiceNumber,omitempty"`
	CreatedByID   *uint                  `gorm:"column:created_by;index" json:"createdById,omitempty"`
	CreatedBy     *entity.User           `gorm:"foreignKey:CreatedByID;references:UserID" json:"createdBy,omitempty"`
	Status        string                 `gorm:"column:status;type:varchar(16);not null;default:'pending'" json:"status"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time              `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (InventoryIn) TableName() string {
	return "inventory_in"
}
