package sales

import (
	catalogEntity "erp.GO/model/entity/catalog"
)

// OrderItem snapshots the product price at order time; later catalog price
// changes must not leak into committed orders.
type OrderItem struct {
	ItemID     uint                   `gorm:"column:item_id;primaryKey;autoIncrement" json:"id"`
	OrderID    uint                   `gorm:"column:order_id;not null;index" json:"orderId"`
	ProductID  uint                   `gorm:"column:product_id;not null;index" json:"productId"`
	Product    *catalogEntity.Product `gorm:"foreignKey:ProductID;references:EntityID" json:"product,omitempty"`
	Quantity   int                    `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice  float64                `gorm:"column:unit_price;type:decimal(10,2);not null" json:"unitPrice"`
	TotalPrice float64                `gorm:"column:total_price;type:decimal(10,2);not null" json:"totalPrice"`
}

func (OrderItem) TableName() string {
	return "sales_order_item"
}
