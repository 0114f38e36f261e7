package catalog

import "time"

// Product quantity is the authoritative on-hand stock count. It is mutated
// only through the inventory ledger service; catalog updates never touch it.
type Product struct {
	EntityID        uint      `gorm:"column:entity_id;primaryKey;autoIncrement" json:"id"`
	Name            string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Description     string    `gorm:"column:description;type:text" json:"description"`
	SKU             string    `gorm:"column:sku;type:varchar(64);not null;uniqueIndex" json:"sku"`
	Price           float64   `gorm:"column:price;type:decimal(10,2);not null;default:0" json:"price"`
	Cost            float64   `gorm:"column:cost;type:decimal(10,2);not null;default:0" json:"cost"`
	Unit            string    `gorm:"column:unit;type:varchar(16)" json:"unit"`
	Quantity        int       `gorm:"column:quantity;not null;default:0" json:"quantity"`
	MinimumQuantity int       `gorm:"column:minimum_quantity;not null;default:0" json:"minimumQuantity"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Product) TableName() string {
	return "product"
}

// StockStatus derives the reorder flag used by the status report.
func (p *Product) StockStatus() string {
	if p.Quantity <= p.MinimumQuantity {
		return "low"
	}
	return "normal"
}
