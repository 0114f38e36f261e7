package sales

import "time"

// Order statuses. Completed and cancelled are terminal; header edits are
// additionally blocked once the order ships.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
	StatusCompleted  = "completed"
)

type Order struct {
	OrderID         uint        `gorm:"column:order_id;primaryKey;autoIncrement" json:"id"`
	OrderNumber     string      `gorm:"column:order_number;type:varchar(32);not null;index" json:"orderNumber"`
	CustomerName    string      `gorm:"column:customer_name;type:varchar(64);not null" json:"customerName"`
	CustomerEmail   string      `gorm:"column:customer_email;type:varchar(128);not null" json:"customerEmail"`
	CustomerPhone   string      `gorm:"column:customer_phone;type:varchar(32);not null" json:"customerPhone"`
	ShippingAddress string      `gorm:"column:shipping_address;type:varchar(255);not null" json:"shippingAddress"`
	TotalAmount     float64     `gorm:"column:total_amount;type:decimal(10,2);not null;default:0" json:"totalAmount"`
	Status          string      `gorm:"column:status;type:varchar(16);not null;default:'pending'" json:"status"`
	Items           []OrderItem `gorm:"foreignKey:OrderID;references:OrderID" json:"items,omitempty"`
	CreatedAt       time.Time   `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time   `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Order) TableName() string {
	return "sales_order"
}

// transitions is the legal status graph. The zero-length entries are the
// terminal states.
var transitions = map[string][]string{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusCompleted},
	StatusCancelled:  {},
	StatusCompleted:  {},
}

// ValidStatus reports whether s names a known order status.
func ValidStatus(s string) bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether an order may move from one status to another.
// Re-setting the current status is allowed as a no-op.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Locked reports whether the order header may no longer be edited.
func (o *Order) Locked() bool {
	return o.Status == StatusShipped || o.Status == StatusCompleted
}
