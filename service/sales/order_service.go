package sales

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	catalogEntity "erp.GO/model/entity/catalog"
	inventoryEntity "erp.GO/model/entity/inventory"
	salesEntity "erp.GO/model/entity/sales"
	catalogRepo "erp.GO/model/repository/catalog"
	salesRepo "erp.GO/model/repository/sales"
	entity "erp.GO/model/entity"
	"erp.GO/service/audit"
	inventoryService "erp.GO/service/inventory"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrOrderNotFound     = errors.New("order not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOrderLocked       = errors.New("order can no longer be modified")
	ErrOrderCompleted    = errors.New("completed order cannot be deleted")
	ErrInvalidStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("status transition not allowed")
)

// numberAttempts bounds the order-number collision retry loop.
const numberAttempts = 5

// OrderService turns a multi-line order request into a committed Order,
// OrderItems, order-linked InventoryOut rows, and product decrements, all
// inside one transaction with all-or-nothing semantics.
type OrderService struct {
	db    *gorm.DB
	repo  *salesRepo.OrderRepository
	redis *redis.Client
}

func NewOrderService(db *gorm.DB, redisClient *redis.Client) *OrderService {
	return &OrderService{
		db:    db,
		repo:  salesRepo.NewOrderRepository(db),
		redis: redisClient,
	}
}

// OrderItemRequest is one requested order line.
type OrderItemRequest struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

// CreateOrderRequest carries customer info and requested lines. An empty
// items slice is accepted and yields an order with no lines and a zero total.
type CreateOrderRequest struct {
	CustomerName    string             `json:"customerName"`
	CustomerEmail   string             `json:"customerEmail"`
	CustomerPhone   string             `json:"customerPhone"`
	ShippingAddress string             `json:"shippingAddress"`
	Items           []OrderItemRequest `json:"items"`
}

func (r CreateOrderRequest) validate() error {
	if r.CustomerName == "" {
		return fmt.Errorf("%w: customerName is required", ErrValidation)
	}
	if r.CustomerEmail == "" {
		return fmt.Errorf("%w: customerEmail is required", ErrValidation)
	}
	if r.Items == nil {
		return fmt.Errorf("%w: items is required", ErrValidation)
	}
	for i, item := range r.Items {
		if item.ProductID == 0 {
			return fmt.Errorf("%w: items[%d].productId is required", ErrValidation, i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: items[%d].quantity must be positive", ErrValidation, i)
		}
	}
	return nil
}

// UpdateOrderRequest updates header fields; empty fields keep their value.
type UpdateOrderRequest struct {
	CustomerName    string `json:"customerName"`
	CustomerEmail   string `json:"customerEmail"`
	CustomerPhone   string `json:"customerPhone"`
	ShippingAddress string `json:"shippingAddress"`
}

// generateOrderNumber builds the human-readable ORD-YYYYMMDD-NNN number.
func generateOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%03d", now.Format("20060102"), rand.Intn(1000))
}

// uniqueOrderNumber retries generation until the number is unused within tx.
func uniqueOrderNumber(tx *gorm.DB) (string, error) {
	for i := 0; i < numberAttempts; i++ {
		number := generateOrderNumber(time.Now())
		exists, err := salesRepo.NumberExists(tx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", errors.New("order number space exhausted for today")
}

// CreateOrder reserves stock line by line and commits order, items, ledger
// entries, and quantity decrements as one unit. Any failing line rolls the
// whole order back.
func (s *OrderService) CreateOrder(req CreateOrderRequest, actor *entity.User) (*salesEntity.Order, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var orderID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		number, err := uniqueOrderNumber(tx)
		if err != nil {
			return err
		}

		order := salesEntity.Order{
			OrderNumber:     number,
			CustomerName:    req.CustomerName,
			CustomerEmail:   req.CustomerEmail,
			CustomerPhone:   req.CustomerPhone,
			ShippingAddress: req.ShippingAddress,
			TotalAmount:     0,
			Status:          salesEntity.StatusPending,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		var totalAmount float64
		for _, item := range req.Items {
			product, err := catalogRepo.FindByIDForUpdate(tx, item.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("product %d: %w", item.ProductID, ErrProductNotFound)
				}
				return err
			}
			if product.Quantity < item.Quantity {
				return fmt.Errorf("product %s: %w", product.Name, ErrInsufficientStock)
			}

			// Unit price is snapshotted here; later catalog changes must not
			// alter committed lines.
			line := salesEntity.OrderItem{
				OrderID:    order.OrderID,
				ProductID:  product.EntityID,
				Quantity:   item.Quantity,
				UnitPrice:  product.Price,
				TotalPrice: product.Price * float64(item.Quantity),
			}
			if err := tx.Create(&line).Error; err != nil {
				return err
			}

			movement := inventoryEntity.InventoryOut{
				ProductID:   product.EntityID,
				Quantity:    item.Quantity,
				OrderID:     &order.OrderID,
				Reason:      fmt.Sprintf("Order number: %s", number),
				CreatedByID: actorID(actor),
			}
			if err := tx.Create(&movement).Error; err != nil {
				return err
			}

			err = tx.Model(&catalogEntity.Product{}).
				Where("entity_id = ?", product.EntityID).
				Update("quantity", gorm.Expr("quantity - ?", item.Quantity)).Error
			if err != nil {
				return err
			}

			totalAmount += line.TotalPrice
		}

		order.TotalAmount = totalAmount
		if err := tx.Save(&order).Error; err != nil {
			return err
		}
		orderID = order.OrderID
		return audit.Record(tx, actor, "order.create", "sales_order", order.OrderID, req)
	})
	if err != nil {
		return nil, err
	}

	inventoryService.InvalidateStatusCache(s.redis)
	return s.repo.FindByID(orderID)
}

// UpdateStatus moves an order along the status graph.
func (s *OrderService) UpdateStatus(id uint, status string, actor *entity.User) (*salesEntity.Order, error) {
	if !salesEntity.ValidStatus(status) {
		return nil, fmt.Errorf("%q: %w", status, ErrInvalidStatus)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order salesEntity.Order
		if err := tx.First(&order, "order_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if !salesEntity.CanTransition(order.Status, status) {
			return fmt.Errorf("%s -> %s: %w", order.Status, status, ErrInvalidTransition)
		}
		if order.Status == status {
			return nil
		}
		previous := order.Status
		order.Status = status
		if err := tx.Save(&order).Error; err != nil {
			return err
		}
		return audit.Record(tx, actor, "order.status", "sales_order", order.OrderID,
			map[string]string{"from": previous, "to": status})
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(id)
}

// UpdateOrder edits header fields on an order that has not shipped.
func (s *OrderService) UpdateOrder(id uint, req UpdateOrderRequest, actor *entity.User) (*salesEntity.Order, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order salesEntity.Order
		if err := tx.First(&order, "order_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if order.Locked() {
			return ErrOrderLocked
		}
		if req.CustomerName != "" {
			order.CustomerName = req.CustomerName
		}
		if req.CustomerEmail != "" {
			order.CustomerEmail = req.CustomerEmail
		}
		if req.CustomerPhone != "" {
			order.CustomerPhone = req.CustomerPhone
		}
		if req.ShippingAddress != "" {
			order.ShippingAddress = req.ShippingAddress
		}
		if err := tx.Save(&order).Error; err != nil {
			return err
		}
		return audit.Record(tx, actor, "order.update", "sales_order", order.OrderID, req)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(id)
}

// DeleteOrder removes an order, restoring every line's stock and deleting the
// order-linked ledger entries, all in one transaction.
func (s *OrderService) DeleteOrder(id uint, actor *entity.User) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var order salesEntity.Order
		if err := tx.Preload("Items").First(&order, "order_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if order.Status == salesEntity.StatusCompleted {
			return ErrOrderCompleted
		}

		for _, item := range order.Items {
			if _, err := catalogRepo.FindByIDForUpdate(tx, item.ProductID); err != nil {
				return err
			}
			err := tx.Model(&catalogEntity.Product{}).
				Where("entity_id = ?", item.ProductID).
				Update("quantity", gorm.Expr("quantity + ?", item.Quantity)).Error
			if err != nil {
				return err
			}
		}

		if err := tx.Where("order_id = ?", order.OrderID).Delete(&inventoryEntity.InventoryOut{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", order.OrderID).Delete(&salesEntity.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&order).Error; err != nil {
			return err
		}
		return audit.Record(tx, actor, "order.delete", "sales_order", order.OrderID,
			map[string]string{"orderNumber": order.OrderNumber})
	})
	if err != nil {
		return err
	}
	inventoryService.InvalidateStatusCache(s.redis)
	return nil
}

// Items lists the order's lines with products loaded.
func (s *OrderService) Items(orderID uint) ([]salesEntity.OrderItem, error) {
	return s.repo.ItemsByOrder(orderID)
}

func actorID(actor *entity.User) *uint {
	if actor == nil {
		return nil
	}
	id := actor.UserID
	return &id
}
