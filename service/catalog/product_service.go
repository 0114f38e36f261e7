package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	catalogEntity "erp.GO/model/entity/catalog"
	catalogRepo "erp.GO/model/repository/catalog"
	entity "erp.GO/model/entity"
	"erp.GO/service/audit"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrProductNotFound = errors.New("product not found")
	ErrSKUExists       = errors.New("sku already exists")
	ErrProductInUse    = errors.New("product has inventory or order history")
)

type ProductService struct {
	db     *gorm.DB
	repo   *catalogRepo.ProductRepository
	search *SearchService
}

func NewProductService(db *gorm.DB, search *SearchService) *ProductService {
	if search == nil {
		search = &SearchService{}
	}
	return &ProductService{
		db:     db,
		repo:   catalogRepo.NewProductRepository(db),
		search: search,
	}
}

// ProductRequest creates or updates a catalog entry. Quantity is absent on
// purpose: stock changes go through the inventory ledger only.
type ProductRequest struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	SKU             string  `json:"sku"`
	Price           float64 `json:"price"`
	Cost            float64 `json:"cost"`
	Unit            string  `json:"unit"`
	MinimumQuantity int     `json:"minimumQuantity"`
}

func (r ProductRequest) validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if r.SKU == "" {
		return fmt.Errorf("%w: sku is required", ErrValidation)
	}
	if r.Price < 0 || r.Cost < 0 {
		return fmt.Errorf("%w: price and cost must not be negative", ErrValidation)
	}
	if r.MinimumQuantity < 0 {
		return fmt.Errorf("%w: minimumQuantity must not be negative", ErrValidation)
	}
	return nil
}

func (s *ProductService) Get(id uint) (*catalogEntity.Product, error) {
	product, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// List returns catalog entries. A non-empty query uses the search index when
// configured and falls back to database LIKE matching otherwise.
func (s *ProductService) List(ctx context.Context, query string, lowOnly bool) ([]catalogEntity.Product, error) {
	if query != "" && s.search.Enabled() {
		ids, err := s.search.Search(ctx, query, 50)
		if err != nil {
			log.Printf("catalog: search fallback to database: %v", err)
		} else {
			return s.byIDs(ids, lowOnly)
		}
	}
	return s.repo.List(query, lowOnly)
}

// byIDs loads products preserving the given ranking order.
func (s *ProductService) byIDs(ids []uint, lowOnly bool) ([]catalogEntity.Product, error) {
	if len(ids) == 0 {
		return []catalogEntity.Product{}, nil
	}
	var products []catalogEntity.Product
	q := s.db.Where("entity_id IN ?", ids)
	if lowOnly {
		q = q.Where("quantity <= minimum_quantity")
	}
	if err := q.Find(&products).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]catalogEntity.Product, len(products))
	for _, p := range products {
		byID[p.EntityID] = p
	}
	ordered := make([]catalogEntity.Product, 0, len(products))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

func (s *ProductService) Create(req ProductRequest, actor *entity.User) (*catalogEntity.Product, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindBySKU(req.SKU); err == nil {
		return nil, fmt.Errorf("%s: %w", req.SKU, ErrSKUExists)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	product := catalogEntity.Product{
		Name:            req.Name,
		Description:     req.Description,
		SKU:             req.SKU,
		Price:           req.Price,
		Cost:            req.Cost,
		Unit:            req.Unit,
		MinimumQuantity: req.MinimumQuantity,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		return audit.Record(tx, actor, "product.create", "product", product.EntityID, req)
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Update edits catalog fields; empty fields keep their value and quantity is
// never written.
func (s *ProductService) Update(id uint, req ProductRequest, actor *entity.User) (*catalogEntity.Product, error) {
	if req.Price < 0 || req.Cost < 0 {
		return nil, fmt.Errorf("%w: price and cost must not be negative", ErrValidation)
	}

	var product *catalogEntity.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var p catalogEntity.Product
		if err := tx.First(&p, "entity_id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		if req.SKU != "" && req.SKU != p.SKU {
			var count int64
			if err := tx.Model(&catalogEntity.Product{}).Where("sku = ?", req.SKU).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return fmt.Errorf("%s: %w", req.SKU, ErrSKUExists)
			}
			p.SKU = req.SKU
		}
		if req.Name != "" {
			p.Name = req.Name
		}
		if req.Description != "" {
			p.Description = req.Description
		}
		if req.Unit != "" {
			p.Unit = req.Unit
		}
		if req.Price > 0 {
			p.Price = req.Price
		}
		if req.Cost > 0 {
			p.Cost = req.Cost
		}
		if req.MinimumQuantity > 0 {
			p.MinimumQuantity = req.MinimumQuantity
		}
		if err := tx.Save(&p).Error; err != nil {
			return err
		}
		product = &p
		return audit.Record(tx, actor, "product.update", "product", p.EntityID, req)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes a product that has no ledger or order history.
func (s *ProductService) Delete(id uint, actor *entity.User) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	inUse, err := s.repo.HasMovements(id)
	if err != nil {
		return err
	}
	if inUse {
		return ErrProductInUse
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&catalogEntity.Product{}, "entity_id = ?", id).Error; err != nil {
			return err
		}
		return audit.Record(tx, actor, "product.delete", "product", id, nil)
	})
}
