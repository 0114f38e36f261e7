package inventory

import (
	"errors"

	"gorm.io/gorm"

	inventoryEntity "erp.GO/model/entity/inventory"
)

func (s *LedgerService) ListStockIn() ([]inventoryEntity.InventoryIn, error) {
	return s.repo.AllIn()
}

func (s *LedgerService) StockInByID(id uint) (*inventoryEntity.InventoryIn, error) {
	entry, err := s.repo.FindInByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (s *LedgerService) ListStockOut() ([]inventoryEntity.InventoryOut, error) {
	return s.repo.AllOut()
}

func (s *LedgerService) StockOutByID(id uint) (*inventoryEntity.InventoryOut, error) {
	entry, err := s.repo.FindOutByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	return entry, nil
}
