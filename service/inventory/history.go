package inventory

import (
	"time"

	"golang.org/x/sync/errgroup"

	catalogEntity "erp.GO/model/entity/catalog"
	entity "erp.GO/model/entity"
	inventoryRepo "erp.GO/model/repository/inventory"
)

// Movement is one entry of the merged ledger history. In-only fields
// (unitPrice, supplier) and out-only fields (orderId, reason) are omitted on
// the other direction.
type Movement struct {
	Type          string                 `json:"type"` // "in" or "out"
	ID            uint                   `json:"id"`
	ProductID     uint                   `json:"productId"`
	Product       *catalogEntity.Product `json:"product,omitempty"`
	Quantity      int                    `json:"quantity"`
	UnitPrice     *float64               `json:"unitPrice,omitempty"`
	TotalPrice    *float64               `json:"totalPrice,omitempty"`
	Supplier      string                 `json:"supplier,omitempty"`
	InvoiceNumber *string                `json:"invoiceNumber,omitempty"`
	OrderID       *uint                  `json:"orderId,omitempty"`
	Reason        string                 `json:"reason,omitempty"`
	Status        string                 `json:"status"`
	CreatedBy     *entity.User           `json:"createdBy,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
}

// History merges stock-in and stock-out entries matching the filter into one
// sequence ordered newest first. Both directions are fetched concurrently.
func (s *LedgerService) History(filter inventoryRepo.HistoryFilter) ([]Movement, error) {
	var (
		g    errgroup.Group
		ins  []Movement
		outs []Movement
	)
	g.Go(func() error {
		entries, err := s.repo.HistoryIn(filter)
		if err != nil {
			return err
		}
		ins = make([]Movement, 0, len(entries))
		for i := range entries {
			e := &entries[i]
			unitPrice, totalPrice := e.UnitPrice, e.TotalPrice
			ins = append(ins, Movement{
				Type:          "in",
				ID:            e.EntryID,
				ProductID:     e.ProductID,
				Product:       e.Product,
				Quantity:      e.Quantity,
				UnitPrice:     &unitPrice,
				TotalPrice:    &totalPrice,
				Supplier:      e.Supplier,
				InvoiceNumber: e.InvoiceNumber,
				Status:        e.Status,
				CreatedBy:     e.CreatedBy,
				CreatedAt:     e.CreatedAt,
			})
		}
		return nil
	})
	g.Go(func() error {
		entries, err := s.repo.HistoryOut(filter)
		if err != nil {
			return err
		}
		outs = make([]Movement, 0, len(entries))
		for i := range entries {
			e := &entries[i]
			outs = append(outs, Movement{
				Type:      "out",
				ID:        e.EntryID,
				ProductID: e.ProductID,
				Product:   e.Product,
				Quantity:  e.Quantity,
				OrderID:   e.OrderID,
				Reason:    e.Reason,
				Status:    e.Status,
				CreatedBy: e.CreatedBy,
				CreatedAt: e.CreatedAt,
			})
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := append(ins, outs...)
	sortMovements(merged)
	return merged, nil
}
