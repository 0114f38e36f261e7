package inventory

import (
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	entity "erp.GO/model/entity"
	catalogEntity "erp.GO/model/entity/catalog"
	inventoryEntity "erp.GO/model/entity/inventory"
	salesEntity "erp.GO/model/entity/sales"
	inventoryRepo "erp.GO/model/repository/inventory"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&entity.User{},
		&entity.Role{},
		&entity.Permission{},
		&entity.ActivityLog{},
		&catalogEntity.Product{},
		&salesEntity.Order{},
		&salesEntity.OrderItem{},
		&inventoryEntity.InventoryIn{},
		&inventoryEntity.InventoryOut{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, sku string, quantity, minimum int) *catalogEntity.Product {
	t.Helper()
	p := catalogEntity.Product{
		Name:            "Product " + sku,
		SKU:             sku,
		Price:           10,
		Cost:            6,
		Unit:            "pcs",
		Quantity:        quantity,
		MinimumQuantity: minimum,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return &p
}

func productQuantity(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var p catalogEntity.Product
	if err := db.First(&p, "entity_id = ?", id).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	return p.Quantity
}

func TestRecordStockIn_IncrementsQuantity(t *testing.T) {
	db := testDB(t)
	svc := NewLedgerService(db, nil)
	p := seedProduct(t, db, "SKU-001", 10, 3)

	entry, err := svc.RecordStockIn(StockInRequest{
		ProductID: p.EntityID,
		Quantity:  5,
		UnitPrice: 2.5,
		Supplier:  "Acme",
	}, nil)
	if err != nil {
		t.Fatalf("RecordStockIn: %v", err)
	}
	if entry.TotalPrice != 12.5 {
		t.Errorf("TotalPrice = %v, want 12.5", entry.TotalPrice)
	}
	if got := productQuantity(t, db, p.EntityID); got != 15 {
		t.Errorf("quantity = %d, want 15", got)
	}

	var logs int64
	db.Model(&entity.ActivityLog{}).Count(&logs)
	if logs != 1 {
		t.Errorf("activity log rows = %d, want 1", logs)
	}
}

func TestRecordStockIn_Validation(t *testing.T) {
	db := testDB(t)
	svc := NewLedgerService(db, nil)

	cases := []StockInRequest{
		{Quantity: 1, UnitPrice: 1, Supplier: "x"},               // no product
		{ProductID: 1, Quantity: 0, UnitPrice: 1, Supplier: "x"}, // zero quantity
		{ProductID: 1, Quantity: -2, UnitPrice: 1, Supplier: "x"},
		{ProductID: 1, Quantity: 1, UnitPrice: -1, Supplier: "x"},
		{ProductID: 1, Quantity: 1, UnitPrice: 1}, // no supplier
	}
	for i, req := range cases {
		if _, err := svc.RecordStockIn(req, nil); !errors.Is(err, ErrValidation) {
			t.Errorf("case %d: err = %v, want ErrValidation", i, err)
		}
	}
}

func TestRecordStockIn_UnknownProduct(t *testing.T) {
	db := testDB(t)
	svc := NewLedgerService(db, nil)

	_, err := svc.RecordStockIn(StockInRequest{ProductID: 99, Quantity: 1, UnitPrice: 1, Supplier: "x"}, nil)
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("err = %v, want ErrProductNotFound", err)
	}
}

func TestRecordStockOut_ExactQuantitySucceeds(t *testing.T) {
	db := testDB(t)
	svc := NewLedgerService(db, nil)
	p := seedProduct(t, db, "SKU-002", 7, 2)

	if _, err := svc.RecordStockOut(StockOutRequest{ProductID: p.EntityID, Quantity: 7, Reason: "damage"}, nil); err != nil {
		t.Fatalf("RecordStockOut: %v", err)
	}
	if got := productQuantity(t, db, p.EntityID); got != 0 {
		t.Errorf("quantity = %d, want 0", got)
	}
}

func TestRecordStockOut_InsufficientRollsBack(t *testing.T) {
	db := testDB(t)
	svc := NewLedgerService(db, nil)
	p := seedProduct(t, db, "SKU-003", 7, 2)

	_, err := svc.RecordStockOut(StockOutRequest{ProductID: p.EntityID, Quantity: 8}, nil)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	if got := productQuantity(t, db, p.EntityID); got != 7 {
		t.Errorf("quantity = %d, want unchanged 7", got)
	}
	var entries int64
	db.Model(&inventoryEntity.InventoryOut{}).Count(&entries)
	if entries != 0 {
		t.Errorf("ledger rows = %d, want 0 after rollback", entries)
	}
}

func TestUpdateStockIn_ReversesOldBeforeApplyingNew(t *testing.T) {
	db := testDB(t)
	svc := NewLedgerService(db, nil)
	p := seedProduct(t, db, "SKU-004", 0, 0)

	entry, err := svc.RecordStockIn(StockInRequest{ProductID: p.EntityID, Quantity: 10, UnitPrice: 1, Supplier: "Acme"}, nil)
	if err != nil {
		t.Fatalf("RecordStockIn: %v", err)
	}

	updated, err := svc.UpdateStockIn(entry.EntryID, StockInRequest{Quantity: 4, UnitPrice: 2}, nil)
	if err != nil {
		t.Fatalf("UpdateStockIn: %v", err)
	}
	if updated.TotalPrice != 8 {
		t.Errorf("TotalPrice = %v, want 8", updated.TotalPrice)
	}
	if updated.Supplier != "Acme" {
		t.Errorf("Supplier = %q, want kept Acme", updated.Supplier)
	}
	if got := productQuantity(t, db, p.EntityID); got != 4 {
		t.Errorf("quantity = %d, want 4", got)
	}
}

func TestUpdateStockIn_CannotStrandConsumedStock(t *testing.T) {
	db := testDB(t)
	svc := NewLedgerService(db, nil)
	p := seedProduct(t, db, "SKU-005", 0, 0)

	entry, err := svc.RecordStockIn(StockInRequest{ProductID: p.EntityID, Quantity: 10, UnitPrice: 1, Supplier: "Acme"}, nil)
	if err != nil {
		t.Fatalf("RecordStockIn: %v", err)
	}
	if _, err := svc.RecordStockOut(StockOutRequest{ProductID: p.EntityID, Quantity: 8}, nil); err != nil {
		t.Fatalf("RecordStockOut: %v", err)
	}

	// 2 left on hand. Shrinking the intake from 10 to 4 would need 6 back.
	_, err = svc.UpdateStockIn(entry.EntryID, StockInRequest{Quantity: 4, UnitPrice: 1}, nil)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	if got := productQuantity(t, db, p.EntityID); got != 2 {
		t.Errorf("quantity = %d, want unchanged 2", got)
	}
}

func TestUpdateStockOut_RecheckAfterReversal(t *testing.T) {
	db := testDB(t)
	svc := NewLedgerService(db, nil)
	p := seedProduct(t, db, "SKU-006", 10, 0)

	entry, err := svc.RecordStockOut(StockOutRequest{ProductID: p.EntityID, Quantity: 6, Reason: "sale"}, nil)
	if err != nil {
		t.Fatalf("RecordStockOut: %v", err)
	}

	// 4 on hand, 6 reserved by the entry: up to 10 total is allowed.
	if _, err := svc.UpdateStockOut(entry.EntryID, StockOutRequest{Quantity: 10}, nil); err != nil {
		t.Fatalf("UpdateStockOut to 10: %v", err)
	}
	if got := productQuantity(t, db, p.EntityID); got != 0 {
		t.Errorf("quantity = %d, want 0", got)
	}

	_, err = svc.UpdateStockOut(entry.EntryID, StockOutRequest{Quantity: 11}, nil)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Errorf("err = %v, want ErrInsufficientStock", err)
	}
}

func TestDeleteStockIn_ReversalGuard(t *testing.T) {
	db := testDB(t)
	svc := NewLedgerService(db, nil)
	p := seedProduct(t, db, "SKU-007", 0, 0)

	entry, err := svc.RecordStockIn(StockInRequest{ProductID: p.EntityID, Quantity: 5, UnitPrice: 1, Supplier: "Acme"}, nil)
	if err != nil {
		t.Fatalf("RecordStockIn: %v", err)
	}
	if _, err := svc.RecordStockOut(StockOutRequest{ProductID: p.EntityID, Quantity: 3}, nil); err != nil {
		t.Fatalf("RecordStockOut: %v", err)
	}

	if err := svc.DeleteStockIn(entry.EntryID, nil); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}

	// Restore the outflow, then deletion brings the product back to zero.
	if err := svc.DeleteStockOut(firstOutID(t, db), nil); err != nil {
		t.Fatalf("DeleteStockOut: %v", err)
	}
	if err := svc.DeleteStockIn(entry.EntryID, nil); err != nil {
		t.Fatalf("DeleteStockIn: %v", err)
	}
	if got := productQuantity(t, db, p.EntityID); got != 0 {
		t.Errorf("quantity = %d, want 0", got)
	}
}

func firstOutID(t *testing.T, db *gorm.DB) uint {
	t.Helper()
	var entry inventoryEntity.InventoryOut
	if err := db.First(&entry).Error; err != nil {
		t.Fatalf("load out entry: %v", err)
	}
	return entry.EntryID
}

func TestDeleteStockOut_RestoresQuantity(t *testing.T) {
	db := testDB(t)
	svc := NewLedgerService(db, nil)
	p := seedProduct(t, db, "SKU-008", 9, 0)

	entry, err := svc.RecordStockOut(StockOutRequest{ProductID: p.EntityID, Quantity: 4}, nil)
	if err != nil {
		t.Fatalf("RecordStockOut: %v", err)
	}
	if err := svc.DeleteStockOut(entry.EntryID, nil); err != nil {
		t.Fatalf("DeleteStockOut: %v", err)
	}
	if got := productQuantity(t, db, p.EntityID); got != 9 {
		t.Errorf("quantity = %d, want restored 9", got)
	}
}

func TestDelete_UnknownEntry(t *testing.T) {
	db := testDB(t)
	svc := NewLedgerService(db, nil)

	if err := svc.DeleteStockIn(42, nil); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("DeleteStockIn err = %v, want ErrEntryNotFound", err)
	}
	if err := svc.DeleteStockOut(42, nil); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("DeleteStockOut err = %v, want ErrEntryNotFound", err)
	}
}

func TestHistory_MergesBothDirectionsNewestFirst(t *testing.T) {
	db := testDB(t)
	svc := NewLedgerService(db, nil)
	p := seedProduct(t, db, "SKU-009", 0, 0)
	other := seedProduct(t, db, "SKU-010", 50, 0)

	if _, err := svc.RecordStockIn(StockInRequest{ProductID: p.EntityID, Quantity: 10, UnitPrice: 1, Supplier: "Acme"}, nil); err != nil {
		t.Fatalf("RecordStockIn: %v", err)
	}
	if _, err := svc.RecordStockOut(StockOutRequest{ProductID: p.EntityID, Quantity: 3, Reason: "sale"}, nil); err != nil {
		t.Fatalf("RecordStockOut: %v", err)
	}
	if _, err := svc.RecordStockOut(StockOutRequest{ProductID: other.EntityID, Quantity: 1}, nil); err != nil {
		t.Fatalf("RecordStockOut other: %v", err)
	}

	movements, err := svc.History(inventoryRepo.HistoryFilter{ProductID: &p.EntityID})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(movements) != 2 {
		t.Fatalf("movements = %d, want 2 (filtered to one product)", len(movements))
	}
	for i := 1; i < len(movements); i++ {
		if movements[i].CreatedAt.After(movements[i-1].CreatedAt) {
			t.Errorf("movements not ordered newest first at index %d", i)
		}
	}
	types := map[string]bool{}
	for _, m := range movements {
		types[m.Type] = true
		if m.ProductID != p.EntityID {
			t.Errorf("movement for product %d leaked into filter", m.ProductID)
		}
	}
	if !types["in"] || !types["out"] {
		t.Errorf("types = %v, want both in and out", types)
	}
}

func TestStatus_DerivesLowFlag(t *testing.T) {
	db := testDB(t)
	svc := NewLedgerService(db, nil)
	low := seedProduct(t, db, "SKU-011", 2, 5)
	normal := seedProduct(t, db, "SKU-012", 9, 5)

	report, err := svc.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	byID := map[uint]ProductStatus{}
	for _, row := range report {
		byID[row.ID] = row
	}
	if byID[low.EntityID].Status != "low" {
		t.Errorf("status for low product = %q, want low", byID[low.EntityID].Status)
	}
	if byID[normal.EntityID].Status != "normal" {
		t.Errorf("status for normal product = %q, want normal", byID[normal.EntityID].Status)
	}
}
