package inventory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"erp.GO/api"
	"erp.GO/core/auth"
	entity "erp.GO/model/entity"
	catalogEntity "erp.GO/model/entity/catalog"
	inventoryEntity "erp.GO/model/entity/inventory"
	salesEntity "erp.GO/model/entity/sales"
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

func newServer(t *testing.T) (*echo.Echo, *gorm.DB) {
	t.Helper()
	auth.FlushUserCache()
	db := testDB(t)
	e := echo.New()
	g := e.Group("/api")
	g.Use(auth.Middleware(db))
	api.ApplyModules(g, db)
	return e, db
}

// seedUser creates an active user and returns a valid bearer token for it.
func seedUser(t *testing.T, db *gorm.DB, username string, roles ...*entity.Role) (*entity.User, string) {
	t.Helper()
	user := entity.User{
		Username: username,
		Password: "x",
		Name:     username,
		Email:    username + "@example.com",
		IsActive: true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	for _, role := range roles {
		if err := db.Model(&user).Association("Roles").Append(role); err != nil {
			t.Fatalf("assign role: %v", err)
		}
	}
	token, err := auth.IssueToken(&user, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return &user, token
}

func seedAdminRole(t *testing.T, db *gorm.DB) *entity.Role {
	t.Helper()
	role := entity.Role{Name: "admin", Permissions: []entity.Permission{
		{Name: "inventory:delete", Resource: "inventory", Action: "delete"},
		{Name: "orders:delete", Resource: "orders", Action: "delete"},
	}}
	if err := db.Create(&role).Error; err != nil {
		t.Fatalf("seed admin role: %v", err)
	}
	return &role
}

func seedProduct(t *testing.T, db *gorm.DB, sku string, quantity int) *catalogEntity.Product {
	t.Helper()
	p := catalogEntity.Product{Name: "Product " + sku, SKU: sku, Price: 10, Quantity: quantity}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return &p
}

func request(t *testing.T, e *echo.Echo, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestInventory_RequiresAuth(t *testing.T) {
	e, _ := newServer(t)

	rec := request(t, e, http.MethodGet, "/api/inventory/in", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}

	rec = request(t, e, http.MethodGet, "/api/inventory/in", "not-a-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", rec.Code)
	}
}

func TestStockIn_CreateAndRead(t *testing.T) {
	e, db := newServer(t)
	_, token := seedUser(t, db, "clerk")
	p := seedProduct(t, db, "SKU-1", 10)

	rec := request(t, e, http.MethodPost, "/api/inventory/in", token, map[string]interface{}{
		"productId": p.EntityID,
		"quantity":  5,
		"unitPrice": 2.0,
		"supplier":  "Acme",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var entry inventoryEntity.InventoryIn
	if err := json.Unmarshal(rec.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry.TotalPrice != 10 {
		t.Errorf("totalPrice = %v, want 10", entry.TotalPrice)
	}

	rec = request(t, e, http.MethodGet, fmt.Sprintf("/api/inventory/in/%d", entry.EntryID), token, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("get status = %d, want 200", rec.Code)
	}

	var product catalogEntity.Product
	db.First(&product, "entity_id = ?", p.EntityID)
	if product.Quantity != 15 {
		t.Errorf("quantity = %d, want 15", product.Quantity)
	}
}

func TestStockOut_InsufficientReturns400(t *testing.T) {
	e, db := newServer(t)
	_, token := seedUser(t, db, "clerk")
	p := seedProduct(t, db, "SKU-1", 3)

	rec := request(t, e, http.MethodPost, "/api/inventory/out", token, map[string]interface{}{
		"productId": p.EntityID,
		"quantity":  4,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
}

func TestStockIn_UnknownProductReturns404(t *testing.T) {
	e, db := newServer(t)
	_, token := seedUser(t, db, "clerk")

	rec := request(t, e, http.MethodPost, "/api/inventory/in", token, map[string]interface{}{
		"productId": 99,
		"quantity":  1,
		"unitPrice": 1.0,
		"supplier":  "Acme",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404: %s", rec.Code, rec.Body.String())
	}
}

func TestDeleteStockIn_PermissionGate(t *testing.T) {
	e, db := newServer(t)
	adminRole := seedAdminRole(t, db)
	_, clerkToken := seedUser(t, db, "clerk")
	_, adminToken := seedUser(t, db, "root", adminRole)
	p := seedProduct(t, db, "SKU-1", 0)

	rec := request(t, e, http.MethodPost, "/api/inventory/in", clerkToken, map[string]interface{}{
		"productId": p.EntityID,
		"quantity":  5,
		"unitPrice": 1.0,
		"supplier":  "Acme",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	var entry inventoryEntity.InventoryIn
	json.Unmarshal(rec.Body.Bytes(), &entry)

	rec = request(t, e, http.MethodDelete, fmt.Sprintf("/api/inventory/in/%d", entry.EntryID), clerkToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("clerk delete status = %d, want 403", rec.Code)
	}

	rec = request(t, e, http.MethodDelete, fmt.Sprintf("/api/inventory/in/%d", entry.EntryID), adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("admin delete status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var product catalogEntity.Product
	db.First(&product, "entity_id = ?", p.EntityID)
	if product.Quantity != 0 {
		t.Errorf("quantity = %d, want reversed to 0", product.Quantity)
	}
}

func TestStatusReport(t *testing.T) {
	e, db := newServer(t)
	_, token := seedUser(t, db, "clerk")
	p := seedProduct(t, db, "SKU-1", 2)
	db.Model(&catalogEntity.Product{}).Where("entity_id = ?", p.EntityID).Update("minimum_quantity", 5)

	rec := request(t, e, http.MethodGet, "/api/inventory/status", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var report []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(report) != 1 || report[0]["status"] != "low" {
		t.Errorf("report = %v, want one low row", report)
	}
}

func TestHistory_FilterByProduct(t *testing.T) {
	e, db := newServer(t)
	_, token := seedUser(t, db, "clerk")
	p := seedProduct(t, db, "SKU-1", 0)
	other := seedProduct(t, db, "SKU-2", 10)

	request(t, e, http.MethodPost, "/api/inventory/in", token, map[string]interface{}{
		"productId": p.EntityID, "quantity": 5, "unitPrice": 1.0, "supplier": "Acme",
	})
	request(t, e, http.MethodPost, "/api/inventory/out", token, map[string]interface{}{
		"productId": other.EntityID, "quantity": 2,
	})

	rec := request(t, e, http.MethodGet, fmt.Sprintf("/api/inventory/history?productId=%d", p.EntityID), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var movements []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &movements); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(movements) != 1 || movements[0]["type"] != "in" {
		t.Errorf("movements = %v, want one in entry", movements)
	}

	rec = request(t, e, http.MethodGet, "/api/inventory/history?productId=abc", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad filter status = %d, want 400", rec.Code)
	}
}
