package sales

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
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
		{Name: "orders:delete", Resource: "orders", Action: "delete"},
	}}
	if err := db.Create(&role).Error; err != nil {
		t.Fatalf("seed admin role: %v", err)
	}
	return &role
}

func seedProduct(t *testing.T, db *gorm.DB, sku string, price float64, quantity int) *catalogEntity.Product {
	t.Helper()
	p := catalogEntity.Product{Name: "Product " + sku, SKU: sku, Price: price, Quantity: quantity}
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

func orderBody(items []map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"customerName":    "Jane Doe",
		"customerEmail":   "jane@example.com",
		"customerPhone":   "555-0100",
		"shippingAddress": "1 Main St",
		"items":           items,
	}
}

func TestCreateOrder_Success(t *testing.T) {
	e, db := newServer(t)
	_, token := seedUser(t, db, "sales")
	a := seedProduct(t, db, "SKU-A", 10, 5)

	rec := request(t, e, http.MethodPost, "/api/orders", token, orderBody([]map[string]interface{}{
		{"productId": a.EntityID, "quantity": 2},
	}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var order salesEntity.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if order.TotalAmount != 20 {
		t.Errorf("totalAmount = %v, want 20", order.TotalAmount)
	}

	var p catalogEntity.Product
	db.First(&p, "entity_id = ?", a.EntityID)
	if p.Quantity != 3 {
		t.Errorf("quantity = %d, want 3", p.Quantity)
	}
}

func TestCreateOrder_LineFailureReturns500WithProduct(t *testing.T) {
	e, db := newServer(t)
	_, token := seedUser(t, db, "sales")
	a := seedProduct(t, db, "SKU-A", 10, 5)
	b := seedProduct(t, db, "SKU-B", 4, 0)

	rec := request(t, e, http.MethodPost, "/api/orders", token, orderBody([]map[string]interface{}{
		{"productId": a.EntityID, "quantity": 2},
		{"productId": b.EntityID, "quantity": 1},
	}))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), b.Name) {
		t.Errorf("body %q should name the failing product", rec.Body.String())
	}

	var p catalogEntity.Product
	db.First(&p, "entity_id = ?", a.EntityID)
	if p.Quantity != 5 {
		t.Errorf("quantity = %d, want untouched 5", p.Quantity)
	}
}

func TestCreateOrder_ValidationReturns400(t *testing.T) {
	e, db := newServer(t)
	_, token := seedUser(t, db, "sales")

	body := orderBody(nil)
	delete(body, "items")
	rec := request(t, e, http.MethodPost, "/api/orders", token, body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
}

func createOrderHTTP(t *testing.T, e *echo.Echo, token string, items []map[string]interface{}) salesEntity.Order {
	t.Helper()
	rec := request(t, e, http.MethodPost, "/api/orders", token, orderBody(items))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create order status = %d: %s", rec.Code, rec.Body.String())
	}
	var order salesEntity.Order
	if err := json.Unmarshal(rec.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return order
}

func TestUpdateStatus_TransitionGate(t *testing.T) {
	e, db := newServer(t)
	_, token := seedUser(t, db, "sales")
	order := createOrderHTTP(t, e, token, []map[string]interface{}{})

	rec := request(t, e, http.MethodPut, fmt.Sprintf("/api/orders/%d/status", order.OrderID), token,
		map[string]string{"status": "shipped"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("pending->shipped status = %d, want 400: %s", rec.Code, rec.Body.String())
	}

	rec = request(t, e, http.MethodPut, fmt.Sprintf("/api/orders/%d/status", order.OrderID), token,
		map[string]string{"status": "processing"})
	if rec.Code != http.StatusOK {
		t.Errorf("pending->processing status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	rec = request(t, e, http.MethodPut, fmt.Sprintf("/api/orders/%d/status", order.OrderID), token,
		map[string]string{"status": "bogus"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown status = %d, want 400", rec.Code)
	}
}

func TestDeleteOrder_PermissionGateAndRestore(t *testing.T) {
	e, db := newServer(t)
	adminRole := seedAdminRole(t, db)
	_, salesToken := seedUser(t, db, "sales")
	_, adminToken := seedUser(t, db, "root", adminRole)
	a := seedProduct(t, db, "SKU-A", 10, 5)
	order := createOrderHTTP(t, e, salesToken, []map[string]interface{}{
		{"productId": a.EntityID, "quantity": 3},
	})

	rec := request(t, e, http.MethodDelete, fmt.Sprintf("/api/orders/%d", order.OrderID), salesToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-admin delete status = %d, want 403", rec.Code)
	}

	rec = request(t, e, http.MethodDelete, fmt.Sprintf("/api/orders/%d", order.OrderID), adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin delete status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var p catalogEntity.Product
	db.First(&p, "entity_id = ?", a.EntityID)
	if p.Quantity != 5 {
		t.Errorf("quantity = %d, want restored 5", p.Quantity)
	}
}

func TestGetOrder_Unknown(t *testing.T) {
	e, db := newServer(t)
	_, token := seedUser(t, db, "sales")

	rec := request(t, e, http.MethodGet, "/api/orders/99", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	rec = request(t, e, http.MethodGet, "/api/orders/notanumber", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("non-numeric id status = %d, want 404", rec.Code)
	}
}
