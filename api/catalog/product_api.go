package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"erp.GO/api"
	"erp.GO/config"
	"erp.GO/core/auth"
	inventoryRepo "erp.GO/model/repository/inventory"
	catalogService "erp.GO/service/catalog"
	inventoryService "erp.GO/service/inventory"
)

func init() {
	api.RegisterModule(RegisterProductRoutes)
}

func RegisterProductRoutes(apiGroup *echo.Group, db *gorm.DB) {
	svc := catalogService.NewProductService(db, catalogService.NewSearchService())
	ledger := inventoryService.NewLedgerService(db, config.RedisClient)
	g := apiGroup.Group("/products")

	// Public reads (auth skipped via config.GetAuthSkipperPaths).
	g.GET("", func(c echo.Context) error {
		lowOnly := c.QueryParam("low") == "true"
		products, err := svc.List(c.Request().Context(), c.QueryParam("q"), lowOnly)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, products)
	})

	g.GET("/:id", func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "product not found"})
		}
		product, err := svc.Get(id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, product)
	})

	g.POST("", func(c echo.Context) error {
		var req catalogService.ProductRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
		}
		product, err := svc.Create(req, auth.CurrentUser(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusCreated, product)
	}, auth.RequireAuth())

	g.PUT("/:id", func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "product not found"})
		}
		var req catalogService.ProductRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
		}
		product, err := svc.Update(id, req, auth.CurrentUser(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, product)
	}, auth.RequireAuth())

	g.DELETE("/:id", func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "product not found"})
		}
		if err := svc.Delete(id, auth.CurrentUser(c)); err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "product deleted"})
	}, auth.RequireRole("admin"))

	// Product-scoped ledger shortcuts.
	g.GET("/:id/inventory", func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "product not found"})
		}
		if _, err := svc.Get(id); err != nil {
			return fail(c, err)
		}
		history, err := ledger.History(inventoryRepo.HistoryFilter{ProductID: &id})
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, history)
	})

	g.POST("/:id/inventory/in", func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "product not found"})
		}
		var req inventoryService.StockInRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
		}
		req.ProductID = id
		entry, err := ledger.RecordStockIn(req, auth.CurrentUser(c))
		if err != nil {
			return failLedger(c, err)
		}
		return c.JSON(http.StatusCreated, entry)
	})

	g.POST("/:id/inventory/out", func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "product not found"})
		}
		var req inventoryService.StockOutRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
		}
		req.ProductID = id
		entry, err := ledger.RecordStockOut(req, auth.CurrentUser(c))
		if err != nil {
			return failLedger(c, err)
		}
		return c.JSON(http.StatusCreated, entry)
	})
}

func parseID(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, catalogService.ErrValidation),
		errors.Is(err, catalogService.ErrSKUExists),
		errors.Is(err, catalogService.ErrProductInUse):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	case errors.Is(err, catalogService.ErrProductNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}
}

func failLedger(c echo.Context, err error) error {
	switch {
	case errors.Is(err, inventoryService.ErrValidation),
		errors.Is(err, inventoryService.ErrInsufficientStock):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	case errors.Is(err, inventoryService.ErrProductNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}
}
