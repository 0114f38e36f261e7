package inventory

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"erp.GO/api"
	"erp.GO/config"
	"erp.GO/core/auth"
	inventoryRepo "erp.GO/model/repository/inventory"
	inventoryService "erp.GO/service/inventory"
)

func init() {
	api.RegisterModule(RegisterInventoryRoutes)
}

func RegisterInventoryRoutes(apiGroup *echo.Group, db *gorm.DB) {
	svc := inventoryService.NewLedgerService(db, config.RedisClient)
	g := apiGroup.Group("/inventory")

	g.GET("/in", func(c echo.Context) error {
		entries, err := svc.ListStockIn()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, entries)
	})

	g.GET("/in/:id", func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "inventory record not found"})
		}
		entry, err := svc.StockInByID(id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, entry)
	})

	g.POST("/in", func(c echo.Context) error {
		var req inventoryService.StockInRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
		}
		entry, err := svc.RecordStockIn(req, auth.CurrentUser(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusCreated, entry)
	})

	g.PUT("/in/:id", func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "inventory record not found"})
		}
		var req inventoryService.StockInRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
		}
		entry, err := svc.UpdateStockIn(id, req, auth.CurrentUser(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, entry)
	})

	g.DELETE("/in/:id", func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "inventory record not found"})
		}
		if err := svc.DeleteStockIn(id, auth.CurrentUser(c)); err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "inventory record deleted"})
	}, auth.RequirePermission("inventory", "delete"))

	g.GET("/out", func(c echo.Context) error {
		entries, err := svc.ListStockOut()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, entries)
	})

	g.GET("/out/:id", func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "inventory record not found"})
		}
		entry, err := svc.StockOutByID(id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, entry)
	})

	g.POST("/out", func(c echo.Context) error {
		var req inventoryService.StockOutRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
		}
		entry, err := svc.RecordStockOut(req, auth.CurrentUser(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusCreated, entry)
	})

	g.PUT("/out/:id", func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "inventory record not found"})
		}
		var req inventoryService.StockOutRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
		}
		entry, err := svc.UpdateStockOut(id, req, auth.CurrentUser(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, entry)
	})

	g.DELETE("/out/:id", func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "inventory record not found"})
		}
		if err := svc.DeleteStockOut(id, auth.CurrentUser(c)); err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "inventory record deleted"})
	}, auth.RequirePermission("inventory", "delete"))

	g.GET("/status", func(c echo.Context) error {
		report, err := svc.Status()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, report)
	})

	g.GET("/history", func(c echo.Context) error {
		filter, err := historyFilter(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
		}
		history, err := svc.History(filter)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, history)
	})
}

// historyFilter parses productId/startDate/endDate query params. Dates accept
// RFC 3339 or plain YYYY-MM-DD.
func historyFilter(c echo.Context) (inventoryRepo.HistoryFilter, error) {
	var filter inventoryRepo.HistoryFilter
	if raw := c.QueryParam("productId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return filter, errors.New("invalid productId")
		}
		pid := uint(id)
		filter.ProductID = &pid
	}
	start, end := c.QueryParam("startDate"), c.QueryParam("endDate")
	if start != "" && end != "" {
		s, err := parseDate(start)
		if err != nil {
			return filter, errors.New("invalid startDate")
		}
		e, err := parseDate(end)
		if err != nil {
			return filter, errors.New("invalid endDate")
		}
		// Date-only end bounds are inclusive of the whole day.
		if len(end) == len("2006-01-02") {
			e = e.Add(24*time.Hour - time.Nanosecond)
		}
		filter.StartDate = &s
		filter.EndDate = &e
	}
	return filter, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func parseID(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// fail translates ledger errors into the HTTP contract.
func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, inventoryService.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	case errors.Is(err, inventoryService.ErrInsufficientStock):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	case errors.Is(err, inventoryService.ErrProductNotFound),
		errors.Is(err, inventoryService.ErrEntryNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}
}
