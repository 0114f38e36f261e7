package sales

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"erp.GO/api"
	"erp.GO/config"
	"erp.GO/core/auth"
	salesRepo "erp.GO/model/repository/sales"
	salesService "erp.GO/service/sales"
)

func init() {
	api.RegisterModule(RegisterOrderRoutes)
}

func RegisterOrderRoutes(apiGroup *echo.Group, db *gorm.DB) {
	svc := salesService.NewOrderService(db, config.RedisClient)
	repo := salesRepo.NewOrderRepository(db)
	g := apiGroup.Group("/orders")

	g.GET("", func(c echo.Context) error {
		orders, err := repo.All()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, orders)
	})

	g.GET("/:id", func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "order not found"})
		}
		order, err := repo.FindByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"message": "order not found"})
			}
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, order)
	})

	g.POST("", func(c echo.Context) error {
		var req salesService.CreateOrderRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
		}
		order, err := svc.CreateOrder(req, auth.CurrentUser(c))
		if err != nil {
			if errors.Is(err, salesService.ErrValidation) {
				return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
			}
			// Line failures surface as 500 with the failing product named.
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": err.Error()})
		}
		return c.JSON(http.StatusCreated, order)
	})

	g.PUT("/:id", func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "order not found"})
		}
		var req salesService.UpdateOrderRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
		}
		order, err := svc.UpdateOrder(id, req, auth.CurrentUser(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, order)
	})

	g.PUT("/:id/status", func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "order not found"})
		}
		var req struct {
			Status string `json:"status"`
		}
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
		}
		order, err := svc.UpdateStatus(id, req.Status, auth.CurrentUser(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, order)
	})

	g.DELETE("/:id", func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "order not found"})
		}
		if err := svc.DeleteOrder(id, auth.CurrentUser(c)); err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "order deleted"})
	}, auth.RequirePermission("orders", "delete"))

	g.GET("/:id/items", func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "order not found"})
		}
		items, err := svc.Items(id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, items)
	})
}

func parseID(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// fail translates order workflow errors into the HTTP contract.
func fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, salesService.ErrValidation),
		errors.Is(err, salesService.ErrInvalidStatus),
		errors.Is(err, salesService.ErrInvalidTransition),
		errors.Is(err, salesService.ErrOrderLocked),
		errors.Is(err, salesService.ErrOrderCompleted):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	case errors.Is(err, salesService.ErrOrderNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}
}
