package activity

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"erp.GO/api"
	"erp.GO/core/auth"
	"erp.GO/service/audit"
)

func init() {
	api.RegisterModule(RegisterActivityRoutes)
}

// RegisterActivityRoutes exposes the audit trail. Admin only.
func RegisterActivityRoutes(apiGroup *echo.Group, db *gorm.DB) {
	apiGroup.GET("/activity", func(c echo.Context) error {
		limit := 0
		if raw := c.QueryParam("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid limit"})
			}
			limit = n
		}
		entries, err := audit.Recent(db, limit)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
		}
		return c.JSON(http.StatusOK, entries)
	}, auth.RequireRole("admin"))
}
