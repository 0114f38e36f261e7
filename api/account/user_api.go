package account

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"erp.GO/api"
	"erp.GO/core/auth"
	rbacRepo "erp.GO/model/repository/rbac"
	accountService "erp.GO/service/account"
	"erp.GO/service/audit"
)

func init() {
	api.RegisterModule(RegisterUserRoutes)
}

func RegisterUserRoutes(apiGroup *echo.Group, db *gorm.DB) {
	svc := accountService.NewUserService(db)
	roles := rbacRepo.NewRbacRepository(db)
	g := apiGroup.Group("/users")

	// register and login are on the auth skip list.
	g.POST("/register", func(c echo.Context) error {
		var req accountService.RegisterRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
		}
		user, err := svc.Register(req)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusCreated, user)
	})

	g.POST("/login", func(c echo.Context) error {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
		}
		token, user, err := svc.Login(req.Username, req.Password)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"token": token, "user": user})
	})

	g.GET("/me", func(c echo.Context) error {
		user := auth.CurrentUser(c)
		if user == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required"})
		}
		return c.JSON(http.StatusOK, user)
	})

	admin := g.Group("", auth.RequireRole("admin"))

	admin.GET("", func(c echo.Context) error {
		users, err := svc.List()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, users)
	})

	admin.GET("/:id", func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		}
		user, err := svc.Get(id)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, user)
	})

	admin.PUT("/:id", func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		}
		var req accountService.UpdateUserRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
		}
		user, err := svc.Update(id, req)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, user)
	})

	admin.DELETE("/:id", func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		}
		if err := svc.Deactivate(id); err != nil {
			return fail(c, err)
		}
		if err := audit.Record(db, auth.CurrentUser(c), "deactivate", "user", id, nil); err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "user deactivated"})
	})

	admin.POST("/:id/roles", func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		}
		var req struct {
			Role string `json:"role"`
		}
		if err := c.Bind(&req); err != nil || req.Role == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "role is required"})
		}
		role, err := roles.FindRoleByName(req.Role)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"message": "role not found"})
			}
			return fail(c, err)
		}
		if err := svc.AssignRole(id, role); err != nil {
			return fail(c, err)
		}
		if err := audit.Record(db, auth.CurrentUser(c), "assign_role", "user", id, echo.Map{"role": role.Name}); err != nil {
			return fail(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "role assigned"})
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
	case errors.Is(err, accountService.ErrValidation),
		errors.Is(err, accountService.ErrUsernameTaken),
		errors.Is(err, accountService.ErrEmailTaken):
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	case errors.Is(err, accountService.ErrInvalidCredentials),
		errors.Is(err, accountService.ErrAccountDisabled):
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": err.Error()})
	case errors.Is(err, accountService.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}
}
