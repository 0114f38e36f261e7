package rbac

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"erp.GO/api"
	"erp.GO/core/auth"
	entity "erp.GO/model/entity"
	rbacRepo "erp.GO/model/repository/rbac"
	"erp.GO/service/audit"
)

func init() {
	api.RegisterModule(RegisterRbacRoutes)
}

// RegisterRbacRoutes exposes role and permission management. Admin only.
func RegisterRbacRoutes(apiGroup *echo.Group, db *gorm.DB) {
	repo := rbacRepo.NewRbacRepository(db)
	g := apiGroup.Group("/rbac", auth.RequireRole("admin"))

	g.GET("/roles", func(c echo.Context) error {
		roles, err := repo.AllRoles()
		if err != nil {
			return internal(c)
		}
		return c.JSON(http.StatusOK, roles)
	})

	g.POST("/roles", func(c echo.Context) error {
		var req struct {
			Name        string  `json:"name"`
			Description *string `json:"description"`
		}
		if err := c.Bind(&req); err != nil || req.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "name is required"})
		}
		role := entity.Role{Name: req.Name, Description: req.Description}
		if err := repo.CreateRole(&role); err != nil {
			return internal(c)
		}
		if err := audit.Record(db, auth.CurrentUser(c), "create", "role", role.RoleID, req); err != nil {
			return internal(c)
		}
		return c.JSON(http.StatusCreated, role)
	})

	g.DELETE("/roles/:id", func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "role not found"})
		}
		if _, err := repo.FindRoleByID(id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"message": "role not found"})
			}
			return internal(c)
		}
		if err := repo.DeleteRole(id); err != nil {
			return internal(c)
		}
		if err := audit.Record(db, auth.CurrentUser(c), "delete", "role", id, nil); err != nil {
			return internal(c)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "role deleted"})
	})

	g.GET("/permissions", func(c echo.Context) error {
		perms, err := repo.AllPermissions()
		if err != nil {
			return internal(c)
		}
		return c.JSON(http.StatusOK, perms)
	})

	g.POST("/permissions", func(c echo.Context) error {
		var req struct {
			Name     string `json:"name"`
			Resource string `json:"resource"`
			Action   string `json:"action"`
		}
		if err := c.Bind(&req); err != nil || req.Resource == "" || req.Action == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "resource and action are required"})
		}
		if req.Name == "" {
			req.Name = req.Resource + ":" + req.Action
		}
		perm := entity.Permission{Name: req.Name, Resource: req.Resource, Action: req.Action}
		if err := repo.CreatePermission(&perm); err != nil {
			return internal(c)
		}
		if err := audit.Record(db, auth.CurrentUser(c), "create", "permission", perm.PermissionID, req); err != nil {
			return internal(c)
		}
		return c.JSON(http.StatusCreated, perm)
	})

	g.DELETE("/permissions/:id", func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "permission not found"})
		}
		if _, err := repo.FindPermissionByID(id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"message": "permission not found"})
			}
			return internal(c)
		}
		if err := repo.DeletePermission(id); err != nil {
			return internal(c)
		}
		if err := audit.Record(db, auth.CurrentUser(c), "delete", "permission", id, nil); err != nil {
			return internal(c)
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "permission deleted"})
	})

	g.POST("/roles/:id/permissions", func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "role not found"})
		}
		var req struct {
			PermissionID uint `json:"permissionId"`
		}
		if err := c.Bind(&req); err != nil || req.PermissionID == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "permissionId is required"})
		}
		role, err := repo.FindRoleByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"message": "role not found"})
			}
			return internal(c)
		}
		perm, err := repo.FindPermissionByID(req.PermissionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return c.JSON(http.StatusNotFound, echo.Map{"message": "permission not found"})
			}
			return internal(c)
		}
		if err := repo.GrantPermission(role, perm); err != nil {
			return internal(c)
		}
		if err := audit.Record(db, auth.CurrentUser(c), "grant", "role", role.RoleID,
			echo.Map{"resource": perm.Resource, "action": perm.Action}); err != nil {
			return internal(c)
		}
		// Members of the role pick up the permission on their next token check.
		auth.FlushUserCache()
		return c.JSON(http.StatusOK, echo.Map{"message": "permission granted"})
	})
}

func parseID(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func internal(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
}
