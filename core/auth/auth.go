package auth

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"erp.GO/config"
	"erp.GO/core/cache"
	entity "erp.GO/model/entity"
	accountRepo "erp.GO/model/repository/account"
)

// ContextUserKey is where the middleware stores the authenticated user.
const ContextUserKey = "auth_user"

// userCacheTTL bounds how stale a cached token→user resolution may get.
// Role or permission changes take effect within this window.
const userCacheTTL = int64(60)

func secret() []byte {
	s := os.Getenv("JWT_SECRET")
	if s == "" {
		s = "erp_dev_secret"
	}
	return []byte(s)
}

// IssueToken signs a bearer token for the given user.
func IssueToken(user *entity.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      user.UserID,
		"username": user.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret())
}

// parseToken validates signature and expiry, returning the user ID claim.
func parseToken(token string) (uint, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret(), nil
	})
	if err != nil {
		return 0, err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return 0, jwt.ErrTokenInvalidClaims
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return 0, jwt.ErrTokenInvalidClaims
	}
	return uint(sub), nil
}

func buildSkipper() middleware.Skipper {
	skipPaths := config.GetAuthSkipperPaths()
	return func(c echo.Context) bool {
		path := c.Path()
		for _, skip := range skipPaths {
			if path == skip {
				return true
			}
		}
		return false
	}
}

// Middleware resolves the Authorization bearer token to a user (with the
// role/permission graph loaded) and stores it in the request context. On paths
// in the skip list the token is optional: requests without one pass through
// anonymously, but a valid token still resolves so handlers see the caller.
func Middleware(db *gorm.DB) echo.MiddlewareFunc {
	skipper := buildSkipper()
	repo := accountRepo.NewUserRepository(db)
	userCache := cache.GetInstance()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			optional := skipper(c)

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				if optional {
					return next(c)
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "missing authentication token"})
			}
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				if optional {
					return next(c)
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid token format"})
			}

			userID, err := parseToken(token)
			if err != nil {
				if optional {
					return next(c)
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid token"})
			}

			var user *entity.User
			if v, hit := userCache.GetN("auth_user", userID); hit {
				user = v.(*entity.User)
			} else {
				user, err = repo.FindByID(userID)
				if err != nil {
					if optional {
						return next(c)
					}
					return c.JSON(http.StatusUnauthorized, echo.Map{"message": "user not found"})
				}
				userCache.SetN([]interface{}{"auth_user", userID}, user, userCacheTTL)
			}
			if !user.IsActive {
				if optional {
					return next(c)
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "account disabled"})
			}

			c.Set(ContextUserKey, user)
			return next(c)
		}
	}
}

// RequireAuth rejects anonymous requests on routes whose path is otherwise on
// the auth skip list, such as catalog writes sharing a path with public reads.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentUser(c) == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required"})
			}
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user, or nil on public routes.
func CurrentUser(c echo.Context) *entity.User {
	if u, ok := c.Get(ContextUserKey).(*entity.User); ok {
		return u
	}
	return nil
}

// InvalidateUser drops a cached user after role/permission changes.
func InvalidateUser(userID uint) {
	cache.GetInstance().DeleteN("auth_user", userID)
}

// FlushUserCache drops every cached user. Used when a role-wide change
// affects an unknown set of users.
func FlushUserCache() {
	cache.GetInstance().Flush()
}

// RequireRole allows only users holding at least one of the given roles.
func RequireRole(names ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required"})
			}
			if !user.HasRole(names...) {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "access denied"})
			}
			return next(c)
		}
	}
}

// RequirePermission allows only users whose roles grant resource/action.
func RequirePermission(resource, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "authentication required"})
			}
			if !user.HasPermission(resource, action) {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "access denied"})
			}
			return next(c)
		}
	}
}
