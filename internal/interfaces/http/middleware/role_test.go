package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dropship/backoffice/internal/domain/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roleTestRouter(setRole string, mw gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if setRole != "" {
			c.Set(JWTRoleKey, setRole)
			c.Set(JWTUserIDKey, uuid.New().String())
		}
		c.Next()
	})
	router.Use(mw)
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func TestRequireRole_Allowed(t *testing.T) {
	router := roleTestRouter("ADMIN", RequireAdmin())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole_Denied(t *testing.T) {
	router := roleTestRouter("SELLER", RequireAdmin())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRole_NoClaims(t *testing.T) {
	router := roleTestRouter("", RequireAdmin())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireStaff_AllowsManager(t *testing.T) {
	router := roleTestRouter("MANAGER", RequireStaff())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSellerScope_Seller(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	userID := uuid.New()
	c.Set(JWTRoleKey, string(identity.RoleSeller))
	c.Set(JWTUserIDKey, userID.String())

	scope := SellerScope(c)

	require.NotNil(t, scope)
	assert.Equal(t, userID, *scope)
}

func TestSellerScope_Staff(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Set(JWTRoleKey, string(identity.RoleAdmin))
	c.Set(JWTUserIDKey, uuid.New().String())

	assert.Nil(t, SellerScope(c))
}

func TestSellerScope_NoClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, SellerScope(c))
}
