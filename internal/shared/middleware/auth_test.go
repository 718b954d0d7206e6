package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/shared/authz"
	"library-backend/pkg/jwt"
)

func newTestRouter(manager *jwt.Manager, minRole authz.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/", AuthMiddleware(manager))
	if minRole != "" {
		group.Use(RequireRole(minRole))
	}
	group.GET("/ping", func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "actor missing"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": actor.UserID.String(), "role": string(actor.Role)})
	})
	return r
}

func mintToken(t *testing.T, manager *jwt.Manager, role string, expiry time.Duration) string {
	t.Helper()
	token, err := manager.GenerateAccessToken(uuid.New().String(), "reader@library.dev", role, expiry)
	require.NoError(t, err)
	return token
}

func performRequest(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	manager := jwt.NewManager("test-secret")
	r := newTestRouter(manager, "")

	token := mintToken(t, manager, "reader", time.Hour)
	w := performRequest(r, "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"reader"`)
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	manager := jwt.NewManager("test-secret")
	r := newTestRouter(manager, "")

	w := performRequest(r, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	manager := jwt.NewManager("test-secret")
	r := newTestRouter(manager, "")

	w := performRequest(r, "Token abc.def.ghi")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	manager := jwt.NewManager("test-secret")
	other := jwt.NewManager("other-secret")
	r := newTestRouter(manager, "")

	token := mintToken(t, other, "reader", time.Hour)
	w := performRequest(r, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	manager := jwt.NewManager("test-secret")
	r := newTestRouter(manager, "")

	token := mintToken(t, manager, "reader", -time.Minute)
	w := performRequest(r, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_UnknownRole(t *testing.T) {
	manager := jwt.NewManager("test-secret")
	r := newTestRouter(manager, "")

	token := mintToken(t, manager, "librarian", time.Hour)
	w := performRequest(r, "Bearer "+token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole_ReaderBlockedFromStaffRoute(t *testing.T) {
	manager := jwt.NewManager("test-secret")
	r := newTestRouter(manager, authz.RoleStaff)

	token := mintToken(t, manager, "reader", time.Hour)
	w := performRequest(r, "Bearer "+token)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRole_AdminSubsumesStaff(t *testing.T) {
	manager := jwt.NewManager("test-secret")
	r := newTestRouter(manager, authz.RoleStaff)

	token := mintToken(t, manager, "admin", time.Hour)
	w := performRequest(r, "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
}
