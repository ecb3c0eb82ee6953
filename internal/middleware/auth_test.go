package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tienda-backoffice/internal/auth"
)

func newTestRouter(issuer *auth.TokenIssuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api", Authenticate(issuer))
	api.GET("/ventas", RequireCapability(auth.CapSales), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserID(c)})
	})
	api.GET("/usuarios", RequireCapability(auth.CapUsers), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func doGet(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMissingTokenIs401(t *testing.T) {
	issuer := auth.NewTokenIssuer("secret")
	r := newTestRouter(issuer)

	w := doGet(r, "/api/ventas", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "unauthorized")
}

func TestGarbageTokenIs401(t *testing.T) {
	issuer := auth.NewTokenIssuer("secret")
	r := newTestRouter(issuer)

	w := doGet(r, "/api/ventas", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWrongSecretIs401(t *testing.T) {
	other := auth.NewTokenIssuer("other-secret")
	token, err := other.Generate(1, "eva", []string{"admin"})
	require.NoError(t, err)

	r := newTestRouter(auth.NewTokenIssuer("secret"))
	w := doGet(r, "/api/ventas", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMissingCapabilityIs403NotAllowed401(t *testing.T) {
	issuer := auth.NewTokenIssuer("secret")
	token, err := issuer.Generate(7, "eva", []string{"vendedor"})
	require.NoError(t, err)

	r := newTestRouter(issuer)

	// vendedor carries ventas but not usuarios
	w := doGet(r, "/api/ventas", token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doGet(r, "/api/usuarios", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "forbidden")
	assert.Contains(t, w.Body.String(), auth.CapUsers)
}

func TestAdminWildcardPassesEveryGate(t *testing.T) {
	issuer := auth.NewTokenIssuer("secret")
	token, err := issuer.Generate(1, "root", []string{"admin"})
	require.NoError(t, err)

	r := newTestRouter(issuer)
	assert.Equal(t, http.StatusOK, doGet(r, "/api/ventas", token).Code)
	assert.Equal(t, http.StatusOK, doGet(r, "/api/usuarios", token).Code)
}

func TestUserIDFlowsFromClaims(t *testing.T) {
	issuer := auth.NewTokenIssuer("secret")
	token, err := issuer.Generate(42, "leo", []string{"vendedor"})
	require.NoError(t, err)

	r := newTestRouter(issuer)
	w := doGet(r, "/api/ventas", token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "42")
}
