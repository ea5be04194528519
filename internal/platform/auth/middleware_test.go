package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("unit-secret")

func router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/", RequireAuth(secret))
	g.GET("/me", func(c *gin.Context) {
		id, role, ok := Identity(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": id, "role": role})
	})
	g.GET("/desk", RequireRole(RoleLibrarian), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func get(r http.Handler, path, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	r := router()
	now := time.Now()

	member, err := IssueToken(secret, 7, RoleMember, time.Hour, now)
	require.NoError(t, err)
	w := get(r, "/me", "Bearer "+member)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7,"role":"member"}`, w.Body.String())

	expired, err := IssueToken(secret, 7, RoleMember, time.Minute, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "Bearer "+expired).Code)

	forged, err := IssueToken([]byte("other"), 7, RoleLibrarian, time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "Bearer "+forged).Code)

	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "/me", "Bearer ").Code)
}

func TestRequireAuth_RejectsNonNumericSubject(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(secret)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, get(router(), "/me", "Bearer "+tok).Code)
}

func TestRequireAuth_RejectsOtherAlgorithms(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "7",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(secret)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, get(router(), "/me", "Bearer "+tok).Code)
}

func TestRequireRole(t *testing.T) {
	r := router()

	member, err := IssueToken(secret, 7, RoleMember, time.Hour, time.Now())
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, get(r, "/desk", "Bearer "+member).Code)

	lib, err := IssueToken(secret, 1, RoleLibrarian, time.Hour, time.Now())
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, get(r, "/desk", "Bearer "+lib).Code)
}

func TestIssueToken_EmptySecret(t *testing.T) {
	_, err := IssueToken(nil, 1, RoleMember, time.Hour, time.Now())
	assert.Error(t, err)
}
