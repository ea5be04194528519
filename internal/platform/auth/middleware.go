package auth

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	CtxUserIDKey = "user_id"
	CtxRoleKey   = "role"

	RoleMember    = "member"
	RoleLibrarian = "librarian"
)

// RequireAuth: Authorization: Bearer <token> を検証して context に sub/role を詰める
func RequireAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			abort(c, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abort(c, http.StatusUnauthorized, "invalid Authorization header")
			return
		}

		tokenStr := strings.TrimSpace(parts[1])
		if tokenStr == "" {
			abort(c, http.StatusUnauthorized, "empty token")
			return
		}

		claims, err := ParseToken(secret, tokenStr)
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid token")
			return
		}

		sub, err := claims.GetSubject()
		if err != nil || sub == "" {
			abort(c, http.StatusUnauthorized, "missing sub")
			return
		}
		if _, err := strconv.ParseInt(sub, 10, 64); err != nil {
			abort(c, http.StatusUnauthorized, "sub must be a member id")
			return
		}

		role := RoleMember
		if r, ok := claims["role"].(string); ok && r != "" {
			role = r
		}

		c.Set(CtxUserIDKey, sub)
		c.Set(CtxRoleKey, role)
		c.Next()
	}
}

// RequireRole: 例) librarian のみ許可したい時に追加
func RequireRole(roles ...string) gin.HandlerFunc {
	roleSet := make(map[string]struct{})
	for _, r := range roles {
		if r == "" {
			continue
		}
		roleSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role := c.GetString(CtxRoleKey)
		if role == "" {
			abort(c, http.StatusForbidden, "missing role")
			return
		}
		if _, allowed := roleSet[role]; !allowed {
			abort(c, http.StatusForbidden, "forbidden")
			return
		}
		c.Next()
	}
}

// Identity returns the authenticated member id and role set by RequireAuth.
func Identity(c *gin.Context) (memberID int64, role string, ok bool) {
	sub := c.GetString(CtxUserIDKey)
	if sub == "" {
		return 0, "", false
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, "", false
	}
	return id, c.GetString(CtxRoleKey), true
}

// ParseToken verifies an HS256 token and returns its claims.
func ParseToken(secret []byte, tokenStr string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		// alg 固定（none攻撃とか回避）
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if token == nil || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func abort(c *gin.Context, status int, msg string) {
	code := "UNAUTHENTICATED"
	if status == http.StatusForbidden {
		code = "FORBIDDEN"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"code": code, "message": msg}})
}
