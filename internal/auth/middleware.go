package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/marcusvale/bidforge/internal/tenant"
)

type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTMiddleware authenticates bearer tokens and resolves the caller's tenant
// into the request context. Resolution goes through the user record when one
// exists, falling back to the email's domain.
type JWTMiddleware struct {
	secret  []byte
	tenants *tenant.Service
}

func NewJWTMiddleware(secret string, tenants *tenant.Service) *JWTMiddleware {
	return &JWTMiddleware{secret: []byte(secret), tenants: tenants}
}

func (m *JWTMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := bearerToken(r)
		if tokenStr == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.secret, nil
		})
		if err != nil || !token.Valid || claims.Email == "" {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := r.Context()

		user, err := m.tenants.GetUserByEmail(ctx, claims.Email)
		if err == nil {
			t, terr := m.tenants.GetByID(ctx, user.TenantID)
			if terr != nil {
				writeError(w, http.StatusForbidden, "no tenant for user")
				return
			}
			ctx = tenant.WithUser(ctx, user)
			ctx = tenant.WithTenant(ctx, t)
		} else if errors.Is(err, tenant.ErrNotFound) {
			t, terr := m.tenants.Resolve(ctx, claims.Email)
			if terr != nil {
				writeError(w, http.StatusForbidden, "no tenant for user")
				return
			}
			ctx = tenant.WithTenant(ctx, t)
		} else {
			writeError(w, http.StatusInternalServerError, "tenant lookup failed")
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
