package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/talentpipe/crm/modules/core/domain/aggregates/user"
	"github.com/talentpipe/crm/pkg/composables"
	"github.com/talentpipe/crm/pkg/configuration"
	"github.com/talentpipe/crm/pkg/httpapi"
)

// TokenClaims is the shape minted by the identity collaborator. "sub" holds
// the user profile id, "tid" the tenant uuid.
type TokenClaims struct {
	TenantID string `json:"tid"`
	jwt.RegisteredClaims
}

func unauthorized(w http.ResponseWriter, message string) {
	_ = httpapi.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

// Authorize validates the bearer token and stores the subject id and tenant
// as context composables. It does not hit the database; ProvideUser does.
func Authorize() mux.MiddlewareFunc {
	conf := configuration.Use()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				unauthorized(w, "missing or invalid Authorization header")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			claims := &TokenClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(conf.Auth.JWTSecret), nil
			})
			if err != nil || !token.Valid || strings.TrimSpace(claims.Subject) == "" {
				unauthorized(w, "invalid or expired token")
				return
			}

			tenantRaw := claims.TenantID
			if tenantRaw == "" {
				tenantRaw = r.Header.Get(conf.TenantIDHeader)
			}
			tenantID, err := uuid.Parse(strings.TrimSpace(tenantRaw))
			if err != nil {
				unauthorized(w, "missing tenant")
				return
			}

			ctx := composables.WithTenantID(r.Context(), tenantID)
			ctx = composables.WithSubject(ctx, strings.TrimSpace(claims.Subject))
			ctx = composables.WithParams(ctx, &composables.Params{
				IP:            getRealIP(r, conf),
				UserAgent:     r.UserAgent(),
				Authenticated: true,
				Request:       r,
				Writer:        w,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ProvideUser resolves the token subject against user_profiles and stores the
// aggregate in the context for role gating downstream.
func ProvideUser(repo user.Repository) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, err := composables.UseSubject(r.Context())
			if err != nil {
				unauthorized(w, "no authenticated subject")
				return
			}
			u, err := repo.GetByID(r.Context(), subject)
			if err != nil {
				unauthorized(w, "user not found")
				return
			}
			next.ServeHTTP(w, r.WithContext(composables.WithUser(r.Context(), u)))
		})
	}
}

// RequireAdmin rejects requests whose acting user lacks the admin role.
func RequireAdmin() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := composables.RequireAdmin(r.Context()); err != nil {
				_ = httpapi.WriteError(w, http.StatusForbidden, "FORBIDDEN", "admin role required", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
