package auth

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/BradenHooton/portfolio/internal/models"
	pkghttp "github.com/BradenHooton/portfolio/pkg/http"
	pkglogger "github.com/BradenHooton/portfolio/pkg/logger"
)

// contextKey is a custom type for context keys
type contextKey string

const adminContextKey contextKey = "admin"

// Verifier validates bearer tokens.
type Verifier interface {
	Verify(tokenString string) (*Claims, error)
}

// AdminAllowList decides whether an authenticated email may use the admin area.
type AdminAllowList interface {
	IsAdminEmail(email string) bool
}

// WithAdmin stores the authenticated admin in ctx.
func WithAdmin(ctx context.Context, admin *models.Admin) context.Context {
	return context.WithValue(ctx, adminContextKey, admin)
}

// AdminFromContext returns the admin stored by RequireAdmin, if any.
func AdminFromContext(ctx context.Context) (*models.Admin, bool) {
	admin, ok := ctx.Value(adminContextKey).(*models.Admin)
	return admin, ok && admin != nil
}

// RequireAdmin rejects requests without a valid bearer token (401) and
// tokens whose email is not allow-listed (403). On success the admin is
// available through AdminFromContext.
func RequireAdmin(verifier Verifier, allow AdminAllowList, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				pkghttp.WriteUnauthorized(w, "Authentication required")
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				pkghttp.WriteUnauthorized(w, "Invalid or expired session")
				return
			}

			if !allow.IsAdminEmail(claims.Email) {
				logger.Warn("non-admin attempted admin access",
					slog.String("email", pkglogger.SanitizedEmail(claims.Email)),
					slog.String("path", r.URL.Path),
				)
				pkghttp.WriteForbidden(w, "Admin access required")
				return
			}

			admin := &models.Admin{UserID: claims.Subject, Email: claims.Email}
			next.ServeHTTP(w, r.WithContext(WithAdmin(r.Context(), admin)))
		})
	}
}

// RequireCronSecret guards scheduler-only endpoints with a shared bearer
// secret. An empty secret leaves the endpoint open.
func RequireCronSecret(secret string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				pkghttp.WriteUnauthorized(w, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
