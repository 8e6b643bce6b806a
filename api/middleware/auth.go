package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/lmorand/brasserie-backend/api/responses"
	pkgAuth "github.com/lmorand/brasserie-backend/pkg/auth"
	"github.com/lmorand/brasserie-backend/pkg/config"
	pkgerrors "github.com/lmorand/brasserie-backend/pkg/errors"
	"github.com/lmorand/brasserie-backend/pkg/logger"
)

// Legacy clients send the bearer token in this header instead of
// Authorization.
const tokenHeader = "X-Br-Token"

// Auth validates a bearer token and seeds the request context with the
// claims. Expired, malformed, and mis-signed tokens all produce the same
// opaque unauthorized response.
func Auth(cfg config.TokenConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token, time.Now().UTC())
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithUserID(r.Context(), claims.UserID.String())
			ctx = WithRole(ctx, claims.Role)

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id": claims.UserID.String(),
					"role":    claims.Role,
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		raw = strings.TrimSpace(raw[7:])
	}
	if raw != "" {
		return raw
	}
	return strings.TrimSpace(r.Header.Get(tokenHeader))
}
