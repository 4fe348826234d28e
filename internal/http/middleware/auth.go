package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"trouvemamission-service/internal/domain"
	"trouvemamission-service/internal/http/handler/common"
	"trouvemamission-service/internal/logging"
)

type sessionKey struct{}

// Authenticator превращает bearer-токен в сессию.
type Authenticator interface {
	Authenticate(token string) (domain.Session, error)
}

// WithSession кладёт сессию в контекст запроса.
func WithSession(ctx context.Context, session domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFromContext достаёт сессию, положенную Authenticate.
func SessionFromContext(ctx context.Context) (domain.Session, bool) {
	session, ok := ctx.Value(sessionKey{}).(domain.Session)
	return session, ok
}

// Authenticate требует заголовок Authorization: Bearer <token>.
func Authenticate(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				common.WriteDomainError(w, r, domain.ErrUnauthorized)
				return
			}
			session, err := auth.Authenticate(token)
			if err != nil {
				common.WriteDomainError(w, r, domain.ErrUnauthorized)
				return
			}
			ctx := WithSession(r.Context(), session)
			ctx = logging.WithLogSession(ctx, session.UserID, string(session.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole пропускает запрос, только если роль сессии входит в список.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := SessionFromContext(r.Context())
			if !ok {
				common.WriteDomainError(w, r, domain.ErrUnauthorized)
				return
			}
			if !slices.Contains(roles, session.Role) {
				common.WriteDomainError(w, r, domain.ErrForbidden)
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
