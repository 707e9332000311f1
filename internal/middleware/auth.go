package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/templui/apiplate/internal/apperr"
	"github.com/templui/apiplate/internal/ctxkeys"
	"github.com/templui/apiplate/internal/model"
	"github.com/templui/apiplate/internal/response"
	"github.com/templui/apiplate/internal/service"
)

// SessionResolver turns a bearer token into the user it was issued for.
type SessionResolver interface {
	ReadCurrentUser(ctx context.Context, token string) (*model.PublicUser, error)
}

// RequireAuth rejects requests without a valid bearer token and adds the
// resolved user to the context.
func RequireAuth(sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", "Bearer")
				response.Error(w, r, apperr.New(apperr.KindUnauthorized, service.MsgInvalidSession))
				return
			}

			user, err := sessions.ReadCurrentUser(r.Context(), token)
			if err != nil {
				if apperr.Is(err, apperr.KindUnauthorized) {
					w.Header().Set("WWW-Authenticate", "Bearer")
				}
				response.Error(w, r, err)
				return
			}

			ctx := ctxkeys.WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
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
