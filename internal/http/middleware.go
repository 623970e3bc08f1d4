package httpapi

import (
	"context"
	"net/http"
	"strings"
)

// HeaderUserID carries the already-authenticated caller's id. Authentication
// happens upstream (gateway); this service only authorizes.
const HeaderUserID = "X-User-Id"

type ctxKey string

const ctxUserID ctxKey = "user_id"

// ActorID extracts the caller id stored by ExtractUserID.
func ActorID(ctx context.Context) string {
	if v := ctx.Value(ctxUserID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// ExtractUserID stores the X-User-Id header, when present, in the request
// context. Handlers that need an actor reject requests without one.
func ExtractUserID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := strings.TrimSpace(r.Header.Get(HeaderUserID))
		if uid != "" {
			r = r.WithContext(context.WithValue(r.Context(), ctxUserID, uid))
		}
		next.ServeHTTP(w, r)
	})
}
