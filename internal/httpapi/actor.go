package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"socialgraph/internal/domain"
)

// actorHeader carries the id of the user a request acts for. Identity is established upstream.
const actorHeader = "X-User-Id"

type actorCtxKey int

const actorKey actorCtxKey = iota

func (a *api) requireActor(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(actorHeader))
		if id == "" {
			WriteError(w, http.StatusUnauthorized, "unauthorized", "missing "+actorHeader)
			return
		}

		ok, err := a.directorySvc.Exists(r.Context(), id)
		if err != nil {
			WriteDomainError(w, err)
			return
		}
		if !ok {
			WriteError(w, http.StatusUnauthorized, "unauthorized", "unknown user")
			return
		}

		setRequestActor(r.Context(), id)
		ctx := context.WithValue(r.Context(), actorKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func CurrentUserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(actorKey).(string)
	return id, ok && id != ""
}

func pathID(r *http.Request, name string) (string, error) {
	id := strings.TrimSpace(mux.Vars(r)[name])
	if id == "" {
		return "", domain.NewValidationError(map[string]string{name: "required"})
	}
	return id, nil
}

// actor returns the acting user id or writes 401.
func actor(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := CurrentUserID(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
	}
	return id, ok
}
