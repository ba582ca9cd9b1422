package httpapi

import "net/http"

func (a *api) handleAdminPurgeRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	n, err := a.requestsSvc.PurgeRejected(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	a.logger.Info("rejected requests purged", "count", n, "user_id", userID)
	WriteJSON(w, http.StatusOK, map[string]int{"purged": n})
}
