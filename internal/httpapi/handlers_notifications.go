package httpapi

import (
	"net/http"
	"strings"
)

type notificationTokenRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

type notificationTokenResponse struct {
	Token     string `json:"token"`
	Platform  string `json:"platform"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func (a *api) handleNotificationsTokenUpsert(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	var req notificationTokenRequest
	if !readJSON(w, r, &req) {
		return
	}

	out, err := a.notificationsSvc.RegisterToken(r.Context(), userID, req.Token, req.Platform)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	resp := notificationTokenResponse{
		Token:     out.Token,
		Platform:  out.Platform,
		CreatedAt: formatMillis(out.CreatedAt),
		UpdatedAt: formatMillis(out.UpdatedAt),
	}
	WriteJSON(w, http.StatusOK, resp)
}

func (a *api) handleNotificationsTokenDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if err := a.notificationsSvc.DeleteToken(r.Context(), userID, token); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleNotificationsList(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "1" || r.URL.Query().Get("unread") == "true"
	items, err := a.notificationsSvc.List(r.Context(), userID, unreadOnly)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	unread, err := a.notificationsSvc.UnreadCount(r.Context(), userID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	WriteJSON(w, http.StatusOK, map[string]any{"notifications": items, "unread": unread})
}

func (a *api) handleNotificationsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	n, err := a.notificationsSvc.MarkAllRead(r.Context(), userID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"marked": n})
}
