package httpapi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"socialgraph/internal/domain"
)

func (a *api) handleFriendsList(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	out, err := a.friendsSvc.Overview(r.Context(), userID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	etag := friendsOverviewETag(userID, out)
	w.Header().Set("Cache-Control", "private, max-age=0")
	w.Header().Set("ETag", etag)
	if match := strings.TrimSpace(r.Header.Get("If-None-Match")); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

func friendsOverviewETag(userID string, o domain.FriendsOverview) string {
	b, _ := json.Marshal(o)
	sum := sha256.Sum256(append([]byte(userID+":"), b...))
	return "W/\"friends:" + hex.EncodeToString(sum[:8]) + "\""
}

func (a *api) handleFriendsRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	out, err := a.requestsSvc.AllFor(r.Context(), userID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if out == nil {
		out = []domain.FriendRequest{}
	}
	WriteJSON(w, http.StatusOK, out)
}

type createFriendRequestRequest struct {
	UserID string `json:"user_id"`
}

func (a *api) handleFriendsCreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	var req createFriendRequestRequest
	if !readJSON(w, r, &req) {
		return
	}
	target := strings.TrimSpace(req.UserID)
	if target == "" {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"user_id": "required"}))
		return
	}
	exists, err := a.directorySvc.Exists(r.Context(), target)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if !exists {
		WriteDomainError(w, domain.ErrMissing)
		return
	}

	fr, err := a.friendsSvc.SendRequest(r.Context(), userID, target)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, fr)
}

func (a *api) handleFriendsAccept(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	requesterID, err := pathID(r, "userID")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := a.friendsSvc.Accept(r.Context(), userID, requesterID); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleFriendsDecline(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	requesterID, err := pathID(r, "userID")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := a.friendsSvc.Decline(r.Context(), userID, requesterID); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleFriendsRemove(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	friendID, err := pathID(r, "userID")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := a.friendsSvc.RemoveFriend(r.Context(), userID, friendID); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
