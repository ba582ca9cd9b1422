package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"socialgraph/internal/domain"
)

type chatMessageRequest struct {
	Content string `json:"content"`
}

type chatStatsResponse struct {
	Stats   domain.GroupChatStats `json:"stats"`
	Summary string                `json:"summary"`
}

func (a *api) handleGroupChatSend(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	groupID, err := pathID(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	var req chatMessageRequest
	if !readJSON(w, r, &req) {
		return
	}

	m, err := a.groupChatSvc.Send(r.Context(), groupID, userID, req.Content)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, m)
}

// handleGroupChatList returns the chat oldest first. At most one of limit, user or q narrows it.
func (a *api) handleGroupChatList(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	groupID, err := pathID(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	q := r.URL.Query()
	var selected []string
	for _, key := range []string{"limit", "user", "q"} {
		if q.Get(key) != "" {
			selected = append(selected, key)
		}
	}
	if len(selected) > 1 {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"query": "use only one of " + strings.Join(selected, ", ")}))
		return
	}

	ctx := r.Context()
	if err := a.groupChatSvc.CanRead(ctx, groupID, userID); err != nil {
		WriteDomainError(w, err)
		return
	}

	var out []domain.GroupMessage
	switch {
	case q.Get("limit") != "":
		n, convErr := strconv.Atoi(strings.TrimSpace(q.Get("limit")))
		if convErr != nil || n < 0 {
			WriteDomainError(w, domain.NewValidationError(map[string]string{"limit": "must be a non-negative integer"}))
			return
		}
		out, err = a.groupChatSvc.Recent(ctx, groupID, n)
	case q.Get("user") != "":
		out, err = a.groupChatSvc.ByUser(ctx, groupID, strings.TrimSpace(q.Get("user")))
	case q.Get("q") != "":
		out, err = a.groupChatSvc.Search(ctx, groupID, q.Get("q"))
	default:
		out, err = a.groupChatSvc.Messages(ctx, groupID)
	}
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

func (a *api) handleGroupChatStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	groupID, err := pathID(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	ctx := r.Context()
	if err := a.groupChatSvc.CanRead(ctx, groupID, userID); err != nil {
		WriteDomainError(w, err)
		return
	}
	stats, err := a.groupChatSvc.Stats(ctx, groupID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, chatStatsResponse{Stats: stats, Summary: stats.String()})
}

func (a *api) handleGroupChatClear(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	groupID, err := pathID(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	n, err := a.groupChatSvc.Clear(r.Context(), groupID, userID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"cleared": n})
}

func (a *api) handleGroupChatEdit(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	groupID, err := pathID(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	messageID, err := pathID(r, "messageID")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	var req chatMessageRequest
	if !readJSON(w, r, &req) {
		return
	}

	m, err := a.groupChatSvc.Edit(r.Context(), groupID, messageID, userID, req.Content)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, m)
}

func (a *api) handleGroupChatDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	groupID, err := pathID(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	messageID, err := pathID(r, "messageID")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := a.groupChatSvc.Delete(r.Context(), groupID, messageID, userID); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
