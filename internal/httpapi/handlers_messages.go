package httpapi

import (
	"context"
	"net/http"

	"socialgraph/internal/domain"
)

type sendMessageRequest struct {
	To      string `json:"to"`
	Content string `json:"content"`
}

func (a *api) handleMessagesSend(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	var req sendMessageRequest
	if !readJSON(w, r, &req) {
		return
	}

	m, err := a.messagesSvc.Send(r.Context(), userID, req.To, req.Content)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, m)
}

// handleMessagesList returns the actor's messages. box=sent or box=received narrows the list.
func (a *api) handleMessagesList(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	var (
		out []domain.DirectMessage
		err error
	)
	ctx := r.Context()
	switch box := r.URL.Query().Get("box"); box {
	case "":
		out, err = a.messagesSvc.All(ctx, userID)
	case "sent":
		out, err = a.messagesSvc.Sent(ctx, userID)
	case "received":
		out, err = a.messagesSvc.Received(ctx, userID)
	default:
		err = domain.NewValidationError(map[string]string{"box": "must be one of sent received"})
	}
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

func (a *api) handleMessagesUnread(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	n, err := a.messagesSvc.UnreadCount(r.Context(), userID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"unread": n})
}

func (a *api) handleMessagesConversation(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	otherID, err := pathID(r, "userID")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	out, err := a.messagesSvc.Conversation(r.Context(), userID, otherID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

func (a *api) handleMessagesConversationRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	otherID, err := pathID(r, "userID")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	n, err := a.messagesSvc.MarkConversationRead(r.Context(), userID, otherID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"marked": n})
}

func (a *api) handleMessagesRead(w http.ResponseWriter, r *http.Request) {
	a.messageAction(w, r, a.messagesSvc.MarkRead)
}

func (a *api) handleMessagesDelete(w http.ResponseWriter, r *http.Request) {
	a.messageAction(w, r, a.messagesSvc.Delete)
}

func (a *api) messageAction(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, messageID, userID string) error) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	messageID, err := pathID(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := fn(r.Context(), messageID, userID); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
