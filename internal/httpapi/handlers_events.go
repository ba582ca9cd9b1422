package httpapi

import (
	"context"
	"net/http"
	"time"

	"socialgraph/internal/domain"
	"socialgraph/internal/service"
)

type eventRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"starts_at"`
}

func (a *api) handleEventsCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	var req eventRequest
	if !readJSON(w, r, &req) {
		return
	}

	e, err := a.eventsSvc.Create(r.Context(), service.CreateEventParams{
		Name:        req.Name,
		Description: req.Description,
		CreatorID:   userID,
		StartsAt:    req.StartsAt,
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, e)
}

// handleEventsList returns upcoming events unless scope is past or member.
func (a *api) handleEventsList(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	var (
		out []*domain.Event
		err error
	)
	switch scope := r.URL.Query().Get("scope"); scope {
	case "", "upcoming":
		out, err = a.eventsSvc.Upcoming(r.Context())
	case "past":
		out, err = a.eventsSvc.Past(r.Context())
	case "member":
		out, err = a.eventsSvc.ByMember(r.Context(), userID)
	default:
		err = domain.NewValidationError(map[string]string{"scope": "must be one of upcoming past member"})
	}
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if out == nil {
		out = []*domain.Event{}
	}
	WriteJSON(w, http.StatusOK, out)
}

func (a *api) handleEventsGet(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	e, err := a.eventsSvc.Get(r.Context(), eventID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, e)
}

func (a *api) handleEventsEdit(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	eventID, err := pathID(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	var req eventRequest
	if !readJSON(w, r, &req) {
		return
	}

	err = a.eventsSvc.Edit(r.Context(), eventID, userID, service.EditEventParams{
		Name:        req.Name,
		Description: req.Description,
		StartsAt:    req.StartsAt,
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleEventsDelete(w http.ResponseWriter, r *http.Request) {
	a.eventAction(w, r, a.eventsSvc.Delete)
}

func (a *api) handleEventsJoin(w http.ResponseWriter, r *http.Request) {
	a.eventAction(w, r, a.eventsSvc.Join)
}

func (a *api) handleEventsLeave(w http.ResponseWriter, r *http.Request) {
	a.eventAction(w, r, a.eventsSvc.Leave)
}

func (a *api) eventAction(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, eventID, userID string) error) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	eventID, err := pathID(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := fn(r.Context(), eventID, userID); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
