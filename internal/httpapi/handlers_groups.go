package httpapi

import (
	"context"
	"net/http"
	"strings"

	"socialgraph/internal/domain"
	"socialgraph/internal/service"
)

type createGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Privacy     string `json:"privacy"`
}

func (a *api) handleGroupsCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	var req createGroupRequest
	if !readJSON(w, r, &req) {
		return
	}

	g, err := a.groupsSvc.Create(r.Context(), service.CreateGroupParams{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     userID,
		Privacy:     domain.Privacy(req.Privacy),
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, g)
}

// handleGroupsList filters by q (name search) or scope (public, member, owner, moderator).
func (a *api) handleGroupsList(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	var (
		out []*domain.Group
		err error
	)
	ctx := r.Context()
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		out, err = a.groupsSvc.SearchByName(ctx, q)
	} else {
		switch scope := r.URL.Query().Get("scope"); scope {
		case "":
			out, err = a.groupsSvc.All(ctx)
		case "public":
			out, err = a.groupsSvc.Public(ctx)
		case "member":
			out, err = a.groupsSvc.ByMember(ctx, userID)
		case "owner":
			out, err = a.groupsSvc.ByOwner(ctx, userID)
		case "moderator":
			out, err = a.groupsSvc.ByModerator(ctx, userID)
		default:
			err = domain.NewValidationError(map[string]string{"scope": "must be one of public member owner moderator"})
		}
	}
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if out == nil {
		out = []*domain.Group{}
	}
	WriteJSON(w, http.StatusOK, out)
}

func (a *api) handleGroupsGet(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	g, err := a.groupsSvc.Get(r.Context(), groupID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, g)
}

func (a *api) handleGroupsEdit(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	groupID, err := pathID(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	var req createGroupRequest
	if !readJSON(w, r, &req) {
		return
	}

	err = a.groupsSvc.Edit(r.Context(), groupID, userID, service.EditGroupParams{
		Name:        req.Name,
		Description: req.Description,
		Privacy:     domain.Privacy(req.Privacy),
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleGroupsDelete(w http.ResponseWriter, r *http.Request) {
	a.groupAction(w, r, a.groupsSvc.Delete)
}

func (a *api) handleGroupsJoin(w http.ResponseWriter, r *http.Request) {
	a.groupAction(w, r, a.groupsSvc.Join)
}

func (a *api) handleGroupsLeave(w http.ResponseWriter, r *http.Request) {
	a.groupAction(w, r, a.groupsSvc.Leave)
}

type groupTargetRequest struct {
	UserID string `json:"user_id"`
}

func (a *api) handleGroupsAddMember(w http.ResponseWriter, r *http.Request) {
	a.groupTargetFromBody(w, r, a.groupsSvc.AddMember)
}

func (a *api) handleGroupsAddModerator(w http.ResponseWriter, r *http.Request) {
	a.groupTargetFromBody(w, r, a.groupsSvc.AddModerator)
}

func (a *api) handleGroupsTransfer(w http.ResponseWriter, r *http.Request) {
	// The acting user hands the group over.
	a.groupTargetFromBody(w, r, func(ctx context.Context, groupID, targetID, userID string) error {
		return a.groupsSvc.TransferOwnership(ctx, groupID, userID, targetID)
	})
}

func (a *api) handleGroupsRemoveMember(w http.ResponseWriter, r *http.Request) {
	a.groupTargetFromPath(w, r, a.groupsSvc.RemoveMember)
}

func (a *api) handleGroupsRemoveModerator(w http.ResponseWriter, r *http.Request) {
	a.groupTargetFromPath(w, r, a.groupsSvc.RemoveModerator)
}

// groupAction runs fn(groupID, actor).
func (a *api) groupAction(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, groupID, userID string) error) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	groupID, err := pathID(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := fn(r.Context(), groupID, userID); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// groupTargetFromBody runs fn(groupID, target, actor) with the target read from the JSON body.
func (a *api) groupTargetFromBody(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, groupID, targetID, userID string) error) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	groupID, err := pathID(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	var req groupTargetRequest
	if !readJSON(w, r, &req) {
		return
	}
	target := strings.TrimSpace(req.UserID)
	if target == "" {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"user_id": "required"}))
		return
	}

	if err := fn(r.Context(), groupID, target, userID); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) groupTargetFromPath(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, groupID, targetID, userID string) error) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	groupID, err := pathID(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	target, err := pathID(r, "userID")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	if err := fn(r.Context(), groupID, target, userID); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
