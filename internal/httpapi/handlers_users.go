package httpapi

import (
	"net/http"
	"strconv"
	"strings"
)

type createUserRequest struct {
	DisplayName string `json:"display_name"`
}

func (a *api) handleUsersCreate(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !readJSON(w, r, &req) {
		return
	}

	u, err := a.directorySvc.CreateUser(r.Context(), req.DisplayName)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, u)
}

func (a *api) handleUsersGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	u, err := a.directorySvc.GetUser(r.Context(), id)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, u)
}

func (a *api) handleUsersSearch(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	out, err := a.directorySvc.SearchUsers(r.Context(), q, limit, userID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

type createPostRequest struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

func (a *api) handlePostsCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	var req createPostRequest
	if !readJSON(w, r, &req) {
		return
	}

	p, err := a.directorySvc.CreatePost(r.Context(), userID, req.Type, req.Content)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, p)
}

func (a *api) handlePostsLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	postID, err := pathID(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	added, err := a.directorySvc.LikePost(r.Context(), postID, userID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"liked": added})
}

func (a *api) handlePostsUnlike(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	postID, err := pathID(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	removed, err := a.directorySvc.UnlikePost(r.Context(), postID, userID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"unliked": removed})
}
