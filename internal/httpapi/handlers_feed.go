package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"socialgraph/internal/domain"
)

type feedResponse struct {
	Posts []domain.Post `json:"posts"`
}

// handleFeed serves one feed view per request. type, order=liked, range=today|week and from/to
// select the view; limit truncates it.
func (a *api) handleFeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	limit := -1
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			WriteDomainError(w, domain.NewValidationError(map[string]string{"limit": "must be a non-negative integer"}))
			return
		}
		limit = n
	}

	var selected []string
	for _, key := range []string{"type", "order", "range", "from"} {
		if q.Get(key) != "" {
			selected = append(selected, key)
		}
	}
	if len(selected) > 1 {
		WriteDomainError(w, domain.NewValidationError(map[string]string{"query": "use only one of " + strings.Join(selected, ", ")}))
		return
	}

	ctx := r.Context()
	var (
		posts []domain.Post
		err   error
	)
	switch {
	case q.Get("type") != "":
		posts, err = a.feedSvc.FeedByType(ctx, userID, q.Get("type"))
	case q.Get("order") != "":
		if q.Get("order") != "liked" {
			err = domain.NewValidationError(map[string]string{"order": "must be liked"})
			break
		}
		posts, err = a.feedSvc.FeedMostLiked(ctx, userID)
	case q.Get("range") != "":
		switch q.Get("range") {
		case "today":
			posts, err = a.feedSvc.FeedToday(ctx, userID)
		case "week":
			posts, err = a.feedSvc.FeedThisWeek(ctx, userID)
		default:
			err = domain.NewValidationError(map[string]string{"range": "must be one of today week"})
		}
	case q.Get("from") != "":
		var start, end time.Time
		start, end, err = parseRange(q.Get("from"), q.Get("to"))
		if err == nil {
			posts, err = a.feedSvc.FeedByDateRange(ctx, userID, start, end)
		}
	case limit >= 0:
		posts, err = a.feedSvc.FeedLimit(ctx, userID, limit)
	default:
		posts, err = a.feedSvc.Feed(ctx, userID)
	}
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if limit >= 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	WriteJSON(w, http.StatusOK, feedResponse{Posts: posts})
}

func parseRange(from, to string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, from)
	if err != nil {
		return time.Time{}, time.Time{}, domain.NewValidationError(map[string]string{"from": "must be RFC 3339"})
	}
	end, err := time.Parse(time.RFC3339, to)
	if err != nil {
		return time.Time{}, time.Time{}, domain.NewValidationError(map[string]string{"to": "must be RFC 3339"})
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, domain.NewValidationError(map[string]string{"to": "must be after from"})
	}
	return start, end, nil
}

func (a *api) handleFeedTimeline(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	posts, err := a.feedSvc.FeedWithAuthors(r.Context(), userID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

func (a *api) handleFeedFromFriend(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}
	friendID, err := pathID(r, "id")
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	posts, err := a.feedSvc.FeedFromFriend(r.Context(), userID, friendID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, feedResponse{Posts: posts})
}

type feedStatsResponse struct {
	domain.FeedStats
	Summary string `json:"summary"`
}

func (a *api) handleFeedStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := actor(w, r)
	if !ok {
		return
	}

	stats, err := a.feedSvc.Stats(r.Context(), userID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	WriteJSON(w, http.StatusOK, feedStatsResponse{FeedStats: stats, Summary: stats.String()})
}
