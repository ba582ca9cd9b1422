package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"socialgraph/internal/service"
)

type RouterOpts struct {
	Logger *slog.Logger
	IsProd bool

	DBPing      func(context.Context) error
	CORSOrigins []string

	Directory     *service.DirectoryService
	Requests      *service.RequestsService
	Friends       *service.FriendsService
	Groups        *service.GroupsService
	Events        *service.EventsService
	Feed          *service.FeedService
	GroupChat     *service.GroupChatService
	Messages      *service.MessagesService
	Notifications *service.NotificationService
}

func NewRouter(opts RouterOpts) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	api := &api{
		logger:           logger,
		dbPing:           opts.DBPing,
		directorySvc:     opts.Directory,
		requestsSvc:      opts.Requests,
		friendsSvc:       opts.Friends,
		groupsSvc:        opts.Groups,
		eventsSvc:        opts.Events,
		feedSvc:          opts.Feed,
		groupChatSvc:     opts.GroupChat,
		messagesSvc:      opts.Messages,
		notificationsSvc: opts.Notifications,
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(handleV1NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(handleMethodNotAllowed)
	r.HandleFunc("/healthz", api.handleHealthz).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.NotFoundHandler = r.NotFoundHandler
	v1.MethodNotAllowedHandler = r.MethodNotAllowedHandler
	v1.HandleFunc("/users", api.handleUsersCreate).Methods(http.MethodPost)

	v1.Handle("/users", api.requireActor(api.handleUsersSearch)).Methods(http.MethodGet)
	v1.Handle("/users/{id}", api.requireActor(api.handleUsersGet)).Methods(http.MethodGet)
	v1.Handle("/posts", api.requireActor(api.handlePostsCreate)).Methods(http.MethodPost)
	v1.Handle("/posts/{id}/like", api.requireActor(api.handlePostsLike)).Methods(http.MethodPost)
	v1.Handle("/posts/{id}/like", api.requireActor(api.handlePostsUnlike)).Methods(http.MethodDelete)

	v1.Handle("/friends", api.requireActor(api.handleFriendsList)).Methods(http.MethodGet)
	v1.Handle("/friends/requests", api.requireActor(api.handleFriendsRequests)).Methods(http.MethodGet)
	v1.Handle("/friends/requests", api.requireActor(api.handleFriendsCreateRequest)).Methods(http.MethodPost)
	v1.Handle("/friends/requests/{userID}/accept", api.requireActor(api.handleFriendsAccept)).Methods(http.MethodPost)
	v1.Handle("/friends/requests/{userID}/decline", api.requireActor(api.handleFriendsDecline)).Methods(http.MethodPost)
	v1.Handle("/friends/{userID}", api.requireActor(api.handleFriendsRemove)).Methods(http.MethodDelete)

	v1.Handle("/groups", api.requireActor(api.handleGroupsCreate)).Methods(http.MethodPost)
	v1.Handle("/groups", api.requireActor(api.handleGroupsList)).Methods(http.MethodGet)
	v1.Handle("/groups/{id}", api.requireActor(api.handleGroupsGet)).Methods(http.MethodGet)
	v1.Handle("/groups/{id}", api.requireActor(api.handleGroupsEdit)).Methods(http.MethodPatch)
	v1.Handle("/groups/{id}", api.requireActor(api.handleGroupsDelete)).Methods(http.MethodDelete)
	v1.Handle("/groups/{id}/join", api.requireActor(api.handleGroupsJoin)).Methods(http.MethodPost)
	v1.Handle("/groups/{id}/leave", api.requireActor(api.handleGroupsLeave)).Methods(http.MethodPost)
	v1.Handle("/groups/{id}/members", api.requireActor(api.handleGroupsAddMember)).Methods(http.MethodPost)
	v1.Handle("/groups/{id}/members/{userID}", api.requireActor(api.handleGroupsRemoveMember)).Methods(http.MethodDelete)
	v1.Handle("/groups/{id}/moderators", api.requireActor(api.handleGroupsAddModerator)).Methods(http.MethodPost)
	v1.Handle("/groups/{id}/moderators/{userID}", api.requireActor(api.handleGroupsRemoveModerator)).Methods(http.MethodDelete)
	v1.Handle("/groups/{id}/owner", api.requireActor(api.handleGroupsTransfer)).Methods(http.MethodPost)

	v1.Handle("/events", api.requireActor(api.handleEventsCreate)).Methods(http.MethodPost)
	v1.Handle("/events", api.requireActor(api.handleEventsList)).Methods(http.MethodGet)
	v1.Handle("/events/{id}", api.requireActor(api.handleEventsGet)).Methods(http.MethodGet)
	v1.Handle("/events/{id}", api.requireActor(api.handleEventsEdit)).Methods(http.MethodPatch)
	v1.Handle("/events/{id}", api.requireActor(api.handleEventsDelete)).Methods(http.MethodDelete)
	v1.Handle("/events/{id}/join", api.requireActor(api.handleEventsJoin)).Methods(http.MethodPost)
	v1.Handle("/events/{id}/leave", api.requireActor(api.handleEventsLeave)).Methods(http.MethodPost)

	v1.Handle("/feed", api.requireActor(api.handleFeed)).Methods(http.MethodGet)
	v1.Handle("/feed/timeline", api.requireActor(api.handleFeedTimeline)).Methods(http.MethodGet)
	v1.Handle("/feed/stats", api.requireActor(api.handleFeedStats)).Methods(http.MethodGet)
	v1.Handle("/feed/friends/{id}", api.requireActor(api.handleFeedFromFriend)).Methods(http.MethodGet)

	if api.groupChatSvc != nil {
		v1.Handle("/groups/{id}/messages", api.requireActor(api.handleGroupChatSend)).Methods(http.MethodPost)
		v1.Handle("/groups/{id}/messages", api.requireActor(api.handleGroupChatList)).Methods(http.MethodGet)
		v1.Handle("/groups/{id}/messages", api.requireActor(api.handleGroupChatClear)).Methods(http.MethodDelete)
		v1.Handle("/groups/{id}/messages/stats", api.requireActor(api.handleGroupChatStats)).Methods(http.MethodGet)
		v1.Handle("/groups/{id}/messages/{messageID}", api.requireActor(api.handleGroupChatEdit)).Methods(http.MethodPatch)
		v1.Handle("/groups/{id}/messages/{messageID}", api.requireActor(api.handleGroupChatDelete)).Methods(http.MethodDelete)
	}

	if api.messagesSvc != nil {
		v1.Handle("/messages", api.requireActor(api.handleMessagesSend)).Methods(http.MethodPost)
		v1.Handle("/messages", api.requireActor(api.handleMessagesList)).Methods(http.MethodGet)
		v1.Handle("/messages/unread", api.requireActor(api.handleMessagesUnread)).Methods(http.MethodGet)
		v1.Handle("/messages/with/{userID}", api.requireActor(api.handleMessagesConversation)).Methods(http.MethodGet)
		v1.Handle("/messages/with/{userID}/read", api.requireActor(api.handleMessagesConversationRead)).Methods(http.MethodPost)
		v1.Handle("/messages/{id}/read", api.requireActor(api.handleMessagesRead)).Methods(http.MethodPost)
		v1.Handle("/messages/{id}", api.requireActor(api.handleMessagesDelete)).Methods(http.MethodDelete)
	}

	if api.notificationsSvc != nil {
		v1.Handle("/notifications", api.requireActor(api.handleNotificationsList)).Methods(http.MethodGet)
		v1.Handle("/notifications/read", api.requireActor(api.handleNotificationsRead)).Methods(http.MethodPost)
		v1.Handle("/notifications/token", api.requireActor(api.handleNotificationsTokenUpsert)).Methods(http.MethodPut)
		v1.Handle("/notifications/token", api.requireActor(api.handleNotificationsTokenDelete)).Methods(http.MethodDelete)
	}

	v1.Handle("/admin/requests/purge", api.requireActor(api.handleAdminPurgeRequests)).Methods(http.MethodPost)

	var h http.Handler = r
	h = RequestLogger(logger)(h)
	h = RequestID()(h)
	h = Recoverer(logger, opts.IsProd)(h)
	h = corsHandler(opts.CORSOrigins).Handler(h)
	return h
}

func corsHandler(origins []string) *cors.Cors {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", actorHeader, requestIDHeader, "If-None-Match"},
		ExposedHeaders: []string{requestIDHeader, "ETag"},
	})
}

func handleV1NotFound(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotFound, "not_found", "not found")
}

func handleMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
}

type api struct {
	logger *slog.Logger

	dbPing func(context.Context) error

	directorySvc     *service.DirectoryService
	requestsSvc      *service.RequestsService
	friendsSvc       *service.FriendsService
	groupsSvc        *service.GroupsService
	eventsSvc        *service.EventsService
	feedSvc          *service.FeedService
	groupChatSvc     *service.GroupChatService
	messagesSvc      *service.MessagesService
	notificationsSvc *service.NotificationService
}

func (a *api) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if a.dbPing != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
		defer cancel()
		if err := a.dbPing(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("db down"))
			return
		}
	}

	_, _ = w.Write([]byte("ok"))
}
