package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"socialgraph/internal/domain"
	"socialgraph/internal/store/memory"
)

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func (c *clock) advance(d time.Duration) { c.now = c.now.Add(d) }

type recordingNotifier struct {
	calls    []string
	messages []string
	err      error
}

func (n *recordingNotifier) NotifyFriendRequest(ctx context.Context, toUserID, fromDisplayName string) error {
	n.calls = append(n.calls, toUserID+"<-"+fromDisplayName)
	return n.err
}

func (n *recordingNotifier) NotifyMessage(ctx context.Context, toUserID, fromDisplayName, messageID string) error {
	n.messages = append(n.messages, toUserID+"<-"+fromDisplayName+":"+messageID)
	return n.err
}

type fixture struct {
	clock    *clock
	users    *memory.UsersStore
	posts    *memory.PostsStore
	notifier *recordingNotifier

	requests *RequestsService
	friends  *FriendsService
	groups   *GroupsService
	events   *EventsService
	feed     *FeedService
	chat     *GroupChatService
	messages *MessagesService
}

// newFixture wires the services over in-memory stores with users A, B and C and a clock fixed at
// Wednesday 2024-05-15 12:00 UTC.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	c := &clock{now: time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	users := memory.NewUsersStore()
	users.Now = c.Now
	posts := memory.NewPostsStore()
	posts.Now = c.Now
	notifier := &recordingNotifier{}

	requests := &RequestsService{
		Requests: memory.NewRequestsStore(),
		Users:    users,
		Notifier: notifier,
		Logger:   logger,
		Now:      c.Now,
	}
	friends := &FriendsService{
		Requests:    requests,
		Friendships: memory.NewFriendshipsStore(),
		Users:       users,
		Logger:      logger,
	}
	f := &fixture{
		clock:    c,
		users:    users,
		posts:    posts,
		notifier: notifier,
		requests: requests,
		friends:  friends,
		groups:   &GroupsService{Groups: memory.NewGroupsStore(), Users: users, Logger: logger, Now: c.Now},
		events:   &EventsService{Events: memory.NewEventsStore(), Users: users, Logger: logger, Now: c.Now},
		feed:     &FeedService{Friends: friends, Posts: posts, Users: users, Now: c.Now},
		messages: &MessagesService{
			Messages: memory.NewDirectMessagesStore(),
			Friends:  friends,
			Users:    users,
			Notifier: notifier,
			Logger:   logger,
			Now:      c.Now,
		},
	}
	f.chat = &GroupChatService{Store: memory.NewGroupMessagesStore(), Groups: f.groups, Logger: logger, Now: c.Now}
	for _, id := range []string{"A", "B", "C"} {
		f.addUser(t, id, "User "+id)
	}
	return f
}

func (f *fixture) addUser(t *testing.T, id, name string) {
	t.Helper()
	if err := f.users.Add(context.Background(), domain.User{ID: id, DisplayName: name, CreatedAt: f.clock.now}); err != nil {
		t.Fatalf("add user %s: %v", id, err)
	}
}

func (f *fixture) befriend(t *testing.T, a, b string) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.friends.SendRequest(ctx, a, b); err != nil {
		t.Fatalf("send request %s->%s: %v", a, b, err)
	}
	if err := f.friends.Accept(ctx, b, a); err != nil {
		t.Fatalf("accept %s->%s: %v", a, b, err)
	}
}

func (f *fixture) post(t *testing.T, author string, typ domain.PostType, content string) domain.Post {
	t.Helper()
	p, err := f.posts.CreatePost(context.Background(), author, typ, content)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return p
}

func (f *fixture) like(t *testing.T, postID string, users ...string) {
	t.Helper()
	for _, u := range users {
		if _, err := f.posts.Like(context.Background(), postID, u); err != nil {
			t.Fatalf("like: %v", err)
		}
	}
}

func expectValidation(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func expectRejected(t *testing.T, err, want error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v, got nil", want)
	}
	if !errors.Is(err, domain.ErrRejected) {
		t.Fatalf("expected a rejection, got %v", err)
	}
	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func postIDs(posts []domain.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.ID)
	}
	return out
}
