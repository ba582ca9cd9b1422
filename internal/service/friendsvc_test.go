package service

import (
	"context"
	"errors"
	"slices"
	"testing"

	"socialgraph/internal/domain"
	"socialgraph/internal/store/memory"
)

func TestFriendsAcceptLinksBothDirections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.befriend(t, "A", "B")

	for _, pair := range [][2]string{{"A", "B"}, {"B", "A"}} {
		ok, err := f.friends.AreFriends(ctx, pair[0], pair[1])
		if err != nil || !ok {
			t.Fatalf("expected %s and %s to be friends, got %v %v", pair[0], pair[1], ok, err)
		}
	}
	a, _ := f.friends.FriendsOf(ctx, "A")
	b, _ := f.friends.FriendsOf(ctx, "B")
	if !slices.Equal(a, []string{"B"}) || !slices.Equal(b, []string{"A"}) {
		t.Fatalf("unexpected adjacency: A=%v B=%v", a, b)
	}
	pending, _ := f.requests.PendingReceived(ctx, "B")
	if len(pending) != 0 {
		t.Fatalf("expected request resolved, got %+v", pending)
	}
}

func TestFriendsSendRequestRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.friends.SendRequest(ctx, "A", "A")
	expectRejected(t, err, domain.ErrSelfReference)

	f.befriend(t, "A", "B")
	_, err = f.friends.SendRequest(ctx, "B", "A")
	expectRejected(t, err, domain.ErrAlreadyFriends)
}

func TestFriendsAcceptWithoutPendingLeavesGraphUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	expectRejected(t, f.friends.Accept(ctx, "B", "A"), domain.ErrNoPending)

	if _, err := f.friends.SendRequest(ctx, "A", "B"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := f.friends.Decline(ctx, "B", "A"); err != nil {
		t.Fatalf("decline: %v", err)
	}
	expectRejected(t, f.friends.Accept(ctx, "B", "A"), domain.ErrNoPending)

	ok, _ := f.friends.AreFriends(ctx, "A", "B")
	if ok {
		t.Fatal("graph changed after failed accept")
	}
	a, _ := f.friends.FriendsOf(ctx, "A")
	if len(a) != 0 {
		t.Fatalf("expected no edges, got %v", a)
	}
}

func TestFriendsAcceptWrongRecipient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _ = f.friends.SendRequest(ctx, "A", "B")
	expectRejected(t, f.friends.Accept(ctx, "A", "B"), domain.ErrNoPending)
}

func TestFriendsRemoveThenNotFriends(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.befriend(t, "A", "B")
	if err := f.friends.RemoveFriend(ctx, "A", "B"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	ok, _ := f.friends.AreFriends(ctx, "A", "B")
	if ok {
		t.Fatal("expected not friends after removal")
	}
	expectRejected(t, f.friends.RemoveFriend(ctx, "A", "B"), domain.ErrNotFriends)
}

func TestFriendsHistoricalAcceptanceBlocksRefriending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.befriend(t, "A", "B")
	_ = f.friends.RemoveFriend(ctx, "B", "A")

	// The live graph no longer links them, but the accepted request is permanent history.
	_, err := f.friends.SendRequest(ctx, "A", "B")
	expectRejected(t, err, domain.ErrAlreadyFriends)
}

func TestFriendsRemoveSucceedsOnOneSidedEdge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	edges := memory.NewFriendshipsStore()
	f.friends.Friendships = edges

	if _, err := edges.Insert(ctx, "A", "B"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	ok, _ := f.friends.AreFriends(ctx, "A", "B")
	if ok {
		t.Fatal("one directed edge is not a friendship")
	}
	if err := f.friends.RemoveFriend(ctx, "A", "B"); err != nil {
		t.Fatalf("expected removal of a one-sided edge to succeed, got %v", err)
	}
}

type failingSecondInsert struct {
	*memory.FriendshipsStore
	calls int
}

func (s *failingSecondInsert) Insert(ctx context.Context, from, to string) (bool, error) {
	s.calls++
	if s.calls == 2 {
		return false, errors.New("disk full")
	}
	return s.FriendshipsStore.Insert(ctx, from, to)
}

func TestFriendsAcceptUndoesFirstEdgeOnFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	edges := &failingSecondInsert{FriendshipsStore: memory.NewFriendshipsStore()}
	f.friends.Friendships = edges

	_, _ = f.friends.SendRequest(ctx, "A", "B")
	if err := f.friends.Accept(ctx, "B", "A"); err == nil {
		t.Fatal("expected accept to fail")
	}
	for _, pair := range [][2]string{{"A", "B"}, {"B", "A"}} {
		has, _ := edges.Has(ctx, pair[0], pair[1])
		if has {
			t.Fatalf("edge %s->%s left behind", pair[0], pair[1])
		}
	}
	pending, _ := f.requests.PendingReceived(ctx, "B")
	if len(pending) != 1 {
		t.Fatalf("expected request still pending, got %+v", pending)
	}
}

type failingAccept struct {
	*RequestsService
}

func (failingAccept) Accept(context.Context, string) error {
	return errors.New("store unavailable")
}

func TestFriendsAcceptFailureKeepsPreexistingEdge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	edges := memory.NewFriendshipsStore()
	f.friends.Friendships = edges
	f.friends.Requests = failingAccept{f.requests}

	if _, err := edges.Insert(ctx, "A", "B"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := f.friends.SendRequest(ctx, "A", "B"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := f.friends.Accept(ctx, "B", "A"); err == nil {
		t.Fatal("expected accept to fail")
	}

	if has, _ := edges.Has(ctx, "A", "B"); !has {
		t.Fatal("edge A->B existed before accept and must survive the rollback")
	}
	if has, _ := edges.Has(ctx, "B", "A"); has {
		t.Fatal("edge B->A added by accept was not rolled back")
	}
}

func TestFriendsTrimIDsConsistently(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.friends.SendRequest(ctx, " A ", "B\t"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := f.friends.Accept(ctx, " B", "A "); err != nil {
		t.Fatalf("accept with padded ids: %v", err)
	}
	if ok, _ := f.friends.AreFriends(ctx, "A", "B"); !ok {
		t.Fatal("expected friends")
	}
	if err := f.friends.RemoveFriend(ctx, "A ", " B"); err != nil {
		t.Fatalf("remove with padded ids: %v", err)
	}

	if _, err := f.friends.SendRequest(ctx, "C", " A"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := f.friends.Decline(ctx, "A\n", " C"); err != nil {
		t.Fatalf("decline with padded ids: %v", err)
	}
	expectRejected(t, f.friends.Accept(ctx, "  ", "C"), domain.ErrMissing)
}

func TestFriendsOverview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.befriend(t, "A", "B")
	_, _ = f.friends.SendRequest(ctx, "C", "A")
	f.addUser(t, "D", "User D")
	_, _ = f.friends.SendRequest(ctx, "A", "D")

	o, err := f.friends.Overview(ctx, "A")
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if len(o.Friends) != 1 || o.Friends[0].DisplayName != "User B" {
		t.Fatalf("unexpected friends: %+v", o.Friends)
	}
	if len(o.Incoming) != 1 || o.Incoming[0].User.ID != "C" {
		t.Fatalf("unexpected incoming: %+v", o.Incoming)
	}
	if len(o.Outgoing) != 1 || o.Outgoing[0].User.DisplayName != "User D" {
		t.Fatalf("unexpected outgoing: %+v", o.Outgoing)
	}
}

func TestFriendsSucceededFoldsRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.friends.SendRequest(ctx, "A", "A")
	if domain.Succeeded(err) {
		t.Fatal("self request must not succeed")
	}
	kind, ok := domain.RejectionKindOf(err)
	if !ok || kind != domain.KindSelfReference {
		t.Fatalf("unexpected kind %q", kind)
	}
}
