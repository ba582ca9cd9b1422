package service

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"socialgraph/internal/domain"
)

func messageIDs(msgs []domain.GroupMessage) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.ID)
	}
	return out
}

func (f *fixture) say(t *testing.T, groupID, sender, content string) domain.GroupMessage {
	t.Helper()
	m, err := f.chat.Send(context.Background(), groupID, sender, content)
	if err != nil {
		t.Fatalf("send %s: %v", sender, err)
	}
	f.clock.advance(time.Minute)
	return m
}

func TestGroupChatSendRequiresMembership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := createGroup(t, f, "A", domain.PrivacyPublic)

	m, err := f.chat.Send(ctx, g.ID, "A", "  hello  ")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if m.Content != "hello" || m.GroupID != g.ID || m.SenderID != "A" {
		t.Fatalf("unexpected message %+v", m)
	}

	_, err = f.chat.Send(ctx, g.ID, "B", "hi")
	expectRejected(t, err, domain.ErrNotMember)
	_, err = f.chat.Send(ctx, "nope", "A", "hi")
	expectRejected(t, err, domain.ErrMissing)
	_, err = f.chat.Send(ctx, g.ID, "A", " ")
	expectValidation(t, err)
	_, err = f.chat.Send(ctx, g.ID, "A", strings.Repeat("x", 2001))
	expectValidation(t, err)

	if err := f.groups.Join(ctx, g.ID, "B"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := f.chat.Send(ctx, g.ID, "B", "hi"); err != nil {
		t.Fatalf("send after join: %v", err)
	}
	if n, _ := f.chat.Count(ctx, g.ID); n != 2 {
		t.Fatalf("expected 2 messages, got %d", n)
	}
}

func TestGroupChatQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := createGroup(t, f, "A", domain.PrivacyPublic)
	other := createGroup(t, f, "A", domain.PrivacyPublic)
	_ = f.groups.Join(ctx, g.ID, "B")

	m1 := f.say(t, g.ID, "A", "Opening move")
	m2 := f.say(t, g.ID, "B", "Sicilian again?")
	m3 := f.say(t, g.ID, "A", "sicilian, always")
	f.say(t, other.ID, "A", "Sicilian elsewhere")

	all, _ := f.chat.Messages(ctx, g.ID)
	if !slices.Equal(messageIDs(all), []string{m1.ID, m2.ID, m3.ID}) {
		t.Fatalf("unexpected order %v", messageIDs(all))
	}

	recent, _ := f.chat.Recent(ctx, g.ID, 2)
	if !slices.Equal(messageIDs(recent), []string{m2.ID, m3.ID}) {
		t.Fatalf("unexpected recent %v", messageIDs(recent))
	}
	if recent, _ = f.chat.Recent(ctx, g.ID, 10); len(recent) != 3 {
		t.Fatalf("expected all messages, got %d", len(recent))
	}
	if recent, _ = f.chat.Recent(ctx, g.ID, 0); len(recent) != 0 {
		t.Fatalf("expected none, got %d", len(recent))
	}

	byA, _ := f.chat.ByUser(ctx, g.ID, "A")
	if !slices.Equal(messageIDs(byA), []string{m1.ID, m3.ID}) {
		t.Fatalf("unexpected by-user %v", messageIDs(byA))
	}

	found, _ := f.chat.Search(ctx, g.ID, " SICILIAN ")
	if !slices.Equal(messageIDs(found), []string{m2.ID, m3.ID}) {
		t.Fatalf("unexpected search %v", messageIDs(found))
	}
	if found, _ = f.chat.Search(ctx, g.ID, "  "); len(found) != 0 {
		t.Fatalf("blank search matched %d", len(found))
	}
}

func TestGroupChatDeletePermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := createGroup(t, f, "A", domain.PrivacyPublic)
	_ = f.groups.Join(ctx, g.ID, "B")
	_ = f.groups.Join(ctx, g.ID, "C")

	fromB := f.say(t, g.ID, "B", "first")
	fromB2 := f.say(t, g.ID, "B", "second")
	fromC := f.say(t, g.ID, "C", "third")

	expectRejected(t, f.chat.Delete(ctx, g.ID, fromB.ID, "C"), domain.ErrForbidden)
	if err := f.chat.Delete(ctx, g.ID, fromB.ID, "B"); err != nil {
		t.Fatalf("sender delete: %v", err)
	}
	if err := f.chat.Delete(ctx, g.ID, fromB2.ID, "A"); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	expectRejected(t, f.chat.Delete(ctx, g.ID, fromB.ID, "B"), domain.ErrMissing)

	other := createGroup(t, f, "C", domain.PrivacyPublic)
	expectRejected(t, f.chat.Delete(ctx, other.ID, fromC.ID, "C"), domain.ErrMissing)

	left, _ := f.chat.Messages(ctx, g.ID)
	if !slices.Equal(messageIDs(left), []string{fromC.ID}) {
		t.Fatalf("unexpected remaining %v", messageIDs(left))
	}
}

func TestGroupChatEditBySenderOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := createGroup(t, f, "A", domain.PrivacyPublic)
	_ = f.groups.Join(ctx, g.ID, "B")

	first := f.say(t, g.ID, "B", "helo")
	second := f.say(t, g.ID, "A", "hi")

	_, err := f.chat.Edit(ctx, g.ID, first.ID, "A", "hello")
	expectRejected(t, err, domain.ErrForbidden)
	_, err = f.chat.Edit(ctx, g.ID, first.ID, "B", "")
	expectValidation(t, err)
	_, err = f.chat.Edit(ctx, g.ID, "missing", "B", "hello")
	expectRejected(t, err, domain.ErrMissing)

	edited, err := f.chat.Edit(ctx, g.ID, first.ID, "B", " hello ")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.Content != "hello" || edited.EditedAt == nil || !edited.SentAt.Equal(first.SentAt) {
		t.Fatalf("unexpected edit %+v", edited)
	}
	all, _ := f.chat.Messages(ctx, g.ID)
	if !slices.Equal(messageIDs(all), []string{first.ID, second.ID}) || all[0].Content != "hello" {
		t.Fatalf("edit moved or lost the message: %+v", all)
	}
}

func TestGroupChatClearNeedsModerator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := createGroup(t, f, "A", domain.PrivacyPublic)
	_ = f.groups.Join(ctx, g.ID, "B")
	f.say(t, g.ID, "A", "one")
	f.say(t, g.ID, "B", "two")

	_, err := f.chat.Clear(ctx, g.ID, "B")
	expectRejected(t, err, domain.ErrForbidden)
	if n, _ := f.chat.Count(ctx, g.ID); n != 2 {
		t.Fatalf("refused clear changed state: %d", n)
	}

	if err := f.groups.AddModerator(ctx, g.ID, "B", "A"); err != nil {
		t.Fatalf("add moderator: %v", err)
	}
	n, err := f.chat.Clear(ctx, g.ID, "B")
	if err != nil || n != 2 {
		t.Fatalf("clear: %d %v", n, err)
	}
	_, err = f.chat.Clear(ctx, "nope", "A")
	expectRejected(t, err, domain.ErrMissing)
}

func TestGroupChatStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := createGroup(t, f, "A", domain.PrivacyPublic)
	_ = f.groups.Join(ctx, g.ID, "B")

	stats, err := f.chat.Stats(ctx, g.ID)
	if err != nil || !stats.Empty || stats.String() != "No messages in this group" {
		t.Fatalf("unexpected empty stats %+v %v", stats, err)
	}

	first := f.say(t, g.ID, "A", "one")
	f.say(t, g.ID, "B", "two")
	last := f.say(t, g.ID, "A", "three")

	stats, _ = f.chat.Stats(ctx, g.ID)
	if stats.Total != 3 || stats.ActiveUsers != 2 || !stats.First.Equal(first.SentAt) || !stats.Last.Equal(last.SentAt) {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if !strings.Contains(stats.String(), "Active users: 2") {
		t.Fatalf("unexpected summary %q", stats.String())
	}
}

func TestGroupChatCanRead(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	public := createGroup(t, f, "A", domain.PrivacyPublic)
	private := createGroup(t, f, "A", domain.PrivacyPrivate)

	if err := f.chat.CanRead(ctx, public.ID, "C"); err != nil {
		t.Fatalf("public chat should be readable: %v", err)
	}
	expectRejected(t, f.chat.CanRead(ctx, private.ID, "C"), domain.ErrNotMember)
	if err := f.chat.CanRead(ctx, private.ID, "A"); err != nil {
		t.Fatalf("member should read private chat: %v", err)
	}
	expectRejected(t, f.chat.CanRead(ctx, "nope", "A"), domain.ErrMissing)
}
