package service

import (
	"context"
	"testing"
	"time"

	"socialgraph/internal/domain"
)

func createEvent(t *testing.T, f *fixture, creator string, in time.Duration) *domain.Event {
	t.Helper()
	e, err := f.events.Create(context.Background(), CreateEventParams{
		Name:        "Tournament",
		Description: "Swiss rounds",
		CreatorID:   creator,
		StartsAt:    f.clock.now.Add(in),
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return e
}

func TestEventCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e := createEvent(t, f, "A", 24*time.Hour)
	if !e.IsOwner("A") || !e.IsMember("A") {
		t.Fatalf("creator must own and attend: %+v", e)
	}

	_, err := f.events.Create(ctx, CreateEventParams{Name: "Old", Description: "x", CreatorID: "A", StartsAt: f.clock.now.Add(-time.Hour)})
	expectValidation(t, err)
	_, err = f.events.Create(ctx, CreateEventParams{Name: "Soon", Description: "x", CreatorID: "A"})
	expectValidation(t, err)
	_, err = f.events.Create(ctx, CreateEventParams{Name: "Soon", Description: "x", CreatorID: "ghost", StartsAt: f.clock.now.Add(time.Hour)})
	expectValidation(t, err)
}

func TestEventJoinAndLeave(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := createEvent(t, f, "A", time.Hour)

	if err := f.events.Join(ctx, e.ID, "B"); err != nil {
		t.Fatalf("join: %v", err)
	}
	expectRejected(t, f.events.Join(ctx, e.ID, "B"), domain.ErrAlreadyMember)
	expectRejected(t, f.events.Leave(ctx, e.ID, "A"), domain.ErrOwnerProtected)
	if err := f.events.Leave(ctx, e.ID, "B"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	expectRejected(t, f.events.Leave(ctx, e.ID, "B"), domain.ErrNotMember)
}

func TestEventJoinAfterStartFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := createEvent(t, f, "A", time.Hour)

	f.clock.advance(2 * time.Hour)
	expectRejected(t, f.events.Join(ctx, e.ID, "B"), domain.ErrEventPast)

	past, _ := f.events.Past(ctx)
	if len(past) != 1 || past[0].ID != e.ID {
		t.Fatalf("unexpected past events: %v", past)
	}
}

func TestEventEditAndDeleteAreCreatorOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := createEvent(t, f, "A", time.Hour)
	_ = f.events.Join(ctx, e.ID, "B")

	expectRejected(t, f.events.Edit(ctx, e.ID, "B", EditEventParams{Name: "Mine"}), domain.ErrNotOwner)
	expectRejected(t, f.events.Delete(ctx, e.ID, "B"), domain.ErrNotOwner)
	expectRejected(t, f.events.Edit(ctx, e.ID, "A", EditEventParams{StartsAt: f.clock.now.Add(-time.Minute)}), domain.ErrEventPast)

	later := f.clock.now.Add(48 * time.Hour)
	if err := f.events.Edit(ctx, e.ID, "A", EditEventParams{Name: "Finals", StartsAt: later}); err != nil {
		t.Fatalf("edit: %v", err)
	}
	got, _ := f.events.Get(ctx, e.ID)
	if got.Name != "Finals" || got.Description != "Swiss rounds" || !got.StartsAt.Equal(later) {
		t.Fatalf("unexpected event: %+v", got)
	}

	if err := f.events.Delete(ctx, e.ID, "A"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err := f.events.Get(ctx, e.ID)
	expectRejected(t, err, domain.ErrMissing)
}

func TestEventUpcomingSortedSoonestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	late := createEvent(t, f, "A", 48*time.Hour)
	soon := createEvent(t, f, "B", time.Hour)

	upcoming, _ := f.events.Upcoming(ctx)
	if len(upcoming) != 2 || upcoming[0].ID != soon.ID || upcoming[1].ID != late.ID {
		t.Fatalf("unexpected order: %v", upcoming)
	}
	mine, _ := f.events.ByMember(ctx, "B")
	if len(mine) != 1 || mine[0].ID != soon.ID {
		t.Fatalf("unexpected events for B: %v", mine)
	}
}
