package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"socialgraph/internal/domain"
)

func TestRequestsSendCreatesPendingAndNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.requests.Send(ctx, "A", "B")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if req.ID == "" || req.Status != domain.RequestPending {
		t.Fatalf("unexpected request: %+v", req)
	}
	if !req.CreatedAt.Equal(f.clock.now) {
		t.Fatalf("expected created_at %v, got %v", f.clock.now, req.CreatedAt)
	}
	if len(f.notifier.calls) != 1 || f.notifier.calls[0] != "B<-User A" {
		t.Fatalf("unexpected notifications: %v", f.notifier.calls)
	}
	ok, err := f.requests.HasPending(ctx, "A", "B")
	if err != nil || !ok {
		t.Fatalf("expected A->B pending, got %v %v", ok, err)
	}
	ok, _ = f.requests.HasPending(ctx, "B", "A")
	if ok {
		t.Fatal("has-pending must be direction specific")
	}
}

func TestRequestsSendRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.requests.Send(ctx, "A", "A")
	expectRejected(t, err, domain.ErrSelfReference)

	_, err = f.requests.Send(ctx, "", "B")
	expectRejected(t, err, domain.ErrMissing)

	if _, err := f.requests.Send(ctx, "A", "B"); err != nil {
		t.Fatalf("send: %v", err)
	}
	_, err = f.requests.Send(ctx, "A", "B")
	expectRejected(t, err, domain.ErrRequestPending)
	_, err = f.requests.Send(ctx, "B", "A")
	expectRejected(t, err, domain.ErrRequestPending)

	all, _ := f.requests.All(ctx)
	if len(all) != 1 {
		t.Fatalf("expected one record, got %d", len(all))
	}
}

func TestRequestsNotifierFailureDoesNotFailSend(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("push down")

	if _, err := f.requests.Send(context.Background(), "A", "B"); err != nil {
		t.Fatalf("send: %v", err)
	}
}

func TestRequestsUnknownSenderNotifiesWithFallbackName(t *testing.T) {
	f := newFixture(t)

	if _, err := f.requests.Send(context.Background(), "ghost", "B"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if f.notifier.calls[0] != "B<-"+domain.UnknownUserName {
		t.Fatalf("unexpected notification: %v", f.notifier.calls)
	}
}

func TestRequestsTerminalStatesAreFinal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, _ := f.requests.Send(ctx, "A", "B")
	if err := f.requests.Reject(ctx, req.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}
	expectRejected(t, f.requests.Accept(ctx, req.ID), domain.ErrNotPending)
	expectRejected(t, f.requests.Reject(ctx, req.ID), domain.ErrNotPending)
	expectRejected(t, f.requests.Accept(ctx, "missing"), domain.ErrMissing)

	got, err := f.requests.Get(ctx, req.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.RequestRejected {
		t.Fatalf("expected rejected, got %s", got.Status)
	}
}

func TestRequestsRejectedPairMaySendAgain(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, _ := f.requests.Send(ctx, "A", "B")
	_ = f.requests.Reject(ctx, req.ID)
	if _, err := f.requests.Send(ctx, "B", "A"); err != nil {
		t.Fatalf("expected resend after rejection, got %v", err)
	}
}

func TestRequestsAcceptedHistoryBlocksNewRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, _ := f.requests.Send(ctx, "A", "B")
	if err := f.requests.Accept(ctx, req.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	ok, _ := f.requests.AlreadyFriends(ctx, "B", "A")
	if !ok {
		t.Fatal("expected accepted history in either direction")
	}
	_, err := f.requests.Send(ctx, "B", "A")
	expectRejected(t, err, domain.ErrAlreadyFriends)
}

func TestRequestsQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ab, _ := f.requests.Send(ctx, "A", "B")
	cb, _ := f.requests.Send(ctx, "C", "B")
	ac, _ := f.requests.Send(ctx, "A", "C")
	_ = f.requests.Reject(ctx, ac.ID)

	received, _ := f.requests.PendingReceived(ctx, "B")
	if len(received) != 2 || received[0].ID != ab.ID || received[1].ID != cb.ID {
		t.Fatalf("unexpected pending received: %+v", received)
	}
	sent, _ := f.requests.PendingSent(ctx, "A")
	if len(sent) != 1 || sent[0].ID != ab.ID {
		t.Fatalf("unexpected pending sent: %+v", sent)
	}
	history, _ := f.requests.SentBy(ctx, "A")
	if len(history) != 2 {
		t.Fatalf("expected 2 sent by A, got %d", len(history))
	}
	forC, _ := f.requests.AllFor(ctx, "C")
	if len(forC) != 2 {
		t.Fatalf("expected 2 requests for C, got %d", len(forC))
	}
	n, _ := f.requests.PendingCount(ctx, "B")
	if n != 2 {
		t.Fatalf("expected pending count 2, got %d", n)
	}
}

func TestRequestsPurgeRejectedOnlyDropsOldRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	old, _ := f.requests.Send(ctx, "A", "B")
	_ = f.requests.Reject(ctx, old.ID)
	oldPending, _ := f.requests.Send(ctx, "A", "C")

	f.clock.advance(31 * 24 * time.Hour)
	fresh, _ := f.requests.Send(ctx, "B", "C")
	_ = f.requests.Reject(ctx, fresh.ID)

	n, err := f.requests.PurgeRejected(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 purged, got %d", n)
	}
	if _, err := f.requests.Get(ctx, old.ID); !errors.Is(err, domain.ErrMissing) {
		t.Fatalf("expected old rejection gone, got %v", err)
	}
	for _, id := range []string{oldPending.ID, fresh.ID} {
		if _, err := f.requests.Get(ctx, id); err != nil {
			t.Fatalf("expected %s kept, got %v", id, err)
		}
	}
}

func TestRequestsPurgeHonorsCustomRetention(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.requests.Retention = time.Hour

	req, _ := f.requests.Send(ctx, "A", "B")
	_ = f.requests.Reject(ctx, req.ID)
	f.clock.advance(2 * time.Hour)

	n, _ := f.requests.PurgeRejected(ctx)
	if n != 1 {
		t.Fatalf("expected 1 purged, got %d", n)
	}
}
