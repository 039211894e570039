package alerts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/106shubh/JeevanDhara-sub000/internal/platform/logger"
)

// fakeSource es un Source scripteable: lista fija, canales controlados
// a mano y descarte que puede fallar a pedido.
type fakeSource struct {
	mu         sync.Mutex
	active     []Alert
	listErr    error
	dismissErr error
	dismissed  []string
	chans      []chan Event
}

func (f *fakeSource) ListActive(ctx context.Context, userID string) ([]Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]Alert, len(f.active))
	copy(out, f.active)
	return out, nil
}

func (f *fakeSource) Subscribe(ctx context.Context, userID string) (<-chan Event, func(), error) {
	ch := make(chan Event, 16)
	f.mu.Lock()
	f.chans = append(f.chans, ch)
	f.mu.Unlock()
	return ch, func() {}, nil
}

func (f *fakeSource) Dismiss(ctx context.Context, alertID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.dismissErr != nil {
		return f.dismissErr
	}
	f.dismissed = append(f.dismissed, alertID)
	return nil
}

func (f *fakeSource) publish(ev Event) {
	f.mu.Lock()
	ch := f.chans[len(f.chans)-1]
	f.mu.Unlock()
	ch <- ev
}

// dropChannel simula la caída del canal push cerrándolo.
func (f *fakeSource) dropChannel() {
	f.mu.Lock()
	ch := f.chans[len(f.chans)-1]
	f.mu.Unlock()
	close(ch)
}

func (f *fakeSource) subscribeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.chans)
}

type fakeNotifier struct {
	mu  sync.Mutex
	got []Notification
}

func (n *fakeNotifier) Notify(v Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, v)
}

func (n *fakeNotifier) notifications() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, len(n.got))
	copy(out, n.got)
	return out
}

func testLogger() logger.Logger {
	return logger.New(logger.Options{Level: logger.Error})
}

// waitFor sondea cond hasta que se cumpla o venza el plazo.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func streamAlert(id string, typ AlertType, createdAt time.Time) Alert {
	return Alert{
		ID:         id,
		UserID:     "user-1",
		Type:       typ,
		Title:      "title " + id,
		Message:    "message " + id,
		CanDismiss: typ == TypePending || typ == TypeCompliant,
		CreatedAt:  createdAt,
	}
}

func TestOpenWithoutUserIsInert(t *testing.T) {
	src := &fakeSource{}

	s := Open(context.Background(), "", src, nil, testLogger())
	defer s.Close()

	if got := s.Snapshot(); len(got) != 0 {
		t.Fatalf("expected empty snapshot, got %d items", len(got))
	}
	if src.subscribeCount() != 0 {
		t.Fatal("unauthenticated stream must not subscribe")
	}

	// Close repetido no debe colgar ni entrar en pánico
	s.Close()
	s.Close()
}

func TestOpenLoadsActiveAndFiltersDismissed(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	dismissed := streamAlert("a-x", TypePending, base.Add(3*time.Hour))
	dismissed.IsDismissed = true

	src := &fakeSource{active: []Alert{
		streamAlert("a-3", TypeUrgent, base.Add(2*time.Hour)),
		dismissed,
		streamAlert("a-2", TypeWarning, base.Add(time.Hour)),
		streamAlert("a-1", TypePending, base),
	}}

	s := Open(context.Background(), "user-1", src, nil, testLogger())
	defer s.Close()

	got := s.Snapshot()
	if len(got) != 3 {
		t.Fatalf("expected 3 alerts, got %d", len(got))
	}
	for i, want := range []string{"a-3", "a-2", "a-1"} {
		if got[i].ID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, got[i].ID)
		}
	}
}

func TestOpenLoadFailureDegradesToEmpty(t *testing.T) {
	src := &fakeSource{listErr: errors.New("backend down")}

	s := Open(context.Background(), "user-1", src, nil, testLogger())
	defer s.Close()

	if got := s.Snapshot(); len(got) != 0 {
		t.Fatalf("expected empty snapshot on load failure, got %d items", len(got))
	}
}

func TestInsertPrependsKeepingNewestFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{active: []Alert{
		streamAlert("t-3", TypePending, base.Add(2*time.Hour)),
		streamAlert("t-2", TypePending, base.Add(time.Hour)),
		streamAlert("t-1", TypePending, base),
	}}

	s := Open(context.Background(), "user-1", src, nil, testLogger())
	defer s.Close()

	src.publish(Event{Kind: EventInsert, Alert: streamAlert("t-4", TypeUrgent, base.Add(3*time.Hour))})

	waitFor(t, func() bool { return len(s.Snapshot()) == 4 })

	got := s.Snapshot()
	for i, want := range []string{"t-4", "t-3", "t-2", "t-1"} {
		if got[i].ID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, got[i].ID)
		}
	}
}

func TestInsertReplayDoesNotDuplicate(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{}

	s := Open(context.Background(), "user-1", src, nil, testLogger())
	defer s.Close()

	a := streamAlert("dup-1", TypeWarning, base)
	src.publish(Event{Kind: EventInsert, Alert: a})
	src.publish(Event{Kind: EventInsert, Alert: a})
	src.publish(Event{Kind: EventInsert, Alert: streamAlert("dup-2", TypePending, base.Add(time.Minute))})

	waitFor(t, func() bool { return len(s.Snapshot()) == 2 })

	// dar margen a que un duplicado tardío se aplique mal
	time.Sleep(20 * time.Millisecond)
	if got := s.Snapshot(); len(got) != 2 {
		t.Fatalf("replayed insert duplicated the alert: %d items", len(got))
	}
}

func TestUpdateMarkingDismissedRemoves(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{active: []Alert{
		streamAlert("u-2", TypePending, base.Add(time.Hour)),
		streamAlert("u-1", TypePending, base),
	}}

	s := Open(context.Background(), "user-1", src, nil, testLogger())
	defer s.Close()

	dismissed := streamAlert("u-2", TypePending, base.Add(time.Hour))
	dismissed.IsDismissed = true

	// entrega duplicada del mismo update: la segunda debe ser no-op
	src.publish(Event{Kind: EventUpdate, Alert: dismissed})
	src.publish(Event{Kind: EventUpdate, Alert: dismissed})

	waitFor(t, func() bool { return len(s.Snapshot()) == 1 })

	got := s.Snapshot()
	if got[0].ID != "u-1" {
		t.Fatalf("expected u-1 to remain, got %s", got[0].ID)
	}
}

func TestUpdateForUnknownIDIsNoOp(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{active: []Alert{streamAlert("k-1", TypePending, base)}}

	s := Open(context.Background(), "user-1", src, nil, testLogger())
	defer s.Close()

	src.publish(Event{Kind: EventUpdate, Alert: streamAlert("ghost", TypeUrgent, base)})
	// evento marcador para saber que el anterior ya se procesó
	src.publish(Event{Kind: EventInsert, Alert: streamAlert("k-2", TypePending, base.Add(time.Minute))})

	waitFor(t, func() bool { return len(s.Snapshot()) == 2 })

	for _, a := range s.Snapshot() {
		if a.ID == "ghost" {
			t.Fatal("update for unknown id must not add the alert")
		}
	}
}

func TestDismissConfirmedRemovesLocally(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{active: []Alert{
		streamAlert("d-2", TypePending, base.Add(time.Hour)),
		streamAlert("d-1", TypePending, base),
	}}

	s := Open(context.Background(), "user-1", src, nil, testLogger())
	defer s.Close()

	if err := s.Dismiss(context.Background(), "d-2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := s.Snapshot()
	if len(got) != 1 || got[0].ID != "d-1" {
		t.Fatalf("expected only d-1 to remain, got %+v", got)
	}
	if len(src.dismissed) != 1 || src.dismissed[0] != "d-2" {
		t.Fatalf("dismissal not confirmed against source: %v", src.dismissed)
	}
}

func TestDismissFailureKeepsListIntact(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{
		active:     []Alert{streamAlert("f-1", TypePending, base)},
		dismissErr: errors.New("network down"),
	}

	s := Open(context.Background(), "user-1", src, nil, testLogger())
	defer s.Close()

	if err := s.Dismiss(context.Background(), "f-1"); err == nil {
		t.Fatal("expected error from failed dismissal")
	}

	got := s.Snapshot()
	if len(got) != 1 || got[0].ID != "f-1" {
		t.Fatalf("failed dismissal must not touch the local list, got %+v", got)
	}
}

func TestGroupedAlwaysHasFourBuckets(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{active: []Alert{
		streamAlert("g-2", TypeUrgent, base.Add(time.Hour)),
		streamAlert("g-1", TypePending, base),
	}}

	s := Open(context.Background(), "user-1", src, nil, testLogger())
	defer s.Close()

	grouped := s.Grouped()
	if len(grouped) != 4 {
		t.Fatalf("expected 4 buckets, got %d", len(grouped))
	}
	for _, typ := range Types {
		if _, ok := grouped[typ]; !ok {
			t.Fatalf("missing bucket %s", typ)
		}
	}
	if len(grouped[TypeUrgent]) != 1 || len(grouped[TypePending]) != 1 {
		t.Fatalf("misgrouped: urgent=%d pending=%d", len(grouped[TypeUrgent]), len(grouped[TypePending]))
	}
	if len(grouped[TypeWarning]) != 0 || len(grouped[TypeCompliant]) != 0 {
		t.Fatal("empty buckets must still be present and empty")
	}
}

func TestInsertNotifiesByTier(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{}
	notif := &fakeNotifier{}

	s := Open(context.Background(), "user-1", src, notif, testLogger())
	defer s.Close()

	src.publish(Event{Kind: EventInsert, Alert: streamAlert("n-1", TypeUrgent, base)})
	src.publish(Event{Kind: EventInsert, Alert: streamAlert("n-2", TypeWarning, base.Add(time.Minute))})
	src.publish(Event{Kind: EventInsert, Alert: streamAlert("n-3", TypePending, base.Add(2*time.Minute))})

	waitFor(t, func() bool { return len(s.Snapshot()) == 3 })
	waitFor(t, func() bool { return len(notif.notifications()) == 2 })

	got := notif.notifications()
	if got[0].Level != NotifyHigh || got[0].Duration != urgentNotifyDuration {
		t.Fatalf("urgent: expected high/%v, got %s/%v", urgentNotifyDuration, got[0].Level, got[0].Duration)
	}
	if got[1].Level != NotifyMedium || got[1].Duration != warningNotifyDuration {
		t.Fatalf("warning: expected medium/%v, got %s/%v", warningNotifyDuration, got[1].Level, got[1].Duration)
	}
}

func TestCloseStopsConsuming(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{active: []Alert{streamAlert("c-1", TypePending, base)}}

	s := Open(context.Background(), "user-1", src, nil, testLogger())
	s.Close()

	// eventos de una sesión ya cerrada no deben tocar la vista
	src.publish(Event{Kind: EventInsert, Alert: streamAlert("c-2", TypeUrgent, base.Add(time.Hour))})
	time.Sleep(20 * time.Millisecond)

	got := s.Snapshot()
	if len(got) != 1 || got[0].ID != "c-1" {
		t.Fatalf("closed stream must not apply events, got %+v", got)
	}
}

func TestChannelLossReloadsAndResubscribes(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{active: []Alert{streamAlert("r-1", TypePending, base)}}

	s := Open(context.Background(), "user-1", src, nil, testLogger())
	defer s.Close()

	waitFor(t, func() bool { return src.subscribeCount() == 1 })

	// lo que aparezca mientras el canal está caído debe entrar vía reload
	src.mu.Lock()
	src.active = append([]Alert{streamAlert("r-2", TypeUrgent, base.Add(time.Hour))}, src.active...)
	src.mu.Unlock()

	s.retryWait = 10 * time.Millisecond
	src.dropChannel()

	waitFor(t, func() bool { return src.subscribeCount() == 2 })
	waitFor(t, func() bool { return len(s.Snapshot()) == 2 })

	got := s.Snapshot()
	if got[0].ID != "r-2" || got[1].ID != "r-1" {
		t.Fatalf("expected reloaded view [r-2 r-1], got %+v", got)
	}

	// la suscripción nueva tiene que seguir viva
	src.publish(Event{Kind: EventInsert, Alert: streamAlert("r-3", TypeWarning, base.Add(2*time.Hour))})
	waitFor(t, func() bool { return len(s.Snapshot()) == 3 })
}
