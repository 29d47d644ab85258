package sync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type testEntity struct {
	ID        string
	CreatedAt time.Time
}

func (e testEntity) Key() string             { return e.ID }
func (e testEntity) CreationTime() time.Time { return e.CreatedAt }

type fakeLocal struct {
	rows    map[string]testEntity
	pending map[string]bool
	order   []string
}

func newFakeLocal() *fakeLocal {
	return &fakeLocal{rows: map[string]testEntity{}, pending: map[string]bool{}}
}

func (f *fakeLocal) Upsert(e testEntity) error {
	f.rows[e.ID] = e
	return nil
}

func (f *fakeLocal) Delete(id string) error {
	delete(f.rows, id)
	return nil
}

func (f *fakeLocal) ReplaceAll(entities []testEntity) error {
	f.rows = map[string]testEntity{}
	f.order = nil
	for _, e := range entities {
		f.rows[e.ID] = e
		f.order = append(f.order, e.ID)
	}
	return nil
}

func (f *fakeLocal) SetPendingSync(id string, pending bool) error {
	f.pending[id] = pending
	return nil
}

type fakeRemote struct {
	mu       sync.Mutex
	fetched  []testEntity
	fetchErr error
	writeErr error
	deletes  []string
	done     chan struct{}
}

func (f *fakeRemote) FetchAll(ctx context.Context) ([]testEntity, error) {
	return f.fetched, f.fetchErr
}

func (f *fakeRemote) Create(ctx context.Context, e testEntity) error { return f.writeErr }
func (f *fakeRemote) Update(ctx context.Context, e testEntity) error { return f.writeErr }

func (f *fakeRemote) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	f.deletes = append(f.deletes, id)
	f.mu.Unlock()
	if f.done != nil {
		close(f.done)
	}
	return f.writeErr
}

type event struct {
	entity, action, id string
	err                error
}

type recordingNotifier struct {
	mu       sync.Mutex
	success  []event
	warnings []event
	warned   chan struct{}
}

func (n *recordingNotifier) SyncSuccess(entity, action, id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.success = append(n.success, event{entity, action, id, nil})
}

func (n *recordingNotifier) SyncWarning(entity, action, id string, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.warnings = append(n.warnings, event{entity, action, id, err})
	if n.warned != nil {
		close(n.warned)
	}
}

func newSyncer(local *fakeLocal, remote *fakeRemote, notify *recordingNotifier) *Syncer[testEntity] {
	return New[testEntity]("kantin", local, remote, notify, slog.New(slog.DiscardHandler))
}

func TestCreateMirrorsRemote(t *testing.T) {
	local := newFakeLocal()
	notify := &recordingNotifier{}
	s := newSyncer(local, &fakeRemote{}, notify)

	e := testEntity{ID: "k1", CreatedAt: time.Now()}
	if err := s.Create(context.Background(), e); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := local.rows["k1"]; !ok {
		t.Error("entity not cached")
	}
	if local.pending["k1"] {
		t.Error("pending_sync set after clean write")
	}
	if len(notify.success) != 1 || notify.success[0].action != "create" {
		t.Errorf("success events = %+v", notify.success)
	}
}

func TestCreateKeepsLocalOnRemoteFailure(t *testing.T) {
	local := newFakeLocal()
	notify := &recordingNotifier{}
	remote := &fakeRemote{writeErr: errors.New("script unreachable")}
	s := newSyncer(local, remote, notify)

	e := testEntity{ID: "k1", CreatedAt: time.Now()}
	if err := s.Create(context.Background(), e); err != nil {
		t.Fatalf("create returned error despite local commit: %v", err)
	}
	if _, ok := local.rows["k1"]; !ok {
		t.Error("remote failure rolled back the local write")
	}
	if !local.pending["k1"] {
		t.Error("pending_sync not flagged")
	}
	if len(notify.warnings) != 1 || notify.warnings[0].id != "k1" {
		t.Errorf("warnings = %+v", notify.warnings)
	}
	if len(notify.success) != 0 {
		t.Errorf("unexpected success events: %+v", notify.success)
	}
}

func TestUpdateClearsPendingAfterRecovery(t *testing.T) {
	local := newFakeLocal()
	local.pending["k1"] = true
	notify := &recordingNotifier{}
	s := newSyncer(local, &fakeRemote{}, notify)

	if err := s.Update(context.Background(), testEntity{ID: "k1"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if local.pending["k1"] {
		t.Error("pending_sync survived a successful write")
	}
}

func TestDeleteDoesNotBlockOnRemote(t *testing.T) {
	local := newFakeLocal()
	local.rows["k1"] = testEntity{ID: "k1"}
	notify := &recordingNotifier{}
	remote := &fakeRemote{done: make(chan struct{})}
	s := newSyncer(local, remote, notify)

	if err := s.Delete(context.Background(), "k1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := local.rows["k1"]; ok {
		t.Error("local row survived delete")
	}
	// Success is reported before the remote round trip finishes.
	if len(notify.success) != 1 || notify.success[0].action != "delete" {
		t.Errorf("success events = %+v", notify.success)
	}

	select {
	case <-remote.done:
	case <-time.After(2 * time.Second):
		t.Fatal("remote delete never ran")
	}
}

func TestDeleteWarnsOnRemoteFailure(t *testing.T) {
	local := newFakeLocal()
	local.rows["k1"] = testEntity{ID: "k1"}
	notify := &recordingNotifier{warned: make(chan struct{})}
	remote := &fakeRemote{writeErr: errors.New("script unreachable"), done: make(chan struct{})}
	s := newSyncer(local, remote, notify)

	if err := s.Delete(context.Background(), "k1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	select {
	case <-notify.warned:
	case <-time.After(2 * time.Second):
		t.Fatal("no warning for failed remote delete")
	}
	notify.mu.Lock()
	defer notify.mu.Unlock()
	if len(notify.warnings) != 1 || notify.warnings[0].action != "delete" {
		t.Errorf("warnings = %+v", notify.warnings)
	}
}

func TestRefreshReplacesCacheNewestFirst(t *testing.T) {
	local := newFakeLocal()
	local.rows["stale"] = testEntity{ID: "stale"}
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	remote := &fakeRemote{fetched: []testEntity{
		{ID: "old", CreatedAt: base},
		{ID: "new", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "mid", CreatedAt: base.Add(time.Hour)},
	}}
	s := newSyncer(local, remote, &recordingNotifier{})

	got, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if len(got) != 3 || got[0].ID != "new" || got[2].ID != "old" {
		t.Errorf("order = %+v", got)
	}
	if _, ok := local.rows["stale"]; ok {
		t.Error("refresh merged instead of replacing")
	}
	if len(local.order) != 3 || local.order[0] != "new" {
		t.Errorf("cache order = %v", local.order)
	}
}

func TestRefreshLeavesCacheOnFetchFailure(t *testing.T) {
	local := newFakeLocal()
	local.rows["cached"] = testEntity{ID: "cached"}
	remote := &fakeRemote{fetchErr: errors.New("script unreachable")}
	s := newSyncer(local, remote, &recordingNotifier{})

	if _, err := s.Refresh(context.Background()); err == nil {
		t.Fatal("expected error from failed fetch")
	}
	if _, ok := local.rows["cached"]; !ok {
		t.Error("failed refresh touched the cache")
	}
}
