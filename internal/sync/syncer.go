// Package sync keeps the local cache and the remote sheet store in step.
//
// Writes go local first, remote second. The local write is the commit: a
// remote failure never rolls it back, it only flags the row pending_sync and
// raises a warning. Reads go the other way, the remote copy is authoritative
// and fully replaces the cache whenever a fetch succeeds.
package sync

import (
	"context"
	"log/slog"
	"sort"
	"time"
)

// Entity is anything the syncer can mirror between the two stores.
type Entity interface {
	Key() string
	CreationTime() time.Time
}

// LocalStore is the cache side of the pair. Its methods are expected to
// fail only on local database trouble, which is fatal for the operation.
type LocalStore[T Entity] interface {
	Upsert(T) error
	Delete(id string) error
	ReplaceAll([]T) error
	SetPendingSync(id string, pending bool) error
}

// RemoteStore is the sheet side of the pair.
type RemoteStore[T Entity] interface {
	FetchAll(ctx context.Context) ([]T, error)
	Create(ctx context.Context, e T) error
	Update(ctx context.Context, e T) error
	Delete(ctx context.Context, id string) error
}

// Notifier receives the outcome of every write so the UI layer can surface
// it. Action is one of "create", "update", "delete".
type Notifier interface {
	SyncSuccess(entity, action, id string)
	SyncWarning(entity, action, id string, err error)
}

type Syncer[T Entity] struct {
	entity string
	local  LocalStore[T]
	remote RemoteStore[T]
	notify Notifier
	logger *slog.Logger
}

func New[T Entity](entity string, local LocalStore[T], remote RemoteStore[T], notify Notifier, logger *slog.Logger) *Syncer[T] {
	return &Syncer[T]{
		entity: entity,
		local:  local,
		remote: remote,
		notify: notify,
		logger: logger.With("component", "sync", "entity", entity),
	}
}

// Create commits the entity locally, then mirrors it to the remote store.
// The local write is the point of no return: a remote failure leaves the
// entity cached with pending_sync set and comes back as nil.
func (s *Syncer[T]) Create(ctx context.Context, e T) error {
	return s.write(ctx, "create", e, s.remote.Create)
}

// Update follows the same local-then-remote path as Create.
func (s *Syncer[T]) Update(ctx context.Context, e T) error {
	return s.write(ctx, "update", e, s.remote.Update)
}

func (s *Syncer[T]) write(ctx context.Context, action string, e T, remote func(context.Context, T) error) error {
	if err := s.local.Upsert(e); err != nil {
		return err
	}
	if err := remote(ctx, e); err != nil {
		s.logger.Warn("remote write failed", "action", action, "id", e.Key(), "error", err)
		if flagErr := s.local.SetPendingSync(e.Key(), true); flagErr != nil {
			s.logger.Error("flag pending sync", "id", e.Key(), "error", flagErr)
		}
		s.notify.SyncWarning(s.entity, action, e.Key(), err)
		return nil
	}
	if err := s.local.SetPendingSync(e.Key(), false); err != nil {
		s.logger.Error("clear pending sync", "id", e.Key(), "error", err)
	}
	s.notify.SyncSuccess(s.entity, action, e.Key())
	return nil
}

// Delete removes the entity locally and reports success right away. The
// remote delete runs in the background; if it fails the only trace is a
// warning, the local row is already gone.
func (s *Syncer[T]) Delete(ctx context.Context, id string) error {
	if err := s.local.Delete(id); err != nil {
		return err
	}
	s.notify.SyncSuccess(s.entity, "delete", id)

	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		if err := s.remote.Delete(ctx, id); err != nil {
			s.logger.Warn("remote delete failed", "id", id, "error", err)
			s.notify.SyncWarning(s.entity, "delete", id, err)
		}
	}()
	return nil
}

// Refresh pulls the remote copy and, when the fetch succeeds, overwrites
// the whole cache with it, newest first. On failure it returns the error so
// the caller can fall back to the cache.
func (s *Syncer[T]) Refresh(ctx context.Context) ([]T, error) {
	entities, err := s.remote.FetchAll(ctx)
	if err != nil {
		s.logger.Warn("refresh failed, serving cache", "error", err)
		return nil, err
	}

	sort.SliceStable(entities, func(i, j int) bool {
		return entities[i].CreationTime().After(entities[j].CreationTime())
	})
	if err := s.local.ReplaceAll(entities); err != nil {
		return nil, err
	}
	return entities, nil
}
