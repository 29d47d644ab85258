// Package kantin manages the vendor directory: the admin sheet is the
// authoritative list of vendor accounts, the local cache keeps the
// storefront readable when the sheet is not.
package kantin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rahmatdika/ekantin/internal/model"
	"github.com/rahmatdika/ekantin/internal/sheet"
	"github.com/rahmatdika/ekantin/internal/store"
	"github.com/rahmatdika/ekantin/internal/sync"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// remoteStore adapts the admin sheet to the syncer's remote side.
type remoteStore struct {
	client    *sheet.Client
	scriptURL string
}

func (r remoteStore) FetchAll(ctx context.Context) ([]model.Kantin, error) {
	rows, err := r.client.Fetch(ctx, r.scriptURL, sheet.SheetKantins)
	if err != nil {
		return nil, err
	}
	kantins := make([]model.Kantin, 0, len(rows))
	for _, row := range rows {
		k := FromRow(row)
		if k.ID == "" {
			continue
		}
		kantins = append(kantins, k)
	}
	return kantins, nil
}

func (r remoteStore) Create(ctx context.Context, k model.Kantin) error {
	return r.client.Create(ctx, r.scriptURL, sheet.SheetKantins, ToRow(k))
}

func (r remoteStore) Update(ctx context.Context, k model.Kantin) error {
	return r.client.Update(ctx, r.scriptURL, sheet.SheetKantins, k.ID, ToRow(k))
}

func (r remoteStore) Delete(ctx context.Context, id string) error {
	return r.client.Delete(ctx, r.scriptURL, sheet.SheetKantins, id)
}

type Service struct {
	store  *store.KantinStore
	syncer *sync.Syncer[model.Kantin]
	logger *slog.Logger
}

func NewService(st *store.KantinStore, client *sheet.Client, adminScriptURL string, notify sync.Notifier, logger *slog.Logger) *Service {
	remote := remoteStore{client: client, scriptURL: adminScriptURL}
	return &Service{
		store:  st,
		syncer: sync.New[model.Kantin]("kantin", st, remote, notify, logger),
		logger: logger.With("component", "kantin"),
	}
}

// List returns the vendor directory, refreshed from the admin sheet when
// possible and served from the cache when not.
func (s *Service) List(ctx context.Context) ([]model.Kantin, error) {
	kantins, err := s.syncer.Refresh(ctx)
	if err == nil {
		return kantins, nil
	}
	return s.store.List()
}

func (s *Service) GetByID(ctx context.Context, id string) (*model.Kantin, error) {
	k, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if k != nil {
		return k, nil
	}
	// Cache miss. The vendor may have been created on another instance,
	// so try one refresh before giving up.
	if _, err := s.syncer.Refresh(ctx); err != nil {
		return nil, nil
	}
	return s.store.GetByID(id)
}

func (s *Service) Create(ctx context.Context, k model.Kantin) error {
	if k.ID == "" || k.Name == "" {
		return fmt.Errorf("kantin needs an id and a name")
	}
	return s.syncer.Create(ctx, k)
}

func (s *Service) Update(ctx context.Context, k model.Kantin) error {
	return s.syncer.Update(ctx, k)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.syncer.Delete(ctx, id)
}

// SetOpen flips the storefront open flag, keeping the rest of the profile.
func (s *Service) SetOpen(ctx context.Context, id string, open bool) (*model.Kantin, error) {
	k, err := s.store.GetByID(id)
	if err != nil {
		return nil, err
	}
	if k == nil {
		return nil, fmt.Errorf("kantin %s not found", id)
	}
	k.IsOpen = open
	if err := s.syncer.Update(ctx, *k); err != nil {
		return nil, err
	}
	return k, nil
}

// Login checks vendor credentials against the freshest copy of the
// directory it can get. The sheet stores passwords as plain columns, so
// this is a straight comparison.
func (s *Service) Login(ctx context.Context, email, password string) (*model.Kantin, error) {
	if _, err := s.syncer.Refresh(ctx); err != nil {
		s.logger.Warn("login using cached directory", "error", err)
	}

	k, err := s.store.GetByEmail(strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if k == nil || k.Password != password {
		return nil, ErrInvalidCredentials
	}
	return k, nil
}
