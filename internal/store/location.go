package store

import (
	"database/sql"
	"fmt"

	"github.com/rahmatdika/ekantin/internal/model"
)

type LocationStore struct {
	db *sql.DB
}

func NewLocationStore(db *sql.DB) *LocationStore {
	return &LocationStore{db: db}
}

// Get returns the session's delivery location, or nil for take away.
func (s *LocationStore) Get(sessionID string) (*model.DeliveryLocation, error) {
	row := s.db.QueryRow(
		`SELECT name, table_number, scanned_at FROM delivery_locations WHERE session_id = ?`,
		sessionID,
	)
	var loc model.DeliveryLocation
	err := row.Scan(&loc.Name, &loc.TableNumber, &loc.ScannedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get delivery location: %w", err)
	}
	return &loc, nil
}

// Set stores the session's location; at most one per session.
func (s *LocationStore) Set(sessionID string, loc model.DeliveryLocation) error {
	_, err := s.db.Exec(
		`INSERT INTO delivery_locations (session_id, name, table_number, scanned_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
			name = excluded.name,
			table_number = excluded.table_number,
			scanned_at = excluded.scanned_at`,
		sessionID, loc.Name, loc.TableNumber, loc.ScannedAt,
	)
	if err != nil {
		return fmt.Errorf("set delivery location: %w", err)
	}
	return nil
}

func (s *LocationStore) Clear(sessionID string) error {
	_, err := s.db.Exec(`DELETE FROM delivery_locations WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("clear delivery location: %w", err)
	}
	return nil
}
