package store

import (
	"database/sql"
	"fmt"

	"github.com/rahmatdika/ekantin/internal/model"
)

type PushStore struct {
	db *sql.DB
}

func NewPushStore(db *sql.DB) *PushStore {
	return &PushStore{db: db}
}

// Save registers a push endpoint for a session. Re-registering the same
// endpoint moves it to the new session.
func (s *PushStore) Save(sub model.PushSubscription) error {
	_, err := s.db.Exec(
		`INSERT INTO push_subscriptions (session_id, endpoint, p256dh_key, auth_key)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(endpoint) DO UPDATE SET
			session_id = excluded.session_id,
			p256dh_key = excluded.p256dh_key,
			auth_key = excluded.auth_key`,
		sub.SessionID, sub.Endpoint, sub.P256dhKey, sub.AuthKey,
	)
	if err != nil {
		return fmt.Errorf("save push subscription: %w", err)
	}
	return nil
}

func (s *PushStore) ListBySession(sessionID string) ([]model.PushSubscription, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, endpoint, p256dh_key, auth_key, created_at
		 FROM push_subscriptions WHERE session_id = ?`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list push subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []model.PushSubscription
	for rows.Next() {
		var sub model.PushSubscription
		if err := rows.Scan(&sub.ID, &sub.SessionID, &sub.Endpoint, &sub.P256dhKey, &sub.AuthKey, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan push subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// DeleteByEndpoint prunes a subscription the push service reported gone.
func (s *PushStore) DeleteByEndpoint(endpoint string) error {
	_, err := s.db.Exec(`DELETE FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	if err != nil {
		return fmt.Errorf("delete push subscription: %w", err)
	}
	return nil
}
