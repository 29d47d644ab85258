package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rahmatdika/ekantin/internal/model"
)

type CartStore struct {
	db *sql.DB
}

func NewCartStore(db *sql.DB) *CartStore {
	return &CartStore{db: db}
}

// Get returns the session's cart mapping, empty when there is none.
func (s *CartStore) Get(sessionID string) (model.Cart, error) {
	rows, err := s.db.Query(
		`SELECT menu_id, menu_name, quantity, price FROM cart_items WHERE session_id = ?`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	defer rows.Close()

	cart := model.Cart{}
	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(&item.MenuID, &item.MenuName, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		cart[item.MenuID] = item
	}
	return cart, rows.Err()
}

// Upsert writes one cart line, one row per (session, menu).
func (s *CartStore) Upsert(sessionID string, item model.CartItem) error {
	_, err := s.db.Exec(
		`INSERT INTO cart_items (session_id, menu_id, menu_name, quantity, price, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(session_id, menu_id) DO UPDATE SET
			menu_name = excluded.menu_name,
			quantity = excluded.quantity,
			price = excluded.price,
			updated_at = excluded.updated_at`,
		sessionID, item.MenuID, item.MenuName, item.Quantity, item.Price, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert cart item: %w", err)
	}
	return nil
}

func (s *CartStore) Remove(sessionID, menuID string) error {
	_, err := s.db.Exec(`DELETE FROM cart_items WHERE session_id = ? AND menu_id = ?`, sessionID, menuID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	return nil
}

func (s *CartStore) Clear(sessionID string) error {
	_, err := s.db.Exec(`DELETE FROM cart_items WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
