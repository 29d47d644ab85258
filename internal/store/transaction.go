package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rahmatdika/ekantin/internal/model"
)

type TransactionStore struct {
	db *sql.DB
}

func NewTransactionStore(db *sql.DB) *TransactionStore {
	return &TransactionStore{db: db}
}

const txnCols = `id, code, kantin_id, kantin_name, customer_name, items, total, payment_proof, delivery_location, status, session_id, pending_sync, created_at`

func scanTransaction(scanner interface{ Scan(...any) error }) (*model.Transaction, error) {
	var t model.Transaction
	var items, location string
	var pendingSync int

	err := scanner.Scan(
		&t.ID, &t.Code, &t.KantinID, &t.KantinName, &t.CustomerName,
		&items, &t.Total, &t.PaymentProof, &location, &t.Status,
		&t.SessionID, &pendingSync, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Items = model.DecodeItems(items)
	t.DeliveryLocation = model.DecodeLocation(location)
	t.PendingSync = pendingSync != 0
	return &t, nil
}

func encodeTxnFields(t model.Transaction) (items, location string) {
	if t.Items == nil {
		t.Items = []model.CartItem{}
	}
	data, err := json.Marshal(t.Items)
	if err != nil {
		data = []byte("[]")
	}
	items = string(data)

	if t.DeliveryLocation != nil {
		if locData, err := json.Marshal(t.DeliveryLocation); err == nil {
			location = string(locData)
		}
	}
	return items, location
}

func (s *TransactionStore) GetByID(id string) (*model.Transaction, error) {
	row := s.db.QueryRow(`SELECT `+txnCols+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// FindByCode looks an order up by its human-readable code,
// case-insensitively, falling back to an exact ID match.
func (s *TransactionStore) FindByCode(code string) (*model.Transaction, error) {
	row := s.db.QueryRow(
		`SELECT `+txnCols+` FROM transactions WHERE code = ? COLLATE NOCASE OR id = ? LIMIT 1`,
		code, code,
	)
	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	return t, nil
}

func (s *TransactionStore) list(query string, args ...any) ([]model.Transaction, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txns = append(txns, *t)
	}
	return txns, rows.Err()
}

// List returns every cached order, newest first.
func (s *TransactionStore) List() ([]model.Transaction, error) {
	return s.list(`SELECT ` + txnCols + ` FROM transactions ORDER BY created_at DESC`)
}

// ListByKantin returns a vendor's cached orders, newest first.
func (s *TransactionStore) ListByKantin(kantinID string) ([]model.Transaction, error) {
	return s.list(`SELECT `+txnCols+` FROM transactions WHERE kantin_id = ? ORDER BY created_at DESC`, kantinID)
}

// ListBySession returns the orders a shopper session placed, newest first.
func (s *TransactionStore) ListBySession(sessionID string) ([]model.Transaction, error) {
	return s.list(`SELECT `+txnCols+` FROM transactions WHERE session_id = ? ORDER BY created_at DESC`, sessionID)
}

func (s *TransactionStore) Upsert(t model.Transaction) error {
	items, location := encodeTxnFields(t)
	_, err := s.db.Exec(
		`INSERT INTO transactions (`+txnCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			code = excluded.code,
			kantin_name = excluded.kantin_name,
			customer_name = excluded.customer_name,
			items = excluded.items,
			total = excluded.total,
			payment_proof = excluded.payment_proof,
			delivery_location = excluded.delivery_location,
			status = excluded.status,
			pending_sync = excluded.pending_sync`,
		t.ID, t.Code, t.KantinID, t.KantinName, t.CustomerName, items,
		t.Total, t.PaymentProof, location, t.Status, t.SessionID,
		boolInt(t.PendingSync), t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert transaction: %w", err)
	}
	return nil
}

func (s *TransactionStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// ReplaceByKantin swaps the cached orders of one vendor for the remote
// copy, keeping each row's session attribution when the remote copy has
// none. Full overwrite per vendor, never a merge.
func (s *TransactionStore) ReplaceByKantin(kantinID string, txns []model.Transaction) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	sessions := make(map[string]string)
	rows, err := tx.Query(`SELECT id, session_id FROM transactions WHERE kantin_id = ?`, kantinID)
	if err != nil {
		return fmt.Errorf("read sessions: %w", err)
	}
	for rows.Next() {
		var id, sess string
		if err := rows.Scan(&id, &sess); err != nil {
			rows.Close()
			return fmt.Errorf("scan session: %w", err)
		}
		sessions[id] = sess
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read sessions: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM transactions WHERE kantin_id = ?`, kantinID); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	for _, t := range txns {
		if t.SessionID == "" {
			t.SessionID = sessions[t.ID]
		}
		items, location := encodeTxnFields(t)
		_, err := tx.Exec(
			`INSERT INTO transactions (`+txnCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Code, t.KantinID, t.KantinName, t.CustomerName, items,
			t.Total, t.PaymentProof, location, t.Status, t.SessionID,
			boolInt(t.PendingSync), t.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
	}
	return tx.Commit()
}

func (s *TransactionStore) SetPendingSync(id string, pending bool) error {
	_, err := s.db.Exec(`UPDATE transactions SET pending_sync = ? WHERE id = ?`, boolInt(pending), id)
	if err != nil {
		return fmt.Errorf("set pending sync: %w", err)
	}
	return nil
}
