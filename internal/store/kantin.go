package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rahmatdika/ekantin/internal/model"
)

type KantinStore struct {
	db *sql.DB
}

func NewKantinStore(db *sql.DB) *KantinStore {
	return &KantinStore{db: db}
}

const kantinCols = `id, name, description, owner_id, email, password, spreadsheet_api_url, spreadsheet_url, whatsapp, cover_image, qris_image, is_open, operating_hours, pending_sync, created_at`

func scanKantin(scanner interface{ Scan(...any) error }) (*model.Kantin, error) {
	var k model.Kantin
	var isOpen, pendingSync int
	var hours string

	err := scanner.Scan(
		&k.ID, &k.Name, &k.Description, &k.OwnerID, &k.Email, &k.Password,
		&k.SpreadsheetAPIURL, &k.SpreadsheetURL, &k.WhatsApp, &k.CoverImage,
		&k.QRISImage, &isOpen, &hours, &pendingSync, &k.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	k.IsOpen = isOpen != 0
	k.PendingSync = pendingSync != 0
	k.OperatingHours = decodeHours(hours)
	return &k, nil
}

// decodeHours tolerates whatever ended up in the cell; a corrupt value reads
// as no configured hours.
func decodeHours(s string) []model.OperatingHours {
	var hours []model.OperatingHours
	if err := json.Unmarshal([]byte(s), &hours); err != nil {
		return []model.OperatingHours{}
	}
	if hours == nil {
		hours = []model.OperatingHours{}
	}
	return hours
}

func encodeHours(hours []model.OperatingHours) string {
	if hours == nil {
		hours = []model.OperatingHours{}
	}
	data, err := json.Marshal(hours)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func (s *KantinStore) GetByID(id string) (*model.Kantin, error) {
	row := s.db.QueryRow(`SELECT `+kantinCols+` FROM kantins WHERE id = ?`, id)
	k, err := scanKantin(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get kantin: %w", err)
	}
	return k, nil
}

func (s *KantinStore) GetByEmail(email string) (*model.Kantin, error) {
	row := s.db.QueryRow(`SELECT `+kantinCols+` FROM kantins WHERE email = ? COLLATE NOCASE`, email)
	k, err := scanKantin(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get kantin by email: %w", err)
	}
	return k, nil
}

// List returns all cached vendor accounts, newest first.
func (s *KantinStore) List() ([]model.Kantin, error) {
	rows, err := s.db.Query(`SELECT ` + kantinCols + ` FROM kantins ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list kantins: %w", err)
	}
	defer rows.Close()

	var kantins []model.Kantin
	for rows.Next() {
		k, err := scanKantin(rows)
		if err != nil {
			return nil, fmt.Errorf("scan kantin: %w", err)
		}
		kantins = append(kantins, *k)
	}
	return kantins, rows.Err()
}

func (s *KantinStore) Upsert(k model.Kantin) error {
	_, err := s.db.Exec(
		`INSERT INTO kantins (`+kantinCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			owner_id = excluded.owner_id,
			email = excluded.email,
			password = excluded.password,
			spreadsheet_api_url = excluded.spreadsheet_api_url,
			spreadsheet_url = excluded.spreadsheet_url,
			whatsapp = excluded.whatsapp,
			cover_image = excluded.cover_image,
			qris_image = excluded.qris_image,
			is_open = excluded.is_open,
			operating_hours = excluded.operating_hours,
			pending_sync = excluded.pending_sync`,
		k.ID, k.Name, k.Description, k.OwnerID, k.Email, k.Password,
		k.SpreadsheetAPIURL, k.SpreadsheetURL, k.WhatsApp, k.CoverImage,
		k.QRISImage, boolInt(k.IsOpen), encodeHours(k.OperatingHours),
		boolInt(k.PendingSync), k.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert kantin: %w", err)
	}
	return nil
}

func (s *KantinStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM kantins WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete kantin: %w", err)
	}
	return nil
}

// ReplaceAll swaps the whole cached collection for the remote copy. Full
// overwrite, never a merge.
func (s *KantinStore) ReplaceAll(kantins []model.Kantin) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM kantins`); err != nil {
		return fmt.Errorf("clear kantins: %w", err)
	}
	for _, k := range kantins {
		_, err := tx.Exec(
			`INSERT INTO kantins (`+kantinCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			k.ID, k.Name, k.Description, k.OwnerID, k.Email, k.Password,
			k.SpreadsheetAPIURL, k.SpreadsheetURL, k.WhatsApp, k.CoverImage,
			k.QRISImage, boolInt(k.IsOpen), encodeHours(k.OperatingHours),
			boolInt(k.PendingSync), k.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert kantin: %w", err)
		}
	}
	return tx.Commit()
}

func (s *KantinStore) SetPendingSync(id string, pending bool) error {
	_, err := s.db.Exec(`UPDATE kantins SET pending_sync = ? WHERE id = ?`, boolInt(pending), id)
	if err != nil {
		return fmt.Errorf("set pending sync: %w", err)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
