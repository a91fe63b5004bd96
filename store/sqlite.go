// Package store implements the streampay persistence substrate on embedded
// SQLite. Records are stored as JSON snapshots keyed by their deterministic
// address; each save is one transaction, so a snapshot is always a committed
// engine state.
package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/productscience/streampay/x/streampay/types"
)

// SqliteConfig holds configuration for an embedded SQLite DB
type SqliteConfig struct {
	Path string // e.g., streampay.db
}

type SqliteStore struct {
	config SqliteConfig
	db     *sql.DB
}

var _ types.Persistence = (*SqliteStore)(nil)

func NewSqliteStore(cfg SqliteConfig) *SqliteStore {
	return &SqliteStore{config: cfg}
}

// Open opens the database and ensures the schema exists.
func (s *SqliteStore) Open(ctx context.Context) error {
	if s.config.Path == "" {
		return errors.New("sqlite path is empty")
	}
	db, err := sql.Open("sqlite", s.config.Path)
	if err != nil {
		return err
	}
	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return err
	}
	_, _ = db.ExecContext(ctx, "PRAGMA synchronous=NORMAL;")
	_, _ = db.ExecContext(ctx, "PRAGMA busy_timeout=5000;")

	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return err
	}
	s.db = db
	return nil
}

func (s *SqliteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	stmt := `
CREATE TABLE IF NOT EXISTS streams (
  address TEXT PRIMARY KEY,
  sender TEXT NOT NULL,
  recipient TEXT NOT NULL,
  is_active INTEGER NOT NULL,
  record_json TEXT NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT (STRFTIME('%Y-%m-%d %H:%M:%f','now'))
);

CREATE TABLE IF NOT EXISTS registries (
  account TEXT NOT NULL,
  role TEXT NOT NULL,
  registry_json TEXT NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT (STRFTIME('%Y-%m-%d %H:%M:%f','now')),
  PRIMARY KEY (account, role)
);

CREATE TABLE IF NOT EXISTS kv_state (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`
	_, err := db.ExecContext(ctx, stmt)
	return errors.Wrap(err, "failed to ensure streampay schema")
}

const (
	roleSender    = "sender"
	roleRecipient = "recipient"

	counterKey = "total_streams"
)

func (s *SqliteStore) SaveStream(ctx context.Context, record types.StreamRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "failed to marshal stream record")
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO streams (address, sender, recipient, is_active, record_json, updated_at)
VALUES (?, ?, ?, ?, ?, STRFTIME('%Y-%m-%d %H:%M:%f','now'))
ON CONFLICT(address) DO UPDATE SET
  is_active = excluded.is_active,
  record_json = excluded.record_json,
  updated_at = excluded.updated_at
`, string(record.Address), record.Sender, record.Recipient, boolToInt(record.IsActive), string(body))
	return errors.Wrapf(err, "failed to save stream %s", record.Address)
}

func (s *SqliteStore) SaveSenderRegistry(ctx context.Context, account string, reg types.SenderRegistry) error {
	return s.saveRegistry(ctx, account, roleSender, reg)
}

func (s *SqliteStore) SaveRecipientRegistry(ctx context.Context, account string, reg types.RecipientRegistry) error {
	return s.saveRegistry(ctx, account, roleRecipient, reg)
}

func (s *SqliteStore) saveRegistry(ctx context.Context, account, role string, reg interface{}) error {
	body, err := json.Marshal(reg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal registry")
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO registries (account, role, registry_json, updated_at)
VALUES (?, ?, ?, STRFTIME('%Y-%m-%d %H:%M:%f','now'))
ON CONFLICT(account, role) DO UPDATE SET
  registry_json = excluded.registry_json,
  updated_at = excluded.updated_at
`, account, role, string(body))
	return errors.Wrapf(err, "failed to save %s registry for %s", role, account)
}

func (s *SqliteStore) SaveCounter(ctx context.Context, total uint64) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO kv_state (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value
`, counterKey, total)
	return errors.Wrap(err, "failed to save stream counter")
}

func (s *SqliteStore) LoadAll(ctx context.Context) (types.Snapshot, error) {
	snapshot := types.Snapshot{
		SenderRegistries:    make(map[string]types.SenderRegistry),
		RecipientRegistries: make(map[string]types.RecipientRegistry),
	}

	rows, err := s.db.QueryContext(ctx, `SELECT record_json FROM streams`)
	if err != nil {
		return snapshot, errors.Wrap(err, "failed to load streams")
	}
	defer rows.Close()
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return snapshot, err
		}
		var record types.StreamRecord
		if err := json.Unmarshal([]byte(body), &record); err != nil {
			return snapshot, errors.Wrap(err, "corrupt stream record")
		}
		snapshot.Streams = append(snapshot.Streams, record)
	}
	if err := rows.Err(); err != nil {
		return snapshot, err
	}

	regRows, err := s.db.QueryContext(ctx, `SELECT account, role, registry_json FROM registries`)
	if err != nil {
		return snapshot, errors.Wrap(err, "failed to load registries")
	}
	defer regRows.Close()
	for regRows.Next() {
		var account, role, body string
		if err := regRows.Scan(&account, &role, &body); err != nil {
			return snapshot, err
		}
		switch role {
		case roleSender:
			var reg types.SenderRegistry
			if err := json.Unmarshal([]byte(body), &reg); err != nil {
				return snapshot, errors.Wrap(err, "corrupt sender registry")
			}
			if reg.ActiveStreams == nil {
				reg.ActiveStreams = make(map[types.StreamAddress]struct{})
			}
			snapshot.SenderRegistries[account] = reg
		case roleRecipient:
			var reg types.RecipientRegistry
			if err := json.Unmarshal([]byte(body), &reg); err != nil {
				return snapshot, errors.Wrap(err, "corrupt recipient registry")
			}
			if reg.ActiveStreams == nil {
				reg.ActiveStreams = make(map[types.StreamAddress]struct{})
			}
			snapshot.RecipientRegistries[account] = reg
		}
	}
	if err := regRows.Err(); err != nil {
		return snapshot, err
	}

	var total uint64
	err = s.db.QueryRowContext(ctx, `SELECT value FROM kv_state WHERE key = ?`, counterKey).Scan(&total)
	if err != nil && err != sql.ErrNoRows {
		return snapshot, errors.Wrap(err, "failed to load stream counter")
	}
	snapshot.TotalStreams = total

	return snapshot, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
