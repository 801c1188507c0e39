// Package sqlite implements the character library on SQLite with JSONL
// persistence: characters.jsonl in the data directory is the durable source
// of truth, and an SQLite database rebuilt on attach serves queries. Every
// mutation rewrites the JSONL file atomically, so a crash never leaves a
// partially written library.
package sqlite

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/swelldreams/cardpress/pkg/types"
)

//go:embed schema.sql
var schemaSQL string

const jsonlFileName = "characters.jsonl"

// Backend implements types.Library using SQLite as the query engine and a
// JSONL file as the source of truth.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
}

// NewBackend creates a new backend instance. The backend is not attached;
// call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach initializes the backend: creates DataDir if needed, rebuilds the
// SQLite index from schema, and loads characters.jsonl into it.
// Returns ErrAlreadyAttached when called twice.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	// The index is disposable; rebuild it from JSONL on every attach.
	dbPath := filepath.Join(dataDir, "library.db")
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return fmt.Errorf("applying schema: %w", err)
	}

	if err := loadJSONL(db, filepath.Join(dataDir, jsonlFileName)); err != nil {
		db.Close()
		return err
	}

	// Make sure the JSONL file exists so a fresh library is visible on disk.
	if err := touchJSONL(filepath.Join(dataDir, jsonlFileName)); err != nil {
		db.Close()
		return err
	}

	b.config = config
	b.config.DataDir = dataDir
	b.db = db
	b.attached = true
	return nil
}

// Detach closes the database and marks the backend detached. Detaching a
// detached backend is a no-op.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	b.attached = false
	if b.db != nil {
		err := b.db.Close()
		b.db = nil
		if err != nil {
			return fmt.Errorf("closing database: %w", err)
		}
	}
	return nil
}

// Save persists a character. A character without an id is assigned a UUID
// v7 and a creation timestamp; UpdatedAt is always refreshed. The stored
// record is returned.
func (b *Backend) Save(ch types.Character) (types.Character, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.Character{}, types.ErrLibraryDetached
	}
	if ch.Name == "" {
		return types.Character{}, types.ErrInvalidName
	}

	now := time.Now().UTC()
	if ch.CharacterID == "" {
		ch.CharacterID = uuid.Must(uuid.NewV7()).String()
		ch.CreatedAt = now
	}
	if ch.CreatedAt.IsZero() {
		ch.CreatedAt = now
	}
	ch.UpdatedAt = now

	doc, err := json.Marshal(ch)
	if err != nil {
		return types.Character{}, fmt.Errorf("marshaling character: %w", err)
	}

	_, err = b.db.Exec(`
		INSERT INTO characters (character_id, name, created_at, updated_at, doc)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(character_id) DO UPDATE SET
			name = excluded.name,
			updated_at = excluded.updated_at,
			doc = excluded.doc`,
		ch.CharacterID, ch.Name,
		ch.CreatedAt.Format(time.RFC3339Nano),
		ch.UpdatedAt.Format(time.RFC3339Nano),
		string(doc),
	)
	if err != nil {
		return types.Character{}, fmt.Errorf("saving character: %w", err)
	}

	if err := b.persistJSONL(); err != nil {
		return types.Character{}, err
	}
	return ch, nil
}

// Get returns the character with the given id.
func (b *Backend) Get(id string) (types.Character, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.Character{}, types.ErrLibraryDetached
	}
	if id == "" {
		return types.Character{}, types.ErrInvalidID
	}

	var doc string
	err := b.db.QueryRow(`SELECT doc FROM characters WHERE character_id = ?`, id).Scan(&doc)
	if err == sql.ErrNoRows {
		return types.Character{}, types.ErrNotFound
	}
	if err != nil {
		return types.Character{}, fmt.Errorf("querying character: %w", err)
	}

	var ch types.Character
	if err := json.Unmarshal([]byte(doc), &ch); err != nil {
		return types.Character{}, fmt.Errorf("decoding character %s: %w", id, err)
	}
	return ch, nil
}

// List returns all characters ordered by name, then id for stability.
func (b *Backend) List() ([]types.Character, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrLibraryDetached
	}

	rows, err := b.db.Query(`SELECT doc FROM characters ORDER BY name, character_id`)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	var out []types.Character
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		var ch types.Character
		if err := json.Unmarshal([]byte(doc), &ch); err != nil {
			// Skip undecodable rows; they cannot have come from Save.
			continue
		}
		out = append(out, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return out, nil
}

// Delete removes the character with the given id.
// Returns ErrNotFound when no such character exists.
func (b *Backend) Delete(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrLibraryDetached
	}
	if id == "" {
		return types.ErrInvalidID
	}

	res, err := b.db.Exec(`DELETE FROM characters WHERE character_id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting character: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting character: %w", err)
	}
	if n == 0 {
		return types.ErrNotFound
	}
	return b.persistJSONL()
}

// persistJSONL rewrites characters.jsonl from the database. Caller holds
// the write lock.
func (b *Backend) persistJSONL() error {
	rows, err := b.db.Query(`SELECT doc FROM characters ORDER BY created_at, character_id`)
	if err != nil {
		return fmt.Errorf("reading characters for persist: %w", err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return fmt.Errorf("scanning row for persist: %w", err)
		}
		records = append(records, json.RawMessage(doc))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating rows for persist: %w", err)
	}

	return writeJSONL(filepath.Join(b.config.DataDir, jsonlFileName), records)
}

// loadJSONL reads characters.jsonl and inserts each record into the index.
// Malformed lines are skipped; a missing file means an empty library.
func loadJSONL(db *sql.DB, path string) error {
	records, err := readJSONL(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range records {
		var ch types.Character
		if err := json.Unmarshal(rec, &ch); err != nil || ch.CharacterID == "" {
			continue
		}
		_, err := tx.Exec(`
			INSERT OR REPLACE INTO characters (character_id, name, created_at, updated_at, doc)
			VALUES (?, ?, ?, ?, ?)`,
			ch.CharacterID, ch.Name,
			ch.CreatedAt.Format(time.RFC3339Nano),
			ch.UpdatedAt.Format(time.RFC3339Nano),
			string(rec),
		)
		if err != nil {
			return fmt.Errorf("loading character %s: %w", ch.CharacterID, err)
		}
	}
	return tx.Commit()
}

func touchJSONL(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	return f.Close()
}
