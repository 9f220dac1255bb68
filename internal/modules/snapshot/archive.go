package snapshot

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/titguild/guildboard/internal/modules/companies"
)

// Archive keeps a short history of persisted dataset states, keyed by
// fingerprint, so divergence incidents can be inspected after the fact.
// Payloads are msgpack-encoded; the archive is forensic, not authoritative.
type Archive struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewArchive creates an archive over the given database connection.
func NewArchive(db *sql.DB, log zerolog.Logger) *Archive {
	return &Archive{
		db:  db,
		log: log.With().Str("repository", "snapshot_archive").Logger(),
	}
}

// InitSchema creates the snapshots table if needed.
func (a *Archive) InitSchema() error {
	_, err := a.db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			fingerprint TEXT NOT NULL,
			payload BLOB NOT NULL,
			taken_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create snapshots table: %w", err)
	}
	return nil
}

// Record stores one dataset state. Recording the same fingerprint twice in a
// row is skipped; unchanged saves should not grow the archive.
func (a *Archive) Record(ds companies.Dataset, token Token) error {
	var last string
	err := a.db.QueryRow("SELECT fingerprint FROM snapshots ORDER BY id DESC LIMIT 1").Scan(&last)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to read latest snapshot: %w", err)
	}
	if last == string(token) {
		return nil
	}

	payload, err := msgpack.Marshal(ds)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot payload: %w", err)
	}

	_, err = a.db.Exec(
		"INSERT INTO snapshots (fingerprint, payload, taken_at) VALUES (?, ?, ?)",
		string(token), payload, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record snapshot: %w", err)
	}

	a.log.Debug().Str("fingerprint", string(token)).Msg("Snapshot recorded")
	return nil
}

// Load retrieves the archived dataset for a fingerprint, or nil if that
// state was never recorded.
func (a *Archive) Load(token Token) (companies.Dataset, error) {
	var payload []byte
	err := a.db.QueryRow(
		"SELECT payload FROM snapshots WHERE fingerprint = ? ORDER BY id DESC LIMIT 1",
		string(token),
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var ds companies.Dataset
	if err := msgpack.Unmarshal(payload, &ds); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot payload: %w", err)
	}
	return ds, nil
}

// Prune keeps only the most recent n snapshots.
func (a *Archive) Prune(keep int) error {
	if keep < 1 {
		keep = 1
	}
	_, err := a.db.Exec(`
		DELETE FROM snapshots WHERE id NOT IN (
			SELECT id FROM snapshots ORDER BY id DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return nil
}
