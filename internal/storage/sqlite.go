// Package storage persists profile embeddings and match-result history in
// SQLite. The engine works without it; the store is the durable cache and
// audit trail behind the API.
package storage

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Alexsovich5/DAPP-sub000/internal/embedding"
	"github.com/Alexsovich5/DAPP-sub000/internal/engine"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database with methods for embeddings and results.
// It satisfies engine.EmbeddingStore.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database (used
// by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "compat.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Set busy timeout so concurrent access waits briefly instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't been run yet.
func (s *Store) migrate() error {
	// Ensure schema_version table exists (bootstrap).
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort by filename to guarantee ascending order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// AppliedMigrations returns the list of applied migration versions in ascending order.
func (s *Store) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// --- Embeddings ---

// PutEmbedding upserts a profile's embedding, keyed by (user, version).
// Re-embedding the same version replaces the previous row.
func (s *Store) PutEmbedding(e *embedding.ProfileEmbedding) error {
	_, err := s.db.Exec(`
		INSERT INTO embeddings (user_id, version, personality_vec, interests_vec, values_vec, communication_vec, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, version) DO UPDATE SET
			personality_vec = excluded.personality_vec,
			interests_vec = excluded.interests_vec,
			values_vec = excluded.values_vec,
			communication_vec = excluded.communication_vec,
			generated_at = excluded.generated_at`,
		e.UserID, e.Version,
		encodeFloat64s(e.Personality), encodeFloat64s(e.Interests),
		encodeFloat64s(e.Values), encodeFloat64s(e.Communication),
		e.GeneratedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// GetEmbedding loads a profile's embedding for one version, or ErrNotFound.
func (s *Store) GetEmbedding(userID string, version int) (*embedding.ProfileEmbedding, error) {
	var personality, interests, values, communication []byte
	var generatedAt string
	err := s.db.QueryRow(`
		SELECT personality_vec, interests_vec, values_vec, communication_vec, generated_at
		FROM embeddings WHERE user_id = ? AND version = ?`, userID, version,
	).Scan(&personality, &interests, &values, &communication, &generatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	e := &embedding.ProfileEmbedding{UserID: userID, Version: version}
	if e.Personality, err = decodeFloat64s(personality); err != nil {
		return nil, fmt.Errorf("decoding personality vector: %w", err)
	}
	if e.Interests, err = decodeFloat64s(interests); err != nil {
		return nil, fmt.Errorf("decoding interests vector: %w", err)
	}
	if e.Values, err = decodeFloat64s(values); err != nil {
		return nil, fmt.Errorf("decoding values vector: %w", err)
	}
	if e.Communication, err = decodeFloat64s(communication); err != nil {
		return nil, fmt.Errorf("decoding communication vector: %w", err)
	}
	if e.GeneratedAt, err = time.Parse(time.RFC3339, generatedAt); err != nil {
		return nil, fmt.Errorf("parsing generated_at: %w", err)
	}
	return e, nil
}

// DeleteEmbeddings removes every cached embedding for a user, all versions.
// Called when a profile is deleted from the platform.
func (s *Store) DeleteEmbeddings(userID string) error {
	_, err := s.db.Exec(`DELETE FROM embeddings WHERE user_id = ?`, userID)
	return err
}

// --- Match results ---

// SaveResult records a scored pair. The full result is kept as JSON; the
// indexed columns exist for listing and lookups.
func (s *Store) SaveResult(r engine.Result) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding result %s: %w", r.ID, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO match_results (id, user_a, user_b, overall, confidence, result_json, generated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserA, r.UserB, r.Overall, r.Confidence, string(payload),
		r.GeneratedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// GetResult loads one result by id, or ErrNotFound.
func (s *Store) GetResult(id string) (engine.Result, error) {
	var payload string
	err := s.db.QueryRow(`SELECT result_json FROM match_results WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return engine.Result{}, ErrNotFound
	}
	if err != nil {
		return engine.Result{}, err
	}
	var r engine.Result
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return engine.Result{}, fmt.Errorf("decoding result %s: %w", id, err)
	}
	return r, nil
}

// RecentResults lists a user's latest results, newest first. The user may
// appear on either side of the pair.
func (s *Store) RecentResults(userID string, limit int) ([]engine.Result, error) {
	rows, err := s.db.Query(`
		SELECT result_json FROM match_results
		WHERE user_a = ? OR user_b = ?
		ORDER BY generated_at DESC LIMIT ?`, userID, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []engine.Result
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var r engine.Result
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, fmt.Errorf("decoding result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
