package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/faqrag/internal/adapters/driven/vectorstore/sqlite/migrations"
	"github.com/custodia-labs/faqrag/internal/adapters/driven/vectorstore/vecmath"
	"github.com/custodia-labs/faqrag/internal/core/domain"
	"github.com/custodia-labs/faqrag/internal/core/ports/driven"
)

// DBFile is the database file name inside the data directory.
const DBFile = "vectors.db"

var _ driven.VectorStore = (*Store)(nil)

// Store is a SQLite-backed VectorStore.
type Store struct {
	db   *sql.DB
	path string
}

// DefaultDir returns ~/.faqrag/data.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".faqrag", "data"), nil
}

// Exists reports whether a database has been created in dataDir.
func Exists(dataDir string) bool {
	if dataDir == "" {
		var err error
		if dataDir, err = DefaultDir(); err != nil {
			return false
		}
	}
	_, err := os.Stat(filepath.Join(dataDir, DBFile))
	return err == nil
}

// NewStore opens or creates the vector database in dataDir.
// If dataDir is empty, defaults to ~/.faqrag/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		var err error
		if dataDir, err = DefaultDir(); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
		}
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("%w: creating data directory: %w", domain.ErrIndexUnavailable, err)
	}

	dbPath := filepath.Join(dataDir, DBFile)
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", domain.ErrIndexUnavailable, err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: running migrations: %w", domain.ErrIndexUnavailable, err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate applies pending NNN_name.up.sql files, each in its own transaction.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil || version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}
	return nil
}

// Stage creates an empty, unpublished generation.
func (s *Store) Stage(ctx context.Context, collection, modelID string, dimensions int) (string, error) {
	if collection == "" || modelID == "" || dimensions <= 0 {
		return "", fmt.Errorf("%w: collection, model id and dimensions are required", domain.ErrInvalidInput)
	}

	id := "gen_" + uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO generations (id, collection, model_id, dimensions, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, collection, modelID, dimensions, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("staging generation: %w", err)
	}
	return id, nil
}

// Insert appends entries to a generation in one transaction, assigning ids
// and sequence numbers in order.
func (s *Store) Insert(ctx context.Context, generation string, entries []domain.IndexedEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var dims int
	var nextSeq int64
	err = tx.QueryRowContext(ctx, `SELECT dimensions, next_seq FROM generations WHERE id = ?`, generation).
		Scan(&dims, &nextSeq)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: generation %s", domain.ErrNotFound, generation)
	}
	if err != nil {
		return fmt.Errorf("reading generation: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (generation, seq, source_id, text, embedding) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if len(e.Embedding) != dims {
			return fmt.Errorf("%w: entry %q has %d dimensions, collection expects %d",
				domain.ErrDimensionMismatch, e.Document.SourceID, len(e.Embedding), dims)
		}
		if _, err := stmt.ExecContext(ctx, generation, nextSeq, e.Document.SourceID, e.Document.Text,
			vecmath.Encode(e.Embedding)); err != nil {
			return fmt.Errorf("inserting entry: %w", err)
		}
		nextSeq++
	}

	if _, err := tx.ExecContext(ctx, `UPDATE generations SET next_seq = ? WHERE id = ?`, nextSeq, generation); err != nil {
		return fmt.Errorf("advancing sequence: %w", err)
	}
	return tx.Commit()
}

// Publish points collection at generation and deletes the previous generation.
func (s *Store) Publish(ctx context.Context, collection, generation string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var owner string
	err = tx.QueryRowContext(ctx, `SELECT collection FROM generations WHERE id = ?`, generation).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: generation %s", domain.ErrNotFound, generation)
	}
	if err != nil {
		return fmt.Errorf("reading generation: %w", err)
	}
	if owner != collection {
		return fmt.Errorf("%w: generation %s belongs to %s", domain.ErrInvalidInput, generation, owner)
	}

	var previous sql.NullString
	err = tx.QueryRowContext(ctx, `SELECT generation FROM collections WHERE name = ?`, collection).Scan(&previous)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("reading collection: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO collections (name, generation, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET generation = excluded.generation, updated_at = excluded.updated_at`,
		collection, generation, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("publishing generation: %w", err)
	}

	if previous.Valid && previous.String != generation {
		if _, err := tx.ExecContext(ctx, `DELETE FROM generations WHERE id = ?`, previous.String); err != nil {
			return fmt.Errorf("dropping previous generation: %w", err)
		}
	}
	return tx.Commit()
}

// Discard deletes an unpublished generation. Published generations are kept.
func (s *Store) Discard(ctx context.Context, generation string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM generations
		WHERE id = ? AND NOT EXISTS (SELECT 1 FROM collections WHERE generation = ?)`,
		generation, generation)
	if err != nil {
		return fmt.Errorf("discarding generation: %w", err)
	}
	return nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func collectionInfo(ctx context.Context, q querier, name string) (domain.Collection, error) {
	c := domain.Collection{Name: name}
	err := q.QueryRowContext(ctx, `
		SELECT g.id, g.model_id, g.dimensions, g.created_at,
		       (SELECT COUNT(*) FROM entries e WHERE e.generation = g.id)
		FROM collections c JOIN generations g ON g.id = c.generation
		WHERE c.name = ?`, name).
		Scan(&c.Generation, &c.ModelID, &c.Dimensions, &c.CreatedAt, &c.Count)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Collection{}, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	if err != nil {
		return domain.Collection{}, fmt.Errorf("reading collection: %w", err)
	}
	return c, nil
}

// Collection describes the live generation.
func (s *Store) Collection(ctx context.Context, collection string) (domain.Collection, error) {
	return collectionInfo(ctx, s.db, collection)
}

// Query scans the live generation inside a read transaction so a concurrent
// publish cannot change the snapshot mid-scan.
func (s *Store) Query(ctx context.Context, collection string, vector []float32, k int) ([]domain.VectorHit, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	defer tx.Rollback()

	info, err := collectionInfo(ctx, tx, collection)
	if err != nil {
		return nil, err
	}
	if len(vector) != info.Dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, collection expects %d",
			domain.ErrDimensionMismatch, len(vector), info.Dimensions)
	}
	if k <= 0 {
		return []domain.VectorHit{}, nil
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT seq, source_id, text, embedding FROM entries WHERE generation = ? ORDER BY seq`, info.Generation)
	if err != nil {
		return nil, fmt.Errorf("scanning entries: %w", err)
	}
	defer rows.Close()

	hits := make([]domain.VectorHit, 0, info.Count)
	for rows.Next() {
		var e domain.IndexedEntry
		var blob []byte
		if err := rows.Scan(&e.Seq, &e.Document.SourceID, &e.Document.Text, &blob); err != nil {
			return nil, fmt.Errorf("reading entry: %w", err)
		}
		if e.Embedding, err = vecmath.Decode(blob); err != nil {
			return nil, err
		}
		e.ID = vecmath.EntryID(e.Seq)
		hits = append(hits, domain.VectorHit{Entry: e, Distance: vecmath.SquaredL2(vector, e.Embedding)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scanning entries: %w", err)
	}
	return vecmath.Nearest(hits, k), nil
}

// Drop removes the collection and all of its generations.
func (s *Store) Drop(ctx context.Context, collection string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE name = ?`, collection); err != nil {
		return fmt.Errorf("dropping collection: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM generations WHERE collection = ?`, collection); err != nil {
		return fmt.Errorf("dropping generations: %w", err)
	}
	return tx.Commit()
}
