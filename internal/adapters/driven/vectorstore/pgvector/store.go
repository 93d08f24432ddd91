// Package pgvector stores collections in PostgreSQL with the pgvector
// extension. Ranking uses the <-> (Euclidean) operator; distances are
// squared before they are returned so every backend reports the same metric.
package pgvector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver

	"github.com/custodia-labs/faqrag/internal/adapters/driven/vectorstore/vecmath"
	"github.com/custodia-labs/faqrag/internal/core/domain"
	"github.com/custodia-labs/faqrag/internal/core/ports/driven"
)

var _ driven.VectorStore = (*Store)(nil)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE TABLE IF NOT EXISTS faqrag_generations (
		id          TEXT PRIMARY KEY,
		collection  TEXT NOT NULL,
		model_id    TEXT NOT NULL,
		dimensions  INTEGER NOT NULL,
		next_seq    BIGINT NOT NULL DEFAULT 0,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS faqrag_collections (
		name        TEXT PRIMARY KEY,
		generation  TEXT NOT NULL REFERENCES faqrag_generations(id),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS faqrag_entries (
		generation  TEXT NOT NULL REFERENCES faqrag_generations(id) ON DELETE CASCADE,
		seq         BIGINT NOT NULL,
		source_id   TEXT NOT NULL,
		text        TEXT NOT NULL,
		embedding   vector NOT NULL,
		PRIMARY KEY (generation, seq)
	)`,
}

// Store is a pgvector-backed VectorStore.
type Store struct {
	db *sql.DB
}

// Open connects to PostgreSQL and applies the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: vector_store.dsn is required for pgvector", domain.ErrConfiguration)
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %w", domain.ErrIndexUnavailable, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping database: %w", domain.ErrIndexUnavailable, err)
	}

	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	return s, nil
}

// New wraps an open database handle without touching the schema.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the extension and tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Stage creates an empty, unpublished generation.
func (s *Store) Stage(ctx context.Context, collection, modelID string, dimensions int) (string, error) {
	if collection == "" || modelID == "" || dimensions <= 0 {
		return "", fmt.Errorf("%w: collection, model id and dimensions are required", domain.ErrInvalidInput)
	}

	id := "gen_" + uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO faqrag_generations (id, collection, model_id, dimensions) VALUES ($1, $2, $3, $4)`,
		id, collection, modelID, dimensions)
	if err != nil {
		return "", fmt.Errorf("staging generation: %w", err)
	}
	return id, nil
}

// Insert appends entries in one transaction. The generation row is locked so
// concurrent inserts cannot reuse sequence numbers.
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
	err = tx.QueryRowContext(ctx,
		`SELECT dimensions, next_seq FROM faqrag_generations WHERE id = $1 FOR UPDATE`, generation).
		Scan(&dims, &nextSeq)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: generation %s", domain.ErrNotFound, generation)
	}
	if err != nil {
		return fmt.Errorf("reading generation: %w", err)
	}

	for _, e := range entries {
		if len(e.Embedding) != dims {
			return fmt.Errorf("%w: entry %q has %d dimensions, collection expects %d",
				domain.ErrDimensionMismatch, e.Document.SourceID, len(e.Embedding), dims)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO faqrag_entries (generation, seq, source_id, text, embedding) VALUES ($1, $2, $3, $4, $5)`,
			generation, nextSeq, e.Document.SourceID, e.Document.Text, FormatVector(e.Embedding))
		if err != nil {
			return fmt.Errorf("inserting entry: %w", err)
		}
		nextSeq++
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE faqrag_generations SET next_seq = $1 WHERE id = $2`, nextSeq, generation); err != nil {
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
	err = tx.QueryRowContext(ctx, `SELECT collection FROM faqrag_generations WHERE id = $1`, generation).Scan(&owner)
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
	err = tx.QueryRowContext(ctx,
		`SELECT generation FROM faqrag_collections WHERE name = $1 FOR UPDATE`, collection).Scan(&previous)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("reading collection: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO faqrag_collections (name, generation, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET generation = EXCLUDED.generation, updated_at = EXCLUDED.updated_at`,
		collection, generation)
	if err != nil {
		return fmt.Errorf("publishing generation: %w", err)
	}

	if previous.Valid && previous.String != generation {
		if _, err := tx.ExecContext(ctx, `DELETE FROM faqrag_generations WHERE id = $1`, previous.String); err != nil {
			return fmt.Errorf("dropping previous generation: %w", err)
		}
	}
	return tx.Commit()
}

// Discard deletes an unpublished generation.
func (s *Store) Discard(ctx context.Context, generation string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM faqrag_generations g
		WHERE g.id = $1 AND NOT EXISTS (SELECT 1 FROM faqrag_collections c WHERE c.generation = g.id)`,
		generation)
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
	var created time.Time
	err := q.QueryRowContext(ctx, `
		SELECT g.id, g.model_id, g.dimensions, g.created_at,
		       (SELECT COUNT(*) FROM faqrag_entries e WHERE e.generation = g.id)
		FROM faqrag_collections c JOIN faqrag_generations g ON g.id = c.generation
		WHERE c.name = $1`, name).
		Scan(&c.Generation, &c.ModelID, &c.Dimensions, &created, &c.Count)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Collection{}, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, name)
	}
	if err != nil {
		return domain.Collection{}, fmt.Errorf("reading collection: %w", err)
	}
	c.CreatedAt = created
	return c, nil
}

// Collection describes the live generation.
func (s *Store) Collection(ctx context.Context, collection string) (domain.Collection, error) {
	return collectionInfo(ctx, s.db, collection)
}

// Query ranks the live generation in the database. It runs in a repeatable
// read transaction so the collection pointer and the entries come from one
// snapshot.
func (s *Store) Query(ctx context.Context, collection string, vector []float32, k int) ([]domain.VectorHit, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
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

	rows, err := tx.QueryContext(ctx, `
		SELECT seq, source_id, text, embedding::text, embedding <-> $2::vector AS distance
		FROM faqrag_entries
		WHERE generation = $1
		ORDER BY distance, seq
		LIMIT $3`, info.Generation, FormatVector(vector), k)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	hits := make([]domain.VectorHit, 0, k)
	for rows.Next() {
		var e domain.IndexedEntry
		var embedding string
		var distance float64
		if err := rows.Scan(&e.Seq, &e.Document.SourceID, &e.Document.Text, &embedding, &distance); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if e.Embedding, err = ParseVector(embedding); err != nil {
			return nil, err
		}
		e.ID = vecmath.EntryID(e.Seq)
		hits = append(hits, domain.VectorHit{Entry: e, Distance: distance * distance})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return hits, tx.Commit()
}

// Drop removes the collection and all of its generations.
func (s *Store) Drop(ctx context.Context, collection string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM faqrag_collections WHERE name = $1`, collection); err != nil {
		return fmt.Errorf("dropping collection: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM faqrag_generations WHERE collection = $1`, collection); err != nil {
		return fmt.Errorf("dropping generations: %w", err)
	}
	return tx.Commit()
}

// FormatVector renders vec in pgvector text form, e.g. "[0.1,0.2]".
func FormatVector(vec []float32) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range vec {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
	sb.WriteByte(']')
	return sb.String()
}

// ParseVector parses pgvector text form.
func ParseVector(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	vec := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("parse vector component %d: %w", i, err)
		}
		vec[i] = float32(f)
	}
	return vec, nil
}
