package pgvector

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/faqrag/internal/core/domain"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return New(db), mock
}

var collectionColumns = []string{"id", "model_id", "dimensions", "created_at", "count"}

func TestFormatParseVector(t *testing.T) {
	assert.Equal(t, "[0.5,-1,3]", FormatVector([]float32{0.5, -1, 3}))
	assert.Equal(t, "[]", FormatVector(nil))

	vec, err := ParseVector("[0.5, -1,3]")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -1, 3}, vec)

	_, err = ParseVector("[a]")
	assert.Error(t, err)
}

func TestMigrate(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("CREATE EXTENSION IF NOT EXISTS vector").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS faqrag_generations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS faqrag_collections").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS faqrag_entries").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Migrate(context.Background()))
}

func TestOpen_RequiresDSN(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestCollection_NotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery("FROM faqrag_collections c JOIN faqrag_generations g").
		WithArgs("medical_faqs").
		WillReturnError(sql.ErrNoRows)

	_, err := s.Collection(context.Background(), "medical_faqs")
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)
}

func TestQuery_SquaresDistance(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery("FROM faqrag_collections c JOIN faqrag_generations g").
		WithArgs("faqs").
		WillReturnRows(sqlmock.NewRows(collectionColumns).AddRow("gen_1", "m", 2, time.Now(), 2))
	mock.ExpectQuery("FROM faqrag_entries").
		WithArgs("gen_1", "[1,0]", 2).
		WillReturnRows(sqlmock.NewRows([]string{"seq", "source_id", "text", "embedding", "distance"}).
			AddRow(0, "FAQ-1", "flu text", "[1,0]", 0.0).
			AddRow(1, "FAQ-2", "cold text", "[0,1]", 1.5))
	mock.ExpectCommit()

	hits, err := s.Query(context.Background(), "faqs", []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "FAQ-1", hits[0].Entry.Document.SourceID)
	assert.Equal(t, "doc_1", hits[1].Entry.ID)
	assert.InDelta(t, 2.25, hits[1].Distance, 1e-9)
	assert.Equal(t, []float32{0, 1}, hits[1].Entry.Embedding)
}

func TestQuery_DimensionMismatch(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery("FROM faqrag_collections c JOIN faqrag_generations g").
		WillReturnRows(sqlmock.NewRows(collectionColumns).AddRow("gen_1", "m", 3, time.Now(), 1))
	mock.ExpectRollback()

	_, err := s.Query(context.Background(), "faqs", []float32{1, 0}, 2)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestInsert(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT dimensions, next_seq FROM faqrag_generations").
		WithArgs("gen_1").
		WillReturnRows(sqlmock.NewRows([]string{"dimensions", "next_seq"}).AddRow(2, 5))
	mock.ExpectExec("INSERT INTO faqrag_entries").
		WithArgs("gen_1", int64(5), "FAQ-1", "text", "[1,0]").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE faqrag_generations SET next_seq").
		WithArgs(int64(6), "gen_1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.Insert(context.Background(), "gen_1", []domain.IndexedEntry{{
		Embedding: []float32{1, 0},
		Document:  domain.Document{Text: "text", SourceID: "FAQ-1"},
	}})
	require.NoError(t, err)
}

func TestInsert_UnknownGeneration(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT dimensions, next_seq FROM faqrag_generations").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := s.Insert(context.Background(), "gen_x", []domain.IndexedEntry{{Embedding: []float32{1}}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPublish_ReplacesPrevious(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT collection FROM faqrag_generations").
		WithArgs("gen_new").
		WillReturnRows(sqlmock.NewRows([]string{"collection"}).AddRow("faqs"))
	mock.ExpectQuery("SELECT generation FROM faqrag_collections").
		WithArgs("faqs").
		WillReturnRows(sqlmock.NewRows([]string{"generation"}).AddRow("gen_old"))
	mock.ExpectExec("INSERT INTO faqrag_collections").
		WithArgs("faqs", "gen_new").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM faqrag_generations WHERE id").
		WithArgs("gen_old").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.Publish(context.Background(), "faqs", "gen_new"))
}

func TestDrop(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM faqrag_collections").WithArgs("faqs").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM faqrag_generations WHERE collection").WithArgs("faqs").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, s.Drop(context.Background(), "faqs"))
}

func TestStage(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO faqrag_generations").
		WithArgs(sqlmock.AnyArg(), "faqs", "m", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))

	gen, err := s.Stage(context.Background(), "faqs", "m", 2)
	require.NoError(t, err)
	assert.Contains(t, gen, "gen_")
}
