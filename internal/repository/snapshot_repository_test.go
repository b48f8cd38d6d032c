package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-course-api/internal/models"
)

func newSnapshotRepoMock(t *testing.T) (*SnapshotRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSnapshotRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestSnapshotRepositoryCreateAndGet(t *testing.T) {
	repo, mock := newSnapshotRepoMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO term_snapshots")).
		WithArgs(sqlmock.AnyArg(), "SU2019", 2, "<term>...</term>", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	snapshot := &models.TermSnapshot{TermCode: "SU2019", CourseCount: 2, Document: "<term>...</term>"}
	require.NoError(t, repo.Create(context.Background(), snapshot))
	assert.NotEmpty(t, snapshot.ID)
	assert.False(t, snapshot.CreatedAt.IsZero())

	rows := sqlmock.NewRows([]string{"id", "term_code", "course_count", "document", "created_at"}).
		AddRow(snapshot.ID, "SU2019", 2, "<term>...</term>", snapshot.CreatedAt)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, term_code, course_count, document, created_at FROM term_snapshots WHERE id = $1")).
		WithArgs(snapshot.ID).
		WillReturnRows(rows)

	fetched, err := repo.GetByID(context.Background(), snapshot.ID)
	require.NoError(t, err)
	assert.Equal(t, "<term>...</term>", fetched.Document)
	assert.Equal(t, 2, fetched.CourseCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepositoryGetMissing(t *testing.T) {
	repo, mock := newSnapshotRepoMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM term_snapshots WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestSnapshotRepositoryListByTerm(t *testing.T) {
	repo, mock := newSnapshotRepoMock(t)
	rows := sqlmock.NewRows([]string{"id", "term_code", "course_count", "created_at"}).
		AddRow("snap-2", "SU2019", 3, time.Now()).
		AddRow("snap-1", "SU2019", 2, time.Now().Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, term_code, course_count, created_at FROM term_snapshots WHERE term_code = $1 ORDER BY created_at DESC LIMIT $2")).
		WithArgs("SU2019", 50).
		WillReturnRows(rows)

	snapshots, err := repo.List(context.Background(), "SU2019", 0)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, "snap-2", snapshots[0].ID)
	assert.Empty(t, snapshots[0].Document)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepositoryListAll(t *testing.T) {
	repo, mock := newSnapshotRepoMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM term_snapshots ORDER BY created_at DESC LIMIT $1")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "term_code", "course_count", "created_at"}))

	snapshots, err := repo.List(context.Background(), "", 5)
	require.NoError(t, err)
	assert.Empty(t, snapshots)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotRepositoryEnsureSchema(t *testing.T) {
	repo, mock := newSnapshotRepoMock(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS term_snapshots")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
