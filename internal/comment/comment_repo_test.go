package comment_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-leave/internal/comment"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type repoDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	repo    comment.Repository
}

func setupRepoTest(t *testing.T) *repoDeps {
	t.Helper()

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	assert.NoError(t, err)

	return &repoDeps{db: db, sqlMock: mock, repo: comment.NewRepository(gormDB)}
}

func TestCommentRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("inside the caller transaction", func(t *testing.T) {
		deps := setupRepoTest(t)
		author := int64(4)

		deps.sqlMock.ExpectBegin()
		deps.sqlMock.ExpectQuery(`INSERT INTO "application_comments"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
		deps.sqlMock.ExpectCommit()

		tx, err := deps.db.BeginTx(ctx, nil)
		assert.NoError(t, err)

		c := &comment.AuditComment{
			ApplicationID: 3,
			Action:        comment.ActionApplied,
			AuthorID:      &author,
			CreatedAt:     time.Now(),
		}
		err = deps.repo.WithTx(tx).Create(ctx, c)
		assert.NoError(t, err)
		assert.NoError(t, tx.Commit())

		assert.Equal(t, int64(11), c.ID)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestCommentRepository_DeleteByApplicationPerson(t *testing.T) {
	deps := setupRepoTest(t)

	deps.sqlMock.ExpectBegin()
	deps.sqlMock.ExpectExec(`DELETE FROM "application_comments" WHERE application_id IN \(SELECT .* FROM "applications" WHERE person_id = \$1\)`).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	deps.sqlMock.ExpectCommit()

	err := deps.repo.DeleteByApplicationPerson(context.Background(), 9)

	assert.NoError(t, err)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestCommentRepository_ReattributeAuthor(t *testing.T) {
	deps := setupRepoTest(t)

	deps.sqlMock.ExpectBegin()
	deps.sqlMock.ExpectExec(`UPDATE "application_comments" SET "author_id"=\$1 WHERE author_id = \$2`).
		WithArgs(nil, int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	deps.sqlMock.ExpectCommit()

	err := deps.repo.ReattributeAuthor(context.Background(), 9, nil)

	assert.NoError(t, err)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestText(t *testing.T) {
	assert.False(t, comment.NoText().Present)
	assert.Equal(t, "fallback", comment.NoText().OrElse("fallback"))
	assert.Nil(t, comment.TextFrom(nil).Ptr())

	blank := ""
	assert.False(t, comment.TextFrom(&blank).Present)

	v := "see you"
	got := comment.TextFrom(&v)
	assert.True(t, got.Present)
	assert.Equal(t, "see you", *got.Ptr())
}
