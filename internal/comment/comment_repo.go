package comment

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=comment_repo.go -destination=mock/comment_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, c *AuditComment) error
	FindByApplication(ctx context.Context, applicationID int64) ([]AuditComment, error)
	DeleteByApplicationPerson(ctx context.Context, personID int64) error
	ReattributeAuthor(ctx context.Context, personID int64, replacementID *int64) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) Create(ctx context.Context, c *AuditComment) error {
	return r.conn(ctx).Create(c).Error
}

func (r *repository) FindByApplication(ctx context.Context, applicationID int64) ([]AuditComment, error) {
	var comments []AuditComment
	err := r.conn(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	return comments, err
}

// DeleteByApplicationPerson removes every comment attached to an application
// owned by personID, regardless of who wrote it.
func (r *repository) DeleteByApplicationPerson(ctx context.Context, personID int64) error {
	db := r.conn(ctx)
	owned := db.Session(&gorm.Session{NewDB: true}).
		Table("applications").
		Select("id").
		Where("person_id = ?", personID)

	return db.
		Where("application_id IN (?)", owned).
		Delete(&AuditComment{}).Error
}

func (r *repository) ReattributeAuthor(ctx context.Context, personID int64, replacementID *int64) error {
	return r.conn(ctx).
		Model(&AuditComment{}).
		Where("author_id = ?", personID).
		Update("author_id", replacementID).Error
}
