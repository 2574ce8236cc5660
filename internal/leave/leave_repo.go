package leave

import (
	"context"
	"database/sql"

	leaveerrors "go-leave/internal/leave/errors"

	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, app *Application) error
	FindByID(ctx context.Context, id int64) (*Application, error)
	FindAllByPerson(ctx context.Context, personID int64, limit, offset int) ([]Application, int64, error)
	Update(ctx context.Context, app *Application) error
	DeleteAllByPerson(ctx context.Context, personID int64) error
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

func (r *repository) Create(ctx context.Context, app *Application) error {
	return mapRepositoryError(r.conn(ctx).Create(app).Error)
}

func (r *repository) FindByID(ctx context.Context, id int64) (*Application, error) {
	var app Application
	if err := r.conn(ctx).First(&app, "id = ?", id).Error; err != nil {
		return nil, mapRepositoryError(err)
	}
	return &app, nil
}

// FindAllByPerson returns one page of the person's applications, newest
// period first, together with the total count.
func (r *repository) FindAllByPerson(ctx context.Context, personID int64, limit, offset int) ([]Application, int64, error) {
	var total int64
	if err := r.conn(ctx).Model(&Application{}).Where("person_id = ?", personID).Count(&total).Error; err != nil {
		return nil, 0, mapRepositoryError(err)
	}

	var apps []Application
	err := r.conn(ctx).
		Where("person_id = ?", personID).
		Order("start_date DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&apps).Error
	if err != nil {
		return nil, 0, mapRepositoryError(err)
	}
	return apps, total, nil
}

// Update writes the mutable columns of app when the stored version still
// matches and bumps the version on success.
func (r *repository) Update(ctx context.Context, app *Application) error {
	res := r.conn(ctx).
		Model(&Application{}).
		Where("id = ? AND version = ?", app.ID, app.Version).
		Updates(map[string]interface{}{
			"applier_id":           app.ApplierID,
			"start_date":           app.StartDate,
			"end_date":             app.EndDate,
			"day_length":           app.DayLength,
			"status":               app.Status,
			"boss_id":              app.BossID,
			"canceller_id":         app.CancellerID,
			"edited_date":          app.EditedDate,
			"cancel_date":          app.CancelDate,
			"remind_date":          app.RemindDate,
			"holiday_replacements": app.HolidayReplacements,
			"version":              app.Version + 1,
		})
	if res.Error != nil {
		return mapRepositoryError(res.Error)
	}
	if res.RowsAffected == 0 {
		return leaveerrors.ErrConcurrentModification
	}
	app.Version++
	return nil
}

func (r *repository) DeleteAllByPerson(ctx context.Context, personID int64) error {
	return r.conn(ctx).
		Where("person_id = ?", personID).
		Delete(&Application{}).Error
}
