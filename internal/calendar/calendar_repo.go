package calendar

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

//go:generate mockgen -source=calendar_repo.go -destination=mock/calendar_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, m *AbsenceMapping) error
	FindByApplication(ctx context.Context, applicationID int64, absenceType AbsenceType) (*AbsenceMapping, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, m *AbsenceMapping) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// FindByApplication returns nil without error when no mapping exists.
func (r *repository) FindByApplication(ctx context.Context, applicationID int64, absenceType AbsenceType) (*AbsenceMapping, error) {
	var m AbsenceMapping
	err := r.db.WithContext(ctx).
		Where("application_id = ? AND type = ?", applicationID, absenceType).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&AbsenceMapping{}, id).Error
}
