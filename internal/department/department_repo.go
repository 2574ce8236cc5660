package department

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=department_repo.go -destination=mock/department_repo_mock.go -package=mock
type Repository interface {
	FindAllByMember(ctx context.Context, personID int64) ([]Department, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindAllByMember(ctx context.Context, personID int64) ([]Department, error) {
	var depts []Department
	err := r.db.WithContext(ctx).
		Joins("JOIN department_members ON department_members.department_id = departments.id").
		Where("department_members.person_id = ?", personID).
		Preload("Members").
		Preload("DepartmentHeads").
		Preload("SecondStageAuthorities").
		Order("departments.id").
		Find(&depts).Error
	return depts, err
}
