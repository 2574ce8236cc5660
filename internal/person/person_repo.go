package person

import (
	"context"
	"errors"
	"fmt"

	personerrors "go-leave/internal/person/errors"

	"gorm.io/gorm"
)

//go:generate mockgen -source=person_repo.go -destination=mock/person_repo_mock.go -package=mock
type Repository interface {
	FindByID(ctx context.Context, id int64) (*Person, error)
	FindByIDs(ctx context.Context, ids []int64) ([]Person, error)
	FindActiveByRole(ctx context.Context, role Role) ([]Person, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(ctx context.Context, id int64) (*Person, error) {
	var p Person
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, personerrors.ErrPersonNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []int64) ([]Person, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var persons []Person
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id").
		Find(&persons).Error
	return persons, err
}

// FindActiveByRole relies on jsonb containment on the roles column.
func (r *repository) FindActiveByRole(ctx context.Context, role Role) ([]Person, error) {
	var persons []Person
	err := r.db.WithContext(ctx).
		Where("roles @> ?", fmt.Sprintf(`[%q]`, role)).
		Where("NOT (roles @> ?)", fmt.Sprintf(`[%q]`, RoleInactive)).
		Order("id").
		Find(&persons).Error
	return persons, err
}
