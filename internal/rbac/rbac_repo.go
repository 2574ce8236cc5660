package rbac

import (
	"errors"

	"go-leave/internal/person"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	GetPersonRoles(personID int64) ([]person.Role, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type personRolesRow struct {
	Roles datatypes.JSONSlice[person.Role]
}

// GetPersonRoles returns nil for unknown persons.
func (r *repository) GetPersonRoles(personID int64) ([]person.Role, error) {
	var row personRolesRow
	err := r.db.
		Table("persons").
		Select("roles").
		Where("id = ?", personID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return row.Roles, nil
}
