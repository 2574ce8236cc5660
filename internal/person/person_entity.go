package person

import (
	"strings"

	"gorm.io/datatypes"
)

type Role string

const (
	RoleUser                 Role = "USER"
	RoleOffice               Role = "OFFICE"
	RoleBoss                 Role = "BOSS"
	RoleDepartmentHead       Role = "DEPARTMENT_HEAD"
	RoleSecondStageAuthority Role = "SECOND_STAGE_AUTHORITY"
	RoleInactive             Role = "INACTIVE"
)

type Person struct {
	ID        int64                     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string                    `gorm:"size:255;not null;uniqueIndex:uq_person_username" json:"username"`
	FirstName string                    `gorm:"size:255" json:"first_name"`
	LastName  string                    `gorm:"size:255" json:"last_name"`
	Email     string                    `gorm:"size:255" json:"email"`
	Roles     datatypes.JSONSlice[Role] `gorm:"type:jsonb;not null;default:'[]'" json:"roles"`
}

func (Person) TableName() string {
	return "persons"
}

func (p Person) HasRole(role Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (p Person) IsActive() bool {
	return !p.HasRole(RoleInactive)
}

// NiceName falls back to the username when no name is set.
func (p Person) NiceName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return p.Username
	}
	return name
}
