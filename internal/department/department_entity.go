package department

import (
	"slices"

	"go-leave/internal/person"
)

type Department struct {
	ID                     int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name                   string          `gorm:"size:255;not null" json:"name"`
	TwoStageApproval       bool            `gorm:"not null;default:false" json:"two_stage_approval"`
	Members                []person.Person `gorm:"many2many:department_members;" json:"members"`
	DepartmentHeads        []person.Person `gorm:"many2many:department_heads;" json:"department_heads"`
	SecondStageAuthorities []person.Person `gorm:"many2many:department_second_stage_authorities;" json:"second_stage_authorities"`
}

func (Department) TableName() string {
	return "departments"
}

func (d Department) HasMember(personID int64) bool {
	return containsPerson(d.Members, personID)
}

func (d Department) HasDepartmentHead(personID int64) bool {
	return containsPerson(d.DepartmentHeads, personID)
}

func (d Department) HasSecondStageAuthority(personID int64) bool {
	return containsPerson(d.SecondStageAuthorities, personID)
}

func containsPerson(persons []person.Person, id int64) bool {
	return slices.ContainsFunc(persons, func(p person.Person) bool {
		return p.ID == id
	})
}
