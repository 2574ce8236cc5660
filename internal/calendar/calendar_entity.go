package calendar

import "time"

type AbsenceType string

const AbsenceVacation AbsenceType = "VACATION"

// Absence is what the external calendar receives for one leave request.
type Absence struct {
	ApplicationID int64
	PersonID      int64
	Title         string
	Start         time.Time
	End           time.Time
	HalfDay       bool
}

// AbsenceMapping links a leave request to the event created for it in the
// external calendar.
type AbsenceMapping struct {
	ID            int64       `gorm:"primaryKey;autoIncrement"`
	ApplicationID int64       `gorm:"not null;uniqueIndex:uq_absence_mapping_application_type"`
	Type          AbsenceType `gorm:"type:varchar(20);not null;uniqueIndex:uq_absence_mapping_application_type"`
	EventID       string      `gorm:"size:255;not null"`
	CreatedAt     time.Time
}

func (AbsenceMapping) TableName() string {
	return "absence_mappings"
}
