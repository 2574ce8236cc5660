package leave

import (
	"time"

	"gorm.io/datatypes"
)

type Status string

const (
	StatusWaiting                      Status = "WAITING"
	StatusTemporaryAllowed             Status = "TEMPORARY_ALLOWED"
	StatusAllowed                      Status = "ALLOWED"
	StatusAllowedCancellationRequested Status = "ALLOWED_CANCELLATION_REQUESTED"
	StatusRejected                     Status = "REJECTED"
	StatusCancelled                    Status = "CANCELLED"
	StatusRevoked                      Status = "REVOKED"
)

func (s Status) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusCancelled, StatusRevoked:
		return true
	default:
		return false
	}
}

type DayLength string

const (
	DayLengthFull    DayLength = "FULL"
	DayLengthMorning DayLength = "MORNING"
	DayLengthNoon    DayLength = "NOON"
	DayLengthZero    DayLength = "ZERO"
)

func (d DayLength) IsValid() bool {
	switch d {
	case DayLengthFull, DayLengthMorning, DayLengthNoon, DayLengthZero:
		return true
	default:
		return false
	}
}

type HolidayReplacement struct {
	PersonID int64   `json:"person_id"`
	Note     *string `json:"note,omitempty"`
}

// Application is a leave request. Transitions never mutate it in place;
// they return a modified copy.
type Application struct {
	ID                  int64                                   `gorm:"primaryKey;autoIncrement"`
	PersonID            int64                                   `gorm:"not null;index:idx_applications_person"`
	ApplierID           int64                                   `gorm:"not null"`
	StartDate           time.Time                               `gorm:"type:date;not null"`
	EndDate             time.Time                               `gorm:"type:date;not null"`
	DayLength           DayLength                               `gorm:"type:varchar(10);not null;default:'FULL'"`
	Status              Status                                  `gorm:"type:varchar(40);not null;index:idx_applications_status"`
	TwoStageApproval    bool                                    `gorm:"not null;default:false"`
	BossID              *int64                                  `gorm:"column:boss_id"`
	CancellerID         *int64                                  `gorm:"column:canceller_id"`
	ApplicationDate     time.Time                               `gorm:"type:date;not null"`
	EditedDate          *time.Time                              `gorm:"type:date"`
	CancelDate          *time.Time                              `gorm:"type:date"`
	RemindDate          *time.Time                              `gorm:"type:date"`
	HolidayReplacements datatypes.JSONSlice[HolidayReplacement] `gorm:"type:jsonb;not null;default:'[]'"`
	Version             int                                     `gorm:"not null;default:0"`
}

func (Application) TableName() string {
	return "applications"
}

func (a Application) HasStatus(statuses ...Status) bool {
	for _, s := range statuses {
		if a.Status == s {
			return true
		}
	}
	return false
}

// Years returns every calendar year touched by the period.
func (a Application) Years() []int {
	years := []int{a.StartDate.Year()}
	for y := a.StartDate.Year() + 1; y <= a.EndDate.Year(); y++ {
		years = append(years, y)
	}
	return years
}

func (a Application) ReplacementIDs() []int64 {
	ids := make([]int64, 0, len(a.HolidayReplacements))
	for _, r := range a.HolidayReplacements {
		ids = append(ids, r.PersonID)
	}
	return ids
}

func (a Application) periodDiffers(other Application) bool {
	return !a.StartDate.Equal(other.StartDate) ||
		!a.EndDate.Equal(other.EndDate) ||
		a.DayLength != other.DayLength
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(t time.Time) *time.Time {
	d := dateOf(t)
	return &d
}
