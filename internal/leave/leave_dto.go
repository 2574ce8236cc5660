package leave

type HolidayReplacementRequest struct {
	PersonID int64   `json:"person_id" binding:"required,gt=0"`
	Note     *string `json:"note"`
}

type SubmitLeaveRequest struct {
	PersonID            int64                       `json:"person_id" binding:"required,gt=0"`
	StartDate           string                      `json:"start_date" binding:"required"`
	EndDate             string                      `json:"end_date" binding:"required"`
	DayLength           string                      `json:"day_length" binding:"omitempty,oneof=FULL MORNING NOON ZERO"`
	Comment             *string                     `json:"comment"`
	HolidayReplacements []HolidayReplacementRequest `json:"holiday_replacements" binding:"omitempty,dive"`
}

type EditLeaveRequest struct {
	PersonID            int64                       `json:"person_id" binding:"required,gt=0"`
	StartDate           string                      `json:"start_date" binding:"required"`
	EndDate             string                      `json:"end_date" binding:"required"`
	DayLength           string                      `json:"day_length" binding:"omitempty,oneof=FULL MORNING NOON ZERO"`
	Comment             *string                     `json:"comment"`
	HolidayReplacements []HolidayReplacementRequest `json:"holiday_replacements" binding:"omitempty,dive"`
}

type DecisionRequest struct {
	Comment *string `json:"comment"`
}

type ReferLeaveRequest struct {
	PersonID int64 `json:"person_id" binding:"required,gt=0"`
}

type HolidayReplacementResponse struct {
	PersonID int64   `json:"person_id"`
	Note     *string `json:"note,omitempty"`
}

type LeaveResponse struct {
	ID                  int64                        `json:"id"`
	PersonID            int64                        `json:"person_id"`
	ApplierID           int64                        `json:"applier_id"`
	StartDate           string                       `json:"start_date"`
	EndDate             string                       `json:"end_date"`
	DayLength           string                       `json:"day_length"`
	Status              string                       `json:"status"`
	TwoStageApproval    bool                         `json:"two_stage_approval"`
	BossID              *int64                       `json:"boss_id,omitempty"`
	CancellerID         *int64                       `json:"canceller_id,omitempty"`
	ApplicationDate     string                       `json:"application_date"`
	EditedDate          *string                      `json:"edited_date,omitempty"`
	CancelDate          *string                      `json:"cancel_date,omitempty"`
	RemindDate          *string                      `json:"remind_date,omitempty"`
	HolidayReplacements []HolidayReplacementResponse `json:"holiday_replacements"`
	Version             int                          `json:"version"`
}

type CommentResponse struct {
	ID        int64   `json:"id"`
	Action    string  `json:"action"`
	Text      *string `json:"text,omitempty"`
	AuthorID  *int64  `json:"author_id,omitempty"`
	CreatedAt string  `json:"created_at"`
}
