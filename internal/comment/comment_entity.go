package comment

import (
	"encoding/json"
	"time"
)

type Action string

const (
	ActionApplied                 Action = "APPLIED"
	ActionTemporaryAllowed        Action = "TEMPORARY_ALLOWED"
	ActionAllowed                 Action = "ALLOWED"
	ActionAllowedDirectly         Action = "ALLOWED_DIRECTLY"
	ActionRejected                Action = "REJECTED"
	ActionCancelled               Action = "CANCELLED"
	ActionCancelRequested         Action = "CANCEL_REQUESTED"
	ActionRevoked                 Action = "REVOKED"
	ActionCancelledDirectly       Action = "CANCELLED_DIRECTLY"
	ActionCancelRequestedDeclined Action = "CANCEL_REQUESTED_DECLINED"
	ActionConverted               Action = "CONVERTED"
	ActionEdited                  Action = "EDITED"
	ActionReferred                Action = "REFERRED"
)

// Text is the optional free text of a comment. The zero value means absent.
type Text struct {
	Present bool
	Value   string
}

func SomeText(v string) Text {
	return Text{Present: true, Value: v}
}

func NoText() Text {
	return Text{}
}

// TextFrom treats blank input as absent.
func TextFrom(v *string) Text {
	if v == nil || *v == "" {
		return NoText()
	}
	return SomeText(*v)
}

func (t Text) OrElse(fallback string) string {
	if !t.Present {
		return fallback
	}
	return t.Value
}

func (t Text) Ptr() *string {
	if !t.Present {
		return nil
	}
	v := t.Value
	return &v
}

func (t Text) MarshalJSON() ([]byte, error) {
	if !t.Present {
		return []byte("null"), nil
	}
	return json.Marshal(t.Value)
}

func (t *Text) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = NoText()
		return nil
	}
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*t = SomeText(v)
	return nil
}

type AuditComment struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	ApplicationID int64     `gorm:"not null;index:idx_application_comments_application"`
	Action        Action    `gorm:"type:varchar(40);not null"`
	Text          *string   `gorm:"type:text"`
	AuthorID      *int64    `gorm:"index:idx_application_comments_author"`
	CreatedAt     time.Time `gorm:"not null"`
}

func (AuditComment) TableName() string {
	return "application_comments"
}

func (c AuditComment) Comment() Text {
	return TextFrom(c.Text)
}

