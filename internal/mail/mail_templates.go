package mail

import (
	"bytes"
	"fmt"
	"text/template"

	"go-leave/internal/events"
)

type mailTemplate struct {
	subject string
	body    string
}

const footer = `
{{with index .Data "url"}}Open the application: {{.}}{{end}}
`

const period = `{{index .Data "start_date"}} - {{index .Data "end_date"}} ({{index .Data "day_length"}})`

const withComment = `{{with index .Data "comment"}}
Comment: {{.}}{{end}}`

var templates = map[string]mailTemplate{
	"confirmation": {
		subject: "Your leave application was received",
		body:    `Hello {{.RecipientName}}, your leave application for ` + period + ` was submitted and is waiting for approval.` + withComment,
	},
	"applied_by_management": {
		subject: "A leave application was submitted for you",
		body:    `Hello {{.RecipientName}}, {{index .Data "actor_name"}} submitted a leave application for you: ` + period + `.` + withComment,
	},
	"new_application": {
		subject: "New leave application",
		body:    `Hello {{.RecipientName}}, {{index .Data "person_name"}} applied for leave: ` + period + `.` + withComment,
	},
	"holiday_replacement_apply": {
		subject: "You were named as holiday replacement",
		body:    `Hello {{.RecipientName}}, {{index .Data "person_name"}} named you as holiday replacement for ` + period + `.{{with index .Data "note"}} Note: {{.}}{{end}}`,
	},
	"temporary_allowed": {
		subject: "Leave application needs second stage approval",
		body:    `Hello {{.RecipientName}}, the leave application of {{index .Data "person_name"}} for ` + period + ` was temporarily allowed by {{index .Data "actor_name"}}.` + withComment,
	},
	"allowed": {
		subject: "Leave application allowed",
		body:    `Hello {{.RecipientName}}, the leave application of {{index .Data "person_name"}} for ` + period + ` was allowed by {{index .Data "actor_name"}}.` + withComment,
	},
	"holiday_replacement_allow": {
		subject: "Holiday replacement confirmed",
		body:    `Hello {{.RecipientName}}, the leave of {{index .Data "person_name"}} for ` + period + ` was allowed. You are the holiday replacement.`,
	},
	"allowed_directly_confirmation": {
		subject: "Leave entered",
		body:    `Hello {{.RecipientName}}, your leave for ` + period + ` was entered as allowed.` + withComment,
	},
	"allowed_directly_by_management": {
		subject: "Leave entered for you",
		body:    `Hello {{.RecipientName}}, {{index .Data "actor_name"}} entered an allowed leave for you: ` + period + `.` + withComment,
	},
	"new_directly_allowed_application": {
		subject: "Leave entered without approval",
		body:    `Hello {{.RecipientName}}, {{index .Data "actor_name"}} entered an allowed leave for {{index .Data "person_name"}}: ` + period + `.` + withComment,
	},
	"holiday_replacement_directly_allowed": {
		subject: "You are holiday replacement",
		body:    `Hello {{.RecipientName}}, you are the holiday replacement of {{index .Data "person_name"}} for ` + period + `.`,
	},
	"rejected": {
		subject: "Leave application rejected",
		body:    `Hello {{.RecipientName}}, the leave application of {{index .Data "person_name"}} for ` + period + ` was rejected by {{index .Data "actor_name"}}.` + withComment,
	},
	"holiday_replacement_cancellation": {
		subject: "Holiday replacement no longer needed",
		body:    `Hello {{.RecipientName}}, you are no longer holiday replacement of {{index .Data "person_name"}} for ` + period + `.`,
	},
	"cancelled_by_management": {
		subject: "Leave cancelled",
		body:    `Hello {{.RecipientName}}, the leave of {{index .Data "person_name"}} for ` + period + ` was cancelled by {{index .Data "actor_name"}}.` + withComment,
	},
	"cancellation_request": {
		subject: "Leave cancellation requested",
		body:    `Hello {{.RecipientName}}, {{index .Data "actor_name"}} requested the cancellation of the allowed leave of {{index .Data "person_name"}} for ` + period + `.` + withComment,
	},
	"revoked": {
		subject: "Leave application revoked",
		body:    `Hello {{.RecipientName}}, the leave application of {{index .Data "person_name"}} for ` + period + ` was revoked by {{index .Data "actor_name"}}.` + withComment,
	},
	"cancelled_directly_by_applicant": {
		subject: "Leave cancelled",
		body:    `Hello {{.RecipientName}}, your leave for ` + period + ` was cancelled.` + withComment,
	},
	"cancelled_directly_by_management": {
		subject: "Leave cancelled for you",
		body:    `Hello {{.RecipientName}}, {{index .Data "actor_name"}} cancelled your leave for ` + period + `.` + withComment,
	},
	"cancelled_directly_information": {
		subject: "Leave cancelled without approval",
		body:    `Hello {{.RecipientName}}, {{index .Data "actor_name"}} cancelled the leave of {{index .Data "person_name"}} for ` + period + `.` + withComment,
	},
	"declined_cancellation_request": {
		subject: "Leave cancellation declined",
		body:    `Hello {{.RecipientName}}, the cancellation request for the leave of {{index .Data "person_name"}} for ` + period + ` was declined by {{index .Data "actor_name"}}. The leave stays allowed.` + withComment,
	},
	"sick_note_converted": {
		subject: "Sick note converted to leave",
		body:    `Hello {{.RecipientName}}, a sick note for ` + period + ` was converted into leave by {{index .Data "actor_name"}}.` + withComment,
	},
	"edited": {
		subject: "Leave application edited",
		body:    `Hello {{.RecipientName}}, the leave application of {{index .Data "person_name"}} was edited by {{index .Data "actor_name"}} and now covers ` + period + `.` + withComment,
	},
	"holiday_replacement_edit": {
		subject: "Holiday replacement period changed",
		body:    `Hello {{.RecipientName}}, the leave of {{index .Data "person_name"}} you replace now covers ` + period + `.`,
	},
	"remind": {
		subject: "Reminder: leave application waiting",
		body:    `Hello {{.RecipientName}}, the leave application of {{index .Data "person_name"}} for ` + period + ` is still waiting for your decision.`,
	},
	"refer": {
		subject: "Leave application referred to you",
		body:    `Hello {{.RecipientName}}, {{index .Data "actor_name"}} asks you to look at the leave application of {{index .Data "person_name"}} for ` + period + `.`,
	},
	"technical_error": {
		subject: "Leave workflow error",
		body:    `A side effect of leave application {{.ApplicationID}} failed: {{index .Data "error"}}`,
	},
}

var compiled = func() map[string]*template.Template {
	out := make(map[string]*template.Template, len(templates))
	for kind, t := range templates {
		out[kind] = template.Must(template.New(kind).Option("missingkey=zero").Parse(t.body + footer))
	}
	return out
}()

// Render returns subject and plain text body for the event kind.
func Render(event events.LeaveMailRequestedEvent) (string, string, error) {
	t, ok := templates[event.Kind]
	if !ok {
		return "", "", fmt.Errorf("%w: unknown mail kind %q", ErrPermanent, event.Kind)
	}
	var buf bytes.Buffer
	if err := compiled[event.Kind].Execute(&buf, event); err != nil {
		return "", "", fmt.Errorf("%w: render %s: %v", ErrPermanent, event.Kind, err)
	}
	return t.subject, buf.String(), nil
}

func Kinds() []string {
	kinds := make([]string, 0, len(templates))
	for k := range templates {
		kinds = append(kinds, k)
	}
	return kinds
}
