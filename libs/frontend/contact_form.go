package frontend

import (
	"errors"
	"fmt"
	"strings"
)

// FormStatus is the contact form view state.
type FormStatus int

const (
	StatusIdle FormStatus = iota
	StatusSending
	StatusSuccess
	StatusError
)

func (s FormStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSending:
		return "sending"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("FormStatus(%d)", int(s))
	}
}

const (
	MissingFieldsMessage = "All fields are required"
	SendingMessage       = "Sending..."
)

var (
	ErrMissingFields     = errors.New(MissingFieldsMessage)
	ErrUnknownField      = errors.New("unknown contact form field")
	ErrInvalidTransition = errors.New("invalid contact form transition")
)

// ContactSubmission is the payload posted to the contact API.
type ContactSubmission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ContactForm holds the form fields and the status shown beneath them.
//
//	idle|success|error --Submit--> sending --Receive--> success|error
//	success|error --Edit--> idle
//
// Edits while sending change the field but not the status. Submitting while
// sending is allowed; nothing locks the form.
type ContactForm struct {
	Fields        ContactSubmission
	Status        FormStatus
	StatusMessage string
}

// Edit sets one field by its input name.
func (f *ContactForm) Edit(field, value string) error {
	switch field {
	case "name":
		f.Fields.Name = value
	case "email":
		f.Fields.Email = value
	case "message":
		f.Fields.Message = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	if f.Status == StatusSuccess || f.Status == StatusError {
		f.Status = StatusIdle
		f.StatusMessage = ""
	}
	return nil
}

// Submit validates the fields and moves the form to sending. The returned
// submission is what must be posted. Incomplete fields put the form in error
// without producing a submission.
func (f *ContactForm) Submit() (ContactSubmission, error) {
	if strings.TrimSpace(f.Fields.Name) == "" ||
		strings.TrimSpace(f.Fields.Email) == "" ||
		strings.TrimSpace(f.Fields.Message) == "" {
		f.Status = StatusError
		f.StatusMessage = MissingFieldsMessage
		return ContactSubmission{}, ErrMissingFields
	}

	f.Status = StatusSending
	f.StatusMessage = SendingMessage
	return f.Fields, nil
}

// Receive applies the API outcome. Fields are cleared only on success.
func (f *ContactForm) Receive(result SubmissionResult) error {
	if f.Status != StatusSending {
		return fmt.Errorf("%w: receive in %s", ErrInvalidTransition, f.Status)
	}

	f.StatusMessage = result.Message
	if result.Outcome == OutcomeSuccess {
		f.Status = StatusSuccess
		f.Fields = ContactSubmission{}
		return nil
	}
	f.Status = StatusError
	return nil
}

// StatusClass is the CSS modifier for the status banner.
func (f ContactForm) StatusClass() string {
	switch f.Status {
	case StatusSending:
		return "info"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return ""
	}
}
