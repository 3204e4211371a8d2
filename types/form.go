package types

import (
	"fmt"
	"time"
)

type FormStatus string

const (
	FormStatusDraft     FormStatus = "draft"     // Initial state, editable and not public
	FormStatusPublished FormStatus = "published" // Accepts embed loads and submissions
	FormStatusArchived  FormStatus = "archived"  // Hidden from visitors, still editable
)

// IsValid checks if the status is a valid form status
func (s FormStatus) IsValid() bool {
	switch s {
	case FormStatusDraft, FormStatusPublished, FormStatusArchived:
		return true
	default:
		return false
	}
}

// IsValidTransition reports whether a form may move from s to next. Every
// pair of valid states is allowed; forms have no terminal state.
func (s FormStatus) IsValidTransition(next FormStatus) bool {
	return s.IsValid() && next.IsValid()
}

func (s FormStatus) String() string {
	return string(s)
}

// FormSettings holds owner preferences stored alongside the form.
type FormSettings struct {
	NotifyEmail    string `json:"notifyEmail,omitempty" yaml:"notifyEmail,omitempty" jsonschema:"format=email"`
	SuccessMessage string `json:"successMessage,omitempty" yaml:"successMessage,omitempty"`
}

type Form struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Fields      Fields       `json:"fields"`
	Status      FormStatus   `json:"status"`
	IsPublic    bool         `json:"isPublic"`
	Settings    FormSettings `json:"settings"`
	TemplateID  *string      `json:"templateId,omitempty"`
	CreatedBy   string       `json:"createdBy"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	PublishedAt *time.Time   `json:"publishedAt,omitempty"`
	ArchivedAt  *time.Time   `json:"archivedAt,omitempty"`
}

// AcceptsSubmissions reports whether visitors may submit to the form.
func (f *Form) AcceptsSubmissions() bool {
	return f.Status == FormStatusPublished
}

// Transition moves the form to next, stamping updatedAt and the timestamp of
// the state being entered. Re-entering published refreshes publishedAt.
func (f *Form) Transition(next FormStatus, now time.Time) error {
	if !f.Status.IsValidTransition(next) {
		return fmt.Errorf("invalid form status transition from %q to %q", f.Status, next)
	}
	now = now.UTC()
	f.Status = next
	f.UpdatedAt = now
	switch next {
	case FormStatusPublished:
		f.PublishedAt = &now
	case FormStatusArchived:
		f.ArchivedAt = &now
	}
	return nil
}

// Publish is Transition to published.
func (f *Form) Publish(now time.Time) error { return f.Transition(FormStatusPublished, now) }

// Archive is Transition to archived.
func (f *Form) Archive(now time.Time) error { return f.Transition(FormStatusArchived, now) }

// FormDraft is the user-supplied part of a form on create and update.
type FormDraft struct {
	Name        string       `json:"name" yaml:"name" binding:"required" jsonschema:"required,minLength=1"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []FieldSpec  `json:"fields" yaml:"fields"`
	Settings    FormSettings `json:"settings,omitempty" yaml:"settings,omitempty"`
}

// CreateFormRequest is the body of POST /api/forms/create. With a
// templateId the form is instantiated from the template and only the draft's
// name and description, when given, are used.
type CreateFormRequest struct {
	Form       *FormDraft `json:"form,omitempty"`
	TemplateID *string    `json:"templateId,omitempty"`
}

// UpdateFormStatusRequest is the body of PATCH /api/forms/:id/status.
type UpdateFormStatusRequest struct {
	Status FormStatus `json:"status" binding:"required"`
}

// PublicForm is what an authorized embed load returns.
type PublicForm struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Fields      Fields       `json:"fields"`
	Settings    FormSettings `json:"settings"`
}

// Public strips owner-only attributes, including the notification address.
func (f *Form) Public() PublicForm {
	return PublicForm{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		Fields:      f.Fields,
		Settings:    FormSettings{SuccessMessage: f.Settings.SuccessMessage},
	}
}
