package models

import "time"

// ShellView is what the page shell renders for the active wizard step.
type ShellView struct {
	SessionID      string            `json:"sessionId"`
	Step           *WizardStep       `json:"step,omitempty"` // nil once submitted
	Steps          []WizardStep      `json:"steps"`
	Visited        []int             `json:"visited"`
	Draft          BookingDraft      `json:"draft"`
	FieldErrors    map[string]string `json:"fieldErrors,omitempty"`
	Error          string            `json:"error,omitempty"`
	Retryable      bool              `json:"retryable,omitempty"`
	Pending        bool              `json:"pending"`
	Submitted      bool              `json:"submitted"`
	Quote          *Quote            `json:"quote,omitempty"`
	SuppressFooter bool              `json:"suppressFooter"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}
