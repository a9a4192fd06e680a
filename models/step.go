package models

// StepID identifies a wizard step.
type StepID string

const (
	StepAddress  StepID = "address"
	StepItems    StepID = "items"
	StepDateTime StepID = "datetime"
	StepPayment  StepID = "payment"
)

// WizardStep is a node in the fixed step sequence.
type WizardStep struct {
	ID             StepID   `json:"id"`
	Ordinal        int      `json:"ordinal"`
	Title          string   `json:"title"`
	RequiredFields []string `json:"requiredFields"`
}

// Owns reports whether field belongs to this step.
func (s WizardStep) Owns(field string) bool {
	for _, f := range s.RequiredFields {
		if f == field {
			return true
		}
	}
	return false
}

// ValidationResult is either valid or carries per-field messages.
type ValidationResult struct {
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

// Valid is the passing ValidationResult.
var Valid = ValidationResult{}

// Invalid builds a failing ValidationResult.
func Invalid(fieldErrors map[string]string) ValidationResult {
	return ValidationResult{FieldErrors: fieldErrors}
}

func (r ValidationResult) IsValid() bool {
	return len(r.FieldErrors) == 0
}
