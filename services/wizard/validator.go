package wizard

import (
	"strings"
	"time"

	"quotewizard/models"
)

// Validation messages shown inline on the step.
const (
	MsgOriginRequired      = "Enter the address you are moving from"
	MsgDestinationRequired = "Enter the address you are moving to"
	MsgAddressSourceBad    = "Pick a suggested address or enter it manually"
	MsgItemsRequired       = "Select at least one item or move size"
	MsgDateRequired        = "Choose a move date"
	MsgDateInvalid         = "Move date must be a valid date (YYYY-MM-DD)"
	MsgDateInPast          = "Move date cannot be in the past"
	MsgTimeOfDayRequired   = "Choose a time of day"
	MsgTimeOfDayInvalid    = "Time of day must be Morning or Afternoon"
	MsgPaymentNotInitiated = "Payment has not been initiated yet"
	MsgUnknownStep         = "Unknown step"
)

// Validator checks a step's slice of the draft. The clock is read once per call,
// so results only depend on the draft and the calendar day.
type Validator struct {
	now func() time.Time
	loc *time.Location
}

// NewValidator builds a validator that judges dates in loc. A nil clock means time.Now.
func NewValidator(now func() time.Time, loc *time.Location) *Validator {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Validator{now: now, loc: loc}
}

// Today returns midnight of the current business day.
func (v *Validator) Today() time.Time {
	t := v.now().In(v.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, v.loc)
}

func (v *Validator) ValidateStep(id models.StepID, draft models.BookingDraft) models.ValidationResult {
	return ValidateStep(id, draft, v.Today())
}

// ValidateStep validates the fields owned by step id against draft, treating today
// as the earliest acceptable move date.
func ValidateStep(id models.StepID, draft models.BookingDraft, today time.Time) models.ValidationResult {
	errs := map[string]string{}

	switch id {
	case models.StepAddress:
		if msg := checkAddress(draft.MoveOrigin, MsgOriginRequired); msg != "" {
			errs[models.FieldMoveOrigin] = msg
		}
		if msg := checkAddress(draft.MoveDestination, MsgDestinationRequired); msg != "" {
			errs[models.FieldMoveDestination] = msg
		}

	case models.StepItems:
		if !hasSelection(draft.ItemsOrSize) {
			errs[models.FieldItemsOrSize] = MsgItemsRequired
		}

	case models.StepDateTime:
		if msg := checkMoveDate(draft.MoveDate, today); msg != "" {
			errs[models.FieldMoveDate] = msg
		}
		if msg := checkTimeOfDay(draft.TimeOfDay); msg != "" {
			errs[models.FieldTimeOfDay] = msg
		}

	case models.StepPayment:
		if draft.PaymentToken == nil || strings.TrimSpace(*draft.PaymentToken) == "" {
			errs[models.FieldPaymentToken] = MsgPaymentNotInitiated
		}

	default:
		errs["step"] = MsgUnknownStep
	}

	if len(errs) == 0 {
		return models.Valid
	}
	return models.Invalid(errs)
}

func checkAddress(addr *models.Address, required string) string {
	switch {
	case addr == nil || addr.IsBlank():
		return required
	case !addr.HasKnownSource():
		return MsgAddressSourceBad
	}
	return ""
}

func hasSelection(items []string) bool {
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			return true
		}
	}
	return false
}

func checkMoveDate(raw *string, today time.Time) string {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return MsgDateRequired
	}
	date, err := time.ParseInLocation(models.MoveDateLayout, strings.TrimSpace(*raw), today.Location())
	if err != nil {
		return MsgDateInvalid
	}
	if date.Before(today) {
		return MsgDateInPast
	}
	return ""
}

func checkTimeOfDay(raw *string) string {
	if raw == nil || *raw == "" {
		return MsgTimeOfDayRequired
	}
	for _, allowed := range models.TimesOfDay {
		if *raw == allowed {
			return ""
		}
	}
	return MsgTimeOfDayInvalid
}
