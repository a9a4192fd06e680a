package wizard

import (
	"reflect"

	"quotewizard/models"
)

// DraftStore accumulates the booking draft across steps. It performs no validation.
type DraftStore struct {
	draft models.BookingDraft
}

func NewDraftStore() *DraftStore {
	return &DraftStore{}
}

// Get returns a copy of the current draft.
func (s *DraftStore) Get() models.BookingDraft {
	return s.draft.Clone()
}

// Update merges the specified members of patch into the draft and returns the result.
// Unspecified members are left untouched.
func (s *DraftStore) Update(patch models.DraftPatch) models.BookingDraft {
	p := clonePatch(patch)
	if p.MoveOrigin != nil {
		s.draft.MoveOrigin = p.MoveOrigin
	}
	if p.MoveDestination != nil {
		s.draft.MoveDestination = p.MoveDestination
	}
	if p.ItemsOrSize != nil {
		if len(*p.ItemsOrSize) == 0 {
			s.draft.ItemsOrSize = nil
		} else {
			s.draft.ItemsOrSize = *p.ItemsOrSize
		}
	}
	if p.MoveDate != nil {
		s.draft.MoveDate = p.MoveDate
	}
	if p.TimeOfDay != nil {
		s.draft.TimeOfDay = p.TimeOfDay
	}
	return s.Get()
}

// Changed lists the fields whose value would differ after applying patch.
func (s *DraftStore) Changed(patch models.DraftPatch) []string {
	next := &DraftStore{draft: s.draft.Clone()}
	next.Update(patch)

	var changed []string
	for _, field := range patch.Fields() {
		if !reflect.DeepEqual(fieldValue(s.draft, field), fieldValue(next.draft, field)) {
			changed = append(changed, field)
		}
	}
	return changed
}

func (s *DraftStore) setPaymentToken(token string) {
	s.draft.PaymentToken = &token
}

func fieldValue(d models.BookingDraft, field string) any {
	switch field {
	case models.FieldMoveOrigin:
		return d.MoveOrigin
	case models.FieldMoveDestination:
		return d.MoveDestination
	case models.FieldItemsOrSize:
		return d.ItemsOrSize
	case models.FieldMoveDate:
		return d.MoveDate
	case models.FieldTimeOfDay:
		return d.TimeOfDay
	case models.FieldPaymentToken:
		return d.PaymentToken
	}
	return nil
}

func clonePatch(p models.DraftPatch) models.DraftPatch {
	carrier := models.BookingDraft{
		MoveOrigin:      p.MoveOrigin,
		MoveDestination: p.MoveDestination,
		MoveDate:        p.MoveDate,
		TimeOfDay:       p.TimeOfDay,
	}.Clone()

	out := models.DraftPatch{
		MoveOrigin:      carrier.MoveOrigin,
		MoveDestination: carrier.MoveDestination,
		MoveDate:        carrier.MoveDate,
		TimeOfDay:       carrier.TimeOfDay,
	}
	if p.ItemsOrSize != nil {
		items := append([]string{}, (*p.ItemsOrSize)...)
		out.ItemsOrSize = &items
	}
	return out
}
