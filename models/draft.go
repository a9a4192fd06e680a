package models

// Time-of-day slots offered on the date & time step.
const (
	TimeOfDayMorning   = "Morning"
	TimeOfDayAfternoon = "Afternoon"
)

// TimesOfDay lists the accepted time-of-day values in display order.
var TimesOfDay = []string{TimeOfDayMorning, TimeOfDayAfternoon}

// Draft field names, shared by the step catalog, validation errors and the JSON payload.
const (
	FieldMoveOrigin      = "moveOrigin"
	FieldMoveDestination = "moveDestination"
	FieldItemsOrSize     = "itemsOrSize"
	FieldMoveDate        = "moveDate"
	FieldTimeOfDay       = "timeOfDay"
	FieldPaymentToken    = "paymentToken"
)

// MoveDateLayout is the calendar date format of BookingDraft.MoveDate.
const MoveDateLayout = "2006-01-02"

// BookingDraft is the accumulating record of what the customer entered.
// Nil members are unset.
type BookingDraft struct {
	MoveOrigin      *Address `bson:"move_origin,omitempty" json:"moveOrigin,omitempty"`
	MoveDestination *Address `bson:"move_destination,omitempty" json:"moveDestination,omitempty"`
	ItemsOrSize     []string `bson:"items_or_size,omitempty" json:"itemsOrSize,omitempty"`
	MoveDate        *string  `bson:"move_date,omitempty" json:"moveDate,omitempty"`   // YYYY-MM-DD
	TimeOfDay       *string  `bson:"time_of_day,omitempty" json:"timeOfDay,omitempty"` // Morning | Afternoon
	PaymentToken    *string  `bson:"payment_token,omitempty" json:"paymentToken,omitempty"`
}

// Clone returns a deep copy so callers never share memory with the session.
func (d BookingDraft) Clone() BookingDraft {
	out := BookingDraft{}
	if d.MoveOrigin != nil {
		a := cloneAddress(*d.MoveOrigin)
		out.MoveOrigin = &a
	}
	if d.MoveDestination != nil {
		a := cloneAddress(*d.MoveDestination)
		out.MoveDestination = &a
	}
	if d.ItemsOrSize != nil {
		out.ItemsOrSize = append([]string{}, d.ItemsOrSize...)
	}
	out.MoveDate = cloneString(d.MoveDate)
	out.TimeOfDay = cloneString(d.TimeOfDay)
	out.PaymentToken = cloneString(d.PaymentToken)
	return out
}

// DraftPatch is a partial update. Nil members are left untouched; a non-nil member
// replaces the current value, which is how a user edit clears a field.
type DraftPatch struct {
	MoveOrigin      *Address  `json:"moveOrigin,omitempty"`
	MoveDestination *Address  `json:"moveDestination,omitempty"`
	ItemsOrSize     *[]string `json:"itemsOrSize,omitempty"`
	MoveDate        *string   `json:"moveDate,omitempty"`
	TimeOfDay       *string   `json:"timeOfDay,omitempty"`
}

// Fields lists the draft fields the patch specifies.
func (p DraftPatch) Fields() []string {
	var fields []string
	if p.MoveOrigin != nil {
		fields = append(fields, FieldMoveOrigin)
	}
	if p.MoveDestination != nil {
		fields = append(fields, FieldMoveDestination)
	}
	if p.ItemsOrSize != nil {
		fields = append(fields, FieldItemsOrSize)
	}
	if p.MoveDate != nil {
		fields = append(fields, FieldMoveDate)
	}
	if p.TimeOfDay != nil {
		fields = append(fields, FieldTimeOfDay)
	}
	return fields
}

// IsEmpty reports whether the patch specifies nothing.
func (p DraftPatch) IsEmpty() bool {
	return len(p.Fields()) == 0
}

func cloneAddress(a Address) Address {
	if a.Lat != nil {
		v := *a.Lat
		a.Lat = &v
	}
	if a.Lng != nil {
		v := *a.Lng
		a.Lng = &v
	}
	return a
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
