package models

import "strings"

// Address sources. A manual entry is as valid as an autocomplete selection.
const (
	AddressSourceAutocomplete = "autocomplete"
	AddressSourceManual       = "manual"
)

// Address is a move endpoint as entered through the address-lookup field.
type Address struct {
	Text      string   `bson:"text" json:"text"`                               // What the customer typed or picked.
	PlaceID   string   `bson:"place_id,omitempty" json:"placeId,omitempty"`     // Lookup provider reference, autocomplete only.
	Formatted string   `bson:"formatted,omitempty" json:"formatted,omitempty"` // Provider formatted address, autocomplete only.
	Lat       *float64 `bson:"lat,omitempty" json:"lat,omitempty"`
	Lng       *float64 `bson:"lng,omitempty" json:"lng,omitempty"`
	Source    string   `bson:"source" json:"source"`
}

// IsBlank reports whether the address carries no usable text.
func (a Address) IsBlank() bool {
	return strings.TrimSpace(a.Text) == "" && strings.TrimSpace(a.Formatted) == ""
}

// HasKnownSource reports whether Source is autocomplete or manual. An empty
// source is treated as manual entry.
func (a Address) HasKnownSource() bool {
	switch a.Source {
	case "", AddressSourceManual, AddressSourceAutocomplete:
		return true
	}
	return false
}

// Display returns the best human readable form of the address.
func (a Address) Display() string {
	if f := strings.TrimSpace(a.Formatted); f != "" {
		return f
	}
	return strings.TrimSpace(a.Text)
}

// AddressCandidate is a structured suggestion returned by the address lookup.
type AddressCandidate struct {
	PlaceID     string `json:"placeId"`
	Description string `json:"description"`
}

// ToAddress converts a picked candidate into a draft address.
func (c AddressCandidate) ToAddress() Address {
	return Address{
		Text:      c.Description,
		PlaceID:   c.PlaceID,
		Formatted: c.Description,
		Source:    AddressSourceAutocomplete,
	}
}
