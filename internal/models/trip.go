// internal/models/trip.go
package models

import "strings"

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Trip is the cross-turn planning context supplied by the caller.
// Nil means unknown.
type Trip struct {
	Origin            *string      `json:"origin"`
	Destination       *string      `json:"destination"`
	DepartureDate     *string      `json:"departureDate"`
	ReturnDate        *string      `json:"returnDate"`
	Budget            *float64     `json:"budget"`
	Hotel             *string      `json:"hotel"`
	Interests         []string     `json:"interests"`
	Constraints       []string     `json:"constraints"`
	DestinationCoords *Coordinates `json:"destinationCoords"`
	HotelCoords       *Coordinates `json:"hotelCoords"`
}

// StringPtr is a convenience for building trips in code and tests.
func StringPtr(s string) *string {
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// DestinationName returns the trimmed destination or "".
func (t Trip) DestinationName() string {
	return deref(t.Destination)
}

func (t Trip) HasDestination() bool {
	return t.DestinationName() != ""
}

// Context returns the known fields, keyed by their JSON names, for prompts.
func (t Trip) Context() map[string]interface{} {
	ctx := make(map[string]interface{})
	if v := deref(t.Origin); v != "" {
		ctx["origin"] = v
	}
	if v := deref(t.Destination); v != "" {
		ctx["destination"] = v
	}
	if v := deref(t.DepartureDate); v != "" {
		ctx["departureDate"] = v
	}
	if v := deref(t.ReturnDate); v != "" {
		ctx["returnDate"] = v
	}
	if t.Budget != nil {
		ctx["budget"] = *t.Budget
	}
	if v := deref(t.Hotel); v != "" {
		ctx["hotel"] = v
	}
	if len(t.Interests) > 0 {
		ctx["interests"] = t.Interests
	}
	if len(t.Constraints) > 0 {
		ctx["constraints"] = t.Constraints
	}
	return ctx
}

// MissingFlightFields lists the fields a flight search still needs.
func (t Trip) MissingFlightFields() []string {
	var missing []string
	if deref(t.Origin) == "" {
		missing = append(missing, "origin")
	}
	if deref(t.Destination) == "" {
		missing = append(missing, "destination")
	}
	if deref(t.DepartureDate) == "" {
		missing = append(missing, "departureDate")
	}
	return missing
}
