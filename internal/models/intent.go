// internal/models/intent.go
package models

import "strings"

type Intent string

const (
	IntentArithmetic  Intent = "arithmetic"
	IntentFlights     Intent = "flights"
	IntentHotel       Intent = "hotel"
	IntentRestaurant  Intent = "restaurant"
	IntentActivities  Intent = "activities"
	IntentNature      Intent = "nature"
	IntentSelfie      Intent = "selfie"
	IntentUnsupported Intent = "unsupported"
)

// AllIntents lists every intent in routing order.
var AllIntents = []Intent{
	IntentArithmetic,
	IntentFlights,
	IntentHotel,
	IntentRestaurant,
	IntentActivities,
	IntentNature,
	IntentSelfie,
	IntentUnsupported,
}

// ParseIntent maps a literal to an Intent. Unknown values become IntentUnsupported.
func ParseIntent(s string) Intent {
	candidate := Intent(strings.ToLower(strings.TrimSpace(s)))
	for _, intent := range AllIntents {
		if intent == candidate {
			return intent
		}
	}
	return IntentUnsupported
}
