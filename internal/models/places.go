// internal/models/places.go
package models

// The records below double as generator templates: every nil field is
// fillable, every set field is a fact that must survive generation.
// PlaceID is only ever set from a real places search.

type Hotel struct {
	ID               string       `json:"id"`
	Name             *string      `json:"name"`
	Address          *string      `json:"address"`
	Description      *string      `json:"description"`
	Rating           *float64     `json:"rating"`
	UserRatingsTotal *int         `json:"userRatingsTotal"`
	PriceLevel       *string      `json:"priceLevel"`
	Amenities        []string     `json:"amenities"`
	Location         *Coordinates `json:"location"`
	PlaceID          *string      `json:"placeId,omitempty"`
}

type Restaurant struct {
	ID               string       `json:"id"`
	Name             *string      `json:"name"`
	Address          *string      `json:"address"`
	Cuisine          *string      `json:"cuisine"`
	Description      *string      `json:"description"`
	Rating           *float64     `json:"rating"`
	UserRatingsTotal *int         `json:"userRatingsTotal"`
	PriceLevel       *string      `json:"priceLevel"`
	OpenNow          *bool        `json:"openNow"`
	Location         *Coordinates `json:"location"`
	PlaceID          *string      `json:"placeId,omitempty"`
}

type Activity struct {
	ID          string       `json:"id"`
	Name        *string      `json:"name"`
	Address     *string      `json:"address"`
	Category    *string      `json:"category"`
	Description *string      `json:"description"`
	Duration    *string      `json:"duration"`
	Rating      *float64     `json:"rating"`
	Location    *Coordinates `json:"location"`
	PlaceID     *string      `json:"placeId,omitempty"`
}

type NatureSpot struct {
	ID          string       `json:"id"`
	Name        *string      `json:"name"`
	Address     *string      `json:"address"`
	Description *string      `json:"description"`
	Difficulty  *string      `json:"difficulty"`
	BestTime    *string      `json:"bestTime"`
	Rating      *float64     `json:"rating"`
	Location    *Coordinates `json:"location"`
	PlaceID     *string      `json:"placeId,omitempty"`
}

type SelfieSpot struct {
	ID          string       `json:"id"`
	Name        *string      `json:"name"`
	Address     *string      `json:"address"`
	Description *string      `json:"description"`
	BestTime    *string      `json:"bestTime"`
	PhotoTip    *string      `json:"photoTip"`
	Rating      *float64     `json:"rating"`
	Location    *Coordinates `json:"location"`
	PlaceID     *string      `json:"placeId,omitempty"`
}

// Place is the provider-neutral shape returned by a nearby search.
type Place struct {
	PlaceID          string       `json:"placeId"`
	Name             string       `json:"name"`
	Address          string       `json:"address"`
	Rating           *float64     `json:"rating,omitempty"`
	UserRatingsTotal *int         `json:"userRatingsTotal,omitempty"`
	PriceLevel       string       `json:"priceLevel,omitempty"`
	OpenNow          *bool        `json:"openNow,omitempty"`
	Types            []string     `json:"types,omitempty"`
	PrimaryType      string       `json:"primaryType,omitempty"`
	Summary          string       `json:"summary,omitempty"`
	Location         *Coordinates `json:"location,omitempty"`
}
