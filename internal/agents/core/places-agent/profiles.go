// internal/agents/core/places-agent/profiles.go
package placesagent

import (
	"fmt"
	"strings"

	"travel-agents/internal/models"
)

var hotelProfile = profile[models.Hotel]{
	intent:    models.IntentHotel,
	placeType: "hotel",
	noun:      "hotel",
	plural:    "hotels",
	count:     5,
	describe: func(destination string) string {
		return fmt.Sprintf("Recommend real, well-reviewed hotels in %s across a range of budgets. Amenities is a short list such as wifi, breakfast, pool or gym; priceLevel is one of $, $$, $$$, $$$$.", destination)
	},
	preferHotel: true,
	template: func(id string) models.Hotel {
		return models.Hotel{ID: id}
	},
	fromPlace: func(p models.Place) models.Hotel {
		return models.Hotel{
			ID:               newID(),
			Name:             optString(p.Name),
			Address:          optString(p.Address),
			Description:      optString(p.Summary),
			Rating:           p.Rating,
			UserRatingsTotal: p.UserRatingsTotal,
			PriceLevel:       optString(p.PriceLevel),
			Amenities:        []string{},
			Location:         p.Location,
			PlaceID:          optString(p.PlaceID),
		}
	},
	result: func(summary string, items []models.Hotel) models.Result {
		return &models.HotelResults{Type: models.ResultHotels, Summary: summary, Options: items}
	},
}

var restaurantProfile = profile[models.Restaurant]{
	intent:    models.IntentRestaurant,
	placeType: "restaurant",
	noun:      "restaurant",
	plural:    "restaurants",
	count:     6,
	describe: func(destination string) string {
		return fmt.Sprintf("Recommend real restaurants in %s with a mix of local cuisine and price levels. Cuisine is a short label such as Ramen or Portuguese seafood; priceLevel is one of $, $$, $$$, $$$$.", destination)
	},
	preferHotel: true,
	template: func(id string) models.Restaurant {
		return models.Restaurant{ID: id}
	},
	fromPlace: func(p models.Place) models.Restaurant {
		return models.Restaurant{
			ID:               newID(),
			Name:             optString(p.Name),
			Address:          optString(p.Address),
			Cuisine:          optString(cuisineOf(p.PrimaryType)),
			Description:      optString(p.Summary),
			Rating:           p.Rating,
			UserRatingsTotal: p.UserRatingsTotal,
			PriceLevel:       optString(p.PriceLevel),
			OpenNow:          p.OpenNow,
			Location:         p.Location,
			PlaceID:          optString(p.PlaceID),
		}
	},
	result: func(summary string, items []models.Restaurant) models.Result {
		return &models.RestaurantResults{Type: models.ResultRestaurants, Summary: summary, Options: items}
	},
}

var activitiesProfile = profile[models.Activity]{
	intent:    models.IntentActivities,
	placeType: "activities",
	noun:      "activity",
	plural:    "activities",
	count:     8,
	describe: func(destination string) string {
		return fmt.Sprintf("Recommend things to do in %s: museums, landmarks, tours, markets and experiences that match the traveller's interests. Duration is a rough time such as 2 hours or Half day.", destination)
	},
	template: func(id string) models.Activity {
		return models.Activity{ID: id}
	},
	fromPlace: func(p models.Place) models.Activity {
		return models.Activity{
			ID:          newID(),
			Name:        optString(p.Name),
			Address:     optString(p.Address),
			Category:    optString(humanize(p.PrimaryType)),
			Description: optString(p.Summary),
			Rating:      p.Rating,
			Location:    p.Location,
			PlaceID:     optString(p.PlaceID),
		}
	},
	result: func(summary string, items []models.Activity) models.Result {
		return &models.ActivityResults{Type: models.ResultActivities, Summary: summary, Options: items}
	},
}

var natureProfile = profile[models.NatureSpot]{
	intent:    models.IntentNature,
	placeType: "nature",
	noun:      "nature",
	plural:    "nature spots",
	count:     4,
	describe: func(destination string) string {
		return fmt.Sprintf("Recommend parks, trails, gardens and natural sights in or near %s. Difficulty is Easy, Moderate or Hard; bestTime is the best season or time of day to go.", destination)
	},
	template: func(id string) models.NatureSpot {
		return models.NatureSpot{ID: id}
	},
	fromPlace: func(p models.Place) models.NatureSpot {
		return models.NatureSpot{
			ID:          newID(),
			Name:        optString(p.Name),
			Address:     optString(p.Address),
			Description: optString(p.Summary),
			Rating:      p.Rating,
			Location:    p.Location,
			PlaceID:     optString(p.PlaceID),
		}
	},
	result: func(summary string, items []models.NatureSpot) models.Result {
		return &models.NatureResults{Type: models.ResultNature, Summary: summary, Options: items}
	},
}

var selfieProfile = profile[models.SelfieSpot]{
	intent:    models.IntentSelfie,
	placeType: "selfie",
	noun:      "photo spot",
	plural:    "photo spots",
	count:     3,
	describe: func(destination string) string {
		return fmt.Sprintf("Recommend the most photogenic selfie spots in %s. BestTime is when the light or crowds are best; photoTip is one concrete framing or timing tip.", destination)
	},
	template: func(id string) models.SelfieSpot {
		return models.SelfieSpot{ID: id}
	},
	fromPlace: func(p models.Place) models.SelfieSpot {
		return models.SelfieSpot{
			ID:          newID(),
			Name:        optString(p.Name),
			Address:     optString(p.Address),
			Description: optString(p.Summary),
			Rating:      p.Rating,
			Location:    p.Location,
			PlaceID:     optString(p.PlaceID),
		}
	},
	result: func(summary string, items []models.SelfieSpot) models.Result {
		return &models.SelfieResults{Type: models.ResultSelfie, Summary: summary, Options: items}
	},
}

func optString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// humanize turns a place type such as "art_gallery" into "Art gallery".
func humanize(placeType string) string {
	s := strings.ReplaceAll(strings.TrimSpace(placeType), "_", " ")
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func cuisineOf(primaryType string) string {
	if primaryType == "restaurant" {
		return ""
	}
	return humanize(strings.TrimSuffix(primaryType, "_restaurant"))
}
