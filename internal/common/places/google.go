// Package places adapts the Google Places API (New) for nearby and text search.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"travel-agents/internal/common/errors"
	httpclient "travel-agents/internal/common/http"
	"travel-agents/internal/common/logger"
	"travel-agents/internal/models"
)

// The provider caps maxResultCount at 20.
const maxProviderResults = 20

// IncludedTypes maps a domain search type to Places API place types.
var IncludedTypes = map[string][]string{
	"hotel":      {"hotel", "lodging", "resort_hotel"},
	"restaurant": {"restaurant"},
	"activities": {"tourist_attraction", "museum", "amusement_park", "art_gallery", "aquarium", "zoo"},
	"nature":     {"park", "national_park", "hiking_area"},
	"selfie":     {"tourist_attraction", "historical_landmark", "observation_deck"},
}

var nearbyFieldMask = strings.Join([]string{
	"places.id",
	"places.displayName",
	"places.formattedAddress",
	"places.rating",
	"places.userRatingCount",
	"places.priceLevel",
	"places.currentOpeningHours.openNow",
	"places.types",
	"places.primaryType",
	"places.editorialSummary",
	"places.location",
}, ",")

// NearbyRequest is one coordinate-centred search.
type NearbyRequest struct {
	Type      string
	Latitude  float64
	Longitude float64
}

type Client struct {
	baseURL    string
	apiKey     string
	radiusM    float64
	maxResults int
	http       *httpclient.Client
	logger     logger.Logger
}

func NewClient(baseURL, apiKey string, radiusM float64, maxResults int, client *httpclient.Client, log logger.Logger) *Client {
	if maxResults <= 0 || maxResults > maxProviderResults {
		maxResults = maxProviderResults
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		radiusM:    radiusM,
		maxResults: maxResults,
		http:       client,
		logger:     log.With(map[string]interface{}{"adapter": "places"}),
	}
}

// SearchNearby returns places of the request's type within the configured radius.
func (c *Client) SearchNearby(ctx context.Context, req NearbyRequest) ([]models.Place, error) {
	types, ok := IncludedTypes[req.Type]
	if !ok {
		return nil, errors.NewPlacesSearchFailedError(req.Type, fmt.Errorf("unknown search type"))
	}

	body := nearbyRequest{
		IncludedTypes:  types,
		MaxResultCount: c.maxResults,
	}
	body.LocationRestriction.Circle.Center = latLng{Latitude: req.Latitude, Longitude: req.Longitude}
	body.LocationRestriction.Circle.Radius = c.radiusM

	var resp placesResponse
	if err := c.post(ctx, "/places:searchNearby", nearbyFieldMask, body, &resp); err != nil {
		c.logger.Error("Nearby search failed", map[string]interface{}{"type": req.Type, "error": err.Error()})
		return nil, errors.NewPlacesSearchFailedError(req.Type, err)
	}

	out := make([]models.Place, 0, len(resp.Places))
	for _, p := range resp.Places {
		out = append(out, p.toModel())
	}
	c.logger.Debug("Nearby search completed", map[string]interface{}{"type": req.Type, "results": len(out)})
	return out, nil
}

// Geocode resolves free text to coordinates via text search. No match
// returns nil without error.
func (c *Client) Geocode(ctx context.Context, query string) (*models.Coordinates, error) {
	body := map[string]interface{}{
		"textQuery":      query,
		"maxResultCount": 1,
	}

	var resp placesResponse
	if err := c.post(ctx, "/places:searchText", "places.displayName,places.location", body, &resp); err != nil {
		return nil, errors.NewPlacesSearchFailedError("geocode", err)
	}
	if len(resp.Places) == 0 || resp.Places[0].Location == nil {
		return nil, nil
	}
	loc := resp.Places[0].Location
	return &models.Coordinates{Lat: loc.Latitude, Lng: loc.Longitude}, nil
}

func (c *Client) post(ctx context.Context, path, fieldMask string, body, out interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	return c.http.DoJSON(ctx, req, out)
}

// Places API types
type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type nearbyRequest struct {
	IncludedTypes       []string `json:"includedTypes"`
	MaxResultCount      int      `json:"maxResultCount"`
	LocationRestriction struct {
		Circle struct {
			Center latLng  `json:"center"`
			Radius float64 `json:"radius"`
		} `json:"circle"`
	} `json:"locationRestriction"`
}

type placesResponse struct {
	Places []place `json:"places"`
}

type localizedText struct {
	Text string `json:"text"`
}

type place struct {
	ID                  string         `json:"id"`
	DisplayName         *localizedText `json:"displayName"`
	FormattedAddress    string         `json:"formattedAddress"`
	Rating              *float64       `json:"rating"`
	UserRatingCount     *int           `json:"userRatingCount"`
	PriceLevel          string         `json:"priceLevel"`
	Types               []string       `json:"types"`
	PrimaryType         string         `json:"primaryType"`
	EditorialSummary    *localizedText `json:"editorialSummary"`
	Location            *latLng        `json:"location"`
	CurrentOpeningHours *struct {
		OpenNow *bool `json:"openNow"`
	} `json:"currentOpeningHours"`
}

func (p place) toModel() models.Place {
	out := models.Place{
		PlaceID:          p.ID,
		Address:          p.FormattedAddress,
		Rating:           p.Rating,
		UserRatingsTotal: p.UserRatingCount,
		PriceLevel:       p.PriceLevel,
		Types:            p.Types,
		PrimaryType:      p.PrimaryType,
	}
	if p.DisplayName != nil {
		out.Name = p.DisplayName.Text
	}
	if p.EditorialSummary != nil {
		out.Summary = p.EditorialSummary.Text
	}
	if p.CurrentOpeningHours != nil {
		out.OpenNow = p.CurrentOpeningHours.OpenNow
	}
	if p.Location != nil {
		out.Location = &models.Coordinates{Lat: p.Location.Latitude, Lng: p.Location.Longitude}
	}
	return out
}
