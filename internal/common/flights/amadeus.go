// Package flights adapts the Amadeus Self-Service flight offers API.
package flights

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"travel-agents/internal/common/errors"
	httpclient "travel-agents/internal/common/http"
	"travel-agents/internal/common/logger"
	"travel-agents/internal/models"
)

// TokenSource supplies bearer tokens; *auth.TokenCache implements it.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate()
}

// SearchParams are the inputs of one offer search. Dates are YYYY-MM-DD.
type SearchParams struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departureDate"`
	ReturnDate    string `json:"returnDate,omitempty"`
	AirlineFilter string `json:"airlineFilter,omitempty"`
	Adults        int    `json:"adults,omitempty"`
}

type Client struct {
	baseURL    string
	maxResults int
	tokens     TokenSource
	http       *httpclient.Client
	logger     logger.Logger
}

func NewClient(baseURL string, maxResults int, tokens TokenSource, client *httpclient.Client, log logger.Logger) *Client {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		maxResults: maxResults,
		tokens:     tokens,
		http:       client,
		logger:     log.With(map[string]interface{}{"adapter": "amadeus"}),
	}
}

// TokenURL is the OAuth endpoint for a given API base URL.
func TokenURL(baseURL string) string {
	return strings.TrimSuffix(baseURL, "/") + "/v1/security/oauth2/token"
}

// Search returns flight offers. Every failure is FLIGHT_SEARCH_UNAVAILABLE.
func (c *Client) Search(ctx context.Context, p SearchParams) ([]models.FlightOption, error) {
	resp, err := c.search(ctx, p)

	var statusErr *httpclient.StatusError
	if stderrors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized {
		c.logger.Warn("Token rejected, refreshing once", nil)
		c.tokens.Invalidate()
		resp, err = c.search(ctx, p)
	}
	if err != nil {
		c.logger.Error("Flight search failed", map[string]interface{}{
			"origin":      p.Origin,
			"destination": p.Destination,
			"error":       err.Error(),
		})
		return nil, errors.NewFlightSearchUnavailableError(err)
	}

	return toFlightOptions(resp), nil
}

func (c *Client) search(ctx context.Context, p SearchParams) (*offersResponse, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	adults := p.Adults
	if adults <= 0 {
		adults = 1
	}

	q := url.Values{}
	q.Set("originLocationCode", strings.ToUpper(p.Origin))
	q.Set("destinationLocationCode", strings.ToUpper(p.Destination))
	q.Set("departureDate", p.DepartureDate)
	if p.ReturnDate != "" {
		q.Set("returnDate", p.ReturnDate)
	}
	if p.AirlineFilter != "" {
		q.Set("includedAirlineCodes", strings.ToUpper(p.AirlineFilter))
	}
	q.Set("adults", strconv.Itoa(adults))
	q.Set("max", strconv.Itoa(c.maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/shopping/flight-offers?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var out offersResponse
	if err := c.http.DoJSON(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func toFlightOptions(resp *offersResponse) []models.FlightOption {
	options := make([]models.FlightOption, 0, len(resp.Data))
	for _, offer := range resp.Data {
		opt := models.FlightOption{
			ID:       offer.ID,
			Price:    offer.Price.GrandTotal,
			Currency: offer.Price.Currency,
		}
		if opt.Price == "" {
			opt.Price = offer.Price.Total
		}
		for _, code := range offer.ValidatingAirlineCodes {
			name := code
			if full, ok := resp.Dictionaries.Carriers[code]; ok {
				name = full
			}
			opt.Airlines = append(opt.Airlines, name)
		}
		for _, it := range offer.Itineraries {
			leg := models.FlightLeg{Duration: it.Duration}
			for _, seg := range it.Segments {
				leg.Segments = append(leg.Segments, models.FlightSegment{
					Carrier:          seg.CarrierCode,
					FlightNumber:     seg.CarrierCode + seg.Number,
					DepartureAirport: seg.Departure.IATACode,
					DepartureTime:    seg.Departure.At,
					ArrivalAirport:   seg.Arrival.IATACode,
					ArrivalTime:      seg.Arrival.At,
					Duration:         seg.Duration,
				})
			}
			opt.Legs = append(opt.Legs, leg)
		}
		options = append(options, opt)
	}
	return options
}

// Amadeus API types
type offersResponse struct {
	Data         []flightOffer `json:"data"`
	Dictionaries struct {
		Carriers map[string]string `json:"carriers"`
	} `json:"dictionaries"`
}

type flightOffer struct {
	ID          string `json:"id"`
	Itineraries []struct {
		Duration string `json:"duration"`
		Segments []struct {
			Departure   endpoint `json:"departure"`
			Arrival     endpoint `json:"arrival"`
			CarrierCode string   `json:"carrierCode"`
			Number      string   `json:"number"`
			Duration    string   `json:"duration"`
		} `json:"segments"`
	} `json:"itineraries"`
	Price struct {
		Currency   string `json:"currency"`
		Total      string `json:"total"`
		GrandTotal string `json:"grandTotal"`
	} `json:"price"`
	ValidatingAirlineCodes []string `json:"validatingAirlineCodes"`
}

type endpoint struct {
	IATACode string `json:"iataCode"`
	At       string `json:"at"`
}
