package flights

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"travel-agents/internal/common/auth"
	"travel-agents/internal/common/errors"
	httpclient "travel-agents/internal/common/http"
	"travel-agents/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const offersBody = `{
  "data": [{
    "id": "1",
    "itineraries": [{
      "duration": "PT14H5M",
      "segments": [{
        "departure": {"iataCode": "JFK", "at": "2025-05-01T11:00:00"},
        "arrival": {"iataCode": "HND", "at": "2025-05-02T14:05:00"},
        "carrierCode": "NH",
        "number": "109",
        "duration": "PT14H5M"
      }]
    }],
    "price": {"currency": "USD", "total": "1120.40", "grandTotal": "1120.40"},
    "validatingAirlineCodes": ["NH"]
  }],
  "dictionaries": {"carriers": {"NH": "ALL NIPPON AIRWAYS"}}
}`

func setupAmadeus(t *testing.T, rejectFirst bool) (*httptest.Server, *int32, *int32) {
	t.Helper()
	var tokenCalls, searchCalls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&tokenCalls, 1)
		if n == 1 {
			_, _ = w.Write([]byte(`{"access_token":"first","expires_in":1799}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"second","expires_in":1799}`))
	})
	mux.HandleFunc("/v2/shopping/flight-offers", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&searchCalls, 1)
		if rejectFirst && r.Header.Get("Authorization") == "Bearer first" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		q := r.URL.Query()
		assert.Equal(t, "JFK", q.Get("originLocationCode"))
		assert.Equal(t, "HND", q.Get("destinationLocationCode"))
		assert.Equal(t, "2025-05-01", q.Get("departureDate"))
		assert.Equal(t, "NH", q.Get("includedAirlineCodes"))
		assert.Equal(t, "1", q.Get("adults"))
		assert.Equal(t, "3", q.Get("max"))
		_, _ = w.Write([]byte(offersBody))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &tokenCalls, &searchCalls
}

func newTestClient(t *testing.T, baseURL string) *Client {
	tokens := auth.NewTokenCache(TokenURL(baseURL), "id", "secret")
	return NewClient(baseURL, 3, tokens, httpclient.NewClient(2*time.Second), logger.NewTestLogger(t))
}

func TestClient_Search(t *testing.T) {
	server, tokenCalls, _ := setupAmadeus(t, false)
	client := newTestClient(t, server.URL)

	options, err := client.Search(context.Background(), SearchParams{
		Origin:        "jfk",
		Destination:   "hnd",
		DepartureDate: "2025-05-01",
		AirlineFilter: "nh",
	})
	require.NoError(t, err)
	require.Len(t, options, 1)

	opt := options[0]
	assert.Equal(t, "1120.40", opt.Price)
	assert.Equal(t, "USD", opt.Currency)
	assert.Equal(t, []string{"ALL NIPPON AIRWAYS"}, opt.Airlines)
	require.Len(t, opt.Legs, 1)
	require.Len(t, opt.Legs[0].Segments, 1)
	seg := opt.Legs[0].Segments[0]
	assert.Equal(t, "NH", seg.Carrier)
	assert.Equal(t, "NH109", seg.FlightNumber)
	assert.Equal(t, "JFK", seg.DepartureAirport)
	assert.Equal(t, "HND", seg.ArrivalAirport)

	_, err = client.Search(context.Background(), SearchParams{Origin: "JFK", Destination: "HND", DepartureDate: "2025-05-01", AirlineFilter: "NH"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(tokenCalls))
}

func TestClient_Search_RefreshesRejectedToken(t *testing.T) {
	server, tokenCalls, searchCalls := setupAmadeus(t, true)
	client := newTestClient(t, server.URL)

	options, err := client.Search(context.Background(), SearchParams{
		Origin: "JFK", Destination: "HND", DepartureDate: "2025-05-01", AirlineFilter: "NH",
	})
	require.NoError(t, err)
	assert.Len(t, options, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(tokenCalls))
	assert.Equal(t, int32(2), atomic.LoadInt32(searchCalls))
}

func TestClient_Search_Unavailable(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"tok","expires_in":1799}`))
	})
	mux.HandleFunc("/v2/shopping/flight-offers", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"detail":"internal"}]}`, http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Search(context.Background(), SearchParams{Origin: "JFK", Destination: "HND", DepartureDate: "2025-05-01"})

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeFlightSearchUnavailable))
}
