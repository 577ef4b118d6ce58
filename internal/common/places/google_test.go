package places

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"travel-agents/internal/common/errors"
	httpclient "travel-agents/internal/common/http"
	"travel-agents/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, url string) *Client {
	return NewClient(url, "places-key", 10000, 10, httpclient.NewClient(2*time.Second), logger.NewTestLogger(t))
}

func TestClient_SearchNearby(t *testing.T) {
	var captured nearbyRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/places:searchNearby", r.URL.Path)
		assert.Equal(t, "places-key", r.Header.Get("X-Goog-Api-Key"))
		assert.Contains(t, r.Header.Get("X-Goog-FieldMask"), "places.displayName")
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &captured))

		_, _ = w.Write([]byte(`{"places":[{
			"id": "ChIJ1",
			"displayName": {"text": "Park Hyatt Tokyo"},
			"formattedAddress": "3-7-1-2 Nishishinjuku",
			"rating": 4.6,
			"userRatingCount": 5120,
			"priceLevel": "PRICE_LEVEL_VERY_EXPENSIVE",
			"types": ["hotel", "lodging"],
			"currentOpeningHours": {"openNow": true},
			"location": {"latitude": 35.6856, "longitude": 139.6907}
		}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	results, err := client.SearchNearby(context.Background(), NearbyRequest{Type: "hotel", Latitude: 35.6892, Longitude: 139.6922})
	require.NoError(t, err)

	assert.Equal(t, IncludedTypes["hotel"], captured.IncludedTypes)
	assert.Equal(t, 10, captured.MaxResultCount)
	assert.Equal(t, 35.6892, captured.LocationRestriction.Circle.Center.Latitude)
	assert.Equal(t, 139.6922, captured.LocationRestriction.Circle.Center.Longitude)
	assert.Equal(t, 10000.0, captured.LocationRestriction.Circle.Radius)

	require.Len(t, results, 1)
	assert.Equal(t, "Park Hyatt Tokyo", results[0].Name)
	assert.Equal(t, "ChIJ1", results[0].PlaceID)
	require.NotNil(t, results[0].Rating)
	assert.Equal(t, 4.6, *results[0].Rating)
	require.NotNil(t, results[0].OpenNow)
	assert.True(t, *results[0].OpenNow)
	require.NotNil(t, results[0].Location)
	assert.Equal(t, 35.6856, results[0].Location.Lat)
}

func TestClient_SearchNearby_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"status":"PERMISSION_DENIED"}}`, http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.SearchNearby(context.Background(), NearbyRequest{Type: "restaurant", Latitude: 1, Longitude: 2})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodePlacesSearchFailed))

	_, err = client.SearchNearby(context.Background(), NearbyRequest{Type: "casino"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodePlacesSearchFailed))
}

func TestClient_Geocode(t *testing.T) {
	var found atomic.Bool
	found.Store(true)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/places:searchText", r.URL.Path)
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "Tokyo", body["textQuery"])
		if !found.Load() {
			_, _ = w.Write([]byte(`{}`))
			return
		}
		_, _ = w.Write([]byte(`{"places":[{"displayName":{"text":"Tokyo"},"location":{"latitude":35.6764,"longitude":139.65}}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	coords, err := client.Geocode(context.Background(), "Tokyo")
	require.NoError(t, err)
	require.NotNil(t, coords)
	assert.Equal(t, 35.6764, coords.Lat)
	assert.Equal(t, 139.65, coords.Lng)

	found.Store(false)
	coords, err = client.Geocode(context.Background(), "Tokyo")
	require.NoError(t, err)
	assert.Nil(t, coords)
}
