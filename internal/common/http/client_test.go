package http

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    bool
		wantStatus int
		wantName   string
	}{
		{"ok", http.StatusOK, `{"name":"Kyoto"}`, false, 0, "Kyoto"},
		{"upstream error", http.StatusServiceUnavailable, `{"error":"down"}`, true, http.StatusServiceUnavailable, ""},
		{"bad json", http.StatusOK, `{"name":`, true, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			var out struct {
				Name string `json:"name"`
			}
			req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
			require.NoError(t, err)

			err = NewClient(time.Second).DoJSON(context.Background(), req, &out)

			if tt.wantErr {
				require.Error(t, err)
				var statusErr *StatusError
				if tt.wantStatus != 0 {
					require.True(t, stderrors.As(err, &statusErr))
					assert.Equal(t, tt.wantStatus, statusErr.StatusCode)
					assert.Contains(t, statusErr.Body, "down")
				} else {
					assert.False(t, stderrors.As(err, &statusErr))
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, out.Name)
		})
	}
}

func TestDoJSON_SetsDefaultHeaders(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	require.NoError(t, NewClient(time.Second).WithUserAgent("travel-agents/1.0").DoJSON(context.Background(), req, nil))

	assert.Equal(t, "travel-agents/1.0", gotUA)
	assert.Equal(t, "application/json", gotAccept)
}

func TestDoJSON_TruncatesErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(strings.Repeat("x", 2000)))
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	err = NewClient(time.Second).DoJSON(context.Background(), req, nil)

	var statusErr *StatusError
	require.True(t, stderrors.As(err, &statusErr))
	assert.Len(t, statusErr.Body, 515)
}
