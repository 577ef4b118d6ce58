package wikipedia

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"travel-agents/internal/common/errors"
	httpclient "travel-agents/internal/common/http"
	"travel-agents/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMediaWiki(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "json", q.Get("format"))
		assert.Equal(t, "2", q.Get("formatversion"))
		assert.Equal(t, "travel-agents-test", r.Header.Get("User-Agent"))

		switch {
		case q.Get("list") == "search" && q.Get("srsearch") == "Lisbon":
			_, _ = w.Write([]byte(`{"query":{"search":[{"pageid":18091,"title":"Lisbon"}]}}`))
		case q.Get("list") == "search":
			_, _ = w.Write([]byte(`{"query":{"search":[]}}`))
		case q.Get("action") == "parse" && q.Get("prop") == "sections":
			_, _ = w.Write([]byte(`{"parse":{"sections":[
				{"toclevel":1,"level":"2","line":"History","index":"1"},
				{"toclevel":1,"level":"2","line":"<i>Transport</i>","index":"2"}
			]}}`))
		case q.Get("action") == "parse" && q.Get("section") == "2":
			_, _ = w.Write([]byte(`{"parse":{"text":"<div><h2>Transport<span class=\"mw-editsection\">[edit]</span></h2><p>The metro has four lines.<sup class=\"reference\">[3]</sup></p><p>Trams climb the hills.</p><table><tr><td>junk</td></tr></table></div>"}}`))
		case q.Get("prop") == "extracts":
			assert.Equal(t, "18091", q.Get("pageids"))
			_, _ = w.Write([]byte(`{"query":{"pages":[{"pageid":18091,"extract":"  Lisbon is the capital of Portugal.  "}]}}`))
		default:
			http.Error(w, "unexpected", http.StatusBadRequest)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T, url string) *Client {
	hc := httpclient.NewClient(2 * time.Second).WithUserAgent("travel-agents-test")
	return NewClient(url, hc, logger.NewTestLogger(t))
}

func TestClient_Search(t *testing.T) {
	client := newTestClient(t, setupMediaWiki(t).URL)

	id, err := client.Search(context.Background(), "Lisbon")
	require.NoError(t, err)
	assert.Equal(t, 18091, id)

	id, err = client.Search(context.Background(), "Qwxzyville")
	require.NoError(t, err)
	assert.Zero(t, id)
}

func TestClient_Sections(t *testing.T) {
	client := newTestClient(t, setupMediaWiki(t).URL)

	sections, err := client.Sections(context.Background(), 18091)
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, Section{Index: "2", Title: "Transport", Level: 1}, sections[1])
}

func TestClient_SectionText(t *testing.T) {
	client := newTestClient(t, setupMediaWiki(t).URL)

	text, err := client.SectionText(context.Background(), 18091, "2")
	require.NoError(t, err)
	assert.Equal(t, "Transport The metro has four lines. Trams climb the hills.", text)
}

func TestClient_Extract(t *testing.T) {
	client := newTestClient(t, setupMediaWiki(t).URL)

	text, err := client.Extract(context.Background(), 18091)
	require.NoError(t, err)
	assert.Equal(t, "Lisbon is the capital of Portugal.", text)
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Search(context.Background(), "Lisbon")

	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeEncyclopediaRequestFailed))
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "   ", ""},
		{"inline markup", "<i>Getting</i> <b>around</b>", "Getting around"},
		{"paragraphs separated", "<p>One.</p><p>Two.</p>", "One. Two."},
		{"noise removed", `<p>Safe<sup class="reference">[1]</sup> city.</p><style>.x{}</style>`, "Safe city."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripHTML(tt.in))
		})
	}
}
