// Package wikipedia reads article structure and text from the MediaWiki Action API.
package wikipedia

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"travel-agents/internal/common/errors"
	httpclient "travel-agents/internal/common/http"
	"travel-agents/internal/common/logger"

	"github.com/PuerkitoBio/goquery"
)

// Section is one table-of-contents entry.
type Section struct {
	Index string `json:"index"`
	Title string `json:"title"`
	Level int    `json:"level"`
}

var whitespace = regexp.MustCompile(`\s+`)

// Elements that never carry readable prose.
const noiseSelector = "style, script, sup.reference, .reference, .mw-editsection, .navbox, .infobox, .metadata, .hatnote, table, figure"

type Client struct {
	apiURL string
	http   *httpclient.Client
	logger logger.Logger
}

func NewClient(apiURL string, client *httpclient.Client, log logger.Logger) *Client {
	return &Client{
		apiURL: apiURL,
		http:   client,
		logger: log.With(map[string]interface{}{"adapter": "wikipedia"}),
	}
}

// Search returns the page id of the best full-text match, or 0 for no match.
func (c *Client) Search(ctx context.Context, query string) (int, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", "1")

	var resp struct {
		Query struct {
			Search []struct {
				PageID int    `json:"pageid"`
				Title  string `json:"title"`
			} `json:"search"`
		} `json:"query"`
	}
	if err := c.get(ctx, params, &resp); err != nil {
		return 0, errors.NewEncyclopediaRequestFailedError("search", err)
	}
	if len(resp.Query.Search) == 0 {
		return 0, nil
	}
	return resp.Query.Search[0].PageID, nil
}

// Sections returns the page's table of contents.
func (c *Client) Sections(ctx context.Context, pageID int) ([]Section, error) {
	params := url.Values{}
	params.Set("action", "parse")
	params.Set("pageid", strconv.Itoa(pageID))
	params.Set("prop", "sections")

	var resp struct {
		Parse struct {
			Sections []struct {
				Index    string `json:"index"`
				Line     string `json:"line"`
				TocLevel int    `json:"toclevel"`
			} `json:"sections"`
		} `json:"parse"`
	}
	if err := c.get(ctx, params, &resp); err != nil {
		return nil, errors.NewEncyclopediaRequestFailedError("sections", err)
	}

	sections := make([]Section, 0, len(resp.Parse.Sections))
	for _, s := range resp.Parse.Sections {
		sections = append(sections, Section{
			Index: s.Index,
			Title: StripHTML(s.Line),
			Level: s.TocLevel,
		})
	}
	return sections, nil
}

// SectionText returns the plain text of one section.
func (c *Client) SectionText(ctx context.Context, pageID int, index string) (string, error) {
	params := url.Values{}
	params.Set("action", "parse")
	params.Set("pageid", strconv.Itoa(pageID))
	params.Set("section", index)
	params.Set("prop", "text")
	params.Set("disabletoc", "1")

	var resp struct {
		Parse struct {
			Text string `json:"text"`
		} `json:"parse"`
	}
	if err := c.get(ctx, params, &resp); err != nil {
		return "", errors.NewEncyclopediaRequestFailedError("section", err)
	}
	return StripHTML(resp.Parse.Text), nil
}

// Extract returns the whole article as plain text.
func (c *Client) Extract(ctx context.Context, pageID int) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "extracts")
	params.Set("explaintext", "1")
	params.Set("pageids", strconv.Itoa(pageID))

	var resp struct {
		Query struct {
			Pages []struct {
				PageID  int    `json:"pageid"`
				Extract string `json:"extract"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := c.get(ctx, params, &resp); err != nil {
		return "", errors.NewEncyclopediaRequestFailedError("extract", err)
	}
	if len(resp.Query.Pages) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Query.Pages[0].Extract), nil
}

func (c *Client) get(ctx context.Context, params url.Values, out interface{}) error {
	params.Set("format", "json")
	params.Set("formatversion", "2")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if err := c.http.DoJSON(ctx, req, out); err != nil {
		c.logger.Warn("MediaWiki request failed", map[string]interface{}{
			"action": params.Get("action"),
			"error":  err.Error(),
		})
		return err
	}
	return nil
}

// StripHTML returns the readable text of an HTML fragment with whitespace collapsed.
func StripHTML(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	doc.Find(noiseSelector).Remove()

	// Block elements are followed by a space so adjacent paragraphs do not run together.
	doc.Find("h1, h2, h3, h4, h5, h6, p, li, dd, dt, div").Each(func(i int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})

	text := doc.Text()
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}
