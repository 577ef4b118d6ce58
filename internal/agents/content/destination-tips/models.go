// internal/agents/content/destination-tips/models.go
package destinationtips

import (
	"context"
	"encoding/json"
	"time"

	"travel-agents/internal/common/wikipedia"
)

// Encyclopedia is satisfied by *wikipedia.Client.
type Encyclopedia interface {
	Search(ctx context.Context, query string) (int, error)
	Sections(ctx context.Context, pageID int) ([]wikipedia.Section, error)
	SectionText(ctx context.Context, pageID int, index string) (string, error)
	Extract(ctx context.Context, pageID int) (string, error)
}

// Cache is satisfied by *database.RedisClient.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

type Category string

const (
	CategoryTransportation Category = "transportation"
	CategorySafety         Category = "safety"
	CategoryWhenToVisit    Category = "whenToVisit"
)

var categories = []Category{CategoryTransportation, CategorySafety, CategoryWhenToVisit}

// classification is one entry of the section classifier's reply.
type classification struct {
	Index    sectionIndex `json:"index"`
	Category Category     `json:"category"`
}

// sectionIndex accepts both "3" and 3.
type sectionIndex string

func (s *sectionIndex) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = sectionIndex(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = sectionIndex(n.String())
	return nil
}

type synthesized struct {
	Transportation string `json:"transportation"`
	Safety         string `json:"safety"`
	WhenToVisit    string `json:"whenToVisit"`
}
