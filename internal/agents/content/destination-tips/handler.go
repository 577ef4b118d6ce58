// internal/agents/content/destination-tips/handler.go
package destinationtips

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	datagenerator "travel-agents/internal/agents/core/data-generator"
	"travel-agents/internal/common/errors"
	"travel-agents/internal/common/llm"
	"travel-agents/internal/common/logger"
	"travel-agents/internal/common/metrics"
	"travel-agents/internal/common/wikipedia"
	"travel-agents/internal/models"

	"github.com/google/uuid"
)

const (
	TaskType = "destination-tips"
)

const classifyPrompt = `You sort the sections of an encyclopedia article about a travel destination.
Categories:
- transportation: getting there and getting around (transport, airports, metro, roads, ferries)
- safety: crime, health, natural hazards, emergency information
- whenToVisit: climate, weather, seasons, festivals and events
Return ONLY a JSON array like [{"index": "3", "category": "transportation"}]. Include only sections that clearly fit one category, at most one category per section. Return [] if none fit.`

const synthesisPrompt = `You write practical travel tips from source text.
Return ONLY a JSON object with the keys "transportation", "safety" and "whenToVisit".
Each value is 2 to 4 plain sentences written for a visitor. Ground every statement in the source text given for that key, unless you are told to write general advice.`

const generatorDescription = "Practical travel tips for the destination: how to get around, how to stay safe, and the best time of year to visit. Each tip is 2 to 4 sentences."

// Static advice used when every other source failed.
var (
	staticTransportation = "Public transport is usually the easiest way to get around. Check local transit passes and official taxi or ride-hailing options when you arrive."
	staticSafety         = "Keep valuables out of sight, stay aware of your surroundings in crowded areas and keep a copy of your travel documents. Note the local emergency number before you go."
	staticWhenToVisit    = "Spring and autumn often bring mild weather and smaller crowds. Check seasonal weather and local holidays before booking."
)

type Handler struct {
	config       *Config
	encyclopedia Encyclopedia
	classifier   llm.ChatModel
	writer       llm.ChatModel
	generator    *datagenerator.Generator
	cache        Cache
	logger       logger.Logger
}

// NewHandler builds the tips pipeline. cache may be nil.
func NewHandler(config *Config, loader *llm.Loader, encyclopedia Encyclopedia, generator *datagenerator.Generator, cache Cache, log logger.Logger) *Handler {
	return &Handler{
		config:       config,
		encyclopedia: encyclopedia,
		classifier:   loader.Model(llm.TierFast),
		writer:       loader.Model(llm.TierStandard),
		generator:    generator,
		cache:        cache,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// Execute returns tips for the trip's destination.
func (h *Handler) Execute(ctx context.Context, trip models.Trip) *models.TipsResult {
	return models.NewTipsResult(h.Tips(ctx, trip.DestinationName()))
}

// Tips never fails for a non-empty destination: it degrades from
// encyclopedia-grounded tips to generated tips to static advice.
func (h *Handler) Tips(ctx context.Context, destination string) models.Tips {
	start := time.Now()
	defer func() {
		metrics.AgentRunDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	destination = strings.TrimSpace(destination)

	if tips, ok := h.cached(ctx, destination); ok {
		return tips
	}

	groundedCtx := ctx
	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		groundedCtx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	tips, err := h.grounded(groundedCtx, destination)
	if err == nil {
		metrics.AgentRunsTotal.WithLabelValues(TaskType, metrics.OutcomeSuccess).Inc()
		h.store(ctx, destination, tips)
		return tips
	}

	metrics.AgentFallbacksTotal.WithLabelValues(TaskType, "generator").Inc()
	h.logger.Warn("Grounded tips failed, generating instead", map[string]interface{}{
		"destination": destination,
		"errorCode":   string(errors.CodeOf(err)),
		"error":       err.Error(),
	})

	tips, err = h.generated(ctx, destination)
	if err == nil {
		metrics.AgentRunsTotal.WithLabelValues(TaskType, metrics.OutcomeSuccess).Inc()
		return tips
	}

	metrics.AgentFallbacksTotal.WithLabelValues(TaskType, "static").Inc()
	h.logger.Warn("Generated tips failed, using static advice", map[string]interface{}{
		"destination": destination,
		"error":       err.Error(),
	})
	return staticTips(destination)
}

func (h *Handler) grounded(ctx context.Context, destination string) (models.Tips, error) {
	pageID, err := h.encyclopedia.Search(ctx, destination)
	if err != nil {
		return models.Tips{}, err
	}
	if pageID == 0 {
		return models.Tips{}, errors.NewEncyclopediaRequestFailedError("search", fmt.Errorf("no article for %q", destination))
	}

	sections, err := h.encyclopedia.Sections(ctx, pageID)
	if err != nil {
		return models.Tips{}, err
	}
	if len(sections) == 0 {
		return models.Tips{}, errors.NewEncyclopediaRequestFailedError("sections", fmt.Errorf("page %d has no sections", pageID))
	}

	classified := h.classify(ctx, destination, sections)

	texts, err := h.fetchSections(ctx, pageID, classified)
	if err != nil {
		return models.Tips{}, err
	}

	buckets := make(map[Category][]string, len(categories))
	for i, c := range classified {
		if text := strings.TrimSpace(texts[i]); text != "" {
			buckets[c.Category] = append(buckets[c.Category], text)
		}
	}

	sources := make(map[Category]string, len(categories))
	var missing []Category
	for _, c := range categories {
		sources[c] = strings.Join(buckets[c], "\n\n")
		if sources[c] == "" {
			missing = append(missing, c)
		}
	}

	if len(missing) > 0 {
		extract, err := h.encyclopedia.Extract(ctx, pageID)
		if err != nil {
			return models.Tips{}, err
		}
		for _, c := range missing {
			sources[c] = extract
		}
	}

	out, err := h.synthesize(ctx, destination, sources)
	if err != nil {
		return models.Tips{}, err
	}

	h.logger.Info("Grounded tips ready", map[string]interface{}{
		"destination": destination,
		"pageId":      pageID,
		"sections":    len(classified),
		"backfilled":  len(missing),
	})

	return models.Tips{
		ID:             uuid.NewString(),
		Destination:    destination,
		Transportation: &out.Transportation,
		Safety:         &out.Safety,
		WhenToVisit:    &out.WhenToVisit,
	}, nil
}

// classify never fails: anything unusable yields no classifications.
func (h *Handler) classify(ctx context.Context, destination string, sections []wikipedia.Section) []classification {
	known := make(map[string]bool, len(sections))
	var b strings.Builder
	fmt.Fprintf(&b, "Article: %s\n\nSections:\n", destination)
	for _, s := range sections {
		known[s.Index] = true
		fmt.Fprintf(&b, "%s: %s%s\n", s.Index, strings.Repeat("  ", max(s.Level-1, 0)), s.Title)
	}

	resp, err := h.classifier.Invoke(ctx, llm.Prompt(classifyPrompt, b.String()))
	if err != nil {
		h.logger.Warn("Section classification failed", map[string]interface{}{"error": err.Error()})
		return nil
	}

	var raw []classification
	if err := llm.DecodeJSON(resp.Content, &raw); err != nil {
		h.logger.Warn("Section classification was not JSON", map[string]interface{}{"error": err.Error()})
		return nil
	}

	seen := make(map[string]bool, len(raw))
	out := make([]classification, 0, len(raw))
	for _, c := range raw {
		idx := string(c.Index)
		if !known[idx] || seen[idx] || !validCategory(c.Category) {
			continue
		}
		seen[idx] = true
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return sectionOrder(string(out[i].Index)) < sectionOrder(string(out[j].Index))
	})
	return out
}

// fetchSections loads every classified section concurrently. texts[i]
// belongs to classified[i].
func (h *Handler) fetchSections(ctx context.Context, pageID int, classified []classification) ([]string, error) {
	texts := make([]string, len(classified))
	errs := make([]error, len(classified))

	var wg sync.WaitGroup
	for i, c := range classified {
		wg.Add(1)
		go func(i int, index string) {
			defer wg.Done()
			texts[i], errs[i] = h.encyclopedia.SectionText(ctx, pageID, index)
		}(i, string(c.Index))
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return texts, nil
}

func (h *Handler) synthesize(ctx context.Context, destination string, sources map[Category]string) (synthesized, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Destination: %s\n", destination)
	for _, c := range categories {
		fmt.Fprintf(&b, "\n### %s\n", c)
		if text := strings.TrimSpace(sources[c]); text != "" {
			b.WriteString(truncate(text, h.config.MaxSourceChars))
		} else {
			fmt.Fprintf(&b, "No source text is available. Write general, widely applicable %s advice for a visitor to %s.", c, destination)
		}
		b.WriteString("\n")
	}

	resp, err := h.writer.Invoke(ctx, llm.Request{
		System:   synthesisPrompt,
		Messages: []models.Message{models.NewHumanMessage(b.String())},
		JSONMode: true,
	})
	if err != nil {
		return synthesized{}, err
	}

	var out synthesized
	if err := llm.DecodeJSON(resp.Content, &out); err != nil {
		return synthesized{}, errors.NewMalformedModelOutputError(fmt.Sprintf("tips synthesis: %v", err))
	}
	out.Transportation = strings.TrimSpace(out.Transportation)
	out.Safety = strings.TrimSpace(out.Safety)
	out.WhenToVisit = strings.TrimSpace(out.WhenToVisit)
	if out.Transportation == "" || out.Safety == "" || out.WhenToVisit == "" {
		return synthesized{}, errors.NewMalformedModelOutputError("tips synthesis left a tip empty")
	}
	return out, nil
}

func (h *Handler) generated(ctx context.Context, destination string) (models.Tips, error) {
	tips, err := datagenerator.GenerateOne(ctx, h.generator,
		models.Tips{ID: uuid.NewString(), Destination: destination},
		map[string]interface{}{"destination": destination},
		generatorDescription)
	if err != nil {
		return models.Tips{}, err
	}
	if !tips.Complete() {
		return models.Tips{}, errors.NewMalformedModelOutputError("generated tips are incomplete")
	}
	return tips, nil
}

func staticTips(destination string) models.Tips {
	transportation, safety, whenToVisit := staticTransportation, staticSafety, staticWhenToVisit
	return models.Tips{
		ID:             uuid.NewString(),
		Destination:    destination,
		Transportation: &transportation,
		Safety:         &safety,
		WhenToVisit:    &whenToVisit,
	}
}

func validCategory(c Category) bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// sectionOrder sorts MediaWiki indexes numerically; "T-1" style indexes go last.
func sectionOrder(index string) int {
	var n int
	if _, err := fmt.Sscanf(index, "%d", &n); err != nil {
		return 1 << 30
	}
	return n
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
