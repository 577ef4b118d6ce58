// internal/agents/content/destination-tips/cache.go
package destinationtips

import (
	"context"
	"encoding/json"
	"strings"

	"travel-agents/internal/common/database"
	"travel-agents/internal/common/metrics"
	"travel-agents/internal/models"
)

const cachePrefix = "tips:"

// CacheKey normalizes destination so "  New  York" and "new york" share an entry.
func CacheKey(destination string) string {
	return cachePrefix + strings.ToLower(strings.Join(strings.Fields(destination), " "))
}

func (h *Handler) cacheOn() bool {
	return h.config.CacheEnabled && h.cache != nil
}

// cached errors are logged and treated as a miss.
func (h *Handler) cached(ctx context.Context, destination string) (models.Tips, bool) {
	if !h.cacheOn() {
		return models.Tips{}, false
	}

	key := CacheKey(destination)
	raw, err := h.cache.Get(ctx, key)
	if err != nil {
		if database.IsMiss(err) {
			metrics.TipsCacheRequestsTotal.WithLabelValues("miss").Inc()
		} else {
			metrics.TipsCacheRequestsTotal.WithLabelValues("error").Inc()
			h.logger.Warn("Tips cache read failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
		return models.Tips{}, false
	}

	var tips models.Tips
	if err := json.Unmarshal([]byte(raw), &tips); err != nil || !tips.Complete() {
		metrics.TipsCacheRequestsTotal.WithLabelValues("error").Inc()
		h.logger.Warn("Discarding unreadable tips cache entry", map[string]interface{}{"key": key})
		return models.Tips{}, false
	}

	metrics.TipsCacheRequestsTotal.WithLabelValues("hit").Inc()
	h.logger.Debug("Tips served from cache", map[string]interface{}{"key": key})
	return tips, true
}

func (h *Handler) store(ctx context.Context, destination string, tips models.Tips) {
	if !h.cacheOn() {
		return
	}

	key := CacheKey(destination)
	raw, err := json.Marshal(tips)
	if err != nil {
		return
	}
	if err := h.cache.Set(ctx, key, string(raw), h.config.CacheTTL); err != nil {
		h.logger.Warn("Tips cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}
