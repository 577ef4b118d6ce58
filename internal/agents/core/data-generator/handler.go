// internal/agents/core/data-generator/handler.go
package datagenerator

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"travel-agents/internal/common/errors"
	"travel-agents/internal/common/llm"
	"travel-agents/internal/common/logger"
)

const (
	TaskType = "data-generator"
)

const systemPrompt = `You complete JSON records for a travel planning assistant.
You receive an array of records in which some fields are null. Replace every null field with a realistic, specific value that fits the description and the trip context.
Rules:
- Return ONLY a JSON array with exactly as many objects as you were given, in the same order.
- Keep every field name. Do not add fields.
- Never change a field that is not null.
- Use numbers for numeric fields, strings for text, arrays for lists and {"lat": number, "lng": number} for locations.`

type Generator struct {
	config *Config
	model  llm.ChatModel
	logger logger.Logger
}

func NewGenerator(config *Config, model llm.ChatModel, log logger.Logger) *Generator {
	return &Generator{
		config: config,
		model:  model,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// Generate fills the nil fields of req.Data. The result always has
// len(req.Data) elements and every non-nil input field is carried over
// unchanged, whatever the model returned for it.
func Generate[T any](ctx context.Context, g *Generator, req Request[T]) ([]T, error) {
	if len(req.Data) == 0 {
		return []T{}, nil
	}

	templates := make([]record, len(req.Data))
	for i, item := range req.Data {
		m, err := toRecord(item)
		if err != nil {
			return nil, errors.NewInternalError(fmt.Errorf("encode template %d: %w", i, err))
		}
		templates[i] = m
	}

	filled, err := g.fill(ctx, templates, req.Context, req.Description)
	if err != nil {
		return nil, err
	}

	out := make([]T, len(filled))
	for i, m := range filled {
		item, err := fromRecord[T](m)
		if err != nil {
			return nil, errors.NewMalformedModelOutputError(fmt.Sprintf("element %d: %v", i, err))
		}
		out[i] = item
	}
	return out, nil
}

// GenerateOne is Generate for a single record.
func GenerateOne[T any](ctx context.Context, g *Generator, item T, context map[string]interface{}, description string) (T, error) {
	out, err := Generate(ctx, g, Request[T]{
		Data:        []T{item},
		Context:     context,
		Description: description,
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out[0], nil
}

func (g *Generator) fill(ctx context.Context, templates []record, tripContext map[string]interface{}, description string) ([]record, error) {
	nullFields := nullFieldsOf(templates[0])
	if len(nullFields) == 0 {
		return templates, nil
	}

	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	prompt, err := buildPrompt(templates, nullFields, tripContext, description)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}

	resp, err := g.model.Invoke(ctx, llm.Prompt(systemPrompt, prompt))
	if err != nil {
		return nil, err
	}

	generated, err := parseRecords(resp.Content)
	if err != nil {
		g.logger.Warn("Generator output was not JSON", map[string]interface{}{
			"error":  err.Error(),
			"length": len(resp.Content),
		})
		return nil, errors.NewMalformedModelOutputError(err.Error())
	}
	if len(generated) == 0 {
		return nil, errors.NewMalformedModelOutputError("generator returned no records")
	}

	if len(generated) != len(templates) {
		g.logger.Warn("Generator returned a different number of records", map[string]interface{}{
			"expected": len(templates),
			"got":      len(generated),
		})
	}

	merged := make([]record, len(templates))
	filledAny := false
	for i, tmpl := range templates {
		var gen record
		if i < len(generated) {
			gen = generated[i]
		}
		merged[i] = merge(tmpl, gen)
		if len(nullFieldsOf(merged[i])) < len(nullFieldsOf(tmpl)) {
			filledAny = true
		}
	}
	if !filledAny {
		return nil, errors.NewMalformedModelOutputError("generator filled no fields")
	}

	g.logger.Info("Records generated", map[string]interface{}{
		"count":      len(merged),
		"nullFields": len(nullFields),
	})
	return merged, nil
}

func buildPrompt(templates []record, nullFields []string, tripContext map[string]interface{}, description string) (string, error) {
	data, err := json.MarshalIndent(templates, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal templates: %w", err)
	}
	if tripContext == nil {
		tripContext = map[string]interface{}{}
	}
	ctxJSON, err := json.MarshalIndent(tripContext, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal context: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Description: %s\n\n", description)
	fmt.Fprintf(&b, "Trip context:\n%s\n\n", ctxJSON)
	fmt.Fprintf(&b, "Fields to fill in every record: %s\n\n", strings.Join(nullFields, ", "))
	fmt.Fprintf(&b, "Records (%d):\n%s", len(templates), data)
	return b.String(), nil
}

// parseRecords accepts an array of objects or a single object.
func parseRecords(content string) ([]record, error) {
	var many []record
	if err := llm.DecodeJSON(content, &many); err == nil {
		return many, nil
	}
	var one record
	if err := llm.DecodeJSON(content, &one); err != nil {
		return nil, fmt.Errorf("expected a JSON array or object: %w", err)
	}
	return []record{one}, nil
}

// merge keeps the template's keys. Non-nil template values always win;
// nil ones take the generated value if there is one.
func merge(tmpl, gen record) record {
	out := make(record, len(tmpl))
	for k, v := range tmpl {
		if v != nil {
			out[k] = v
			continue
		}
		if gv, ok := gen[k]; ok {
			out[k] = gv
		} else {
			out[k] = nil
		}
	}
	return out
}

func nullFieldsOf(m record) []string {
	var fields []string
	for k, v := range m {
		if v == nil {
			fields = append(fields, k)
		}
	}
	sort.Strings(fields)
	return fields
}

func toRecord(v interface{}) (record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m record
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("template must be a JSON object")
	}
	return m, nil
}

// fromRecord decodes m into T. Generated values whose JSON type does not fit
// the field are dropped back to nil rather than failing the whole record.
func fromRecord[T any](m record) (T, error) {
	var out T
	raw, err := json.Marshal(m)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err == nil {
		return out, nil
	}

	clean := make(record, len(m))
	for k, v := range m {
		single, err := json.Marshal(record{k: v})
		if err != nil {
			clean[k] = nil
			continue
		}
		var one T
		if err := json.Unmarshal(single, &one); err != nil {
			clean[k] = nil
			continue
		}
		clean[k] = v
	}

	raw, err = json.Marshal(clean)
	if err != nil {
		return out, err
	}
	out = *new(T)
	err = json.Unmarshal(raw, &out)
	return out, err
}
