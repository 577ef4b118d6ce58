// internal/agents/routing/classify-intent/models.go
package classifyintent

type classifierOutput struct {
	Intent string `json:"intent"`
}
