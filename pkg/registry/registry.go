// pkg/registry/registry.go
package registry

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

//go:embed agents.json
var defaultCatalog []byte

var validCategories = map[string]bool{
	"routing": true,
	"travel":  true,
	"core":    true,
	"content": true,
}

var validTiers = map[string]bool{
	"fast":     true,
	"standard": true,
	"smart":    true,
}

// Default returns the catalog compiled into the binary.
func Default() (*AgentRegistry, error) {
	return Parse(defaultCatalog)
}

func LoadRegistry(path string) (*AgentRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*AgentRegistry, error) {
	var reg AgentRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse agent registry: %w", err)
	}
	return &reg, nil
}

// Validate checks required fields and that every intent in routable has
// exactly one agent.
func (r *AgentRegistry) Validate(routable ...string) error {
	if len(r.Agents) == 0 {
		return fmt.Errorf("registry contains no agents")
	}

	ids := make(map[string]bool, len(r.Agents))
	intents := make(map[string]string, len(r.Agents))
	for _, agent := range r.Agents {
		if agent.ID == "" {
			return fmt.Errorf("agent missing required field: id")
		}
		if ids[agent.ID] {
			return fmt.Errorf("duplicate agent id: %s", agent.ID)
		}
		ids[agent.ID] = true

		if agent.DisplayName == "" {
			return fmt.Errorf("agent %s missing required field: displayName", agent.ID)
		}
		if agent.TaskType == "" {
			return fmt.Errorf("agent %s missing required field: taskType", agent.ID)
		}
		if !validCategories[agent.Category] {
			return fmt.Errorf("agent %s has unknown category %q", agent.ID, agent.Category)
		}
		for _, tier := range agent.ModelTiers {
			if !validTiers[tier] {
				return fmt.Errorf("agent %s has unknown model tier %q", agent.ID, tier)
			}
		}
		if agent.Timeout != "" {
			if _, err := time.ParseDuration(agent.Timeout); err != nil {
				return fmt.Errorf("agent %s has invalid timeout %q", agent.ID, agent.Timeout)
			}
		}

		if agent.Intent != "" {
			if other, dup := intents[agent.Intent]; dup {
				return fmt.Errorf("intent %s is claimed by both %s and %s", agent.Intent, other, agent.ID)
			}
			intents[agent.Intent] = agent.ID
		}
	}

	for _, intent := range routable {
		if _, ok := intents[intent]; !ok {
			return fmt.Errorf("no agent registered for intent %s", intent)
		}
	}
	return nil
}

// ByIntent returns the agent that handles intent.
func (r *AgentRegistry) ByIntent(intent string) (Agent, bool) {
	for _, agent := range r.Agents {
		if agent.Intent == intent {
			return agent, true
		}
	}
	return Agent{}, false
}

// Save writes the registry as indented JSON, creating parent directories.
func (r *AgentRegistry) Save(path string) error {
	r.LastUpdated = time.Now().UTC().Format(time.RFC3339)

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}
