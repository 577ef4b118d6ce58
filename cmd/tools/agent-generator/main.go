// cmd/tools/agent-generator/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"travel-agents/pkg/registry"
)

// AgentData holds data for templates
type AgentData struct {
	Name        string
	PackageName string
	TaskType    string
	Intent      string
	Description string
	Tier        string
	Tools       []string
	ErrorCodes  []string
}

const configTemplate = `// internal/agents/{{ .Dir }}/config.go
package {{ .PackageName }}

type Config struct {
	GenerateSummaries bool
}

func LoadConfig() *Config {
	return &Config{
		GenerateSummaries: true,
	}
}
`

const handlerTemplate = `// internal/agents/{{ .Dir }}/handler.go
package {{ .PackageName }}

import (
	"context"
	"time"

	"travel-agents/internal/common/errors"
	"travel-agents/internal/common/llm"
	"travel-agents/internal/common/logger"
	"travel-agents/internal/common/metrics"
	"travel-agents/internal/models"
)

const TaskType = "{{ .TaskType }}"

// {{ .Description }}
type Handler struct {
	config *Config
	model  llm.ChatModel
	errors *errors.ErrorHandler
	logger logger.Logger
}

func NewHandler(config *Config, loader *llm.Loader, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{
		"taskType": TaskType,
	})
	return &Handler{
		config: config,
		model:  loader.Model(llm.Tier{{ upperFirst .Tier }}),
		errors: errors.NewErrorHandler(log),
		logger: log,
	}
}

func (h *Handler) Execute(ctx context.Context, state models.AgentState) models.StateUpdate {
	start := time.Now()
	defer func() {
		metrics.AgentRunDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	}()

	update, err := h.execute(ctx, state)
	if err != nil {
		return models.NewTextUpdate(h.errors.HandleAgentError(TaskType, err))
	}
	metrics.AgentRunsTotal.WithLabelValues(TaskType, metrics.OutcomeSuccess).Inc()
	return update
}

func (h *Handler) execute(ctx context.Context, state models.AgentState) (models.StateUpdate, error) {
	resp, err := h.model.Invoke(ctx, llm.Request{
		System:   "You are the {{ .Name }} agent of a travel planning assistant.",
		Messages: state.Messages,
	})
	if err != nil {
		return models.StateUpdate{}, err
	}
	return models.NewTextUpdate(resp.Content), nil
}
`

const testTemplate = `package {{ .PackageName }}

import (
	"context"
	"testing"

	"travel-agents/internal/common/errors"
	"travel-agents/internal/common/llm/llmtest"
	"travel-agents/internal/common/logger"
	"travel-agents/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute(t *testing.T) {
	tests := []struct {
		name string
		step llmtest.Step
		want string
	}{
		{"reply", llmtest.Text("Here you go."), "Here you go."},
		{"model error", llmtest.Fail(errors.NewLLMTimeoutError("{{ .Tier }}", 0)), errors.ApologyMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := llmtest.NewScriptedModel(tt.step)
			handler := NewHandler(LoadConfig(), llmtest.Loader(model, model, model), logger.NewTestLogger(t))

			update := handler.Execute(context.Background(), models.AgentState{
				Messages: []models.Message{models.NewHumanMessage("hello")},
			})

			require.Len(t, update.Messages, 1)
			assert.Equal(t, tt.want, update.Messages[0].Content)
		})
	}
}
`

// upperFirst makes the first character uppercase
func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func main() {
	agentID := flag.String("agent", "", "Agent ID from registry (e.g., weather)")
	outputDir := flag.String("output", "./internal/agents/", "Output directory for the generated agent")
	registryPath := flag.String("registry", "", "Path to the agent registry JSON file, empty for the built-in catalog")
	force := flag.Bool("force", false, "Overwrite existing files")
	flag.Parse()

	if *agentID == "" {
		fmt.Println("Usage: agent-generator --agent <id> [--output <dir>] [--registry <path>]")
		fmt.Println("\nExample:")
		fmt.Println("  registry-updater add -id weather -displayName Weather -category travel -intent weather")
		fmt.Println("  go run ./cmd/tools/agent-generator --agent weather --registry configs/agents.json")
		os.Exit(1)
	}

	var (
		reg *registry.AgentRegistry
		err error
	)
	if *registryPath == "" {
		reg, err = registry.Default()
	} else {
		reg, err = registry.LoadRegistry(*registryPath)
	}
	if err != nil {
		fmt.Printf("Error loading registry: %v\n", err)
		os.Exit(1)
	}

	var agent *registry.Agent
	for i := range reg.Agents {
		if reg.Agents[i].ID == *agentID {
			agent = &reg.Agents[i]
			break
		}
	}
	if agent == nil {
		fmt.Printf("Agent '%s' not found in registry\n", *agentID)
		os.Exit(1)
	}

	tier := "fast"
	if len(agent.ModelTiers) > 0 {
		tier = agent.ModelTiers[0]
	}
	description := agent.Description
	if description == "" {
		description = "Handler runs the " + agent.DisplayName + " agent."
	}

	dir := filepath.Join(agent.Category, agent.ID)
	data := struct {
		AgentData
		Dir string
	}{
		AgentData: AgentData{
			Name:        agent.DisplayName,
			PackageName: strings.ReplaceAll(agent.ID, "-", ""),
			TaskType:    agent.TaskType,
			Intent:      agent.Intent,
			Description: description,
			Tier:        tier,
			Tools:       agent.Tools,
			ErrorCodes:  agent.ErrorCodes,
		},
		Dir: filepath.ToSlash(dir),
	}

	agentDir := filepath.Join(*outputDir, dir)
	if err := os.MkdirAll(agentDir, 0755); err != nil {
		fmt.Printf("Error creating directory: %v\n", err)
		os.Exit(1)
	}

	funcMap := template.FuncMap{"upperFirst": upperFirst}
	templates := map[string]string{
		"config.go":       configTemplate,
		"handler.go":      handlerTemplate,
		"handler_test.go": testTemplate,
	}

	for filename, tmplStr := range templates {
		filePath := filepath.Join(agentDir, filename)
		if _, err := os.Stat(filePath); err == nil && !*force {
			fmt.Printf("- Skipped %s (exists, use --force)\n", filePath)
			continue
		}

		tmpl, err := template.New(filename).Funcs(funcMap).Parse(tmplStr)
		if err != nil {
			fmt.Printf("Error parsing template %s: %v\n", filename, err)
			continue
		}

		file, err := os.Create(filePath)
		if err != nil {
			fmt.Printf("Error creating file %s: %v\n", filePath, err)
			continue
		}
		if err := tmpl.Execute(file, data); err != nil {
			fmt.Printf("Error executing template for %s: %v\n", filename, err)
		}
		file.Close()

		fmt.Printf("✓ Generated %s\n", filePath)
	}

	fmt.Printf("\n✅ Agent scaffold generated at: %s\n", agentDir)
	fmt.Printf("\nNext steps:\n")
	fmt.Printf("  1. Write the prompt and result handling in handler.go\n")
	if data.Intent != "" {
		fmt.Printf("  2. Add models.Intent%s to internal/models/intent.go\n", upperFirst(data.Intent))
		fmt.Printf("  3. Register the handler in internal/app/app.go\n")
	} else {
		fmt.Printf("  2. Call the handler from the agent that needs it\n")
	}
}
