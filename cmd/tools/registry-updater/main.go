// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"travel-agents/internal/models"
	"travel-agents/pkg/registry"
)

const defaultPath = "configs/agents.json"

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "add":
		err = runAdd(os.Args[2:])
	case "update":
		err = runUpdate(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	case "list":
		err = runList(os.Args[2:])
	case "export":
		err = runExport(os.Args[2:])
	default:
		help()
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runAdd(args []string) error {
	cmd := flag.NewFlagSet("add", flag.ExitOnError)
	path := cmd.String("path", defaultPath, "Path to registry file")
	id := cmd.String("id", "", "Agent ID (e.g., weather)")
	displayName := cmd.String("displayName", "", "Display name")
	description := cmd.String("description", "", "Description")
	category := cmd.String("category", "", "Category (routing, travel, core, content)")
	taskType := cmd.String("taskType", "", "Task type, defaults to the ID")
	intent := cmd.String("intent", "", "Intent routed to this agent")
	tiers := cmd.String("tiers", "fast", "Comma separated model tiers")
	tools := cmd.String("tools", "", "Comma separated tool names")
	timeout := cmd.String("timeout", "60s", "Timeout")
	cmd.Parse(args)

	if *id == "" || *displayName == "" || *category == "" {
		cmd.Usage()
		return fmt.Errorf("id, displayName and category are required for add")
	}
	if *taskType == "" {
		*taskType = *id
	}

	reg, err := loadOrSeed(*path)
	if err != nil {
		return err
	}
	for _, existing := range reg.Agents {
		if existing.ID == *id {
			return fmt.Errorf("agent with ID %s already exists", *id)
		}
	}

	reg.Agents = append(reg.Agents, registry.Agent{
		ID:          *id,
		DisplayName: *displayName,
		Description: *description,
		Category:    *category,
		TaskType:    *taskType,
		Intent:      *intent,
		ModelTiers:  splitList(*tiers),
		Tools:       splitList(*tools),
		ErrorCodes:  []string{},
		Timeout:     *timeout,
		Tags:        []string{},
	})
	if err := reg.Validate(); err != nil {
		return err
	}
	if err := reg.Save(*path); err != nil {
		return err
	}
	fmt.Printf("Added agent: %s\n", *id)
	return nil
}

func runUpdate(args []string) error {
	cmd := flag.NewFlagSet("update", flag.ExitOnError)
	path := cmd.String("path", defaultPath, "Path to registry file")
	id := cmd.String("id", "", "Agent ID to update")
	field := cmd.String("field", "", "Field to update")
	value := cmd.String("value", "", "New value for the field")
	cmd.Parse(args)

	if *id == "" || *field == "" {
		cmd.Usage()
		return fmt.Errorf("id and field are required for update")
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	agent := find(reg, *id)
	if agent == nil {
		return fmt.Errorf("agent with ID %s not found", *id)
	}
	if err := setField(agent, *field, *value); err != nil {
		return err
	}
	if err := reg.Validate(); err != nil {
		return err
	}
	if err := reg.Save(*path); err != nil {
		return err
	}
	fmt.Printf("Updated agent %s, field %s to %q\n", *id, *field, *value)
	return nil
}

func runValidate(args []string) error {
	cmd := flag.NewFlagSet("validate", flag.ExitOnError)
	path := cmd.String("path", "", "Path to registry file, empty for the built-in catalog")
	cmd.Parse(args)

	reg, err := open(*path)
	if err != nil {
		return err
	}
	if err := reg.Validate(routableIntents()...); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	fmt.Printf("Registry validation passed. Found %d agents.\n", len(reg.Agents))
	return nil
}

func runList(args []string) error {
	cmd := flag.NewFlagSet("list", flag.ExitOnError)
	path := cmd.String("path", "", "Path to registry file, empty for the built-in catalog")
	cmd.Parse(args)

	reg, err := open(*path)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tINTENT\tCATEGORY\tTIERS\tTIMEOUT")
	for _, a := range reg.Agents {
		intent := a.Intent
		if intent == "" {
			intent = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", a.ID, intent, a.Category, strings.Join(a.ModelTiers, ","), a.Timeout)
	}
	return w.Flush()
}

// runExport writes the built-in catalog to disk so it can be edited and
// loaded through agents.registry_path.
func runExport(args []string) error {
	cmd := flag.NewFlagSet("export", flag.ExitOnError)
	path := cmd.String("path", defaultPath, "Destination file")
	cmd.Parse(args)

	reg, err := registry.Default()
	if err != nil {
		return err
	}
	if err := reg.Save(*path); err != nil {
		return err
	}
	fmt.Printf("Wrote %d agents to %s\n", len(reg.Agents), *path)
	return nil
}

func open(path string) (*registry.AgentRegistry, error) {
	if path == "" {
		return registry.Default()
	}
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	return reg, nil
}

// loadOrSeed starts from the built-in catalog when the file does not exist yet.
func loadOrSeed(path string) (*registry.AgentRegistry, error) {
	reg, err := registry.LoadRegistry(path)
	if err == nil {
		return reg, nil
	}
	if os.IsNotExist(err) {
		return registry.Default()
	}
	return nil, fmt.Errorf("failed to load registry: %w", err)
}

func find(reg *registry.AgentRegistry, id string) *registry.Agent {
	for i := range reg.Agents {
		if reg.Agents[i].ID == id {
			return &reg.Agents[i]
		}
	}
	return nil
}

func setField(agent *registry.Agent, field, value string) error {
	switch field {
	case "displayName":
		agent.DisplayName = value
	case "description":
		agent.Description = value
	case "category":
		agent.Category = value
	case "taskType":
		agent.TaskType = value
	case "intent":
		agent.Intent = value
	case "timeout":
		agent.Timeout = value
	case "resultType":
		agent.ResultType = value
	case "tiers":
		agent.ModelTiers = splitList(value)
	case "tools":
		agent.Tools = splitList(value)
	case "tags":
		agent.Tags = splitList(value)
	default:
		return fmt.Errorf("unknown field: %s", field)
	}
	return nil
}

func routableIntents() []string {
	var out []string
	for _, intent := range models.AllIntents {
		if intent != models.IntentUnsupported {
			out = append(out, string(intent))
		}
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func help() {
	fmt.Println(`
Usage: registry-updater <command> [flags]

Commands:
  add       Add an agent to a registry file
  update    Update one field of an agent
  validate  Check a registry covers every routable intent
  list      Print the agents in a registry
  export    Write the built-in catalog to a file
  help      Show this help message

Examples:
  registry-updater export -path configs/agents.json
  registry-updater update -path configs/agents.json -id flight-search -field timeout -value 120s
  registry-updater validate -path configs/agents.json
  registry-updater list

Use 'registry-updater <command> -h' for more information about a command.`)
}
