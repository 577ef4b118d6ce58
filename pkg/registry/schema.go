// pkg/registry/schema.go
package registry

// AgentRegistry is the catalog of agents the service can route to.
type AgentRegistry struct {
	Version     string  `json:"version"`
	LastUpdated string  `json:"lastUpdated"`
	Agents      []Agent `json:"agents"`
}

type Agent struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	Category    string `json:"category"`
	TaskType    string `json:"taskType"`
	// Intent is empty for agents that are not routing targets.
	Intent     string   `json:"intent,omitempty"`
	ModelTiers []string `json:"modelTiers"`
	Tools      []string `json:"tools,omitempty"`
	ResultType string   `json:"resultType,omitempty"`
	ErrorCodes []string `json:"errorCodes"`
	Timeout    string   `json:"timeout"`
	Tags       []string `json:"tags"`
}
