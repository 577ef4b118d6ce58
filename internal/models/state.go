// internal/models/state.go
package models

// AgentState is everything one turn of the orchestrator works on.
type AgentState struct {
	Messages []Message `json:"messages"`
	Intent   Intent    `json:"intent"`
	Trip     Trip      `json:"trip"`
	Data     Result    `json:"data"`
}

// StateUpdate is what a domain node hands back to the orchestrator.
type StateUpdate struct {
	Messages []Message
	Data     Result
}

// Append adds messages to the end of the conversation. Earlier entries are
// never rewritten.
func (s *AgentState) Append(msgs ...Message) {
	s.Messages = append(s.Messages, msgs...)
}

// Apply merges a node's update: messages are appended and Data is replaced,
// including with nil.
func (s *AgentState) Apply(u StateUpdate) {
	s.Append(u.Messages...)
	s.Data = u.Data
}

// NewTextUpdate is an update with one AI message and no data.
func NewTextUpdate(content string) StateUpdate {
	return StateUpdate{Messages: []Message{NewAIMessage(content)}}
}
