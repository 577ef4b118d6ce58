// internal/models/message.go
package models

type MessageType string

const (
	MessageHuman MessageType = "human"
	MessageAI    MessageType = "ai"
	MessageTool  MessageType = "tool"
)

// ToolCall is a model's request to run one tool.
type ToolCall struct {
	ID   string                 `json:"id"`
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args"`
}

// Message is one conversation entry. Human and AI messages carry Content;
// AI messages may also carry ToolCalls; tool messages carry the JSON result
// of the call identified by ToolCallID.
type Message struct {
	Type       MessageType `json:"type"`
	Content    string      `json:"content"`
	ToolCalls  []ToolCall  `json:"toolCalls,omitempty"`
	ToolCallID string      `json:"toolCallId,omitempty"`
	Name       string      `json:"name,omitempty"`
}

func NewHumanMessage(content string) Message {
	return Message{Type: MessageHuman, Content: content}
}

func NewAIMessage(content string, calls ...ToolCall) Message {
	return Message{Type: MessageAI, Content: content, ToolCalls: calls}
}

func NewToolMessage(callID, name, content string) Message {
	return Message{Type: MessageTool, Content: content, ToolCallID: callID, Name: name}
}

// HasToolCalls reports whether an AI message asked for tools.
func (m Message) HasToolCalls() bool {
	return m.Type == MessageAI && len(m.ToolCalls) > 0
}

// LastOfType returns the most recent message with the given type.
func LastOfType(messages []Message, t MessageType) (Message, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Type == t {
			return messages[i], true
		}
	}
	return Message{}, false
}

// Tail returns at most the last n messages.
func Tail(messages []Message, n int) []Message {
	if n <= 0 || len(messages) <= n {
		return messages
	}
	return messages[len(messages)-n:]
}
