package domain

// Roles accepted by the upstream provider.
const (
	WireRoleSystem    = "system"
	WireRoleUser      = "user"
	WireRoleAssistant = "assistant"
	WireRoleTool      = "tool"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body the client posts to the relay.
type ChatRequest struct {
	Messages       []ChatMessage  `json:"messages"`
	SessionSummary string         `json:"sessionSummary,omitempty"`
	Options        map[string]any `json:"options,omitempty"`
}
