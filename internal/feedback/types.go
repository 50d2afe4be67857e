package feedback

import "context"

// Chat roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn
type Message struct {
	Role    string
	Content string
}

// ChatCompletion is a remote language model.
// Sampling parameters are left at the service defaults.
type ChatCompletion interface {
	Complete(ctx context.Context, messages []Message, model string) (string, error)
	Name() string
}

// Result is the model's feedback on one sentence.
// Raw is returned to callers unchanged; the other fields are parsed from it
// and may be empty when the model ignores the requested format.
type Result struct {
	Raw            string `json:"raw"`
	Feedback       string `json:"feedback,omitempty"`
	Correction     string `json:"correction,omitempty"`
	PracticePrompt string `json:"practice_prompt,omitempty"`
}
