package webhook

// Request is the inbound webhook payload from the chat platform.
type Request struct {
	Chat    Chat    `json:"chat"`
	Message Message `json:"message"`
	Agent   Agent   `json:"agent"`
}

type Chat struct {
	ID string `json:"id"`
}

type Message struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

type Agent struct {
	ID string `json:"id"`
}

// Response is what the webhook caller gets back. Most flags exist so test
// clients can assert which pipeline branch handled the message.
type Response struct {
	Success     bool   `json:"success"`
	Agent       string `json:"agent,omitempty"`
	Response    string `json:"response,omitempty"`
	RichContent bool   `json:"richContent,omitempty"`
	EasterEgg   string `json:"easterEgg,omitempty"`
	OffTopic    bool   `json:"offTopic,omitempty"`
	Skipped     bool   `json:"skipped,omitempty"`
	Reason      string `json:"reason,omitempty"`
	TestMode    bool   `json:"testMode,omitempty"`
	BaseFile    string `json:"baseFile,omitempty"`
	MessageID   string `json:"messageId,omitempty"`
	Error       string `json:"error,omitempty"`
}
