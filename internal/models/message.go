package models

// Severity classifies a user-facing status message.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Message is a one-time status line shown after a request.
type Message struct {
	Severity Severity `json:"severity"`
	Text     string   `json:"text"`
}

func Info(text string) Message    { return Message{Severity: SeverityInfo, Text: text} }
func Success(text string) Message { return Message{Severity: SeveritySuccess, Text: text} }
func Error(text string) Message   { return Message{Severity: SeverityError, Text: text} }
