// Package core holds the pieces shared by every transport: the result
// envelope, the error taxonomy, tool policy, redaction and audit logging.
package core

// ContentTypeText is the only content kind soapbridge emits.
const ContentTypeText = "text"

// Result is the standard response wrapper for all tool calls.
// Used by the MCP transports and the HTTP API.
type Result struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// Content is a single block of a Result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// TextResult wraps text in a successful envelope.
func TextResult(text string) Result {
	return Result{Content: []Content{{Type: ContentTypeText, Text: text}}}
}

// ErrorResult wraps text in an envelope flagged as a tool-level failure.
func ErrorResult(text string) Result {
	r := TextResult(text)
	r.IsError = true
	return r
}

// Text returns the concatenated text of all blocks.
func (r Result) Text() string {
	if len(r.Content) == 1 {
		return r.Content[0].Text
	}
	var out string
	for _, c := range r.Content {
		out += c.Text
	}
	return out
}
