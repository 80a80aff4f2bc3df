// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transcribe

import (
	"fmt"
	"strings"
)

// FailureKind classifies a page whose transcription did not produce content.
type FailureKind int

const (
	// EmptyResponse means the model answered with no choices.
	EmptyResponse FailureKind = iota + 1
	// CallFailed means the call itself failed.
	CallFailed
)

func (k FailureKind) String() string {
	switch k {
	case EmptyResponse:
		return "empty_response"
	case CallFailed:
		return "call_failed"
	default:
		return "unknown"
	}
}

// Failure describes why a page has no transcription.
type Failure struct {
	Kind   FailureKind
	Reason string
}

// Outcome is the result for one page. Page is 0-based.
type Outcome struct {
	Page    int
	Content string
	Failure *Failure
}

// Failed reports whether the page has no transcription.
func (o Outcome) Failed() bool { return o.Failure != nil }

// Markdown returns the page text for output.md. Failures render as an
// inline error line with a 1-based page number.
func (o Outcome) Markdown() string {
	if o.Failure == nil {
		return o.Content
	}
	switch o.Failure.Kind {
	case EmptyResponse:
		return fmt.Sprintf("Error: Empty choices in API response for page %d", o.Page+1)
	default:
		return fmt.Sprintf("Error processing page %d: %s", o.Page+1, o.Failure.Reason)
	}
}

// Join renders outcomes in order separated by a blank line.
func Join(outcomes []Outcome) string {
	parts := make([]string, len(outcomes))
	for i, o := range outcomes {
		parts[i] = o.Markdown()
	}
	return strings.Join(parts, "\n\n")
}

const markdownFence = "```markdown"

// StripFences removes a ```markdown wrapper the model added despite being
// told not to: every "```markdown\n" opener goes, and so does the last ```.
// Content without a ```markdown opener is returned unchanged.
func StripFences(content string) string {
	if !strings.Contains(content, markdownFence) {
		return content
	}
	content = strings.ReplaceAll(content, markdownFence+"\n", "")
	if i := strings.LastIndex(content, "```"); i >= 0 {
		content = content[:i] + content[i+3:]
	}
	return content
}
