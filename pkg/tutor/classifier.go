package tutor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ClassifiedAnswer is the structured payload the model returns when a
// session has not been classified yet. InScope=false means the question
// falls outside the curriculum and Subject/Topic/Title are empty.
type ClassifiedAnswer struct {
	InScope bool   `json:"in_scope"`
	Subject string `json:"subject"`
	Topic   string `json:"topic"`
	Title   string `json:"title"`
	Answer  string `json:"answer"`
}

// ParseClassifiedAnswer extracts the JSON object from a raw model
// response. Models wrap JSON in markdown fences or surrounding prose
// more often than not, so we trim fences first and fall back to the
// outermost brace pair.
func ParseClassifiedAnswer(raw string) (*ClassifiedAnswer, error) {
	responseBytes := []byte(raw)

	// Remove markdown code blocks if present
	responseBytes = bytes.TrimSpace(responseBytes)
	responseBytes = bytes.TrimPrefix(responseBytes, []byte("```json"))
	responseBytes = bytes.TrimPrefix(responseBytes, []byte("```"))
	responseBytes = bytes.TrimSuffix(responseBytes, []byte("```"))
	responseBytes = bytes.TrimSpace(responseBytes)

	var parsed ClassifiedAnswer
	if err := json.Unmarshal(responseBytes, &parsed); err == nil {
		return &parsed, nil
	}

	// Surrounding prose: take the outermost object
	start := bytes.IndexByte(responseBytes, '{')
	end := bytes.LastIndexByte(responseBytes, '}')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in model response: %s", truncateForError(raw))
	}

	if err := json.Unmarshal(responseBytes[start:end+1], &parsed); err != nil {
		return nil, fmt.Errorf("parse classified answer: %w, raw: %s", err, truncateForError(raw))
	}
	return &parsed, nil
}

// IsRedirect reports whether answer is the out-of-scope redirect
// sentence, ignoring surrounding whitespace.
func IsRedirect(answer, redirectSentence string) bool {
	return strings.TrimSpace(answer) == redirectSentence
}

// TruncatePreview cuts s down to at most max runes for the session
// preview. Counting runes keeps multi-byte content intact.
func TruncatePreview(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func truncateForError(s string) string {
	const max = 200
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
