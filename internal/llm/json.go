package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

// DecodeJSON decodes a model reply into v, tolerating a surrounding
// markdown code fence.
func DecodeJSON(text string, v any) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("empty response")
	}

	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")
		endIdx := len(lines)
		for i := len(lines) - 1; i > 0; i-- {
			if strings.TrimSpace(lines[i]) == "```" {
				endIdx = i
				break
			}
		}
		text = strings.Join(lines[1:endIdx], "\n")
	}

	return json.Unmarshal([]byte(text), v)
}
