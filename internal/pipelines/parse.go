package pipelines

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeReply decodes a JSON payload out of an LLM reply, tolerating the
// usual markdown code fences around it.
func decodeReply(reply string, v any) error {
	text := strings.TrimSpace(reply)
	if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[idx+3:]
		text = strings.TrimPrefix(text, "json")
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("empty model reply")
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("decode model reply: %w", err)
	}
	return nil
}
