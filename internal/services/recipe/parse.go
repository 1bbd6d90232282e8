package recipe

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseDrafts decodes the text service's reply. Empty, "null" and "[]"
// replies decode to no drafts; anything that is not an array of drafts with
// names is an error.
func ParseDrafts(raw string) ([]Draft, error) {
	raw = strings.TrimSpace(raw)
	raw = stripCodeFence(raw)
	if raw == "" {
		return nil, nil
	}

	var drafts []Draft
	if err := json.Unmarshal([]byte(raw), &drafts); err != nil {
		return nil, fmt.Errorf("invalid recipe JSON: %w", err)
	}

	for i, d := range drafts {
		if strings.TrimSpace(d.Name) == "" {
			return nil, fmt.Errorf("recipe %d has no recipeName", i)
		}
	}

	return drafts, nil
}

// stripCodeFence removes a ```json fence some models wrap around JSON output.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
