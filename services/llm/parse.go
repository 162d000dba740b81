package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSONArray unmarshals the first bracket-delimited array found in
// content into v. Models wrap JSON in prose or markdown fences often enough
// that callers should treat a failure here as an empty result, not an error
// worth surfacing.
func ExtractJSONArray(content string, v interface{}) error {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end < start {
		return fmt.Errorf("no JSON array found in response")
	}
	return json.Unmarshal([]byte(content[start:end+1]), v)
}
