package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONArrayPlain(t *testing.T) {
	var out []int
	err := ExtractJSONArray("[1, 2, 3]", &out)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, out)
}

func TestExtractJSONArrayWrappedInProse(t *testing.T) {
	content := "Sure! Here are the matches you asked for:\n```json\n" +
		`[{"index": 0, "score": 85}]` + "\n```\nLet me know if you need more."

	var out []struct {
		Index int `json:"index"`
		Score int `json:"score"`
	}
	err := ExtractJSONArray(content, &out)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 85, out[0].Score)
}

func TestExtractJSONArrayNoArray(t *testing.T) {
	var out []int
	err := ExtractJSONArray("I could not produce any results.", &out)
	assert.Error(t, err)
}

func TestExtractJSONArrayInvalidJSON(t *testing.T) {
	var out []int
	err := ExtractJSONArray("[1, 2, oops]", &out)
	assert.Error(t, err)
}
