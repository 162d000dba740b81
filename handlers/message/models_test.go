package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParticipantPairCanonicalOrder(t *testing.T) {
	one, two := participantPair("bbb", "aaa")
	assert.Equal(t, "aaa", one)
	assert.Equal(t, "bbb", two)

	// Same pair regardless of argument order
	oneAgain, twoAgain := participantPair("aaa", "bbb")
	assert.Equal(t, one, oneAgain)
	assert.Equal(t, two, twoAgain)
}
