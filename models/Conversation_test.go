package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversationPairIsOrderIndependent(t *testing.T) {
	a1, b1 := ConversationPair(12, 4)
	a2, b2 := ConversationPair(4, 12)

	assert.Equal(t, uint(4), a1)
	assert.Equal(t, uint(12), b1)
	assert.Equal(t, a1, a2)
	assert.Equal(t, b1, b2)
}

func TestConversationPairSelf(t *testing.T) {
	a, b := ConversationPair(9, 9)
	assert.Equal(t, uint(9), a)
	assert.Equal(t, uint(9), b)
}
