package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestToggleReactionAddsFirstReaction(t *testing.T) {
	out, removed := ToggleReaction(nil, 7, "👍")

	require.False(t, removed)
	require.Len(t, out, 1)
	assert.Equal(t, uint(7), out[0].UserID)
	assert.Equal(t, "👍", out[0].Emoji)
}

func TestToggleReactionSameEmojiRemoves(t *testing.T) {
	reactions := []Reaction{{UserID: 7, Emoji: "👍"}, {UserID: 9, Emoji: "🎉"}}

	out, removed := ToggleReaction(reactions, 7, "👍")

	require.True(t, removed)
	require.Len(t, out, 1)
	assert.Equal(t, uint(9), out[0].UserID)
}

func TestToggleReactionNewEmojiReplaces(t *testing.T) {
	reactions := []Reaction{{UserID: 7, Emoji: "👍"}}

	out, removed := ToggleReaction(reactions, 7, "❤️")

	require.False(t, removed)
	require.Len(t, out, 1)
	assert.Equal(t, "❤️", out[0].Emoji)
}

func TestToggleReactionIsIdempotentPerClickPair(t *testing.T) {
	// Two identical clicks must land back on the starting state.
	start := []Reaction{{UserID: 3, Emoji: "🔥"}}

	after, removed := ToggleReaction(start, 7, "👍")
	require.False(t, removed)

	final, removed := ToggleReaction(after, 7, "👍")
	require.True(t, removed)
	assert.Equal(t, start, final)
}

func TestRemoveReactionLeavesOthersAlone(t *testing.T) {
	reactions := []Reaction{{UserID: 1, Emoji: "👍"}, {UserID: 2, Emoji: "👍"}}

	out := RemoveReaction(reactions, 1)

	require.Len(t, out, 1)
	assert.Equal(t, uint(2), out[0].UserID)

	// Removing a user with no reaction is a no-op.
	assert.Equal(t, out, RemoveReaction(out, 99))
}

func TestDecodeReactionsToleratesBadColumn(t *testing.T) {
	assert.Empty(t, DecodeReactions(nil))
	assert.Empty(t, DecodeReactions(datatypes.JSON(`not json`)))

	decoded := DecodeReactions(EncodeReactions([]Reaction{{UserID: 5, Emoji: "🎉"}}))
	require.Len(t, decoded, 1)
	assert.Equal(t, uint(5), decoded[0].UserID)
}

func TestDecodeReadByToleratesBadColumn(t *testing.T) {
	assert.Empty(t, DecodeReadBy(nil))
	assert.Empty(t, DecodeReadBy(datatypes.JSON(`{"oops":true}`)))

	decoded := DecodeReadBy(EncodeReadBy([]uint{1, 2, 3}))
	assert.Equal(t, []uint{1, 2, 3}, decoded)
}
