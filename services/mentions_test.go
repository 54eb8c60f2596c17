package services

import (
	"testing"

	"supchat-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mentionUsers() []models.User {
	john := models.User{FirstName: "John", LastName: "Doe"}
	john.ID = 1
	jane := models.User{FirstName: "Jane", LastName: "Dupont"}
	jane.ID = 2
	otherJohn := models.User{FirstName: "john", LastName: "doe"}
	otherJohn.ID = 3
	return []models.User{john, jane, otherJohn}
}

func TestExtractMentionsExactMatch(t *testing.T) {
	got := ExtractMentions("hello @Jane Dupont, ping me", mentionUsers())

	require.Len(t, got, 1)
	assert.Equal(t, uint(2), got[0].ID)
}

func TestExtractMentionsIsCaseInsensitive(t *testing.T) {
	got := ExtractMentions("cc @jane DUPONT", mentionUsers())

	require.Len(t, got, 1)
	assert.Equal(t, uint(2), got[0].ID)
}

func TestExtractMentionsDotSeparator(t *testing.T) {
	got := ExtractMentions("ping @Jane.Dupont please", mentionUsers())

	require.Len(t, got, 1)
	assert.Equal(t, uint(2), got[0].ID)
}

func TestExtractMentionsRecordsEveryHomonym(t *testing.T) {
	// Two users share the name John Doe: both get the mention.
	got := ExtractMentions("hello @John Doe", mentionUsers())

	require.Len(t, got, 2)
	assert.Equal(t, uint(1), got[0].ID)
	assert.Equal(t, uint(3), got[1].ID)
}

func TestExtractMentionsDeduplicatesRepeats(t *testing.T) {
	got := ExtractMentions("@Jane Dupont then again @Jane Dupont", mentionUsers())

	assert.Len(t, got, 1)
}

func TestExtractMentionsUnknownNameIgnored(t *testing.T) {
	assert.Nil(t, ExtractMentions("hey @Ghost Writer", mentionUsers()))
}

func TestExtractMentionsNoMentionSyntax(t *testing.T) {
	assert.Nil(t, ExtractMentions("plain message without at-signs", mentionUsers()))
}

func TestExtractMentionsAccentedNames(t *testing.T) {
	rene := models.User{FirstName: "René", LastName: "Lefèvre"}
	rene.ID = 4

	got := ExtractMentions("bonjour @René Lefèvre", []models.User{rene})

	require.Len(t, got, 1)
	assert.Equal(t, uint(4), got[0].ID)
}
