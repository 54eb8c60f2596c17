package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// Reaction is one user's emoji on a message, stored embedded in the
// message row's JSON column. Invariant: at most one reaction per user per
// message; a new emoji replaces the previous one.
type Reaction struct {
	UserID uint   `json:"userId"`
	Emoji  string `json:"emoji"`
}

// DecodeReactions parses the stored JSON column. A null or empty column
// decodes to an empty slice; corrupt data is treated the same way rather
// than failing the whole message read.
func DecodeReactions(raw datatypes.JSON) []Reaction {
	if len(raw) == 0 {
		return []Reaction{}
	}
	var out []Reaction
	if err := json.Unmarshal(raw, &out); err != nil {
		return []Reaction{}
	}
	return out
}

// EncodeReactions serializes back into the JSON column format.
func EncodeReactions(reactions []Reaction) datatypes.JSON {
	if reactions == nil {
		reactions = []Reaction{}
	}
	raw, err := json.Marshal(reactions)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(raw)
}

// ToggleReaction applies a reaction click: the same emoji twice removes it,
// any other emoji replaces the user's previous reaction. Returns the new
// slice and whether the click removed the reaction.
func ToggleReaction(reactions []Reaction, userID uint, emoji string) ([]Reaction, bool) {
	for _, r := range reactions {
		if r.UserID == userID && r.Emoji == emoji {
			return RemoveReaction(reactions, userID), true
		}
	}
	out := RemoveReaction(reactions, userID)
	return append(out, Reaction{UserID: userID, Emoji: emoji}), false
}

// RemoveReaction drops the user's reaction if present.
func RemoveReaction(reactions []Reaction, userID uint) []Reaction {
	out := make([]Reaction, 0, len(reactions))
	for _, r := range reactions {
		if r.UserID != userID {
			out = append(out, r)
		}
	}
	return out
}

// DecodeReadBy parses the readBy JSON column into user IDs.
func DecodeReadBy(raw datatypes.JSON) []uint {
	if len(raw) == 0 {
		return []uint{}
	}
	var out []uint
	if err := json.Unmarshal(raw, &out); err != nil {
		return []uint{}
	}
	return out
}

// EncodeReadBy serializes user IDs back into the readBy column.
func EncodeReadBy(ids []uint) datatypes.JSON {
	if ids == nil {
		ids = []uint{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(raw)
}
