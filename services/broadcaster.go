package services

import "fmt"

// Broadcaster publishes an event to every socket joined to a room. Delivery
// is at-most-once and best-effort: no acknowledgement, no retry. The ws.Hub
// implements it; handlers receive it explicitly instead of reaching for a
// process-global socket server.
type Broadcaster interface {
	Publish(room string, event string, payload interface{})
	// PublishAll delivers to every connected socket regardless of rooms.
	PublishAll(event string, payload interface{})
}

// Room names. One personal room per user, one per channel, one per
// workspace; a channel message is broadcast once to the channel room rather
// than once per member.
func UserRoom(userID uint) string { return fmt.Sprintf("user:%d", userID) }

func ChannelRoom(channelID uint) string { return fmt.Sprintf("channel:%d", channelID) }

func WorkspaceRoom(workspaceID uint) string { return fmt.Sprintf("workspace:%d", workspaceID) }
