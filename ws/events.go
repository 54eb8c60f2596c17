package ws

import (
	"context"
	"encoding/json"
	"log"

	"supchat-server/models"
	"supchat-server/services"

	"github.com/go-playground/validator/v10"
)

// Inbound event names.
const (
	EventIdentify              = "identify"
	EventUserConnected         = "user_connected"
	EventJoin                  = "join"
	EventJoinChannel           = "join_channel"
	EventJoinWorkspace         = "join_workspace"
	EventDirectMessage         = "direct_message"
	EventChannelMessage        = "channel_message"
	EventChannelReactionUpdate = "channel_reaction_updated"
	EventChannelReactionRemove = "channel_reaction_removed"
	EventDirectReactionUpdate  = "direct_reaction_updated"
	EventDirectReactionRemove  = "direct_reaction_removed"
	EventChannelMemberAdded    = "channel_member_added"
	EventChannelMemberRemoved  = "channel_member_removed"

	EventError = "error"
)

// Pipeline routes validated socket events into the fan-out and presence
// services. Handler failures are logged and swallowed — a client that
// missed an event recovers via its next REST fetch, never a retry here.
type Pipeline struct {
	Hub      *Hub
	Fanout   *services.FanoutService
	Presence *services.PresenceService
	Validate *validator.Validate
}

type identifyInput struct {
	UserID uint `json:"userId" validate:"required"`
}

type joinChannelInput struct {
	ChannelID uint `json:"channelId" validate:"required"`
}

type joinWorkspaceInput struct {
	WorkspaceID uint `json:"workspaceId" validate:"required"`
}

type directMessageInput struct {
	SenderID      uint   `json:"senderId" validate:"required"`
	ReceiverID    uint   `json:"receiverId" validate:"required"`
	Content       string `json:"content" validate:"required_without=AttachmentURL,lt=5000"`
	Type          string `json:"type" validate:"omitempty,oneof=text file image"`
	AttachmentURL string `json:"attachmentUrl"`
}

type channelMessageInput struct {
	ChannelID  uint   `json:"channelId" validate:"required"`
	SenderID   uint   `json:"senderId" validate:"required"`
	SenderName string `json:"senderName" validate:"required"`
	Content    string `json:"content" validate:"required,lt=5000"`
	Type       string `json:"type" validate:"omitempty,oneof=text file image"`
}

type reactionUser struct {
	ID        uint   `json:"id" validate:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type reactionUpdatedInput struct {
	MessageID uint         `json:"messageId" validate:"required"`
	Emoji     string       `json:"emoji" validate:"required"`
	User      reactionUser `json:"user"`
	ChannelID uint         `json:"channelId"`
}

type reactionRemovedInput struct {
	MessageID uint `json:"messageId" validate:"required"`
	UserID    uint `json:"userId" validate:"required"`
	ChannelID uint `json:"channelId"`
}

type memberAddedInput struct {
	ChannelID uint            `json:"channelId" validate:"required"`
	Member    json.RawMessage `json:"member" validate:"required"`
}

type memberRemovedInput struct {
	ChannelID uint `json:"channelId" validate:"required"`
	UserID    uint `json:"userId" validate:"required"`
}

// dispatch decodes the envelope, validates the typed payload and routes it.
// Malformed events are rejected here, before any business logic runs.
func (p *Pipeline) dispatch(c *Client, raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		p.reject(c, "", "malformed envelope")
		return
	}

	switch env.Event {
	case EventIdentify:
		var in identifyInput
		if !p.decode(c, env, &in) {
			return
		}
		c.setUser(in.UserID)

	case EventUserConnected:
		var in identifyInput
		if !p.decode(c, env, &in) {
			return
		}
		c.setUser(in.UserID)
		p.Presence.SetOnline(context.Background(), in.UserID)
		log.Printf("🟢 user %d is now online", in.UserID)

	case EventJoin:
		var in identifyInput
		if !p.decode(c, env, &in) {
			return
		}
		p.Hub.join(c, services.UserRoom(in.UserID))

	case EventJoinChannel:
		var in joinChannelInput
		if !p.decode(c, env, &in) {
			return
		}
		p.Hub.join(c, services.ChannelRoom(in.ChannelID))

	case EventJoinWorkspace:
		var in joinWorkspaceInput
		if !p.decode(c, env, &in) {
			return
		}
		p.Hub.join(c, services.WorkspaceRoom(in.WorkspaceID))

	case EventDirectMessage:
		var in directMessageInput
		if !p.decode(c, env, &in) {
			return
		}
		msg := models.DirectMessage{
			SenderID:      in.SenderID,
			ReceiverID:    in.ReceiverID,
			Content:       in.Content,
			Type:          in.Type,
			AttachmentURL: in.AttachmentURL,
		}
		if err := p.Fanout.SendDirectMessage(&msg); err != nil {
			log.Printf("❌ ws: direct_message: %v", err)
		}

	case EventChannelMessage:
		var in channelMessageInput
		if !p.decode(c, env, &in) {
			return
		}
		// Only text messages travel the socket path; files arrive via REST.
		if in.Type != "" && in.Type != "text" {
			return
		}
		msg := models.ChannelMessage{
			ChannelID:  in.ChannelID,
			SenderID:   in.SenderID,
			SenderName: in.SenderName,
			Content:    in.Content,
			Type:       "text",
		}
		if err := p.Fanout.SendChannelMessage(&msg); err != nil {
			log.Printf("❌ ws: channel_message: %v", err)
		}

	case EventChannelReactionUpdate:
		var in reactionUpdatedInput
		if !p.decode(c, env, &in) {
			return
		}
		p.Hub.PublishAll(EventChannelReactionUpdate, in)

	case EventChannelReactionRemove:
		var in reactionRemovedInput
		if !p.decode(c, env, &in) {
			return
		}
		if in.ChannelID == 0 {
			p.reject(c, env.Event, "channelId required")
			return
		}
		p.Hub.Publish(services.ChannelRoom(in.ChannelID), EventChannelReactionRemove, in)

	case EventDirectReactionUpdate:
		var in reactionUpdatedInput
		if !p.decode(c, env, &in) {
			return
		}
		p.Hub.PublishAll(EventDirectReactionUpdate, in)

	case EventDirectReactionRemove:
		var in reactionRemovedInput
		if !p.decode(c, env, &in) {
			return
		}
		p.Hub.PublishAll(EventDirectReactionRemove, in)

	case EventChannelMemberAdded:
		var in memberAddedInput
		if !p.decode(c, env, &in) {
			return
		}
		p.Hub.Publish(services.ChannelRoom(in.ChannelID), EventChannelMemberAdded, in)

	case EventChannelMemberRemoved:
		var in memberRemovedInput
		if !p.decode(c, env, &in) {
			return
		}
		p.Hub.Publish(services.ChannelRoom(in.ChannelID), EventChannelMemberRemoved, in)

	default:
		p.reject(c, env.Event, "unknown event")
	}
}

// decode unmarshals and validates a typed payload, rejecting the event on
// failure.
func (p *Pipeline) decode(c *Client, env envelope, out interface{}) bool {
	if len(env.Data) == 0 {
		p.reject(c, env.Event, "missing data")
		return false
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		p.reject(c, env.Event, "malformed data")
		return false
	}
	if err := p.Validate.Struct(out); err != nil {
		p.reject(c, env.Event, "invalid data")
		return false
	}
	return true
}

// reject answers the offending socket only; nothing reaches the rooms.
func (p *Pipeline) reject(c *Client, event, reason string) {
	log.Printf("⚠️  ws: rejected %q event: %s", event, reason)
	frame, err := json.Marshal(outEnvelope{Event: EventError, Data: map[string]string{
		"event":  event,
		"reason": reason,
	}})
	if err != nil {
		return
	}
	c.enqueue(frame)
}
