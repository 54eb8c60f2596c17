package ws

import (
	"encoding/json"
	"testing"

	"supchat-server/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(h *Hub) *Client {
	c := &Client{hub: h, send: make(chan []byte, sendBuffer)}
	h.register(c)
	return c
}

func drain(c *Client) [][]byte {
	var frames [][]byte
	for {
		select {
		case f := <-c.send:
			frames = append(frames, f)
		default:
			return frames
		}
	}
}

func decodeFrame(t *testing.T, frame []byte) (string, map[string]interface{}) {
	t.Helper()
	var env struct {
		Event string                 `json:"event"`
		Data  map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(frame, &env))
	return env.Event, env.Data
}

func TestPublishReachesOnlyRoomMembers(t *testing.T) {
	h := NewHub()
	member := testClient(h)
	outsider := testClient(h)
	h.join(member, services.ChannelRoom(5))

	h.Publish(services.ChannelRoom(5), "new_channel_message", map[string]interface{}{"content": "hi"})

	frames := drain(member)
	require.Len(t, frames, 1)
	event, data := decodeFrame(t, frames[0])
	assert.Equal(t, "new_channel_message", event)
	assert.Equal(t, "hi", data["content"])

	assert.Empty(t, drain(outsider))
}

func TestDirectMessageFanOutDeliversToBothRoomsExactlyOnce(t *testing.T) {
	h := NewHub()
	sender := testClient(h)
	receiver := testClient(h)
	h.join(sender, services.UserRoom(1))
	h.join(receiver, services.UserRoom(2))

	payload := map[string]interface{}{"content": "lunch?", "senderId": float64(1)}
	h.Publish(services.UserRoom(1), "new_direct_message", payload)
	h.Publish(services.UserRoom(2), "new_direct_message", payload)

	for _, c := range []*Client{sender, receiver} {
		frames := drain(c)
		require.Len(t, frames, 1)
		event, data := decodeFrame(t, frames[0])
		assert.Equal(t, "new_direct_message", event)
		assert.Equal(t, "lunch?", data["content"])
	}
}

func TestPublishAllReachesEveryClient(t *testing.T) {
	h := NewHub()
	a := testClient(h)
	b := testClient(h)

	h.PublishAll("status_updated", map[string]interface{}{"userId": float64(9), "status": "online"})

	for _, c := range []*Client{a, b} {
		frames := drain(c)
		require.Len(t, frames, 1)
		event, data := decodeFrame(t, frames[0])
		assert.Equal(t, "status_updated", event)
		assert.Equal(t, "online", data["status"])
	}
}

func TestUnregisterLeavesEveryRoom(t *testing.T) {
	h := NewHub()
	c := testClient(h)
	h.join(c, services.UserRoom(1))
	h.join(c, services.ChannelRoom(3))

	h.unregister(c)

	assert.Equal(t, 0, h.RoomSize(services.UserRoom(1)))
	assert.Equal(t, 0, h.RoomSize(services.ChannelRoom(3)))

	// Send channel is closed so the write pump terminates.
	_, open := <-c.send
	assert.False(t, open)

	// A second unregister must not panic on the closed channel.
	h.unregister(c)
}

func TestJoinIgnoresUnregisteredClient(t *testing.T) {
	h := NewHub()
	c := &Client{hub: h, send: make(chan []byte, 1)}

	h.join(c, services.ChannelRoom(1))

	assert.Equal(t, 0, h.RoomSize(services.ChannelRoom(1)))
}

func TestEnqueueDropsWhenBufferIsFull(t *testing.T) {
	h := NewHub()
	c := &Client{hub: h, send: make(chan []byte, 1)}
	h.register(c)
	h.join(c, services.ChannelRoom(8))

	h.Publish(services.ChannelRoom(8), "first", nil)
	h.Publish(services.ChannelRoom(8), "second", nil) // dropped, not blocking

	frames := drain(c)
	require.Len(t, frames, 1)
	event, _ := decodeFrame(t, frames[0])
	assert.Equal(t, "first", event)
}
