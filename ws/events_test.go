package ws

import (
	"encoding/json"
	"testing"

	"supchat-server/services"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPipeline(h *Hub) *Pipeline {
	return &Pipeline{Hub: h, Validate: validator.New()}
}

func frameOf(t *testing.T, event string, data interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{"event": event, "data": data})
	require.NoError(t, err)
	return raw
}

func TestDispatchRejectsMalformedEnvelope(t *testing.T) {
	h := NewHub()
	p := testPipeline(h)
	c := testClient(h)

	p.dispatch(c, []byte(`{not json`))

	frames := drain(c)
	require.Len(t, frames, 1)
	event, data := decodeFrame(t, frames[0])
	assert.Equal(t, EventError, event)
	assert.Equal(t, "malformed envelope", data["reason"])
}

func TestDispatchRejectsUnknownEvent(t *testing.T) {
	h := NewHub()
	p := testPipeline(h)
	c := testClient(h)

	p.dispatch(c, frameOf(t, "warp_drive", map[string]interface{}{}))

	frames := drain(c)
	require.Len(t, frames, 1)
	event, data := decodeFrame(t, frames[0])
	assert.Equal(t, EventError, event)
	assert.Equal(t, "unknown event", data["reason"])
}

func TestDispatchIdentifySetsUserID(t *testing.T) {
	h := NewHub()
	p := testPipeline(h)
	c := testClient(h)

	p.dispatch(c, frameOf(t, EventIdentify, map[string]interface{}{"userId": 42}))

	assert.Equal(t, uint(42), c.user())
	assert.Empty(t, drain(c))
}

func TestDispatchIdentifyRequiresUserID(t *testing.T) {
	h := NewHub()
	p := testPipeline(h)
	c := testClient(h)

	p.dispatch(c, frameOf(t, EventIdentify, map[string]interface{}{}))

	assert.Equal(t, uint(0), c.user())
	frames := drain(c)
	require.Len(t, frames, 1)
	event, _ := decodeFrame(t, frames[0])
	assert.Equal(t, EventError, event)
}

func TestDispatchJoinChannelSubscribesRoom(t *testing.T) {
	h := NewHub()
	p := testPipeline(h)
	c := testClient(h)

	p.dispatch(c, frameOf(t, EventJoinChannel, map[string]interface{}{"channelId": 7}))

	assert.Equal(t, 1, h.RoomSize(services.ChannelRoom(7)))
}

func TestDispatchChannelReactionRemoveRelaysToRoom(t *testing.T) {
	h := NewHub()
	p := testPipeline(h)
	sender := testClient(h)
	listener := testClient(h)
	h.join(listener, services.ChannelRoom(5))

	p.dispatch(sender, frameOf(t, EventChannelReactionRemove, map[string]interface{}{
		"messageId": 10, "userId": 3, "channelId": 5,
	}))

	frames := drain(listener)
	require.Len(t, frames, 1)
	event, data := decodeFrame(t, frames[0])
	assert.Equal(t, EventChannelReactionRemove, event)
	assert.Equal(t, float64(10), data["messageId"])
}

func TestDispatchChannelReactionRemoveNeedsChannel(t *testing.T) {
	h := NewHub()
	p := testPipeline(h)
	sender := testClient(h)
	listener := testClient(h)
	h.join(listener, services.ChannelRoom(5))

	p.dispatch(sender, frameOf(t, EventChannelReactionRemove, map[string]interface{}{
		"messageId": 10, "userId": 3,
	}))

	assert.Empty(t, drain(listener))
	frames := drain(sender)
	require.Len(t, frames, 1)
	event, data := decodeFrame(t, frames[0])
	assert.Equal(t, EventError, event)
	assert.Equal(t, "channelId required", data["reason"])
}

func TestDispatchMemberRemovedRelaysToRoom(t *testing.T) {
	h := NewHub()
	p := testPipeline(h)
	sender := testClient(h)
	member := testClient(h)
	h.join(member, services.ChannelRoom(2))

	p.dispatch(sender, frameOf(t, EventChannelMemberRemoved, map[string]interface{}{
		"channelId": 2, "userId": 8,
	}))

	frames := drain(member)
	require.Len(t, frames, 1)
	event, data := decodeFrame(t, frames[0])
	assert.Equal(t, EventChannelMemberRemoved, event)
	assert.Equal(t, float64(8), data["userId"])
}

func TestIdentifyConcurrentWithEnqueueIsSafe(t *testing.T) {
	h := NewHub()
	p := testPipeline(h)
	c := testClient(h)

	// The read pump identifies the socket while hub publishes overflow the
	// send buffer, which reads the user ID for the drop log line.
	frame := frameOf(t, EventIdentify, map[string]interface{}{"userId": 42})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			p.dispatch(c, frame)
		}
	}()
	payload := []byte(`{"event":"noise","data":{}}`)
	for i := 0; i < sendBuffer+200; i++ {
		c.enqueue(payload)
	}
	<-done

	assert.Equal(t, uint(42), c.user())
}
