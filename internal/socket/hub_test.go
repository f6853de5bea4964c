package socket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// participants allows group rooms per user: group id -> user ids.
type participants map[string][]string

func (p participants) IsParticipant(_ context.Context, groupID, userID string) (bool, error) {
	for _, id := range p[groupID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub()
	go h.Run()
	t.Cleanup(h.Stop)
	return h
}

func connect(t *testing.T, h *Hub, userID string) *Client {
	t.Helper()
	c := NewClient(h, userID, nil)
	h.register <- c
	return c
}

// next returns the first message of type want, skipping presence and
// other traffic.
func next(t *testing.T, c *Client, want MessageType) Message {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case data, ok := <-c.Send:
			require.True(t, ok, "send channel closed while waiting for %s", want)
			var msg Message
			require.NoError(t, json.Unmarshal(data, &msg))
			if msg.Type == want {
				return msg
			}
		case <-timeout:
			t.Fatalf("no %s message for %s", want, c.UserID)
		}
	}
}

// none asserts that no message of type unwanted shows up for a while.
func none(t *testing.T, c *Client, unwanted MessageType) {
	t.Helper()
	timeout := time.After(150 * time.Millisecond)
	for {
		select {
		case data, ok := <-c.Send:
			if !ok {
				return
			}
			var msg Message
			require.NoError(t, json.Unmarshal(data, &msg))
			assert.NotEqual(t, unwanted, msg.Type)
		case <-timeout:
			return
		}
	}
}

func TestBroadcaster_NilIsSafe(t *testing.T) {
	var b *Broadcaster
	assert.NotPanics(t, func() {
		b.SendNotification([]string{"u1"}, map[string]interface{}{"id": "n1"})
		b.BroadcastCommentLiked("g1", "c1", 3)
	})

	assert.NotPanics(t, func() {
		NewBroadcaster(nil).BroadcastMemberAdded("g1", map[string]interface{}{}, 2)
	})
}

func TestNotificationReachesEveryConnectionOnce(t *testing.T) {
	h := startHub(t)
	phone := connect(t, h, "u1")
	laptop := connect(t, h, "u1")
	other := connect(t, h, "u2")

	// Blank and repeated identifiers collapse to one delivery per connection.
	NewBroadcaster(h).SendNotification([]string{"u1", "", "u1"}, map[string]interface{}{"id": "n1"})

	for _, c := range []*Client{phone, laptop} {
		msg := next(t, c, MessageNotification)
		assert.Equal(t, "n1", msg.Payload["id"])
		none(t, c, MessageNotification)
	}
	none(t, other, MessageNotification)
}

func TestRoomBroadcastSkipsExcludedUser(t *testing.T) {
	h := startHub(t)
	author := connect(t, h, "author")
	reader := connect(t, h, "reader")
	access := participants{"g1": {"author", "reader"}}

	for _, c := range []*Client{author, reader} {
		c.groups = access
		c.handleMessage([]byte(`{"action":"join","room":"group:g1"}`))
		ack := next(t, c, MessageAck)
		assert.Equal(t, "joined", ack.Payload["action"])
	}
	assert.Equal(t, 2, h.GetRoomClients(GroupRoom("g1")))

	NewBroadcaster(h).BroadcastCommentAdded("g1", map[string]interface{}{"text": "hello"}, "author")

	msg := next(t, reader, MessageGroupCommentAdded)
	assert.Equal(t, "g1", msg.Payload["groupId"])
	none(t, author, MessageGroupCommentAdded)
}

func TestClientCannotJoinPersonalRooms(t *testing.T) {
	h := startHub(t)
	c := connect(t, h, "snoop")

	c.handleMessage([]byte(`{"action":"join","room":"user:someone-else"}`))
	c.handleMessage([]byte(`{"action":"join","room":"group:"}`))

	assert.Zero(t, h.GetRoomClients(UserRoom("someone-else")))
	none(t, c, MessageAck)
}

func TestNonParticipantCannotJoinGroupRoom(t *testing.T) {
	h := startHub(t)
	member := connect(t, h, "alice@example.com")
	stranger := connect(t, h, "stranger@example.com")
	access := participants{"g1": {"alice@example.com"}}
	member.groups = access
	stranger.groups = access

	member.handleMessage([]byte(`{"action":"join","room":"group:g1"}`))
	next(t, member, MessageAck)

	stranger.handleMessage([]byte(`{"action":"join","room":"group:g1"}`))
	refused := next(t, stranger, MessageError)
	assert.Equal(t, "join", refused.Payload["action"])
	assert.Equal(t, "group:g1", refused.Payload["room"])
	assert.Equal(t, 1, h.GetRoomClients(GroupRoom("g1")))

	// Typing into a room the client is not in goes nowhere.
	stranger.handleMessage([]byte(`{"action":"typing","room":"group:g1"}`))
	none(t, member, MessageUserTyping)

	NewBroadcaster(h).BroadcastCommentAdded("g1", map[string]interface{}{"text": "meet at 6"}, "")
	next(t, member, MessageGroupCommentAdded)
	none(t, stranger, MessageGroupCommentAdded)
}

func TestGroupRoomClosedWithoutAccessChecker(t *testing.T) {
	h := startHub(t)
	c := connect(t, h, "u1")

	c.handleMessage([]byte(`{"action":"join","room":"group:g1"}`))

	next(t, c, MessageError)
	assert.Zero(t, h.GetRoomClients(GroupRoom("g1")))
}

func TestJoinRequestCreatedReachesOnlyManagers(t *testing.T) {
	h := startHub(t)
	host := connect(t, h, "host-id")
	member := connect(t, h, "member@example.com")
	member.groups = participants{"g1": {"member@example.com"}}
	member.handleMessage([]byte(`{"action":"join","room":"group:g1"}`))
	next(t, member, MessageAck)

	NewBroadcaster(h).BroadcastJoinRequestCreated("g1", map[string]interface{}{
		"userId": "alice@example.com",
		"note":   "private note",
	}, []string{"host-id", "host@example.com"})

	msg := next(t, host, MessageGroupRequestCreated)
	assert.Equal(t, "g1", msg.Payload["groupId"])
	none(t, member, MessageGroupRequestCreated)
}

func TestUnregisterClosesSendAndLeavesRooms(t *testing.T) {
	h := startHub(t)
	c := connect(t, h, "u1")
	require.Eventually(t, func() bool { return h.IsUserOnline("u1") }, time.Second, 10*time.Millisecond)
	h.JoinRoom(c, GroupRoom("g1"))

	h.unregister <- c

	require.Eventually(t, func() bool { return !h.IsUserOnline("u1") }, time.Second, 10*time.Millisecond)
	assert.Zero(t, h.GetRoomClients(GroupRoom("g1")))
	assert.Zero(t, h.GetConnectedClientsCount())

	// Drain anything queued before the close.
	for range c.Send {
	}
}
