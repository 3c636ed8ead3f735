package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/peercall/signal-server/models"
)

type capturePublisher struct {
	published []*models.SignalingMessage
}

func (p *capturePublisher) Publish(msg *models.SignalingMessage) {
	p.published = append(p.published, msg)
}

func newSignalingFixture(t *testing.T) (*gorm.DB, *SignalingService, *capturePublisher, *models.Room) {
	t.Helper()
	db := setupTestDB(t)
	pub := &capturePublisher{}
	svc := NewSignalingService(db, pub)

	room, err := NewRoomService(db).CreateRoom(context.Background(), "R1", 2)
	require.NoError(t, err)
	return db, svc, pub, room
}

func offerMessage(room, from, to string) *models.SignalingMessage {
	toID := to
	return &models.SignalingMessage{
		RoomID:     room,
		FromUserID: from,
		ToUserID:   &toID,
		Type:       models.SignalOffer,
		Payload:    json.RawMessage(`{"type":"offer","sdp":"v=0..."}`),
	}
}

func TestSendEchoAndListSince(t *testing.T) {
	ctx := context.Background()
	_, svc, pub, room := newSignalingFixture(t)

	stored, err := svc.Send(ctx, offerMessage(room.ID, "alice", "bob"))
	require.NoError(t, err)

	assert.NotEmpty(t, stored.ID)
	assert.Positive(t, stored.Timestamp)
	assert.Equal(t, models.SignalOffer, stored.Type)
	assert.Equal(t, "alice", stored.FromUserID)
	require.NotNil(t, stored.ToUserID)
	assert.Equal(t, "bob", *stored.ToUserID)
	assert.JSONEq(t, `{"type":"offer","sdp":"v=0..."}`, string(stored.Payload))

	msgs, err := svc.ListSince(ctx, room.ID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, stored.ID, msgs[0].ID)

	require.Len(t, pub.published, 1, "stored message is handed to the push layer")
	assert.Equal(t, stored.ID, pub.published[0].ID)
}

func TestSendValidation(t *testing.T) {
	ctx := context.Background()
	_, svc, _, room := newSignalingFixture(t)

	_, err := svc.Send(ctx, offerMessage("NOSUCHRM", "alice", "bob"))
	assert.ErrorIs(t, err, ErrRoomNotFound)

	msg := offerMessage(room.ID, "alice", "bob")
	msg.Type = "screen-share"
	_, err = svc.Send(ctx, msg)
	assert.ErrorIs(t, err, ErrInvalidMessageType)

	// Room existence is checked first, so a missing room wins over a bad
	// type or a bad payload.
	bad := &models.SignalingMessage{
		RoomID:     "NOSUCHRM",
		FromUserID: "alice",
		Type:       "screen-share",
	}
	_, err = svc.Send(ctx, bad)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = svc.Send(ctx, &models.SignalingMessage{
		RoomID:     "NOSUCHRM",
		FromUserID: "alice",
		Type:       models.SignalOffer,
		Payload:    json.RawMessage(`{"type":"offer"}`),
	})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestPayloadShapes(t *testing.T) {
	ctx := context.Background()
	_, svc, _, room := newSignalingFixture(t)

	cases := []struct {
		name    string
		typ     models.SignalType
		payload string
		wantErr bool
	}{
		{"offer ok", models.SignalOffer, `{"type":"offer","sdp":"v=0..."}`, false},
		{"offer missing sdp", models.SignalOffer, `{"type":"offer"}`, true},
		{"offer empty payload", models.SignalOffer, ``, true},
		{"offer type mismatch", models.SignalOffer, `{"type":"answer","sdp":"v=0..."}`, true},
		{"answer ok", models.SignalAnswer, `{"type":"answer","sdp":"v=0..."}`, false},
		{"candidate ok", models.SignalICECandidate, `{"candidate":"candidate:1 1 udp ...","sdpMid":"0","sdpMLineIndex":0}`, false},
		{"candidate with ufrag", models.SignalICECandidate, `{"candidate":"candidate:1 1 udp ...","sdpMid":"0","sdpMLineIndex":0,"usernameFragment":"abcd"}`, false},
		{"candidate missing sdpMid", models.SignalICECandidate, `{"candidate":"candidate:1 1 udp ...","sdpMLineIndex":0}`, true},
		{"candidate not an object", models.SignalICECandidate, `["candidate"]`, true},
		{"control no payload", models.SignalUserJoined, ``, false},
		{"control empty object", models.SignalUserLeft, `{}`, false},
		{"control with payload", models.SignalJoinRoom, `{"extra":1}`, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := &models.SignalingMessage{
				RoomID:     room.ID,
				FromUserID: "alice",
				Type:       tc.typ,
			}
			if tc.payload != "" {
				msg.Payload = json.RawMessage(tc.payload)
			}
			_, err := svc.Send(ctx, msg)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPayload)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestListSinceOrderingAndCursor(t *testing.T) {
	ctx := context.Background()
	_, svc, _, room := newSignalingFixture(t)

	first, err := svc.Send(ctx, offerMessage(room.ID, "alice", "bob"))
	require.NoError(t, err)

	second := &models.SignalingMessage{
		RoomID:     room.ID,
		FromUserID: "bob",
		Type:       models.SignalAnswer,
		Payload:    json.RawMessage(`{"type":"answer","sdp":"v=0..."}`),
	}
	_, err = svc.Send(ctx, second)
	require.NoError(t, err)

	broadcast := &models.SignalingMessage{
		RoomID:     room.ID,
		FromUserID: "alice",
		Type:       models.SignalUserJoined,
	}
	_, err = svc.Send(ctx, broadcast)
	require.NoError(t, err)

	msgs, err := svc.ListSince(ctx, room.ID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	for i := 1; i < len(msgs); i++ {
		assert.GreaterOrEqual(t, msgs[i].Timestamp, msgs[i-1].Timestamp, "timestamps never go backwards")
	}
	assert.Equal(t, first.ID, msgs[0].ID)
	assert.True(t, msgs[2].Broadcast())

	// Cursor excludes everything at or before it.
	tail, err := svc.ListSince(ctx, room.ID, msgs[len(msgs)-1].Timestamp)
	require.NoError(t, err)
	assert.Empty(t, tail)

	_, err = svc.ListSince(ctx, "NOSUCHRM", 0)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestConcurrentSendsStayOrdered(t *testing.T) {
	ctx := context.Background()
	_, svc, _, room := newSignalingFixture(t)

	const senders = 10
	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Send(ctx, &models.SignalingMessage{
				RoomID:     room.ID,
				FromUserID: fmt.Sprintf("user-%d", i),
				Type:       models.SignalUserJoined,
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// Every message made it in, and a reader walking the log never sees a
	// timestamp go backwards, so no cursor position can skip a message.
	msgs, err := svc.ListSince(ctx, room.ID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, senders)
	for i := 1; i < len(msgs); i++ {
		assert.GreaterOrEqual(t, msgs[i].Timestamp, msgs[i-1].Timestamp)
	}
}

func TestSendNormalizesEmptyRecipient(t *testing.T) {
	ctx := context.Background()
	_, svc, _, room := newSignalingFixture(t)

	empty := ""
	msg := &models.SignalingMessage{
		RoomID:     room.ID,
		FromUserID: "alice",
		ToUserID:   &empty,
		Type:       models.SignalUserLeft,
	}
	stored, err := svc.Send(ctx, msg)
	require.NoError(t, err)
	assert.Nil(t, stored.ToUserID)
	assert.True(t, stored.Broadcast())
}
