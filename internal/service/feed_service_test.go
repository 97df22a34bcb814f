package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ragify-be/internal/dto"
	"ragify-be/pkg/conversation"
	"ragify-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedMessageFrame(t *testing.T) {
	b := &recordingBroadcaster{}
	feed := NewFeedService(b, nil)

	feed.MessageAppended("c1", conversation.Message{ID: "m1", Seq: 1, Role: conversation.RoleUser, Text: "hi"})

	frames := b.sent("c1")
	require.Len(t, frames, 1)
	var frame dto.FeedFrame
	require.NoError(t, json.Unmarshal([]byte(frames[0]), &frame))
	assert.Equal(t, dto.FrameMessage, frame.Type)
	assert.Equal(t, "hi", frame.Message.Text)
}

func TestFeedNotebookFramesDirectUntilRelayed(t *testing.T) {
	b := &recordingBroadcaster{}
	feed := NewFeedService(b, nil)
	evt := events.NotebookEdited("c1", true, time.Now())

	feed.NotebookChanged(evt)
	require.Len(t, b.sent("c1"), 1)
	assert.Contains(t, b.sent("c1")[0], `"event":"notebook.edited"`)

	sub := &fakeSubscriber{}
	require.NoError(t, feed.Relay(context.Background(), sub))
	assert.Equal(t, "notebook.>", sub.pattern)

	// Once relayed, the bus delivers instead
	feed.NotebookChanged(evt)
	assert.Len(t, b.sent("c1"), 1)

	require.NoError(t, sub.handler(context.Background(), evt))
	assert.Len(t, b.sent("c1"), 2)
}

func TestFeedRelayFailureKeepsDirectDelivery(t *testing.T) {
	b := &recordingBroadcaster{}
	feed := NewFeedService(b, nil)

	err := feed.Relay(context.Background(), &fakeSubscriber{err: errors.New("no stream")})
	assert.Error(t, err)

	feed.NotebookChanged(events.NotebookGenerated("c1", time.Now()))
	assert.Len(t, b.sent("c1"), 1)

	feed.NotebookChanged(events.BaseEvent{Type: "notebook.edited", Data: map[string]interface{}{}})
	assert.Len(t, b.sent(""), 0)
}
