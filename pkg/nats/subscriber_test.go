package nats

import (
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.notebook.edited", Subject("notebook.edited"))
	assert.Equal(t, "events.notebook.>", Subject("notebook.>"))
}

func TestDecode(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	header := nats.Header{}
	header.Set(headerType, "notebook.edited")
	header.Set(headerOccurredAt, at.Format(time.RFC3339Nano))

	evt, err := Decode("events.notebook.edited", header, []byte(`{"notebook_id":"n1","scoped":true}`))
	require.NoError(t, err)
	assert.Equal(t, "notebook.edited", evt.EventType())
	assert.Equal(t, "n1", evt.Payload()["notebook_id"])
	assert.Equal(t, true, evt.Payload()["scoped"])
	assert.True(t, at.Equal(evt.Timestamp()))
}

func TestDecodeWithoutHeaders(t *testing.T) {
	evt, err := Decode("events.conversation.turn_completed", nil, []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "conversation.turn_completed", evt.EventType())
	assert.False(t, evt.Timestamp().IsZero())

	_, err = Decode("events.x", nil, []byte(`not json`))
	assert.Error(t, err)
}
