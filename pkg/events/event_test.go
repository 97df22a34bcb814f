package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingPublisher struct {
	got []Event
	err error
}

func (r *recordingPublisher) Publish(_ context.Context, e Event) error {
	r.got = append(r.got, e)
	return r.err
}

func TestConstructors(t *testing.T) {
	at := time.Now()

	turn := TurnCompleted("c1", "chat", "CHAT", false, at)
	assert.Equal(t, TypeTurnCompleted, turn.EventType())
	assert.Equal(t, "c1", turn.Payload()["conversation_id"])
	assert.Equal(t, at, turn.Timestamp())

	edited := NotebookEdited("n1", true, at)
	assert.Equal(t, TypeNotebookEdited, edited.EventType())
	assert.Equal(t, true, edited.Payload()["scoped"])

	assert.Equal(t, "n1", NotebookGenerated("n1", at).Payload()["notebook_id"])
	assert.Equal(t, "q?", ClarificationOpened("c1", "q?", at).Payload()["question"])
}

func TestMultiPublisher(t *testing.T) {
	boom := errors.New("boom")
	a := &recordingPublisher{err: boom}
	b := &recordingPublisher{}

	err := MultiPublisher{a, nil, b, NopPublisher{}}.Publish(context.Background(), NotebookGenerated("n1", time.Now()))
	assert.ErrorIs(t, err, boom)
	assert.Len(t, a.got, 1)
	assert.Len(t, b.got, 1)
}
