package service

import (
	"context"
	"errors"
	"testing"

	"ragify-be/internal/dto"
	"ragify-be/internal/repository/memory"
	"ragify-be/pkg/events"
	"ragify-be/pkg/notebook"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotebookServiceLifecycle(t *testing.T) {
	h := newHarness(t, "# 筆記\n\n- 使用者詢問了機器學習")
	ctx := context.Background()
	nbs := NewNotebookService(h.svc, h.events, NewFeedService(h.broadcast, nil), nil)

	created, err := h.svc.Create(ctx, &dto.CreateConversationRequest{})
	require.NoError(t, err)

	shown, err := nbs.Show(ctx, created.Id)
	require.NoError(t, err)
	assert.False(t, shown.HasContent)
	assert.Nil(t, shown.UpdatedAt)

	_, err = h.svc.SendMessage(ctx, &dto.SendMessageRequest{Id: created.Id, Utterance: "什麼是機器學習？"})
	require.NoError(t, err)

	updated, err := nbs.Update(ctx, &dto.UpdateNotebookRequest{Id: created.Id, Content: "第一行\n第二行"})
	require.NoError(t, err)
	assert.True(t, updated.HasContent)
	assert.NotNil(t, updated.UpdatedAt)

	selected, err := nbs.Select(ctx, &dto.SelectionRequest{Id: created.Id, Start: 0, End: 3})
	require.NoError(t, err)
	require.NotNil(t, selected.Selection)
	assert.Equal(t, "第一行", selected.Selection.Text)
	assert.True(t, selected.HasSelection)

	_, err = nbs.Select(ctx, &dto.SelectionRequest{Id: created.Id, Start: 2, End: 99})
	assert.ErrorIs(t, err, notebook.ErrInvalidSelection)

	cleared, err := nbs.ClearSelection(ctx, created.Id)
	require.NoError(t, err)
	assert.False(t, cleared.HasSelection)

	gen, err := nbs.Generate(ctx, created.Id)
	require.NoError(t, err)
	assert.Equal(t, "# 筆記\n\n- 使用者詢問了機器學習", gen.Content)

	require.NoError(t, nbs.Clear(ctx, created.Id))
	shown, err = nbs.Show(ctx, created.Id)
	require.NoError(t, err)
	assert.Empty(t, shown.Content)

	assert.Subset(t, h.events.types(), []string{
		events.TypeNotebookUpdated,
		events.TypeNotebookGenerated,
		events.TypeNotebookCleared,
	})
}

func TestNotebookServiceGenerateFailure(t *testing.T) {
	h := newHarness(t, "")
	ctx := context.Background()
	nbs := NewNotebookService(h.svc, nil, nil, nil)

	created, err := h.svc.Create(ctx, &dto.CreateConversationRequest{NotebookContent: "原本的內容"})
	require.NoError(t, err)
	_, err = h.svc.SendMessage(ctx, &dto.SendMessageRequest{Id: created.Id, Utterance: "hello"})
	require.NoError(t, err)

	conv, err := h.svc.Lookup(created.Id)
	require.NoError(t, err)
	conv.Notebook = mustReopen(t, conv.ID, errors.New("model offline"))

	_, err = nbs.Generate(ctx, created.Id)
	assert.ErrorContains(t, err, "model offline")
	assert.Equal(t, "原本的內容", conv.Notebook.Document().Content)
}

func TestNotebookServiceUnknownConversation(t *testing.T) {
	h := newHarness(t, "")
	nbs := NewNotebookService(h.svc, nil, nil, nil)

	_, err := nbs.Show(context.Background(), "missing")
	assert.ErrorIs(t, err, memory.ErrConversationNotFound)
}

func mustReopen(t *testing.T, id string, llmErr error) *notebook.Notebook {
	t.Helper()
	store := notebook.NewMemoryStore(0)
	nb, err := notebook.Open(context.Background(), id, store, &fakeLLM{err: llmErr}, nil)
	require.NoError(t, err)
	require.NoError(t, nb.SetContent(context.Background(), "原本的內容"))
	return nb
}
