package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragify-be/pkg/intent"
	"ragify-be/pkg/llm"
)

type fakeNotebook struct {
	state  NotebookState
	result *EditResult
	err    error
	edits  []EditCommand
}

func (f *fakeNotebook) State() NotebookState { return f.state }

func (f *fakeNotebook) Edit(_ context.Context, cmd EditCommand) (*EditResult, error) {
	f.edits = append(f.edits, cmd)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &EditResult{Success: true, Message: "已套用變更至整篇筆記。"}, nil
}

type fakeChat struct {
	mu       sync.Mutex
	answer   string
	convID   string
	newPTKB  string
	sources  []Citation
	err      error
	empty    bool
	requests []ChatRequest

	started chan struct{}
	release chan struct{}
}

func (f *fakeChat) Ask(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.started != nil {
		close(f.started)
		<-f.release
	}
	if f.err != nil || f.empty {
		return nil, f.err
	}
	answer := f.answer
	if answer == "" {
		answer = "answer: " + req.Query
	}
	return &ChatResponse{Answer: answer, ConversationID: f.convID, NewPTKB: f.newPTKB, Sources: f.sources}, nil
}

func newTestRouter(t *testing.T, chat *fakeChat, nb NotebookPort) *Router {
	t.Helper()
	r, err := NewRouter(Deps{Chat: chat, Notebook: nb})
	require.NoError(t, err)
	return r
}

func withContent() *fakeNotebook {
	return &fakeNotebook{state: NotebookState{HasContent: true}}
}

func TestNewRouterRequiresChat(t *testing.T) {
	_, err := NewRouter(Deps{})
	assert.ErrorIs(t, err, ErrNoChatPort)
}

func TestEditScenario(t *testing.T) {
	chat := &fakeChat{}
	nb := withContent()
	r := newTestRouter(t, chat, nb)

	res, err := r.Handle(context.Background(), "幫我把筆記縮短一點")
	require.NoError(t, err)

	require.NotNil(t, res.Decision)
	assert.Equal(t, intent.IntentNoteEdit, res.Decision.Intent)
	assert.Equal(t, RouteNoteEdit, res.Route)
	require.Len(t, nb.edits, 1)
	assert.Equal(t, EditCommand{Instruction: "縮短一點"}, nb.edits[0])
	assert.True(t, strings.HasPrefix(res.Reply.Text, EditSuccessMarker))
	assert.Empty(t, chat.requests)
	assert.Equal(t, StateIdle, res.State)
}

func TestEditUsesSelectionScope(t *testing.T) {
	nb := &fakeNotebook{
		state:  NotebookState{HasContent: true, HasSelection: true},
		result: &EditResult{Success: true, Message: "已套用變更至選取的文字。"},
	}
	r := newTestRouter(t, &fakeChat{}, nb)

	res, err := r.Handle(context.Background(), "請幫我把選取的文字改成條列式")
	require.NoError(t, err)

	require.Len(t, nb.edits, 1)
	assert.Equal(t, "幫我改成條列式", nb.edits[0].Instruction)
	assert.True(t, nb.edits[0].SelectionScoped)
	assert.Equal(t, EditSuccessMarker+"已套用變更至選取的文字。", res.Reply.Text)
}

func TestChatScenarioWithoutNotebookContent(t *testing.T) {
	chat := &fakeChat{}
	nb := &fakeNotebook{}
	r := newTestRouter(t, chat, nb)

	for _, u := range []string{"台北今天天氣如何？", "幫我把筆記縮短一點"} {
		res, err := r.Handle(context.Background(), u)
		require.NoError(t, err)
		assert.Equal(t, intent.IntentChatQA, res.Decision.Intent)
		assert.Equal(t, RouteChat, res.Route)
	}
	assert.Empty(t, nb.edits)
	require.Len(t, chat.requests, 2)
	assert.Equal(t, "台北今天天氣如何？", chat.requests[0].Query)
}

func TestNoteQueryIsRoutedToChat(t *testing.T) {
	chat := &fakeChat{}
	nb := withContent()
	r := newTestRouter(t, chat, nb)

	res, err := r.Handle(context.Background(), "筆記內容是什麼")
	require.NoError(t, err)
	assert.Equal(t, intent.IntentNoteQuery, res.Decision.Intent)
	assert.Equal(t, RouteChat, res.Route)
	assert.Empty(t, nb.edits)
	require.Len(t, chat.requests, 1)
}

func TestClarifyScenario(t *testing.T) {
	chat := &fakeChat{}
	nb := withContent()
	r := newTestRouter(t, chat, nb)

	res, err := r.Handle(context.Background(), "我想討論這個摘要")
	require.NoError(t, err)

	assert.Equal(t, intent.IntentClarify, res.Decision.Intent)
	assert.Equal(t, RouteClarify, res.Route)
	assert.Equal(t, intent.DefaultClarificationQuestion, res.Reply.Text)
	assert.Equal(t, StateAwaitingClarification, res.State)
	require.NotNil(t, r.Session())
	assert.Equal(t, "我想討論這個摘要", r.Session().OriginalUtterance)
	assert.Empty(t, nb.edits)
	assert.Empty(t, chat.requests)
}

func TestClarificationRoundTripToEdit(t *testing.T) {
	chat := &fakeChat{}
	nb := withContent()
	r := newTestRouter(t, chat, nb)

	_, err := r.Handle(context.Background(), "請幫我整理這個摘要")
	require.NoError(t, err)
	require.Equal(t, StateAwaitingClarification, r.State())

	res, err := r.Handle(context.Background(), "是")
	require.NoError(t, err)

	assert.Nil(t, res.Decision)
	assert.Equal(t, intent.IntentNoteEdit, res.Resolved)
	require.Len(t, nb.edits, 1)
	assert.Equal(t, "幫我整理這個摘要", nb.edits[0].Instruction)
	assert.Equal(t, StateIdle, res.State)
	assert.Nil(t, r.Session())
	assert.Empty(t, chat.requests)
}

func TestClarificationRoundTripToChat(t *testing.T) {
	chat := &fakeChat{}
	nb := withContent()
	r := newTestRouter(t, chat, nb)

	_, err := r.Handle(context.Background(), "我想討論這個摘要")
	require.NoError(t, err)

	res, err := r.Handle(context.Background(), "不是，只是討論")
	require.NoError(t, err)

	assert.Equal(t, intent.IntentChatQA, res.Resolved)
	assert.Equal(t, RouteChat, res.Route)
	require.Len(t, chat.requests, 1)
	assert.Equal(t, "我想討論這個摘要", chat.requests[0].Query)
	assert.Empty(t, nb.edits)
	assert.Equal(t, StateIdle, r.State())
}

func TestClarificationAbandoned(t *testing.T) {
	chat := &fakeChat{}
	nb := withContent()
	r := newTestRouter(t, chat, nb)

	_, err := r.Handle(context.Background(), "我想討論這個摘要")
	require.NoError(t, err)

	res, err := r.Handle(context.Background(), "台北今天天氣如何？")
	require.NoError(t, err)

	require.NotNil(t, res.Decision, "reply must be classified as a fresh utterance")
	assert.Equal(t, intent.IntentChatQA, res.Decision.Intent)
	require.Len(t, chat.requests, 1)
	assert.Equal(t, "台北今天天氣如何？", chat.requests[0].Query)
	assert.Equal(t, StateIdle, r.State())
}

func TestAbandonedClarificationCanOpenANewOne(t *testing.T) {
	r := newTestRouter(t, &fakeChat{}, withContent())

	_, err := r.Handle(context.Background(), "我想討論這個摘要")
	require.NoError(t, err)

	res, err := r.Handle(context.Background(), "那這個摘要呢")
	require.NoError(t, err)

	assert.Equal(t, intent.IntentClarify, res.Decision.Intent)
	require.NotNil(t, r.Session())
	assert.Equal(t, "那這個摘要呢", r.Session().OriginalUtterance)
}

func TestUserMessageIsLoggedBeforeFailedDispatch(t *testing.T) {
	tests := []struct {
		name string
		chat *fakeChat
	}{
		{"chat error", &fakeChat{err: errors.New("connection refused")}},
		{"no response", &fakeChat{empty: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, tt.chat, nil)

			res, err := r.Handle(context.Background(), "hello")
			require.NoError(t, err)

			msgs := r.Messages()
			require.Len(t, msgs, 2)
			assert.Equal(t, RoleUser, msgs[0].Role)
			assert.Equal(t, "hello", msgs[0].Text)
			assert.Equal(t, RoleAssistant, msgs[1].Role)
			assert.Equal(t, ChatFailureMessage, msgs[1].Text)
			assert.True(t, res.Failed)
			assert.Equal(t, StateIdle, res.State)
			assert.Empty(t, r.ChatConversationID())
		})
	}
}

func TestFailureCategories(t *testing.T) {
	tests := []struct {
		name    string
		editErr error
		want    string
	}{
		{"quota", fmt.Errorf("gemini: %w", llm.ErrQuotaExceeded), EditFailureMarker + QuotaMessage},
		{"safety", fmt.Errorf("gemini: %w", llm.ErrContentBlocked), EditFailureMarker + EditSafetyMessage},
		{"generic", errors.New("disk full"), EditFailureMarker + EditFailurePrefix + "disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nb := withContent()
			nb.err = tt.editErr
			r := newTestRouter(t, &fakeChat{}, nb)

			// ambiguous first, then confirm, so the failure happens on the resolved branch
			_, err := r.Handle(context.Background(), "我想討論這個摘要")
			require.NoError(t, err)
			res, err := r.Handle(context.Background(), "yes")
			require.NoError(t, err)

			assert.True(t, res.Failed)
			assert.Equal(t, tt.want, res.Reply.Text)
			assert.Equal(t, StateIdle, r.State())
		})
	}
}

func TestRejectedEditResult(t *testing.T) {
	nb := withContent()
	nb.result = &EditResult{Success: false, Message: "筆記內容為空，無法進行編輯"}
	r := newTestRouter(t, &fakeChat{}, nb)

	res, err := r.Handle(context.Background(), "幫我把筆記縮短一點")
	require.NoError(t, err)
	assert.True(t, res.Failed)
	assert.Equal(t, EditFailureMarker+"筆記內容為空，無法進行編輯", res.Reply.Text)
}

func TestMissingNotebookIsExplicit(t *testing.T) {
	r := newTestRouter(t, &fakeChat{}, nil)
	r.session = &ClarificationSession{OriginalUtterance: "我想討論這個摘要"}

	res, err := r.Handle(context.Background(), "是")
	require.NoError(t, err)
	assert.True(t, res.Failed)
	assert.Equal(t, RouteNoteEdit, res.Route)
	assert.Equal(t, EditFailureMarker+NotebookUnavailableMessage, res.Reply.Text)
	assert.Equal(t, StateIdle, r.State())
}

func TestTurnInFlightIsRejected(t *testing.T) {
	chat := &fakeChat{started: make(chan struct{}), release: make(chan struct{})}
	r := newTestRouter(t, chat, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := r.Handle(context.Background(), "first")
		assert.NoError(t, err)
	}()

	<-chat.started
	assert.True(t, r.InFlight())

	_, err := r.Handle(context.Background(), "second")
	assert.ErrorIs(t, err, ErrTurnInFlight)
	assert.Len(t, r.Messages(), 1, "rejected utterance must not be logged")

	close(chat.release)
	<-done
	assert.False(t, r.InFlight())
	assert.Len(t, r.Messages(), 2)
}

func TestEmptyUtterance(t *testing.T) {
	r := newTestRouter(t, &fakeChat{}, nil)
	_, err := r.Handle(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyUtterance)
	assert.Empty(t, r.Messages())
}

func TestChatContextCarriesAcrossTurns(t *testing.T) {
	chat := &fakeChat{
		convID:  "conv-1",
		newPTKB: "I am vegetarian",
		sources: []Citation{{DocID: "doc-1", Title: "menu.pdf"}},
	}
	r := newTestRouter(t, chat, nil)
	r.SetSelectedDocuments([]string{"doc-1", " ", "doc-1", "doc-2"})

	first, err := r.Handle(context.Background(), "what should I eat")
	require.NoError(t, err)
	assert.Equal(t, chat.sources, first.Reply.Citations)

	_, err = r.Handle(context.Background(), "and for dessert")
	require.NoError(t, err)

	require.Len(t, chat.requests, 2)
	second := chat.requests[1]
	assert.Equal(t, "conv-1", second.ConversationID)
	assert.Equal(t, []string{"I am vegetarian"}, second.PTKBList)
	assert.Equal(t, []string{"doc-1", "doc-2"}, second.SelectedDocIDs)
	require.Len(t, second.History, 2)
	assert.Equal(t, "what should I eat", second.History[0].Text)

	assert.Equal(t, []string{"I am vegetarian"}, r.PTKB(), "duplicate facts are not stored twice")
	assert.Equal(t, "conv-1", r.ChatConversationID())
}

func TestMessagesAreOrderedAndObserved(t *testing.T) {
	var observed []Message
	r, err := NewRouter(Deps{
		Chat:      &fakeChat{},
		Notebook:  withContent(),
		OnMessage: func(m Message) { observed = append(observed, m) },
	})
	require.NoError(t, err)

	for _, u := range []string{"我想討論這個摘要", "是", "hi"} {
		_, err := r.Handle(context.Background(), u)
		require.NoError(t, err)
	}

	msgs := r.Messages()
	require.Len(t, msgs, 6)
	assert.Equal(t, msgs, observed)

	ids := map[string]bool{}
	for i, m := range msgs {
		assert.Equal(t, int64(i+1), m.Seq)
		assert.False(t, ids[m.ID], "duplicate id")
		ids[m.ID] = true
		wantRole := RoleUser
		if i%2 == 1 {
			wantRole = RoleAssistant
		}
		assert.Equal(t, wantRole, m.Role)
	}
}
