package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragify-be/pkg/conversation"
	"ragify-be/pkg/llm"
)

// scriptedProvider answers by system prompt so each pipeline step can be scripted
type scriptedProvider struct {
	replies map[string]string
	errs    map[string]error
	calls   []string
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return p.Generate(ctx, history[len(history)-1].Content, opts...)
}

func (p *scriptedProvider) Generate(_ context.Context, prompt string, opts ...llm.Option) (string, error) {
	sys := llm.Apply(llm.Options{}, opts...).SystemPrompt
	p.calls = append(p.calls, sys)
	if err := p.errs[sys]; err != nil {
		return "", err
	}
	return p.replies[sys], nil
}

func TestAskWithoutPTKB(t *testing.T) {
	p := &scriptedProvider{replies: map[string]string{responseSystemPrompt: "response: 台北今天晴天。"}}
	s := NewService(p, nil, Options{})

	res, err := s.Ask(context.Background(), conversation.ChatRequest{Query: "台北今天天氣如何？"})
	require.NoError(t, err)

	assert.Equal(t, "台北今天晴天。", res.Answer)
	assert.NotEmpty(t, res.ConversationID)
	assert.Empty(t, res.PTKBUsed)
	assert.Empty(t, res.NewPTKB)
	assert.Equal(t, []string{responseSystemPrompt}, p.calls, "no relevance call without facts")
}

func TestAskKeepsConversationID(t *testing.T) {
	p := &scriptedProvider{replies: map[string]string{responseSystemPrompt: "ok"}}
	res, err := NewService(p, nil, Options{}).Ask(context.Background(), conversation.ChatRequest{Query: "q", ConversationID: "c-7"})
	require.NoError(t, err)
	assert.Equal(t, "c-7", res.ConversationID)
	assert.Equal(t, "ok", res.Answer)
}

func TestAskUsesRelevantPTKB(t *testing.T) {
	p := &scriptedProvider{replies: map[string]string{
		relevanceSystemPrompt: "ptkb:\nI eat dinner late\n",
		responseSystemPrompt:  "response: avoid late meals",
	}}
	s := NewService(p, nil, Options{})

	res, err := s.Ask(context.Background(), conversation.ChatRequest{
		Query:    "why do I get acid reflux",
		PTKBList: []string{"I eat dinner late", "I like fruit"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"I eat dinner late"}, res.PTKBUsed)
	assert.Equal(t, "avoid late meals", res.Answer)
}

func TestAskExtractsNewPTKBWhenEnabled(t *testing.T) {
	p := &scriptedProvider{replies: map[string]string{
		newPTKBSystemPrompt:   "ptkb: I am vegetarian.",
		relevanceSystemPrompt: "ptkb:\nnope",
		responseSystemPrompt:  "response: try tofu",
	}}
	s := NewService(p, nil, Options{ExtractNewPTKB: true})

	res, err := s.Ask(context.Background(), conversation.ChatRequest{Query: "I am vegetarian, dinner ideas?"})
	require.NoError(t, err)
	assert.Equal(t, "I am vegetarian.", res.NewPTKB)
	assert.Empty(t, res.PTKBUsed)
	assert.Equal(t, []string{newPTKBSystemPrompt, relevanceSystemPrompt, responseSystemPrompt}, p.calls)
}

func TestAskPTKBFailuresDegrade(t *testing.T) {
	p := &scriptedProvider{
		replies: map[string]string{responseSystemPrompt: "response: fine"},
		errs: map[string]error{
			newPTKBSystemPrompt:   errors.New("blocked"),
			relevanceSystemPrompt: errors.New("timeout"),
		},
	}
	s := NewService(p, nil, Options{ExtractNewPTKB: true})

	res, err := s.Ask(context.Background(), conversation.ChatRequest{Query: "q", PTKBList: []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, "fine", res.Answer)
	assert.Empty(t, res.NewPTKB)
	assert.Empty(t, res.PTKBUsed)
}

func TestAskGenerationFailureIsReturned(t *testing.T) {
	p := &scriptedProvider{errs: map[string]error{responseSystemPrompt: llm.ErrQuotaExceeded}}
	_, err := NewService(p, nil, Options{}).Ask(context.Background(), conversation.ChatRequest{Query: "q"})
	assert.ErrorIs(t, err, llm.ErrQuotaExceeded)
}

func TestAskTruncatesLongAnswers(t *testing.T) {
	p := &scriptedProvider{replies: map[string]string{responseSystemPrompt: "response: " + strings.Repeat("word ", 20)}}
	res, err := NewService(p, nil, Options{WordLimit: 5}).Ask(context.Background(), conversation.ChatRequest{Query: "q"})
	require.NoError(t, err)
	assert.Equal(t, "word word word word word...", res.Answer)
}
