package service

import (
	"context"
	"sync"

	"ragify-be/internal/entity"
	"ragify-be/internal/repository/contract"
	"ragify-be/internal/repository/specification"
	"ragify-be/internal/repository/unitofwork"
	"ragify-be/pkg/conversation"
	"ragify-be/pkg/events"
	"ragify-be/pkg/llm"
	pktNats "ragify-be/pkg/nats"
)

type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) Chat(ctx context.Context, _ []llm.Message, opts ...llm.Option) (string, error) {
	return f.Generate(ctx, "", opts...)
}

func (f *fakeLLM) Generate(context.Context, string, ...llm.Option) (string, error) {
	return f.reply, f.err
}

type fakeChat struct {
	answer string
	err    error
}

func (f *fakeChat) Ask(_ context.Context, req conversation.ChatRequest) (*conversation.ChatResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	id := req.ConversationID
	if id == "" {
		id = "chat-1"
	}
	return &conversation.ChatResponse{Answer: f.answer, ConversationID: id}, nil
}

type recordingEvents struct {
	mu  sync.Mutex
	got []events.Event
}

func (r *recordingEvents) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, e)
	return nil
}

func (r *recordingEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.got))
	for _, e := range r.got {
		out = append(out, e.EventType())
	}
	return out
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	frames map[string][]string
}

func (b *recordingBroadcaster) SendToConversation(id string, payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frames == nil {
		b.frames = map[string][]string{}
	}
	b.frames[id] = append(b.frames[id], string(payload))
}

func (b *recordingBroadcaster) sent(id string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.frames[id]...)
}

type recordingPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *recordingPublisher) Publish(_ context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

type fakeSubscriber struct {
	pattern string
	handler pktNats.EventHandler
	err     error
}

func (f *fakeSubscriber) Subscribe(_ context.Context, pattern, _ string, handler pktNats.EventHandler) error {
	f.pattern = pattern
	f.handler = handler
	return f.err
}

// memTranscripts is an in-memory TranscriptRepository shared by every unit of work
type memTranscripts struct {
	mu        sync.Mutex
	rows      []*entity.TranscriptMessage
	failWrite error
}

func (m *memTranscripts) CreateBulk(_ context.Context, messages []*entity.TranscriptMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrite != nil {
		return m.failWrite
	}
	for _, msg := range messages {
		dup := false
		for _, r := range m.rows {
			if r.ConversationId == msg.ConversationId && r.Seq == msg.Seq {
				dup = true
				break
			}
		}
		if !dup {
			m.rows = append(m.rows, msg)
		}
	}
	return nil
}

func (m *memTranscripts) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.TranscriptMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conv, limit, offset := filterArgs(specs)
	var out []*entity.TranscriptMessage
	for _, r := range m.rows {
		if conv == "" || r.ConversationId == conv {
			out = append(out, r)
		}
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *memTranscripts) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	conv, _, _ := filterArgs(specs)
	rows, _ := m.FindAll(ctx, specification.ByConversationID{ConversationID: conv})
	return int64(len(rows)), nil
}

func (m *memTranscripts) DeleteByConversationId(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.rows[:0]
	for _, r := range m.rows {
		if r.ConversationId != id {
			kept = append(kept, r)
		}
	}
	m.rows = kept
	return nil
}

func filterArgs(specs []specification.Specification) (conv string, limit, offset int) {
	for _, s := range specs {
		switch v := s.(type) {
		case specification.ByConversationID:
			conv = v.ConversationID
		case specification.Pagination:
			limit, offset = v.Limit, v.Offset
		}
	}
	return
}

type memUnitOfWork struct {
	repo      *memTranscripts
	committed bool
}

func (u *memUnitOfWork) Begin(context.Context) error { return nil }
func (u *memUnitOfWork) Commit() error               { u.committed = true; return nil }
func (u *memUnitOfWork) Rollback() error             { return nil }
func (u *memUnitOfWork) TranscriptRepository() contract.TranscriptRepository {
	return u.repo
}

type memFactory struct {
	repo *memTranscripts
}

func (f *memFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return &memUnitOfWork{repo: f.repo}
}
