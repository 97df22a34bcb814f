package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ragify-be/internal/dto"
	"ragify-be/internal/mapper"
	"ragify-be/internal/pkg/logger"
	"ragify-be/internal/repository/memory"
	"ragify-be/internal/repository/specification"
	"ragify-be/internal/repository/unitofwork"
	"ragify-be/pkg/conversation"
	"ragify-be/pkg/events"
	"ragify-be/pkg/intent"
	"ragify-be/pkg/llm"
	"ragify-be/pkg/notebook"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var ErrArchiveDisabled = errors.New("transcript archive is not configured")

// Conversation is the live state of one conversation: its router and notebook
type Conversation struct {
	ID        string
	Router    *conversation.Router
	Notebook  *notebook.Notebook
	CreatedAt time.Time
}

type IConversationService interface {
	Create(ctx context.Context, req *dto.CreateConversationRequest) (*dto.CreateConversationResponse, error)
	SendMessage(ctx context.Context, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	Messages(ctx context.Context, id string) (*dto.MessagesResponse, error)
	State(ctx context.Context, id string) (*dto.ConversationStateResponse, error)
	SetDocuments(ctx context.Context, req *dto.SetDocumentsRequest) (*dto.SetDocumentsResponse, error)
	Transcript(ctx context.Context, id string, limit, offset int) (*dto.TranscriptResponse, error)
	Delete(ctx context.Context, id string) error
	Lookup(id string) (*Conversation, error)
}

type ConversationServiceParams struct {
	Registry   *memory.Registry[*Conversation]
	Store      notebook.Store
	LLM        llm.LLMProvider
	Chat       conversation.ChatPort
	Classifier *intent.Classifier
	Resolver   *intent.Resolver
	Extractor  *intent.Extractor
	// Optional collaborators
	Publisher  IPublisherService
	Events     events.Publisher
	Feed       IFeedService
	UowFactory unitofwork.RepositoryFactory
	Tracer     trace.Tracer
	Logger     logger.ILogger
}

type conversationService struct {
	registry   *memory.Registry[*Conversation]
	store      notebook.Store
	llm        llm.LLMProvider
	chat       conversation.ChatPort
	classifier *intent.Classifier
	resolver   *intent.Resolver
	extractor  *intent.Extractor
	publisher  IPublisherService
	events     events.Publisher
	feed       IFeedService
	uowFactory unitofwork.RepositoryFactory
	mapper     *mapper.TranscriptMapper
	tracer     trace.Tracer
	logger     logger.ILogger
}

func NewConversationService(p ConversationServiceParams) IConversationService {
	s := &conversationService{
		registry:   p.Registry,
		store:      p.Store,
		llm:        p.LLM,
		chat:       p.Chat,
		classifier: p.Classifier,
		resolver:   p.Resolver,
		extractor:  p.Extractor,
		publisher:  p.Publisher,
		events:     p.Events,
		feed:       p.Feed,
		uowFactory: p.UowFactory,
		mapper:     mapper.NewTranscriptMapper(),
		tracer:     p.Tracer,
		logger:     p.Logger,
	}
	if s.registry == nil {
		s.registry = memory.NewRegistry[*Conversation](time.Hour)
	}
	if s.events == nil {
		s.events = events.NopPublisher{}
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("ragify-be/conversation")
	}
	if s.logger == nil {
		s.logger = logger.NopLogger{}
	}
	return s
}

func (s *conversationService) Create(ctx context.Context, req *dto.CreateConversationRequest) (*dto.CreateConversationResponse, error) {
	id := newConversationID()

	nb, err := notebook.Open(ctx, id, s.store, s.llm, s.logger)
	if err != nil {
		return nil, err
	}
	if req.NotebookContent != "" {
		if err := nb.SetContent(ctx, req.NotebookContent); err != nil {
			return nil, err
		}
	}

	router, err := conversation.NewRouter(conversation.Deps{
		Chat:       s.chat,
		Notebook:   nb,
		Classifier: s.classifier,
		Resolver:   s.resolver,
		Extractor:  s.extractor,
		Logger:     s.logger,
		OnMessage: func(m conversation.Message) {
			if s.feed != nil {
				s.feed.MessageAppended(id, m)
			}
		},
	})
	if err != nil {
		return nil, err
	}
	router.SetSelectedDocuments(req.SelectedDocIds)

	conv := &Conversation{ID: id, Router: router, Notebook: nb, CreatedAt: time.Now()}
	s.registry.Save(id, conv)

	s.logger.Info("CONVERSATION", "Conversation created", map[string]interface{}{
		"conversation_id": id,
		"selected_docs":   len(req.SelectedDocIds),
		"seeded_notebook": req.NotebookContent != "",
	})

	return &dto.CreateConversationResponse{Id: id, CreatedAt: conv.CreatedAt}, nil
}

func (s *conversationService) Lookup(id string) (*Conversation, error) {
	return s.registry.Get(id)
}

func (s *conversationService) SendMessage(ctx context.Context, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	conv, err := s.registry.Get(req.Id)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "conversation.turn", trace.WithAttributes(
		attribute.String("conversation.id", conv.ID),
		attribute.String("conversation.state_before", string(conv.Router.State())),
	))
	defer span.End()

	res, err := conv.Router.Handle(ctx, req.Utterance)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("conversation.route", string(res.Route)),
		attribute.String("conversation.state", string(res.State)),
		attribute.Bool("conversation.failed", res.Failed),
	)
	if res.Decision != nil {
		span.SetAttributes(
			attribute.String("intent", res.Decision.Intent.String()),
			attribute.Float64("intent.confidence", res.Decision.Confidence),
		)
	} else {
		span.SetAttributes(attribute.String("intent.resolved", res.Resolved.String()))
	}

	s.publishTurn(ctx, conv.ID, res)

	return &dto.SendMessageResponse{
		Decision: res.Decision,
		Resolved: res.Resolved,
		Route:    res.Route,
		Failed:   res.Failed,
		Scoped:   res.Scoped,
		State:    res.State,
		Sent:     res.Sent,
		Reply:    res.Reply,
	}, nil
}

func (s *conversationService) publishTurn(ctx context.Context, id string, res *conversation.TurnResult) {
	now := time.Now()

	if s.publisher != nil {
		payload, err := json.Marshal(dto.TurnMessage{
			ConversationId: id,
			Route:          res.Route,
			Failed:         res.Failed,
			Messages:       []conversation.Message{res.Sent, res.Reply},
		})
		if err == nil {
			err = s.publisher.Publish(ctx, payload)
		}
		if err != nil {
			s.logger.Error("CONVERSATION", "Failed to publish turn", map[string]interface{}{
				"conversation_id": id,
				"error":           err.Error(),
			})
		}
	}

	intentName := res.Resolved.String()
	if res.Decision != nil {
		intentName = res.Decision.Intent.String()
	}

	evts := []events.Event{events.TurnCompleted(id, string(res.Route), intentName, res.Failed, now)}
	switch {
	case res.Route == conversation.RouteClarify:
		evts = append(evts, events.ClarificationOpened(id, res.Reply.Text, now))
	case res.Route == conversation.RouteNoteEdit && !res.Failed:
		evts = append(evts, events.NotebookEdited(id, res.Scoped, now))
	}

	for _, evt := range evts {
		if err := s.events.Publish(ctx, evt); err != nil {
			s.logger.Warn("CONVERSATION", "Failed to publish event", map[string]interface{}{
				"type":  evt.EventType(),
				"error": err.Error(),
			})
		}
		if evt.EventType() == events.TypeNotebookEdited && s.feed != nil {
			s.feed.NotebookChanged(evt)
		}
	}
}

func (s *conversationService) Messages(ctx context.Context, id string) (*dto.MessagesResponse, error) {
	conv, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	return &dto.MessagesResponse{Id: id, Messages: conv.Router.Messages()}, nil
}

func (s *conversationService) State(ctx context.Context, id string) (*dto.ConversationStateResponse, error) {
	conv, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}

	res := &dto.ConversationStateResponse{
		Id:             id,
		State:          conv.Router.State(),
		InFlight:       conv.Router.InFlight(),
		SelectedDocIds: conv.Router.SelectedDocuments(),
		PTKB:           conv.Router.PTKB(),
		ChatSessionId:  conv.Router.ChatConversationID(),
	}
	if session := conv.Router.Session(); session != nil {
		res.PendingQuestion = session.Pending.ClarificationQuestion
		res.PendingMessage = session.OriginalUtterance
	}
	return res, nil
}

func (s *conversationService) SetDocuments(ctx context.Context, req *dto.SetDocumentsRequest) (*dto.SetDocumentsResponse, error) {
	conv, err := s.registry.Get(req.Id)
	if err != nil {
		return nil, err
	}
	conv.Router.SetSelectedDocuments(req.SelectedDocIds)
	return &dto.SetDocumentsResponse{SelectedDocIds: conv.Router.SelectedDocuments()}, nil
}

func (s *conversationService) Transcript(ctx context.Context, id string, limit, offset int) (*dto.TranscriptResponse, error) {
	if s.uowFactory == nil {
		return nil, ErrArchiveDisabled
	}

	repo := s.uowFactory.NewUnitOfWork(ctx).TranscriptRepository()
	byConversation := specification.ByConversationID{ConversationID: id}

	total, err := repo.Count(ctx, byConversation)
	if err != nil {
		return nil, fmt.Errorf("count transcript: %w", err)
	}
	if total == 0 {
		return nil, memory.ErrConversationNotFound
	}

	rows, err := repo.FindAll(ctx, byConversation, specification.InLogOrder(), specification.Pagination{Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}

	messages := make([]conversation.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, s.mapper.ToConversation(row))
	}
	return &dto.TranscriptResponse{Id: id, Messages: messages, Total: total}, nil
}

func (s *conversationService) Delete(ctx context.Context, id string) error {
	conv, err := s.registry.Get(id)
	if err != nil {
		return err
	}
	if err := conv.Notebook.Clear(ctx); err != nil {
		return err
	}
	s.registry.Delete(id)

	s.logger.Info("CONVERSATION", "Conversation deleted", map[string]interface{}{"conversation_id": id})
	return nil
}

func newConversationID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
