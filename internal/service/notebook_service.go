package service

import (
	"context"
	"time"

	"ragify-be/internal/dto"
	"ragify-be/internal/pkg/logger"
	"ragify-be/pkg/events"
	"ragify-be/pkg/notebook"
)

type INotebookService interface {
	Show(ctx context.Context, id string) (*dto.ShowNotebookResponse, error)
	Update(ctx context.Context, req *dto.UpdateNotebookRequest) (*dto.ShowNotebookResponse, error)
	Clear(ctx context.Context, id string) error
	Select(ctx context.Context, req *dto.SelectionRequest) (*dto.ShowNotebookResponse, error)
	ClearSelection(ctx context.Context, id string) (*dto.ShowNotebookResponse, error)
	Generate(ctx context.Context, id string) (*dto.GenerateNotebookResponse, error)
}

type notebookService struct {
	conversations IConversationService
	events        events.Publisher
	feed          IFeedService
	logger        logger.ILogger
}

func NewNotebookService(
	conversations IConversationService,
	eventPublisher events.Publisher,
	feed IFeedService,
	log logger.ILogger,
) INotebookService {
	if eventPublisher == nil {
		eventPublisher = events.NopPublisher{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &notebookService{
		conversations: conversations,
		events:        eventPublisher,
		feed:          feed,
		logger:        log,
	}
}

func (c *notebookService) notebook(id string) (*Conversation, error) {
	return c.conversations.Lookup(id)
}

func (c *notebookService) Show(ctx context.Context, id string) (*dto.ShowNotebookResponse, error) {
	conv, err := c.notebook(id)
	if err != nil {
		return nil, err
	}
	return toNotebookResponse(conv.Notebook), nil
}

func (c *notebookService) Update(ctx context.Context, req *dto.UpdateNotebookRequest) (*dto.ShowNotebookResponse, error) {
	conv, err := c.notebook(req.Id)
	if err != nil {
		return nil, err
	}
	if err := conv.Notebook.SetContent(ctx, req.Content); err != nil {
		return nil, err
	}
	c.changed(ctx, events.NotebookUpdated(events.TypeNotebookUpdated, req.Id, time.Now()))
	return toNotebookResponse(conv.Notebook), nil
}

func (c *notebookService) Clear(ctx context.Context, id string) error {
	conv, err := c.notebook(id)
	if err != nil {
		return err
	}
	if err := conv.Notebook.Clear(ctx); err != nil {
		return err
	}
	c.changed(ctx, events.NotebookUpdated(events.TypeNotebookCleared, id, time.Now()))
	return nil
}

func (c *notebookService) Select(ctx context.Context, req *dto.SelectionRequest) (*dto.ShowNotebookResponse, error) {
	conv, err := c.notebook(req.Id)
	if err != nil {
		return nil, err
	}
	if _, err := conv.Notebook.Select(ctx, req.Start, req.End); err != nil {
		return nil, err
	}
	return toNotebookResponse(conv.Notebook), nil
}

func (c *notebookService) ClearSelection(ctx context.Context, id string) (*dto.ShowNotebookResponse, error) {
	conv, err := c.notebook(id)
	if err != nil {
		return nil, err
	}
	if err := conv.Notebook.ClearSelection(ctx); err != nil {
		return nil, err
	}
	return toNotebookResponse(conv.Notebook), nil
}

func (c *notebookService) Generate(ctx context.Context, id string) (*dto.GenerateNotebookResponse, error) {
	conv, err := c.notebook(id)
	if err != nil {
		return nil, err
	}

	content, err := conv.Notebook.Generate(ctx, conv.Router.Messages())
	if err != nil {
		return nil, err
	}

	c.changed(ctx, events.NotebookGenerated(id, time.Now()))
	return &dto.GenerateNotebookResponse{Id: id, Content: content}, nil
}

func (c *notebookService) changed(ctx context.Context, evt events.BaseEvent) {
	if err := c.events.Publish(ctx, evt); err != nil {
		c.logger.Warn("NOTEBOOK", "Failed to publish event", map[string]interface{}{
			"type":  evt.EventType(),
			"error": err.Error(),
		})
	}
	if c.feed != nil {
		c.feed.NotebookChanged(evt)
	}
}

func toNotebookResponse(nb *notebook.Notebook) *dto.ShowNotebookResponse {
	doc := nb.Document()
	state := nb.State()

	res := &dto.ShowNotebookResponse{
		Id:           nb.ID(),
		Content:      doc.Content,
		HasContent:   state.HasContent,
		HasSelection: state.HasSelection,
	}
	if doc.Selection != nil {
		res.Selection = &dto.SelectionDto{
			Start: doc.Selection.Start,
			End:   doc.Selection.End,
			Text:  doc.Selection.Text,
		}
	}
	if !doc.UpdatedAt.IsZero() {
		updatedAt := doc.UpdatedAt
		res.UpdatedAt = &updatedAt
	}
	return res
}
