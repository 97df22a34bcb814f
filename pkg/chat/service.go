package chat

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"ragify-be/internal/pkg/logger"
	"ragify-be/pkg/conversation"
	"ragify-be/pkg/llm"
)

const moduleName = "Chat"

type Options struct {
	// ExtractNewPTKB asks the model for a new personal fact on every turn.
	// Off by default: it doubles the calls per turn and trips safety filters.
	ExtractNewPTKB bool
	WordLimit      int
}

// Service answers chat turns with the configured LLM, personalised by the PTKB
type Service struct {
	provider llm.LLMProvider
	logger   logger.ILogger
	opts     Options
}

var _ conversation.ChatPort = (*Service)(nil)

func NewService(provider llm.LLMProvider, log logger.ILogger, opts Options) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	if opts.WordLimit <= 0 {
		opts.WordLimit = ResponseWordLimit
	}
	return &Service{provider: provider, logger: log, opts: opts}
}

func (s *Service) Ask(ctx context.Context, req conversation.ChatRequest) (*conversation.ChatResponse, error) {
	history := BuildContext(req.History)

	var newPTKB string
	if s.opts.ExtractNewPTKB {
		newPTKB = s.extractNewPTKB(ctx, history, req.Query, req.PTKBList)
	}

	facts := req.PTKBList
	if newPTKB != "" {
		facts = append(append([]string(nil), req.PTKBList...), newPTKB)
	}
	relevant := s.relevantPTKB(ctx, history, req.Query, facts)

	raw, err := s.provider.Generate(ctx,
		formatResponsePrompt(history, req.Query, formatPTKBList(relevant, "None provided.")),
		llm.WithSystemPrompt(responseSystemPrompt),
		llm.WithTemperature(0.5),
		llm.WithMaxTokens(2000),
	)
	if err != nil {
		s.logger.Error(moduleName, "Response generation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("generate response: %w", err)
	}

	answer := ParseResponse(raw)
	if truncated := TruncateWords(answer, s.opts.WordLimit); truncated != answer {
		s.logger.Warn(moduleName, "Response truncated", map[string]interface{}{"limit": s.opts.WordLimit})
		answer = truncated
	}

	convID := req.ConversationID
	if convID == "" {
		convID = uuid.NewString()
	}

	s.logger.Debug(moduleName, "Answer generated", map[string]interface{}{
		"conversation_id": convID,
		"ptkb_used":       len(relevant),
		"new_ptkb":        newPTKB != "",
		"selected_docs":   len(req.SelectedDocIDs),
	})

	return &conversation.ChatResponse{
		Answer:         answer,
		ConversationID: convID,
		PTKBUsed:       relevant,
		NewPTKB:        newPTKB,
	}, nil
}

// extractNewPTKB never fails the turn; errors mean "no new fact"
func (s *Service) extractNewPTKB(ctx context.Context, history, utterance string, current []string) string {
	raw, err := s.provider.Generate(ctx,
		formatNewPTKBPrompt(history, utterance, formatPTKBList(current, "None")),
		llm.WithSystemPrompt(newPTKBSystemPrompt),
		llm.WithTemperature(0),
		llm.WithMaxTokens(50),
	)
	if err != nil {
		s.logger.Warn(moduleName, "New PTKB extraction failed", map[string]interface{}{"error": err.Error()})
		return ""
	}
	return ParseNewPTKB(raw)
}

// relevantPTKB never fails the turn; errors mean "nothing relevant"
func (s *Service) relevantPTKB(ctx context.Context, history, utterance string, facts []string) []string {
	if len(facts) == 0 {
		return []string{}
	}
	raw, err := s.provider.Generate(ctx,
		formatRelevancePrompt(history, utterance, formatPTKBList(facts, "None")),
		llm.WithSystemPrompt(relevanceSystemPrompt),
		llm.WithTemperature(0),
		llm.WithMaxTokens(200),
	)
	if err != nil {
		s.logger.Warn(moduleName, "PTKB relevance failed", map[string]interface{}{"error": err.Error()})
		return []string{}
	}
	relevant := ParseRelevantPTKB(raw)
	if relevant == nil {
		return []string{}
	}
	return relevant
}
