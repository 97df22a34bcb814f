package service

import (
	"context"

	"ragify-be/internal/dto"
	"ragify-be/pkg/intent"
)

// IIntentService exposes the routing heuristics without any conversation state
type IIntentService interface {
	Classify(ctx context.Context, req *dto.ClassifyIntentRequest) *dto.ClassifyIntentResponse
	Resolve(ctx context.Context, req *dto.ResolveClarificationRequest) *dto.ResolveClarificationResponse
	Extract(ctx context.Context, req *dto.ExtractInstructionRequest) *dto.ExtractInstructionResponse
}

type intentService struct {
	classifier *intent.Classifier
	resolver   *intent.Resolver
	extractor  *intent.Extractor
}

func NewIntentService(classifier *intent.Classifier, resolver *intent.Resolver, extractor *intent.Extractor) IIntentService {
	return &intentService{
		classifier: classifier,
		resolver:   resolver,
		extractor:  extractor,
	}
}

func (s *intentService) Classify(_ context.Context, req *dto.ClassifyIntentRequest) *dto.ClassifyIntentResponse {
	d := s.classifier.Classify(req.UserMessage, req.HasNotebookContent, req.HasSelection)
	return &dto.ClassifyIntentResponse{
		Intent:                d.Intent,
		Confidence:            d.Confidence,
		ClarificationQuestion: d.ClarificationQuestion,
		EditScore:             d.EditScore,
		QueryScore:            d.QueryScore,
		Reason:                d.Reason,
	}
}

func (s *intentService) Resolve(_ context.Context, req *dto.ResolveClarificationRequest) *dto.ResolveClarificationResponse {
	resolved, ok := s.resolver.Resolve(req.Reply)
	if !ok {
		return &dto.ResolveClarificationResponse{Resolved: false}
	}
	return &dto.ResolveClarificationResponse{Resolved: true, Intent: resolved}
}

func (s *intentService) Extract(_ context.Context, req *dto.ExtractInstructionRequest) *dto.ExtractInstructionResponse {
	return &dto.ExtractInstructionResponse{Instruction: s.extractor.Extract(req.UserMessage)}
}
