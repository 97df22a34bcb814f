package service

import (
	"context"
	"testing"

	"ragify-be/internal/dto"
	"ragify-be/pkg/intent"

	"github.com/stretchr/testify/assert"
)

func TestIntentService(t *testing.T) {
	svc := NewIntentService(intent.NewClassifier(), intent.NewDefaultResolver(), intent.NewExtractor())
	ctx := context.Background()

	tests := []struct {
		name       string
		req        dto.ClassifyIntentRequest
		wantIntent intent.Intent
	}{
		{"edit with content", dto.ClassifyIntentRequest{UserMessage: "幫我把筆記縮短一點", HasNotebookContent: true}, intent.IntentNoteEdit},
		{"edit words without content", dto.ClassifyIntentRequest{UserMessage: "幫我把筆記縮短一點"}, intent.IntentChatQA},
		{"ambiguous", dto.ClassifyIntentRequest{UserMessage: "我想討論這個摘要", HasNotebookContent: true}, intent.IntentClarify},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := svc.Classify(ctx, &tt.req)
			assert.Equal(t, tt.wantIntent, res.Intent)
		})
	}

	assert.Equal(t, &dto.ResolveClarificationResponse{Resolved: true, Intent: intent.IntentNoteEdit},
		svc.Resolve(ctx, &dto.ResolveClarificationRequest{Reply: "是"}))
	assert.False(t, svc.Resolve(ctx, &dto.ResolveClarificationRequest{Reply: "台北今天天氣如何？"}).Resolved)
	assert.Equal(t, "縮短一點", svc.Extract(ctx, &dto.ExtractInstructionRequest{UserMessage: "幫我把筆記縮短一點"}).Instruction)
}
