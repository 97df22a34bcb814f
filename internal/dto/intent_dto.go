package dto

import "ragify-be/pkg/intent"

type ClassifyIntentRequest struct {
	UserMessage        string `json:"user_message" validate:"required"`
	HasNotebookContent bool   `json:"has_notebook_content"`
	HasSelection       bool   `json:"has_selection"`
}

type ClassifyIntentResponse struct {
	Intent                intent.Intent `json:"intent"`
	Confidence            float64       `json:"confidence"`
	ClarificationQuestion string        `json:"clarification_question,omitempty"`
	EditScore             int           `json:"edit_score"`
	QueryScore            int           `json:"query_score"`
	Reason                string        `json:"reason,omitempty"`
}

type ResolveClarificationRequest struct {
	Reply string `json:"reply" validate:"required"`
}

type ResolveClarificationResponse struct {
	Resolved bool          `json:"resolved"`
	Intent   intent.Intent `json:"intent,omitempty"`
}

type ExtractInstructionRequest struct {
	UserMessage string `json:"user_message" validate:"required"`
}

type ExtractInstructionResponse struct {
	Instruction string `json:"instruction"`
}
