package dto

import "time"

type SelectionDto struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

type ShowNotebookResponse struct {
	Id           string        `json:"id"`
	Content      string        `json:"content"`
	HasContent   bool          `json:"has_content"`
	HasSelection bool          `json:"has_selection"`
	Selection    *SelectionDto `json:"selection,omitempty"`
	UpdatedAt    *time.Time    `json:"updated_at"`
}

type UpdateNotebookRequest struct {
	Id      string `json:"-"`
	Content string `json:"content" validate:"max=200000"`
}

type SelectionRequest struct {
	Id    string `json:"-"`
	Start int    `json:"start" validate:"min=0"`
	End   int    `json:"end" validate:"gtfield=Start"`
}

type GenerateNotebookResponse struct {
	Id      string `json:"id"`
	Content string `json:"content"`
}
