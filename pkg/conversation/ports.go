package conversation

import "context"

// NotebookState is a point-in-time view of the notebook, read fresh every turn
type NotebookState struct {
	HasContent   bool `json:"has_content"`
	HasSelection bool `json:"has_selection"`
}

// EditCommand asks the notebook to transform its own content
type EditCommand struct {
	Instruction string
	// SelectionScoped limits the edit to the current selection
	SelectionScoped bool
}

type EditResult struct {
	Success bool
	Message string
	// Scoped reports that a successful edit rewrote only the selection
	Scoped bool
}

// NotebookPort is the notebook collaborator. The notebook mutates itself on a
// successful edit; callers never touch content directly.
type NotebookPort interface {
	State() NotebookState
	Edit(ctx context.Context, cmd EditCommand) (*EditResult, error)
}

type ChatRequest struct {
	Query          string
	ConversationID string
	History        []Message
	PTKBList       []string
	SelectedDocIDs []string
}

type ChatResponse struct {
	Answer         string
	ConversationID string
	PTKBUsed       []string
	NewPTKB        string
	Sources        []Citation
}

// ChatPort answers general questions, optionally grounded in selected documents
type ChatPort interface {
	Ask(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}
