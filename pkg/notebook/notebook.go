package notebook

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"ragify-be/internal/pkg/logger"
	"ragify-be/pkg/conversation"
	"ragify-be/pkg/llm"
)

const moduleName = "Notebook"

var ErrInvalidSelection = errors.New("selection is outside the notebook content")

const (
	EmptyNotebookMessage    = "筆記內容為空，無法進行編輯"
	AppliedToSelection      = "已套用變更至選取的文字。"
	AppliedToWholeNotebook  = "已套用變更至整篇筆記。"
	emptyInstructionMessage = conversation.EditFailurePrefix + "編輯指令為空"
	unusableOutputMessage   = conversation.EditFailurePrefix + "模型未回傳有效的筆記內容"
	staleEditMessage        = conversation.EditFailurePrefix + "筆記在編輯期間已被修改，請重新嘗試"
)

// Notebook is the markdown scratchpad of one conversation. It keeps the current
// document in memory and writes every mutation through to the store.
type Notebook struct {
	id       string
	store    Store
	provider llm.LLMProvider
	logger   logger.ILogger
	now      func() time.Time

	mu  sync.RWMutex
	doc Document
}

var _ conversation.NotebookPort = (*Notebook)(nil)

// Open loads the notebook from the store, starting empty when none was saved
func Open(ctx context.Context, id string, store Store, provider llm.LLMProvider, log logger.ILogger) (*Notebook, error) {
	if log == nil {
		log = logger.NopLogger{}
	}
	n := &Notebook{id: id, store: store, provider: provider, logger: log, now: time.Now}

	doc, err := store.Get(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("load notebook %s: %w", id, err)
	default:
		n.doc = *doc
	}
	return n, nil
}

func (n *Notebook) ID() string {
	return n.id
}

func (n *Notebook) State() conversation.NotebookState {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return conversation.NotebookState{
		HasContent:   strings.TrimSpace(n.doc.Content) != "",
		HasSelection: n.doc.Selection != nil,
	}
}

// Document returns a copy of the current document
func (n *Notebook) Document() Document {
	n.mu.RLock()
	defer n.mu.RUnlock()
	doc := n.doc
	if doc.Selection != nil {
		sel := *doc.Selection
		doc.Selection = &sel
	}
	return doc
}

// SetContent replaces the content and drops any selection
func (n *Notebook) SetContent(ctx context.Context, content string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.commit(ctx, Document{Content: content})
}

// Select marks the rune range [start, end) of the content as selected
func (n *Notebook) Select(ctx context.Context, start, end int) (*Selection, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	runes := []rune(n.doc.Content)
	if start < 0 || end <= start || end > len(runes) {
		return nil, ErrInvalidSelection
	}

	sel := &Selection{Start: start, End: end, Text: string(runes[start:end])}
	if err := n.commit(ctx, Document{Content: n.doc.Content, Selection: sel}); err != nil {
		return nil, err
	}
	out := *sel
	return &out, nil
}

func (n *Notebook) ClearSelection(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.doc.Selection == nil {
		return nil
	}
	return n.commit(ctx, Document{Content: n.doc.Content})
}

// Clear empties the notebook and removes it from the store
func (n *Notebook) Clear(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.store.Delete(ctx, n.id); err != nil {
		return err
	}
	n.doc = Document{}
	return nil
}

// Edit rewrites the notebook with the LLM. Model failures come back as an
// unsuccessful result; only persistence problems are returned as errors.
func (n *Notebook) Edit(ctx context.Context, cmd conversation.EditCommand) (*conversation.EditResult, error) {
	current := n.Document()

	if strings.TrimSpace(current.Content) == "" {
		return &conversation.EditResult{Success: false, Message: EmptyNotebookMessage}, nil
	}
	if strings.TrimSpace(cmd.Instruction) == "" {
		return &conversation.EditResult{Success: false, Message: emptyInstructionMessage}, nil
	}

	scoped := cmd.SelectionScoped && current.Selection != nil
	instruction := cmd.Instruction
	if scoped {
		instruction = formatSelectionInstruction(current.Selection.Text, cmd.Instruction)
	}

	raw, err := n.provider.Generate(ctx, formatEditPrompt(current.Content, instruction),
		llm.WithSystemPrompt(editSystemPrompt),
		llm.WithTemperature(0.5),
		llm.WithMaxTokens(2000),
	)
	if err != nil {
		n.logger.Error(moduleName, "LLM edit failed", map[string]interface{}{
			"notebook_id": n.id,
			"error":       err.Error(),
		})
		return &conversation.EditResult{Success: false, Message: conversation.EditFailureText(err)}, nil
	}

	edited, ok := cleanEditOutput(raw)
	if !ok {
		n.logger.Warn(moduleName, "Edited content too short, keeping original", map[string]interface{}{
			"notebook_id": n.id,
			"raw_length":  len(raw),
		})
		return &conversation.EditResult{Success: false, Message: unusableOutputMessage}, nil
	}
	if len([]rune(edited)) < len([]rune(current.Content))/2 {
		n.logger.Warn(moduleName, "Edited content is much shorter than original", map[string]interface{}{
			"notebook_id":     n.id,
			"original_length": len([]rune(current.Content)),
			"edited_length":   len([]rune(edited)),
		})
	}

	// The snapshot was taken before the LLM call; writes made meanwhile win
	n.mu.Lock()
	if !sameDocument(n.doc, current) {
		n.mu.Unlock()
		n.logger.Warn(moduleName, "Notebook changed during edit, discarding result", map[string]interface{}{
			"notebook_id": n.id,
		})
		return &conversation.EditResult{Success: false, Message: staleEditMessage}, nil
	}
	err = n.commit(ctx, Document{Content: edited})
	n.mu.Unlock()
	if err != nil {
		return nil, err
	}

	n.logger.Info(moduleName, "Notebook edit applied", map[string]interface{}{
		"notebook_id": n.id,
		"scoped":      scoped,
	})

	msg := AppliedToWholeNotebook
	if scoped {
		msg = AppliedToSelection
	}
	return &conversation.EditResult{Success: true, Message: msg, Scoped: scoped}, nil
}

// Generate writes a markdown note summarising the conversation into the notebook
func (n *Notebook) Generate(ctx context.Context, history []conversation.Message) (string, error) {
	content := placeholderNote
	if len(history) > 0 {
		raw, err := n.provider.Generate(ctx, formatGenerationPrompt(history),
			llm.WithSystemPrompt(generationSystemPrompt),
			llm.WithTemperature(0.5),
			llm.WithMaxTokens(2000),
		)
		if err != nil {
			n.logger.Error(moduleName, "LLM note generation failed", map[string]interface{}{
				"notebook_id": n.id,
				"error":       err.Error(),
			})
			return "", fmt.Errorf("generate notebook: %w", err)
		}
		content = strings.TrimSpace(raw)
		if !strings.HasPrefix(content, "#") {
			content = defaultHeading + content
		}
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.commit(ctx, Document{Content: content}); err != nil {
		return "", err
	}
	return content, nil
}

// commit must be called with mu held
func (n *Notebook) commit(ctx context.Context, doc Document) error {
	doc.UpdatedAt = n.now()
	if err := n.store.Put(ctx, n.id, &doc); err != nil {
		n.logger.Error(moduleName, "Failed to persist notebook", map[string]interface{}{
			"notebook_id": n.id,
			"error":       err.Error(),
		})
		return fmt.Errorf("save notebook %s: %w", n.id, err)
	}
	n.doc = doc
	return nil
}

func sameDocument(a, b Document) bool {
	if a.Content != b.Content {
		return false
	}
	if a.Selection == nil || b.Selection == nil {
		return a.Selection == nil && b.Selection == nil
	}
	return *a.Selection == *b.Selection
}
