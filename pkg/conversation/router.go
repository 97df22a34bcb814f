package conversation

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"ragify-be/internal/pkg/logger"
	"ragify-be/pkg/intent"
)

const moduleName = "Router"

// State of the per-conversation routing machine
type State string

const (
	StateIdle                  State = "IDLE"
	StateAwaitingClarification State = "AWAITING_CLARIFICATION"
)

// Route is the dispatch a turn ended in
type Route string

const (
	RouteNoteEdit Route = "note_edit"
	RouteChat     Route = "chat"
	RouteClarify  Route = "clarify"
)

// ClarificationSession buffers an ambiguous utterance until the user answers the question
type ClarificationSession struct {
	Pending           intent.Decision
	OriginalUtterance string
}

// TurnResult describes one handled utterance
type TurnResult struct {
	// Decision is nil when the utterance answered a pending clarification
	Decision *intent.Decision `json:"decision,omitempty"`
	// Resolved is the clarification answer, set only when Decision is nil
	Resolved intent.Intent `json:"resolved,omitempty"`
	Route    Route         `json:"route"`
	Failed   bool          `json:"failed"`
	// Scoped is true when a successful edit applied only to the selection
	Scoped bool    `json:"scoped,omitempty"`
	State  State   `json:"state"`
	Sent   Message `json:"sent"`
	Reply  Message `json:"reply"`
}

type Deps struct {
	Chat ChatPort
	// Notebook may be nil when no notebook is attached to the conversation
	Notebook   NotebookPort
	Classifier *intent.Classifier
	Resolver   *intent.Resolver
	Extractor  *intent.Extractor
	Logger     logger.ILogger
	// OnMessage is called after every append, in log order
	OnMessage func(Message)
	Now       func() time.Time
}

// Router runs the two-state routing machine for a single conversation.
// It owns the message log, the clarification session, the PTKB list, the
// selected documents and the chat backend's conversation id.
type Router struct {
	chat       ChatPort
	notebook   NotebookPort
	classifier *intent.Classifier
	resolver   *intent.Resolver
	extractor  *intent.Extractor
	logger     logger.ILogger
	onMessage  func(Message)
	now        func() time.Time

	inFlight atomic.Bool

	mu             sync.RWMutex
	messages       []Message
	seq            int64
	session        *ClarificationSession
	chatID         string
	ptkb           []string
	selectedDocIDs []string
}

func NewRouter(deps Deps) (*Router, error) {
	if deps.Chat == nil {
		return nil, ErrNoChatPort
	}
	r := &Router{
		chat:       deps.Chat,
		notebook:   deps.Notebook,
		classifier: deps.Classifier,
		resolver:   deps.Resolver,
		extractor:  deps.Extractor,
		logger:     deps.Logger,
		onMessage:  deps.OnMessage,
		now:        deps.Now,
	}
	if r.classifier == nil {
		r.classifier = intent.NewClassifier()
	}
	if r.resolver == nil {
		r.resolver = intent.NewDefaultResolver()
	}
	if r.extractor == nil {
		r.extractor = intent.NewExtractor()
	}
	if r.logger == nil {
		r.logger = logger.NopLogger{}
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r, nil
}

// Handle processes one utterance. The utterance is logged before anything else
// happens. Collaborator failures become assistant messages; the only errors
// returned are caller errors, and those leave the router untouched.
func (r *Router) Handle(ctx context.Context, utterance string) (*TurnResult, error) {
	if strings.TrimSpace(utterance) == "" {
		return nil, ErrEmptyUtterance
	}
	if !r.inFlight.CompareAndSwap(false, true) {
		return nil, ErrTurnInFlight
	}
	defer r.inFlight.Store(false)

	res := &TurnResult{Sent: r.append(RoleUser, utterance, nil)}

	if session := r.takeSession(); session != nil {
		if resolved, ok := r.resolver.Resolve(utterance); ok {
			r.logger.Info(moduleName, "Clarification resolved", map[string]interface{}{
				"resolved": resolved.String(),
				"original": session.OriginalUtterance,
			})
			res.Resolved = resolved
			if resolved == intent.IntentNoteEdit {
				r.dispatchEdit(ctx, session.OriginalUtterance, res)
			} else {
				r.dispatchChat(ctx, session.OriginalUtterance, res)
			}
			res.State = r.State()
			return res, nil
		}
		r.logger.Info(moduleName, "Clarification abandoned, treating reply as new utterance", map[string]interface{}{
			"original": session.OriginalUtterance,
		})
	}

	r.route(ctx, utterance, res)
	res.State = r.State()
	return res, nil
}

func (r *Router) route(ctx context.Context, utterance string, res *TurnResult) {
	var nb NotebookState
	if r.notebook != nil {
		nb = r.notebook.State()
	}

	decision := r.classifier.Classify(utterance, nb.HasContent, nb.HasSelection)
	res.Decision = &decision

	r.logger.Info(moduleName, "Utterance classified", map[string]interface{}{
		"intent":        decision.Intent.String(),
		"confidence":    decision.Confidence,
		"edit_score":    decision.EditScore,
		"query_score":   decision.QueryScore,
		"reason":        decision.Reason,
		"has_content":   nb.HasContent,
		"has_selection": nb.HasSelection,
	})

	switch decision.Intent {
	case intent.IntentNoteEdit:
		r.dispatchEdit(ctx, utterance, res)
	case intent.IntentClarify:
		r.mu.Lock()
		r.session = &ClarificationSession{Pending: decision, OriginalUtterance: utterance}
		r.mu.Unlock()
		res.Route = RouteClarify
		res.Reply = r.append(RoleAssistant, decision.ClarificationQuestion, nil)
	default:
		// NOTE_QUERY has no behaviour of its own
		r.dispatchChat(ctx, utterance, res)
	}
}

func (r *Router) dispatchEdit(ctx context.Context, utterance string, res *TurnResult) {
	res.Route = RouteNoteEdit

	if r.notebook == nil {
		r.logger.Warn(moduleName, "Edit requested without a notebook", nil)
		res.Failed = true
		res.Reply = r.append(RoleAssistant, EditFailureMarker+NotebookUnavailableMessage, nil)
		return
	}

	cmd := EditCommand{
		Instruction:     r.extractor.Extract(utterance),
		SelectionScoped: r.notebook.State().HasSelection,
	}

	result, err := r.notebook.Edit(ctx, cmd)
	switch {
	case err != nil:
		r.logger.Error(moduleName, "Notebook edit failed", map[string]interface{}{
			"error":    err.Error(),
			"category": string(Categorize(err)),
		})
		res.Failed = true
		res.Reply = r.append(RoleAssistant, EditFailureMarker+EditFailureText(err), nil)
	case result == nil || !result.Success:
		msg := EditFailurePrefix + "unknown error"
		if result != nil && result.Message != "" {
			msg = result.Message
		}
		r.logger.Warn(moduleName, "Notebook edit rejected", map[string]interface{}{"message": msg})
		res.Failed = true
		res.Reply = r.append(RoleAssistant, EditFailureMarker+msg, nil)
	default:
		r.logger.Info(moduleName, "Notebook edited", map[string]interface{}{
			"instruction":      cmd.Instruction,
			"selection_scoped": cmd.SelectionScoped,
			"scoped":           result.Scoped,
		})
		res.Scoped = result.Scoped
		res.Reply = r.append(RoleAssistant, EditSuccessMarker+result.Message, nil)
	}
}

func (r *Router) dispatchChat(ctx context.Context, query string, res *TurnResult) {
	res.Route = RouteChat

	r.mu.RLock()
	req := ChatRequest{
		Query:          query,
		ConversationID: r.chatID,
		History:        r.historyBefore(res.Sent.Seq),
		PTKBList:       append([]string(nil), r.ptkb...),
		SelectedDocIDs: append([]string(nil), r.selectedDocIDs...),
	}
	r.mu.RUnlock()

	resp, err := r.chat.Ask(ctx, req)
	if err != nil {
		r.logger.Error(moduleName, "Chat request failed", map[string]interface{}{
			"error":    err.Error(),
			"category": string(Categorize(err)),
		})
		res.Failed = true
		res.Reply = r.append(RoleAssistant, ChatFailureText(err), nil)
		return
	}
	if resp == nil {
		r.logger.Error(moduleName, "Chat port returned no response", nil)
		res.Failed = true
		res.Reply = r.append(RoleAssistant, ChatFailureMessage, nil)
		return
	}

	r.mu.Lock()
	if resp.ConversationID != "" {
		r.chatID = resp.ConversationID
	}
	if ptkb := strings.TrimSpace(resp.NewPTKB); ptkb != "" && !contains(r.ptkb, ptkb) {
		r.ptkb = append(r.ptkb, ptkb)
	}
	r.mu.Unlock()

	res.Reply = r.append(RoleAssistant, resp.Answer, resp.Sources)
}

func (r *Router) append(role Role, text string, citations []Citation) Message {
	r.mu.Lock()
	r.seq++
	msg := Message{
		ID:        newMessageID(),
		Seq:       r.seq,
		Role:      role,
		Text:      text,
		Citations: citations,
		CreatedAt: r.now(),
	}
	r.messages = append(r.messages, msg)
	r.mu.Unlock()

	if r.onMessage != nil {
		r.onMessage(msg)
	}
	return msg
}

// takeSession clears and returns the pending clarification, if any
func (r *Router) takeSession() *ClarificationSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.session
	r.session = nil
	return s
}

// historyBefore must be called with mu held
func (r *Router) historyBefore(seq int64) []Message {
	out := make([]Message, 0, len(r.messages))
	for _, m := range r.messages {
		if m.Seq >= seq {
			break
		}
		out = append(out, m)
	}
	return out
}

func (r *Router) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.session != nil {
		return StateAwaitingClarification
	}
	return StateIdle
}

// Session returns a copy of the pending clarification, nil when idle
func (r *Router) Session() *ClarificationSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.session == nil {
		return nil
	}
	s := *r.session
	return &s
}

// InFlight reports whether a turn is currently being processed
func (r *Router) InFlight() bool {
	return r.inFlight.Load()
}

// Messages returns a snapshot of the log
func (r *Router) Messages() []Message {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Message(nil), r.messages...)
}

func (r *Router) PTKB() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.ptkb...)
}

func (r *Router) ChatConversationID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.chatID
}

func (r *Router) SelectedDocuments() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.selectedDocIDs...)
}

// SetSelectedDocuments replaces the document ids forwarded with chat requests
func (r *Router) SetSelectedDocuments(ids []string) {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	r.mu.Lock()
	r.selectedDocIDs = out
	r.mu.Unlock()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
