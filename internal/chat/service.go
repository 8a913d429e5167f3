package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/suPer8Hu/taskflow/internal/agent"
	"github.com/suPer8Hu/taskflow/internal/ai"
	"github.com/suPer8Hu/taskflow/internal/common"
	"gorm.io/gorm"
)

const (
	defaultProvider = "openai"
	defaultModel    = "gpt-4o-mini"

	// Returned when a model call fails; the turn still completes and the
	// conversation stays usable.
	degradedReply = "I'm having trouble processing your request. Please try again."

	maxTitleLen = 80
)

type Config struct {
	DefaultProvider   string
	DefaultModel      string
	ContextWindowSize int
	LLMTimeout        time.Duration
}

// Service drives one chat turn: resume or create the conversation, persist
// the user message, call the model with the tool catalog, execute requested
// tools, and feed results back for the final answer.
type Service struct {
	repo     *Repo
	registry *ai.Registry
	executor *agent.Executor
	cfg      Config

	// serializes appends per conversation id
	locks sync.Map
}

func NewService(repo *Repo, registry *ai.Registry, executor *agent.Executor, cfg Config) *Service {
	if cfg.DefaultProvider == "" {
		cfg.DefaultProvider = defaultProvider
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = defaultModel
	}
	if cfg.ContextWindowSize <= 0 || cfg.ContextWindowSize > 100 {
		cfg.ContextWindowSize = 20
	}
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = 8 * time.Second
	}
	return &Service{repo: repo, registry: registry, executor: executor, cfg: cfg}
}

// ToolCallSummary reports one executed tool back to the API caller.
type ToolCallSummary struct {
	Tool       string         `json:"tool"`
	Parameters map[string]any `json:"parameters"`
	Result     agent.Result   `json:"result"`
}

type TurnResult struct {
	ConversationID string            `json:"conversation_id"`
	Reply          string            `json:"reply"`
	ToolCalls      []ToolCallSummary `json:"tool_calls"`
}

// convLock is a refcounted mutex; the map entry is evicted when the last
// holder releases, so idle conversations don't accumulate locks.
type convLock struct {
	mu   sync.Mutex
	refs int32
}

func (s *Service) lockFor(conversationID string) *convLock {
	for {
		v, _ := s.locks.LoadOrStore(conversationID, &convLock{})
		l := v.(*convLock)
		if atomic.AddInt32(&l.refs, 1) > 0 {
			l.mu.Lock()
			return l
		}
		// entry is being torn down; undo and take a fresh one
		atomic.AddInt32(&l.refs, -1)
	}
}

func (s *Service) unlockFor(conversationID string, l *convLock) {
	l.mu.Unlock()
	if atomic.AddInt32(&l.refs, -1) == 0 {
		// mark dying so racing acquirers retry instead of reviving it
		if atomic.CompareAndSwapInt32(&l.refs, 0, -1<<30) {
			s.locks.Delete(conversationID)
		}
	}
}

// SendMessage handles one full chat turn for the authenticated user. The
// conversation id may be empty, which starts a new thread. Model failures
// degrade into an apologetic reply; only conversation-store failures and
// not-found conversations surface as errors.
func (s *Service) SendMessage(ctx context.Context, userID uint64, conversationID, content string) (*TurnResult, error) {
	conv, err := s.resumeOrCreate(ctx, userID, conversationID, content)
	if err != nil {
		return nil, err
	}

	l := s.lockFor(conv.ConversationID)
	defer s.unlockFor(conv.ConversationID, l)

	// persist the user message before any model call so history survives
	// model failures
	userMsg := &Message{
		ConversationID: conv.ConversationID,
		UserID:         userID,
		Role:           ai.RoleUser,
		Content:        content,
	}
	if err := s.repo.InsertMessage(ctx, userMsg); err != nil {
		return nil, err
	}

	// From here the turn runs to completion even if the caller disconnects;
	// a persisted user message always gets an assistant counterpart.
	ctx = context.WithoutCancel(ctx)

	history, err := s.repo.ListRecentMessagesDesc(ctx, userID, conv.ConversationID, s.cfg.ContextWindowSize)
	if err != nil {
		return nil, err
	}
	modelInput := buildModelInput(history)

	provider, err := s.registry.Get(ctx, conv.Provider, conv.Model)
	if err != nil {
		return s.degrade(ctx, userID, conv.ConversationID, nil, err)
	}

	completion, err := s.callModel(ctx, provider, modelInput, agent.Catalog())
	if err != nil {
		return s.degrade(ctx, userID, conv.ConversationID, nil, err)
	}

	if len(completion.ToolCalls) == 0 {
		reply := completion.Text
		if reply == "" {
			reply = "I'm not sure how to help with that."
		}
		if err := s.repo.InsertMessage(ctx, &Message{
			ConversationID: conv.ConversationID,
			UserID:         userID,
			Role:           ai.RoleAssistant,
			Content:        reply,
		}); err != nil {
			return nil, err
		}
		return &TurnResult{ConversationID: conv.ConversationID, Reply: reply}, nil
	}

	// Execute tools sequentially in the order the model requested them. The
	// caller's identity is always substituted; arguments never choose the
	// acting user.
	records := make(ToolCallList, 0, len(completion.ToolCalls))
	summaries := make([]ToolCallSummary, 0, len(completion.ToolCalls))
	results := make([]agent.Result, 0, len(completion.ToolCalls))
	for _, tc := range completion.ToolCalls {
		args := ai.ParseToolArguments(tc.Function.Arguments)
		res := s.executor.Execute(ctx, userID, tc.Function.Name, args)

		records = append(records, ToolCallRecord{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
		summaries = append(summaries, ToolCallSummary{
			Tool:       tc.Function.Name,
			Parameters: args,
			Result:     res,
		})
		results = append(results, res)
	}

	assistantMsg := &Message{
		ConversationID: conv.ConversationID,
		UserID:         userID,
		Role:           ai.RoleAssistant,
		Content:        completion.Text,
		ToolCalls:      records,
	}
	if err := s.repo.InsertMessage(ctx, assistantMsg); err != nil {
		return nil, err
	}

	toolMessages := make([]ai.Message, 0, len(results))
	for i, res := range results {
		toolMsg := &Message{
			ConversationID: conv.ConversationID,
			UserID:         userID,
			Role:           ai.RoleTool,
			Content:        serializeResult(res),
			ToolCallID:     completion.ToolCalls[i].ID,
		}
		if err := s.repo.InsertMessage(ctx, toolMsg); err != nil {
			return nil, err
		}
		toolMessages = append(toolMessages, ai.Message{
			Role:       ai.RoleTool,
			Content:    toolMsg.Content,
			ToolCallID: toolMsg.ToolCallID,
		})
	}

	// second model call: history + tool results, no tool declarations
	followUp := append(modelInput, ai.Message{
		Role:      ai.RoleAssistant,
		Content:   completion.Text,
		ToolCalls: completion.ToolCalls,
	})
	followUp = append(followUp, toolMessages...)

	final, err := s.callModel(ctx, provider, followUp, nil)
	if err != nil {
		return s.degrade(ctx, userID, conv.ConversationID, summaries, err)
	}

	reply := final.Text
	if reply == "" {
		reply = "Done!"
	}
	if err := s.repo.InsertMessage(ctx, &Message{
		ConversationID: conv.ConversationID,
		UserID:         userID,
		Role:           ai.RoleAssistant,
		Content:        reply,
	}); err != nil {
		return nil, err
	}

	return &TurnResult{
		ConversationID: conv.ConversationID,
		Reply:          reply,
		ToolCalls:      summaries,
	}, nil
}

// resumeOrCreate loads an owned conversation or lazily creates one. Ownership
// mismatch is indistinguishable from a missing conversation.
func (s *Service) resumeOrCreate(ctx context.Context, userID uint64, conversationID, firstMessage string) (*Conversation, error) {
	if conversationID != "" {
		conv, err := s.repo.GetConversation(ctx, conversationID)
		if err != nil {
			return nil, err
		}
		if conv.UserID != userID {
			return nil, gorm.ErrRecordNotFound
		}
		return conv, nil
	}

	cid, err := common.NewULID()
	if err != nil {
		return nil, err
	}
	conv := &Conversation{
		ConversationID: cid,
		UserID:         userID,
		Title:          deriveTitle(firstMessage),
		Provider:       s.cfg.DefaultProvider,
		Model:          s.cfg.DefaultModel,
	}
	if err := s.repo.CreateConversation(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *Service) callModel(ctx context.Context, provider ai.Provider, messages []ai.Message, tools []ai.Tool) (*ai.Completion, error) {
	cctx, cancel := context.WithTimeout(ctx, s.cfg.LLMTimeout)
	defer cancel()

	if tp, ok := provider.(ai.ToolProvider); ok {
		return tp.ChatWithTools(cctx, messages, tools)
	}

	// provider without function calling: plain chat, no tools offered
	text, err := provider.Chat(cctx, messages)
	if err != nil {
		return nil, err
	}
	return &ai.Completion{Text: text}, nil
}

// degrade converts a model failure into a successful turn with an apologetic
// reply, persisted so the user message never lacks an assistant counterpart.
func (s *Service) degrade(ctx context.Context, userID uint64, conversationID string, summaries []ToolCallSummary, cause error) (*TurnResult, error) {
	log.Printf("chat turn degraded conversation_id=%s err=%v", conversationID, cause)

	if err := s.repo.InsertMessage(ctx, &Message{
		ConversationID: conversationID,
		UserID:         userID,
		Role:           ai.RoleAssistant,
		Content:        degradedReply,
	}); err != nil {
		return nil, err
	}
	return &TurnResult{
		ConversationID: conversationID,
		Reply:          degradedReply,
		ToolCalls:      summaries,
	}, nil
}

// buildModelInput replays persisted history (newest-first input) into the
// model's message list, oldest-first, with the system prompt prepended.
//
// The count-based window can cut inside a tool group: the assistant message
// carrying tool_calls falls out while its tool-role results stay. An orphan
// tool message at the head of history is a protocol violation (OpenAI rejects
// it), so leading tool-role messages are dropped from the replay.
func buildModelInput(recentDesc []Message) []ai.Message {
	start := len(recentDesc) - 1
	for start >= 0 && recentDesc[start].Role == ai.RoleTool {
		start--
	}

	out := make([]ai.Message, 0, start+2)
	out = append(out, ai.Message{Role: ai.RoleSystem, Content: agent.SystemPrompt})
	for i := start; i >= 0; i-- {
		m := recentDesc[i]
		msg := ai.Message{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, rec := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, ai.ToolCall{
				ID:   rec.ID,
				Type: "function",
				Function: ai.FunctionCall{
					Name:      rec.Name,
					Arguments: rec.Arguments,
				},
			})
		}
		out = append(out, msg)
	}
	return out
}

func serializeResult(res agent.Result) string {
	b, err := json.Marshal(res)
	if err != nil {
		return `{"success":false,"error":"result serialization failed"}`
	}
	return string(b)
}

func deriveTitle(message string) string {
	runes := []rune(message)
	if len(runes) > maxTitleLen {
		return string(runes[:maxTitleLen])
	}
	return message
}

// History returns a conversation's messages oldest-first, ownership-checked.
func (s *Service) History(ctx context.Context, userID uint64, conversationID string, limit int) ([]Message, error) {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	if conv.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.repo.ListMessages(ctx, userID, conversationID, limit)
}

func (s *Service) ListConversations(ctx context.Context, userID uint64) ([]ConversationSummary, error) {
	return s.repo.ListConversations(ctx, userID)
}
