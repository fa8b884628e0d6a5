package services

import (
  "context"
  "fmt"
  "strings"

  "github.com/google/uuid"

  "github.com/pagecraft-org/pagecraft-backend/internal/apperr"
  "github.com/pagecraft-org/pagecraft-backend/internal/logger"
  "github.com/pagecraft-org/pagecraft-backend/internal/requestdata"
  "github.com/pagecraft-org/pagecraft-backend/internal/stream"
  "github.com/pagecraft-org/pagecraft-backend/internal/types"
)

// systemPrompt is prepended to every provider call. It is synthetic
// per-request context and never persisted.
const systemPrompt = `You are an expert HTML and CSS developer specializing in creating landing pages.
Your task is to generate clean, responsive, and modern HTML and CSS code for landing pages based on user requirements.
Always include the following in your responses:
1. Valid HTML5 code with proper semantics
2. Responsive design using CSS (preferably with media queries)
3. Modern design principles and aesthetics
4. All HTML and CSS in a single file (inline CSS in a <style> tag)
5. Semantic HTML tags where appropriate
6. Compelling visual hierarchy and user flow
7. Placeholder content relevant to the type of landing page requested

The code should be ready to use immediately when copied into an HTML file.`

// PreparedTurn is a turn whose pre-stream work is done: the chat is resolved,
// the user message is durable and the provider prompt is built from persisted
// history only.
type PreparedTurn struct {
  Chat   *types.Chat
  Prompt []types.PromptMessage
}

// TurnResult reports what a streamed turn left behind.
type TurnResult struct {
  Chat           *types.Chat
  FullText       string
  Forwarded      int
  AssistantSaved bool
}

// ChatService executes one conversational turn end to end. PrepareTurn covers
// everything that must fail before the response status is committed;
// StreamTurn drives the provider and decides what to persist when the stream
// ends or breaks. There is no provider retry here.
type ChatService interface {
  PrepareTurn(ctx context.Context, chatID *uuid.UUID, userText string) (*PreparedTurn, error)
  StreamTurn(ctx context.Context, turn *PreparedTurn, sink stream.Sink) (*TurnResult, error)
}

type chatService struct {
  log      *logger.Logger
  sessions SessionService
  provider ModelProvider
  relay    *stream.Relay
}

func NewChatService(log *logger.Logger, sessions SessionService, provider ModelProvider, relay *stream.Relay) ChatService {
  return &chatService{
    log:      log.With("service", "ChatService"),
    sessions: sessions,
    provider: provider,
    relay:    relay,
  }
}

func (cs *chatService) PrepareTurn(ctx context.Context, chatID *uuid.UUID, userText string) (*PreparedTurn, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    return nil, fmt.Errorf("no request data in context: %w", apperr.ErrUnauthenticated)
  }
  text := strings.TrimSpace(userText)
  if text == "" {
    return nil, fmt.Errorf("userText must not be empty: %w", apperr.ErrValidation)
  }

  chat, err := cs.sessions.CreateOrResume(ctx, rd.UserID, chatID)
  if err != nil {
    return nil, err
  }

  // The user's contribution is durable before the provider is ever invoked.
  if _, err := cs.sessions.AppendMessage(ctx, chat.ID, types.RoleUser, text); err != nil {
    return nil, err
  }

  // Prompt context comes from what is actually persisted, not from anything
  // the caller sent along.
  _, history, err := cs.sessions.GetWithMessages(ctx, rd.UserID, chat.ID)
  if err != nil {
    return nil, err
  }
  prompt := make([]types.PromptMessage, 0, len(history)+1)
  prompt = append(prompt, types.PromptMessage{Role: string(types.RoleSystem), Content: systemPrompt})
  for _, msg := range history {
    prompt = append(prompt, types.PromptMessage{Role: string(msg.Role), Content: msg.Content})
  }

  return &PreparedTurn{Chat: chat, Prompt: prompt}, nil
}

func (cs *chatService) StreamTurn(ctx context.Context, turn *PreparedTurn, sink stream.Sink) (*TurnResult, error) {
  streamCtx, cancel := context.WithCancel(ctx)
  defer cancel()

  fragments := make(chan string)
  done := make(chan error, 1)
  go func() {
    done <- cs.provider.ChatStream(streamCtx, turn.Prompt, fragments)
  }()

  fullText, forwarded, sinkErr, providerErr := cs.relay.Run(streamCtx, cancel, fragments, done, sink)
  result := &TurnResult{Chat: turn.Chat, FullText: fullText, Forwarded: forwarded}

  if sinkErr == nil && providerErr == nil {
    if _, err := cs.persistAssistant(ctx, turn.Chat.ID, fullText); err != nil {
      cs.log.Error("assistant message lost after completed stream", "error", err, "chatID", turn.Chat.ID)
      return result, err
    }
    result.AssistantSaved = true
    return result, nil
  }

  // Partial failure: keep whatever the caller already saw so the conversation
  // stays usable on resume. Nothing is persisted if no fragment arrived.
  if fullText != "" {
    if _, err := cs.persistAssistant(ctx, turn.Chat.ID, fullText); err != nil {
      cs.log.Error("failed to persist partial assistant message", "error", err, "chatID", turn.Chat.ID)
    } else {
      result.AssistantSaved = true
    }
  }
  if sinkErr != nil {
    return result, fmt.Errorf("caller stream aborted after %d fragments: %w", forwarded, sinkErr)
  }
  cs.log.Warn("provider stream failed", "error", providerErr, "chatID", turn.Chat.ID, "forwarded", forwarded)
  return result, fmt.Errorf("%w: %v", apperr.ErrProvider, providerErr)
}

// persistAssistant writes outside the request's cancellation scope: a caller
// that disconnected mid-stream must not also lose the reply it was shown.
func (cs *chatService) persistAssistant(ctx context.Context, chatID uuid.UUID, content string) (*types.Message, error) {
  return cs.sessions.AppendMessage(context.WithoutCancel(ctx), chatID, types.RoleAssistant, content)
}
