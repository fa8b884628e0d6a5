package services

import (
  "context"
  "fmt"

  "gorm.io/gorm"

  "github.com/pagecraft-org/pagecraft-backend/internal/apperr"
  "github.com/pagecraft-org/pagecraft-backend/internal/logger"
  "github.com/pagecraft-org/pagecraft-backend/internal/repos"
  "github.com/pagecraft-org/pagecraft-backend/internal/requestdata"
  "github.com/pagecraft-org/pagecraft-backend/internal/types"
)

const (
  previewRuneLimit   = 30
  previewPlaceholder = "New conversation"
)

// HistoryService is the read side: the caller's chats ordered by recency, each
// with a preview derived from its earliest message.
type HistoryService interface {
  ListForUser(ctx context.Context) ([]types.ChatSummary, error)
}

type historyService struct {
  db          *gorm.DB
  log         *logger.Logger
  chatRepo    repos.ChatRepo
  messageRepo repos.MessageRepo
}

func NewHistoryService(db *gorm.DB, log *logger.Logger, chatRepo repos.ChatRepo, messageRepo repos.MessageRepo) HistoryService {
  return &historyService{
    db:          db,
    log:         log.With("service", "HistoryService"),
    chatRepo:    chatRepo,
    messageRepo: messageRepo,
  }
}

func (hs *historyService) ListForUser(ctx context.Context) ([]types.ChatSummary, error) {
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    return nil, fmt.Errorf("no request data in context: %w", apperr.ErrUnauthenticated)
  }
  chats, err := hs.chatRepo.ListByUser(ctx, nil, rd.UserID)
  if err != nil {
    return nil, err
  }
  summaries := make([]types.ChatSummary, 0, len(chats))
  for _, chat := range chats {
    first, err := hs.messageRepo.FirstByChatID(ctx, nil, chat.ID)
    if err != nil {
      return nil, err
    }
    summaries = append(summaries, types.ChatSummary{
      ID:        chat.ID,
      CreatedAt: chat.CreatedAt,
      UpdatedAt: chat.UpdatedAt,
      Preview:   previewOf(first),
    })
  }
  return summaries, nil
}

func previewOf(first *types.Message) string {
  if first == nil {
    return previewPlaceholder
  }
  runes := []rune(first.Content)
  if len(runes) <= previewRuneLimit {
    return first.Content
  }
  return string(runes[:previewRuneLimit]) + "..."
}
