package services

import (
  "context"
  "fmt"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/pagecraft-org/pagecraft-backend/internal/apperr"
  "github.com/pagecraft-org/pagecraft-backend/internal/logger"
  "github.com/pagecraft-org/pagecraft-backend/internal/repos"
  "github.com/pagecraft-org/pagecraft-backend/internal/types"
)

// SessionService owns chat and message persistence: create-or-resume, ordered
// appends, ownership-scoped reads and atomic cascade deletes.
type SessionService interface {
  CreateOrResume(ctx context.Context, userID uuid.UUID, chatID *uuid.UUID) (*types.Chat, error)
  AppendMessage(ctx context.Context, chatID uuid.UUID, role types.Role, content string) (*types.Message, error)
  GetWithMessages(ctx context.Context, userID, chatID uuid.UUID) (*types.Chat, []*types.Message, error)
  DeleteChat(ctx context.Context, userID, chatID uuid.UUID) error
}

type sessionService struct {
  db          *gorm.DB
  log         *logger.Logger
  chatRepo    repos.ChatRepo
  messageRepo repos.MessageRepo
}

func NewSessionService(db *gorm.DB, log *logger.Logger, chatRepo repos.ChatRepo, messageRepo repos.MessageRepo) SessionService {
  return &sessionService{
    db:          db,
    log:         log.With("service", "SessionService"),
    chatRepo:    chatRepo,
    messageRepo: messageRepo,
  }
}

// CreateOrResume fetches the owner's chat when chatID is given, or creates a
// fresh empty chat when it is nil. There is no explicit create-then-send step.
func (ss *sessionService) CreateOrResume(ctx context.Context, userID uuid.UUID, chatID *uuid.UUID) (*types.Chat, error) {
  if chatID != nil {
    return ss.chatRepo.GetOwned(ctx, nil, userID, *chatID)
  }
  chat := &types.Chat{UserID: userID}
  created, err := ss.chatRepo.Create(ctx, nil, chat)
  if err != nil {
    return nil, err
  }
  ss.log.Info("created new chat", "chatID", created.ID, "userID", userID)
  return created, nil
}

// AppendMessage inserts the message with the chat's next sequence marker and
// bumps the chat's updated_at in the same transaction. The bump runs first so
// its row lock serializes concurrent appends to the same chat, and a reader can
// never observe the message without the refreshed recency.
func (ss *sessionService) AppendMessage(ctx context.Context, chatID uuid.UUID, role types.Role, content string) (*types.Message, error) {
  if !role.Valid() {
    return nil, fmt.Errorf("role %q: %w", role, apperr.ErrValidation)
  }
  if role == types.RoleSystem {
    // System instructions are synthetic per-request context, never history.
    return nil, fmt.Errorf("system messages are not persisted: %w", apperr.ErrValidation)
  }
  var msg *types.Message
  err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    now := time.Now().UTC()
    if err := ss.chatRepo.Touch(ctx, tx, chatID, now); err != nil {
      return err
    }
    seq, err := ss.messageRepo.NextSeq(ctx, tx, chatID)
    if err != nil {
      return err
    }
    created, err := ss.messageRepo.Create(ctx, tx, &types.Message{
      ChatID:    chatID,
      Role:      role,
      Content:   content,
      Seq:       seq,
      CreatedAt: now,
    })
    if err != nil {
      return err
    }
    msg = created
    return nil
  })
  if err != nil {
    return nil, err
  }
  return msg, nil
}

func (ss *sessionService) GetWithMessages(ctx context.Context, userID, chatID uuid.UUID) (*types.Chat, []*types.Message, error) {
  chat, err := ss.chatRepo.GetOwned(ctx, nil, userID, chatID)
  if err != nil {
    return nil, nil, err
  }
  msgs, err := ss.messageRepo.GetByChatID(ctx, nil, chatID)
  if err != nil {
    return nil, nil, err
  }
  return chat, msgs, nil
}

// DeleteChat removes the chat and all its messages as one unit. The ownership
// check runs inside the transaction so the id cannot be swapped out under us.
func (ss *sessionService) DeleteChat(ctx context.Context, userID, chatID uuid.UUID) error {
  return ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if _, err := ss.chatRepo.GetOwned(ctx, tx, userID, chatID); err != nil {
      return err
    }
    if err := ss.messageRepo.DeleteByChatID(ctx, tx, chatID); err != nil {
      return err
    }
    if err := ss.chatRepo.Delete(ctx, tx, chatID); err != nil {
      return err
    }
    ss.log.Info("deleted chat", "chatID", chatID, "userID", userID)
    return nil
  })
}
