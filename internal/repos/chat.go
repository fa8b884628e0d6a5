package repos

import (
  "context"
  "errors"
  "fmt"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/pagecraft-org/pagecraft-backend/internal/apperr"
  "github.com/pagecraft-org/pagecraft-backend/internal/logger"
  "github.com/pagecraft-org/pagecraft-backend/internal/types"
)

type ChatRepo interface {
  Create(ctx context.Context, tx *gorm.DB, chat *types.Chat) (*types.Chat, error)
  GetOwned(ctx context.Context, tx *gorm.DB, userID, chatID uuid.UUID) (*types.Chat, error)
  ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Chat, error)
  Touch(ctx context.Context, tx *gorm.DB, chatID uuid.UUID, at time.Time) error
  Delete(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) error
}

type chatRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewChatRepo(db *gorm.DB, baseLog *logger.Logger) ChatRepo {
  return &chatRepo{
    db:  db,
    log: baseLog.With("repo", "ChatRepo"),
  }
}

func (cr *chatRepo) Create(ctx context.Context, tx *gorm.DB, chat *types.Chat) (*types.Chat, error) {
  if tx == nil {
    tx = cr.db
  }
  if chat.ID == uuid.Nil {
    chat.ID = uuid.New()
  }
  now := time.Now().UTC()
  if chat.CreatedAt.IsZero() {
    chat.CreatedAt = now
  }
  if chat.UpdatedAt.IsZero() {
    chat.UpdatedAt = chat.CreatedAt
  }
  if err := tx.WithContext(ctx).Create(chat).Error; err != nil {
    cr.log.Error("failed to create chat", "error", err)
    return nil, fmt.Errorf("create chat: %w: %v", apperr.ErrPersistence, err)
  }
  return chat, nil
}

// GetOwned resolves a chat by id scoped to its owner. A chat that exists but
// belongs to another user is indistinguishable from one that does not exist.
func (cr *chatRepo) GetOwned(ctx context.Context, tx *gorm.DB, userID, chatID uuid.UUID) (*types.Chat, error) {
  if tx == nil {
    tx = cr.db
  }
  var c types.Chat
  if err := tx.WithContext(ctx).
    Where("id = ? AND user_id = ?", chatID, userID).
    First(&c).Error; err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, fmt.Errorf("chat %s: %w", chatID, apperr.ErrNotFound)
    }
    cr.log.Error("failed to get chat", "error", err, "chatID", chatID)
    return nil, fmt.Errorf("get chat: %w: %v", apperr.ErrPersistence, err)
  }
  return &c, nil
}

func (cr *chatRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Chat, error) {
  if tx == nil {
    tx = cr.db
  }
  var chats []*types.Chat
  if err := tx.WithContext(ctx).
    Where("user_id = ?", userID).
    Order("updated_at DESC").
    Find(&chats).Error; err != nil {
    cr.log.Error("failed to list chats by user", "error", err, "userID", userID)
    return nil, fmt.Errorf("list chats: %w: %v", apperr.ErrPersistence, err)
  }
  return chats, nil
}

// Touch bumps updated_at. Inside a transaction the UPDATE also takes the chat
// row lock, which serializes concurrent appends to the same chat.
func (cr *chatRepo) Touch(ctx context.Context, tx *gorm.DB, chatID uuid.UUID, at time.Time) error {
  if tx == nil {
    tx = cr.db
  }
  res := tx.WithContext(ctx).
    Model(&types.Chat{}).
    Where("id = ?", chatID).
    Update("updated_at", at)
  if res.Error != nil {
    cr.log.Error("failed to touch chat", "error", res.Error, "chatID", chatID)
    return fmt.Errorf("touch chat: %w: %v", apperr.ErrPersistence, res.Error)
  }
  if res.RowsAffected == 0 {
    return fmt.Errorf("chat %s: %w", chatID, apperr.ErrNotFound)
  }
  return nil
}

func (cr *chatRepo) Delete(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) error {
  if tx == nil {
    tx = cr.db
  }
  if err := tx.WithContext(ctx).
    Where("id = ?", chatID).
    Delete(&types.Chat{}).Error; err != nil {
    cr.log.Error("failed to delete chat", "error", err, "chatID", chatID)
    return fmt.Errorf("delete chat: %w: %v", apperr.ErrPersistence, err)
  }
  return nil
}
