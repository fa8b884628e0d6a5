package repos

import (
  "context"
  "errors"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/pagecraft-org/pagecraft-backend/internal/apperr"
  "github.com/pagecraft-org/pagecraft-backend/internal/logger"
  "github.com/pagecraft-org/pagecraft-backend/internal/types"
)

type MessageRepo interface {
  Create(ctx context.Context, tx *gorm.DB, msg *types.Message) (*types.Message, error)
  GetByChatID(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) ([]*types.Message, error)
  FirstByChatID(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) (*types.Message, error)
  NextSeq(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) (int64, error)
  DeleteByChatID(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) error
}

type messageRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
  return &messageRepo{
    db:  db,
    log: baseLog.With("repo", "MessageRepo"),
  }
}

func (mr *messageRepo) Create(ctx context.Context, tx *gorm.DB, msg *types.Message) (*types.Message, error) {
  if tx == nil {
    tx = mr.db
  }
  if msg.ID == uuid.Nil {
    msg.ID = uuid.New()
  }
  if err := tx.WithContext(ctx).Create(msg).Error; err != nil {
    mr.log.Error("failed to create message", "error", err, "chatID", msg.ChatID)
    return nil, fmt.Errorf("create message: %w: %v", apperr.ErrPersistence, err)
  }
  return msg, nil
}

func (mr *messageRepo) GetByChatID(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) ([]*types.Message, error) {
  if tx == nil {
    tx = mr.db
  }
  var msgs []*types.Message
  if err := tx.WithContext(ctx).
    Where("chat_id = ?", chatID).
    Order("created_at ASC, seq ASC").
    Find(&msgs).Error; err != nil {
    mr.log.Error("failed to get messages by chatID", "error", err, "chatID", chatID)
    return nil, fmt.Errorf("get messages: %w: %v", apperr.ErrPersistence, err)
  }
  return msgs, nil
}

// FirstByChatID returns the chat's earliest message, or nil if the chat has no
// messages yet.
func (mr *messageRepo) FirstByChatID(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) (*types.Message, error) {
  if tx == nil {
    tx = mr.db
  }
  var msg types.Message
  if err := tx.WithContext(ctx).
    Where("chat_id = ?", chatID).
    Order("created_at ASC, seq ASC").
    First(&msg).Error; err != nil {
    if errors.Is(err, gorm.ErrRecordNotFound) {
      return nil, nil
    }
    mr.log.Error("failed to get first message by chatID", "error", err, "chatID", chatID)
    return nil, fmt.Errorf("get first message: %w: %v", apperr.ErrPersistence, err)
  }
  return &msg, nil
}

// NextSeq computes the chat's next sequence marker. Only meaningful inside the
// append transaction, after Touch has taken the chat row lock.
func (mr *messageRepo) NextSeq(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) (int64, error) {
  if tx == nil {
    tx = mr.db
  }
  var maxSeq int64
  if err := tx.WithContext(ctx).
    Model(&types.Message{}).
    Where("chat_id = ?", chatID).
    Select("COALESCE(MAX(seq), 0)").
    Scan(&maxSeq).Error; err != nil {
    mr.log.Error("failed to compute next seq", "error", err, "chatID", chatID)
    return 0, fmt.Errorf("next seq: %w: %v", apperr.ErrPersistence, err)
  }
  return maxSeq + 1, nil
}

func (mr *messageRepo) DeleteByChatID(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) error {
  if tx == nil {
    tx = mr.db
  }
  if err := tx.WithContext(ctx).
    Where("chat_id = ?", chatID).
    Delete(&types.Message{}).Error; err != nil {
    mr.log.Error("failed to delete messages by chatID", "error", err, "chatID", chatID)
    return fmt.Errorf("delete messages: %w: %v", apperr.ErrPersistence, err)
  }
  return nil
}
