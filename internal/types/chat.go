package types

import (
  "time"

  "github.com/google/uuid"
)

// Chat is one conversation thread. Ownership (UserID) is set on creation and
// never changes; UpdatedAt is bumped on every appended message and is the sole
// recency signal for listing.
type Chat struct {
  ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
  UserID      uuid.UUID         `gorm:"type:uuid;not null;index:idx_chat_user_updated,priority:1" json:"userId"`
  CreatedAt   time.Time         `gorm:"not null" json:"createdAt"`
  UpdatedAt   time.Time         `gorm:"not null;index:idx_chat_user_updated,priority:2" json:"updatedAt"`
}

func (Chat) TableName() string {
  return "chat"
}

// ChatSummary is the listing shape: chat metadata plus a short preview derived
// from the chat's earliest message.
type ChatSummary struct {
  ID          uuid.UUID         `json:"id"`
  CreatedAt   time.Time         `json:"createdAt"`
  UpdatedAt   time.Time         `json:"updatedAt"`
  Preview     string            `json:"preview"`
}
