package types

import (
  "time"

  "github.com/google/uuid"
)

// Role is the closed set of message speakers. Anything else is rejected as a
// validation error before it reaches storage.
type Role string

const (
  RoleSystem    Role = "system"
  RoleUser      Role = "user"
  RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
  switch r {
  case RoleSystem, RoleUser, RoleAssistant:
    return true
  }
  return false
}

// Message is one turn within a Chat. Seq is assigned per chat under the chat
// row lock, so ordering by (created_at, seq) matches append order even when two
// messages land in the same millisecond. Messages are never mutated.
type Message struct {
  ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
  ChatID      uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_message_chat_seq,priority:1" json:"chatId"`
  Role        Role              `gorm:"type:varchar(16);not null" json:"role"`
  Content     string            `gorm:"type:text;not null" json:"content"`
  Seq         int64             `gorm:"not null;uniqueIndex:idx_message_chat_seq,priority:2" json:"-"`
  CreatedAt   time.Time         `gorm:"not null" json:"createdAt"`
}

func (Message) TableName() string {
  return "message"
}

// PromptMessage is the wire shape sent to the model provider. System messages
// exist only here; they are never persisted.
type PromptMessage struct {
  Role        string            `json:"role"`
  Content     string            `json:"content"`
}
