package services

import (
  "context"
  "fmt"
  "testing"

  "github.com/google/uuid"
  "github.com/stretchr/testify/require"
  "gorm.io/driver/sqlite"
  "gorm.io/gorm"

  "github.com/pagecraft-org/pagecraft-backend/internal/apperr"
  "github.com/pagecraft-org/pagecraft-backend/internal/logger"
  "github.com/pagecraft-org/pagecraft-backend/internal/repos"
  "github.com/pagecraft-org/pagecraft-backend/internal/requestdata"
  "github.com/pagecraft-org/pagecraft-backend/internal/stream"
  "github.com/pagecraft-org/pagecraft-backend/internal/types"
)

// newTestDB opens an isolated in-memory database per test behind the same
// GORM API the Postgres service hands out in production.
func newTestDB(t *testing.T) *gorm.DB {
  t.Helper()
  dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
  gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
  require.NoError(t, err)
  require.NoError(t, gdb.AutoMigrate(&types.Chat{}, &types.Message{}))
  return gdb
}

func newSessionService(t *testing.T) (SessionService, *gorm.DB) {
  t.Helper()
  gdb := newTestDB(t)
  log := logger.NewNop()
  return NewSessionService(gdb, log, repos.NewChatRepo(gdb, log), repos.NewMessageRepo(gdb, log)), gdb
}

func newHistoryService(t *testing.T, gdb *gorm.DB) HistoryService {
  t.Helper()
  log := logger.NewNop()
  return NewHistoryService(gdb, log, repos.NewChatRepo(gdb, log), repos.NewMessageRepo(gdb, log))
}

func newChatService(t *testing.T, provider ModelProvider) (ChatService, SessionService, *gorm.DB) {
  t.Helper()
  sessions, gdb := newSessionService(t)
  return newChatServiceWith(t, sessions, provider), sessions, gdb
}

func newChatServiceWith(t *testing.T, sessions SessionService, provider ModelProvider) ChatService {
  t.Helper()
  log := logger.NewNop()
  return NewChatService(log, sessions, provider, stream.NewRelay(log))
}

// assistantWriteFailingSessions lets user messages through but fails the
// assistant write, the way a store that went away mid-turn would.
type assistantWriteFailingSessions struct {
  SessionService
}

func (s *assistantWriteFailingSessions) AppendMessage(ctx context.Context, chatID uuid.UUID, role types.Role, content string) (*types.Message, error) {
  if role == types.RoleAssistant {
    return nil, fmt.Errorf("append message: %w: database is locked", apperr.ErrPersistence)
  }
  return s.SessionService.AppendMessage(ctx, chatID, role, content)
}

func ctxForUser(userID uuid.UUID) context.Context {
  return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{UserID: userID})
}

// scriptedProvider plays back a fixed fragment sequence and then ends with err
// (nil for a clean completion).
type scriptedProvider struct {
  fragments []string
  err       error
}

func (p *scriptedProvider) ChatStream(ctx context.Context, msgs []types.PromptMessage, out chan<- string) error {
  defer close(out)
  for _, f := range p.fragments {
    select {
    case out <- f:
    case <-ctx.Done():
      return ctx.Err()
    }
  }
  return p.err
}

// captureSink records forwarded fragments; failAt makes the Nth write fail the
// way a disconnected caller would.
type captureSink struct {
  fragments []string
  failAt    int
}

func (s *captureSink) WriteFragment(fragment string) error {
  if s.failAt > 0 && len(s.fragments)+1 >= s.failAt {
    return fmt.Errorf("write tcp: broken pipe")
  }
  s.fragments = append(s.fragments, fragment)
  return nil
}

func (s *captureSink) String() string {
  joined := ""
  for _, f := range s.fragments {
    joined += f
  }
  return joined
}

func chatCount(t *testing.T, gdb *gorm.DB) int64 {
  t.Helper()
  var n int64
  require.NoError(t, gdb.Model(&types.Chat{}).Count(&n).Error)
  return n
}

func messagesFor(t *testing.T, gdb *gorm.DB, chatID uuid.UUID) []types.Message {
  t.Helper()
  var msgs []types.Message
  require.NoError(t, gdb.Where("chat_id = ?", chatID).Order("created_at ASC, seq ASC").Find(&msgs).Error)
  return msgs
}
