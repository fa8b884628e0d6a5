package services

import (
  "context"
  "strings"
  "testing"
  "time"

  "github.com/google/uuid"
  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"

  "github.com/pagecraft-org/pagecraft-backend/internal/apperr"
  "github.com/pagecraft-org/pagecraft-backend/internal/types"
)

func TestListForUser(t *testing.T) {
  sessions, gdb := newSessionService(t)
  history := newHistoryService(t, gdb)
  owner := uuid.New()
  ctx := ctxForUser(owner)

  longText := strings.Repeat("responsive hero section ", 4) // well past the preview budget
  older, err := sessions.CreateOrResume(ctx, owner, nil)
  require.NoError(t, err)
  _, err = sessions.AppendMessage(ctx, older.ID, types.RoleUser, longText)
  require.NoError(t, err)

  time.Sleep(2 * time.Millisecond)
  empty, err := sessions.CreateOrResume(ctx, owner, nil)
  require.NoError(t, err)

  // Someone else's chat must never show up.
  _, err = sessions.CreateOrResume(ctx, uuid.New(), nil)
  require.NoError(t, err)

  summaries, err := history.ListForUser(ctx)
  require.NoError(t, err)
  require.Len(t, summaries, 2)

  assert.Equal(t, empty.ID, summaries[0].ID, "most recently updated first")
  assert.Equal(t, previewPlaceholder, summaries[0].Preview)

  assert.Equal(t, older.ID, summaries[1].ID)
  wantPreview := string([]rune(longText)[:previewRuneLimit]) + "..."
  assert.Equal(t, wantPreview, summaries[1].Preview)

  t.Run("appending moves a chat to the top", func(t *testing.T) {
    time.Sleep(2 * time.Millisecond)
    _, err := sessions.AppendMessage(ctx, older.ID, types.RoleAssistant, "<html></html>")
    require.NoError(t, err)

    summaries, err := history.ListForUser(ctx)
    require.NoError(t, err)
    require.Len(t, summaries, 2)
    assert.Equal(t, older.ID, summaries[0].ID)
    assert.Equal(t, wantPreview, summaries[0].Preview, "preview sticks to the earliest message")
  })
}

func TestListForUserShortPreviewKeptVerbatim(t *testing.T) {
  sessions, gdb := newSessionService(t)
  history := newHistoryService(t, gdb)
  owner := uuid.New()
  ctx := ctxForUser(owner)

  chat, err := sessions.CreateOrResume(ctx, owner, nil)
  require.NoError(t, err)
  _, err = sessions.AppendMessage(ctx, chat.ID, types.RoleUser, "Short and sweet")
  require.NoError(t, err)

  summaries, err := history.ListForUser(ctx)
  require.NoError(t, err)
  require.Len(t, summaries, 1)
  assert.Equal(t, "Short and sweet", summaries[0].Preview)
}

func TestListForUserRequiresIdentity(t *testing.T) {
  _, gdb := newSessionService(t)
  history := newHistoryService(t, gdb)

  _, err := history.ListForUser(context.Background())
  assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}
