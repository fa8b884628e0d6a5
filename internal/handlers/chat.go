package handlers

import (
  "errors"
  "io"
  "net/http"

  "github.com/gin-gonic/gin"
  "github.com/google/uuid"

  "github.com/pagecraft-org/pagecraft-backend/internal/apperr"
  "github.com/pagecraft-org/pagecraft-backend/internal/extract"
  "github.com/pagecraft-org/pagecraft-backend/internal/logger"
  "github.com/pagecraft-org/pagecraft-backend/internal/requestdata"
  "github.com/pagecraft-org/pagecraft-backend/internal/services"
  "github.com/pagecraft-org/pagecraft-backend/internal/types"
)

type ChatHandler struct {
  log            *logger.Logger
  chatService    services.ChatService
  sessionService services.SessionService
  historyService services.HistoryService
}

func NewChatHandler(log *logger.Logger, chatService services.ChatService, sessionService services.SessionService, historyService services.HistoryService) *ChatHandler {
  return &ChatHandler{
    log:            log.With("handler", "ChatHandler"),
    chatService:    chatService,
    sessionService: sessionService,
    historyService: historyService,
  }
}

// Turn runs one conversational turn and streams the reply as chunked
// text/plain. Everything that can fail with a meaningful status happens before
// the first byte; once streaming starts the 200 is committed and a provider
// failure can only end the stream early.
func (ch *ChatHandler) Turn(c *gin.Context) {
  var req struct {
    ChatID   string `json:"chatId"`
    UserText string `json:"userText"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
    return
  }
  var chatID *uuid.UUID
  if req.ChatID != "" {
    parsed, err := uuid.Parse(req.ChatID)
    if err != nil {
      c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
      return
    }
    chatID = &parsed
  }

  turn, err := ch.chatService.PrepareTurn(c.Request.Context(), chatID, req.UserText)
  if err != nil {
    abortWithError(c, err)
    return
  }

  c.Header("Content-Type", "text/plain; charset=utf-8")
  c.Header("X-Chat-Id", turn.Chat.ID.String())
  c.Status(http.StatusOK)
  c.Writer.WriteHeaderNow()

  result, err := ch.chatService.StreamTurn(c.Request.Context(), turn, &ginSink{w: c.Writer})
  if err != nil {
    // The status is already on the wire; all we can do is end the stream.
    ch.log.Warn("turn stream ended abnormally", "error", err, "chatID", turn.Chat.ID, "forwarded", result.Forwarded)
  }
}

func (ch *ChatHandler) List(c *gin.Context) {
  summaries, err := ch.historyService.ListForUser(c.Request.Context())
  if err != nil {
    abortWithError(c, err)
    return
  }
  c.JSON(http.StatusOK, summaries)
}

func (ch *ChatHandler) Get(c *gin.Context) {
  rd, chatID, ok := ch.ownedChatID(c)
  if !ok {
    return
  }
  chat, msgs, err := ch.sessionService.GetWithMessages(c.Request.Context(), rd.UserID, chatID)
  if err != nil {
    abortWithError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{
    "id":        chat.ID,
    "userId":    chat.UserID,
    "createdAt": chat.CreatedAt,
    "updatedAt": chat.UpdatedAt,
    "messages":  msgs,
  })
}

func (ch *ChatHandler) Delete(c *gin.Context) {
  rd, chatID, ok := ch.ownedChatID(c)
  if !ok {
    return
  }
  if err := ch.sessionService.DeleteChat(c.Request.Context(), rd.UserID, chatID); err != nil {
    abortWithError(c, err)
    return
  }
  c.JSON(http.StatusOK, gin.H{"message": "chat deleted"})
}

// Page serves the HTML document embedded in the chat's latest assistant reply.
func (ch *ChatHandler) Page(c *gin.Context) {
  rd, chatID, ok := ch.ownedChatID(c)
  if !ok {
    return
  }
  _, msgs, err := ch.sessionService.GetWithMessages(c.Request.Context(), rd.UserID, chatID)
  if err != nil {
    abortWithError(c, err)
    return
  }
  for i := len(msgs) - 1; i >= 0; i-- {
    if msgs[i].Role != types.RoleAssistant {
      continue
    }
    if doc := extract.FromReply(msgs[i].Content); doc != "" {
      c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(doc))
      return
    }
  }
  c.JSON(http.StatusNotFound, gin.H{"error": "no generated page in this chat"})
}

func (ch *ChatHandler) ownedChatID(c *gin.Context) (*requestdata.RequestData, uuid.UUID, bool) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
    return nil, uuid.Nil, false
  }
  chatID, err := uuid.Parse(c.Param("chatID"))
  if err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat id"})
    return nil, uuid.Nil, false
  }
  return rd, chatID, true
}

func abortWithError(c *gin.Context, err error) {
  switch {
  case errors.Is(err, apperr.ErrUnauthenticated):
    c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
  case errors.Is(err, apperr.ErrNotFound):
    c.JSON(http.StatusNotFound, gin.H{"error": "chat not found"})
  case errors.Is(err, apperr.ErrValidation):
    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
  case errors.Is(err, apperr.ErrProvider):
    c.JSON(http.StatusBadGateway, gin.H{"error": "model provider failed"})
  default:
    c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
  }
}

// ginSink forwards fragments straight to the response and flushes each one so
// the client sees output as the model produces it.
type ginSink struct {
  w gin.ResponseWriter
}

func (s *ginSink) WriteFragment(fragment string) error {
  if _, err := io.WriteString(s.w, fragment); err != nil {
    return err
  }
  s.w.Flush()
  return nil
}
