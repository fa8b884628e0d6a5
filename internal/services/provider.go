package services

import (
  "bufio"
  "bytes"
  "context"
  "encoding/json"
  "fmt"
  "io"
  "net/http"
  "strings"

  "github.com/pagecraft-org/pagecraft-backend/internal/logger"
  "github.com/pagecraft-org/pagecraft-backend/internal/types"
  "github.com/pagecraft-org/pagecraft-backend/internal/utils"
)

// ModelProvider yields the model's reply as a lazy, finite, one-shot sequence
// of text fragments. The implementation must close out before returning, send
// fragments in order, and honor ctx cancellation while sending.
type ModelProvider interface {
  ChatStream(ctx context.Context, msgs []types.PromptMessage, out chan<- string) error
}

type openAIProvider struct {
  log     *logger.Logger
  client  *http.Client
  baseURL string
  apiKey  string
  model   string
}

func NewOpenAIProvider(log *logger.Logger) (ModelProvider, error) {
  serviceLog := log.With("service", "OpenAIProvider")
  baseURL := utils.GetEnv("OPENAI_API_URL", "https://api.openai.com/v1", log)
  model := utils.GetEnv("OPENAI_MODEL", "gpt-4", log)
  apiKey := utils.GetEnv("OPENAI_API_KEY", "", log)
  if apiKey == "" {
    serviceLog.Warn("OPENAI_API_KEY not set; calls might fail or be unauthorized")
  }
  // No client-level timeout: generations can run long and the request context
  // already bounds the call.
  return &openAIProvider{
    log:     serviceLog,
    client:  &http.Client{},
    baseURL: strings.TrimRight(baseURL, "/"),
    apiKey:  apiKey,
    model:   model,
  }, nil
}

func (op *openAIProvider) ChatStream(ctx context.Context, msgs []types.PromptMessage, out chan<- string) error {
  defer close(out)

  payload := map[string]interface{}{
    "model":    op.model,
    "messages": msgs,
    "stream":   true,
  }
  data, err := json.Marshal(payload)
  if err != nil {
    return fmt.Errorf("marshal completion request: %w", err)
  }
  req, err := http.NewRequestWithContext(ctx, http.MethodPost, op.baseURL+"/chat/completions", bytes.NewReader(data))
  if err != nil {
    return fmt.Errorf("build completion request: %w", err)
  }
  req.Header.Set("Content-Type", "application/json")
  if op.apiKey != "" {
    req.Header.Set("Authorization", "Bearer "+op.apiKey)
  }
  resp, err := op.client.Do(req)
  if err != nil {
    op.log.Warn("failed to call completion endpoint", "error", err)
    return err
  }
  defer resp.Body.Close()

  if resp.StatusCode < 200 || resp.StatusCode > 299 {
    bodyBytes, _ := io.ReadAll(resp.Body)
    op.log.Warn("completion endpoint responded with non-2xx", "statusCode", resp.StatusCode, "body", string(bodyBytes))
    return fmt.Errorf("completion endpoint HTTP %d: %s", resp.StatusCode, string(bodyBytes))
  }

  reader := bufio.NewReader(resp.Body)
  for {
    line, readErr := reader.ReadString('\n')
    line = strings.TrimSpace(line)
    if strings.HasPrefix(line, "data: ") {
      event := strings.TrimPrefix(line, "data: ")
      if event == "[DONE]" {
        return nil
      }
      var chunk struct {
        Choices []struct {
          Delta struct {
            Content string `json:"content"`
          } `json:"delta"`
        } `json:"choices"`
      }
      if err := json.Unmarshal([]byte(event), &chunk); err != nil {
        op.log.Warn("skipping malformed stream event", "error", err)
      } else if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
        select {
        case out <- chunk.Choices[0].Delta.Content:
        case <-ctx.Done():
          return ctx.Err()
        }
      }
    }
    if readErr != nil {
      if readErr == io.EOF {
        return nil
      }
      return fmt.Errorf("read stream: %w", readErr)
    }
  }
}
