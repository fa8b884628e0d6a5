package stream

import (
  "context"
  "errors"
  "strings"

  "github.com/pagecraft-org/pagecraft-backend/internal/logger"
)

// Sink receives one fragment at a time. The write may block on a slow
// consumer; an error means the consumer is gone and no further fragments
// should be forwarded.
type Sink interface {
  WriteFragment(fragment string) error
}

// Relay consumes a fragment channel single-threaded: each fragment is appended
// to the accumulator and forwarded to the sink before the next one is pulled,
// so the caller sees output as it is produced rather than after completion.
type Relay struct {
  log *logger.Logger
}

func NewRelay(log *logger.Logger) *Relay {
  return &Relay{log: log.With("component", "StreamRelay")}
}

// Run pulls fragments until the channel closes, then collects the producer's
// terminal error from done. When the sink fails, cancel is invoked so the
// producer stops generating, and the remaining fragments are drained without
// being accumulated so the producer can exit.
//
// Returns the accumulated text, the number of fragments forwarded, the sink
// error if any, and the producer error if any.
func (r *Relay) Run(ctx context.Context, cancel context.CancelFunc, fragments <-chan string, done <-chan error, sink Sink) (string, int, error, error) {
  var buf strings.Builder
  forwarded := 0
  var sinkErr error
  for fragment := range fragments {
    if sinkErr != nil {
      continue
    }
    buf.WriteString(fragment)
    if err := sink.WriteFragment(fragment); err != nil {
      r.log.Debug("sink write failed, cancelling producer", "error", err, "forwarded", forwarded)
      sinkErr = err
      cancel()
      continue
    }
    forwarded++
  }
  providerErr := <-done
  if sinkErr != nil && errors.Is(providerErr, context.Canceled) {
    // The producer only stopped because we cancelled it.
    providerErr = nil
  }
  return buf.String(), forwarded, sinkErr, providerErr
}
