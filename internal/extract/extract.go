// Package extract recovers an embedded HTML document from a model reply.
package extract

import (
  "regexp"
)

// Replies usually wrap the page in a ```html fence; older models sometimes
// emit the bare document. The fence rule wins, then the doctype-to-closing-tag
// span. Both are RE2 patterns, so matching time stays linear in the input.
var (
  fencedBlockRe = regexp.MustCompile("(?s)```html\\s*(.*?)\\s*```")
  documentRe    = regexp.MustCompile(`(?s)<!DOCTYPE html>.*</html>`)
)

// FromReply returns the trimmed HTML document embedded in text, or "" when
// none is present. Not finding a document is a normal result, not an error,
// and the function is side-effect-free and idempotent on extracted documents.
func FromReply(text string) string {
  if m := fencedBlockRe.FindStringSubmatch(text); m != nil {
    return m[1]
  }
  if m := documentRe.FindString(text); m != "" {
    return m
  }
  return ""
}
