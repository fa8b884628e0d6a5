package extract

import (
  "testing"

  "github.com/stretchr/testify/assert"
)

const sampleDoc = "<!DOCTYPE html>\n<html>\n<head><style>body{margin:0}</style></head>\n<body><h1>Launch faster</h1></body>\n</html>"

func TestFromReply(t *testing.T) {
  tests := []struct {
    name string
    text string
    want string
  }{
    {
      name: "fenced html block",
      text: "Here is your landing page:\n\n```html\n" + sampleDoc + "\n```\n\nLet me know what to tweak!",
      want: sampleDoc,
    },
    {
      name: "fenced block wins over bare document",
      text: "```html\n<div>fenced</div>\n```\n" + sampleDoc,
      want: "<div>fenced</div>",
    },
    {
      name: "first fenced block only",
      text: "```html\n<p>one</p>\n```\nand another\n```html\n<p>two</p>\n```",
      want: "<p>one</p>",
    },
    {
      name: "bare document without fences",
      text: "Sure thing!\n" + sampleDoc + "\nEnjoy.",
      want: sampleDoc,
    },
    {
      name: "fence label casing matters, like the markers models emit",
      text: "```HTML\n<p>shouty</p>\n```",
      want: "",
    },
    {
      name: "no markup at all",
      text: "I can build landing pages. What should it be about?",
      want: "",
    },
    {
      name: "empty input",
      text: "",
      want: "",
    },
  }

  for _, tc := range tests {
    t.Run(tc.name, func(t *testing.T) {
      assert.Equal(t, tc.want, FromReply(tc.text))
    })
  }
}

func TestFromReplyIdempotent(t *testing.T) {
  reply := "Here you go:\n```html\n" + sampleDoc + "\n```"
  once := FromReply(reply)
  assert.Equal(t, sampleDoc, once)
  assert.Equal(t, once, FromReply(once))
}
