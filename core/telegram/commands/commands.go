package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command represents a bot menu entry with its handler, description, and metadata.
// Menu entries are matched by exact text: either a slash command ("/start") or
// a reply-keyboard label.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
}
