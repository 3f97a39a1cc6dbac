// Package admin gates privileged operations on the caller's role in
// the group chat, as reported by Telegram.
package admin

import (
	"context"

	"github.com/m3rciful/fundbot/core/logger"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// RoleAPI is the slice of the bot API needed to query chat roles.
// *tele.Bot satisfies it.
type RoleAPI interface {
	ChatMemberOf(chat, user tele.Recipient) (*tele.ChatMember, error)
}

// IsAdmin reports whether the user is the chat creator or an
// administrator. Any lookup failure denies access.
func IsAdmin(ctx context.Context, api RoleAPI, chat *tele.Chat, user *tele.User) bool {
	if api == nil || chat == nil || user == nil {
		return false
	}

	member, err := api.ChatMemberOf(chat, user)
	if err != nil {
		logger.Warn(ctx, "admin", "role.lookup_failed",
			slog.Int64("chat_id", chat.ID),
			slog.Int64("user_id", user.ID),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return false
	}
	if member == nil {
		return false
	}

	switch member.Role {
	case tele.Creator, tele.Administrator:
		return true
	}
	return false
}
