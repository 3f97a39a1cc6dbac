package app

import (
	tghelpers "github.com/m3rciful/fundbot/core/telegram/helpers"
	"github.com/m3rciful/fundbot/fund/admin"

	tele "gopkg.in/telebot.v4"
)

// handleResetStart opens the reset confirmation. The actual wipe only
// happens after the admin types the confirmation phrase.
func (a *App) handleResetStart(c tele.Context) error {
	if !isGroupChat(c) {
		return tghelpers.SendText(c, textGroupOnly)
	}

	ctx := tghelpers.BuildContext(c)
	if !admin.IsAdmin(ctx, a.roleAPI(c), c.Chat(), c.Sender()) {
		return tghelpers.SendText(c, textResetDenied)
	}

	if a.ledger.GroupStats(c.Chat().ID).Total == 0 {
		return tghelpers.SendText(c, textNothingToReset)
	}

	a.engine.BeginReset(c.Chat().ID, c.Sender().ID)
	return tghelpers.SendMD(c, textResetWarning())
}
