package app

import (
	tghelpers "github.com/m3rciful/fundbot/core/telegram/helpers"
	"github.com/m3rciful/fundbot/fund/admin"

	tele "gopkg.in/telebot.v4"
)

func (a *App) handleMembers(c tele.Context) error {
	if !isGroupChat(c) {
		return tghelpers.SendText(c, textGroupOnly)
	}

	chatID := c.Chat().ID
	members := a.ledger.ListMembers(chatID)
	if len(members) == 0 {
		return tghelpers.SendText(c, textNoMembers)
	}
	return tghelpers.SendMD(c, textMembersList(members, a.ledger.GroupStats(chatID)))
}

func (a *App) handleMyShares(c tele.Context) error {
	if !isGroupChat(c) {
		return tghelpers.SendText(c, textGroupOnly)
	}

	members := a.ledger.MembersOf(c.Chat().ID, c.Sender().ID)
	if len(members) == 0 {
		return tghelpers.SendText(c, textNotRegistered)
	}
	return tghelpers.SendMD(c, textMyShares(members))
}

func (a *App) handleHelp(c tele.Context) error {
	return tghelpers.SendMD(c, textHelp)
}

func (a *App) handlePending(c tele.Context) error {
	if !isGroupChat(c) {
		return tghelpers.SendText(c, textGroupOnly)
	}

	ctx := tghelpers.BuildContext(c)
	if !admin.IsAdmin(ctx, a.roleAPI(c), c.Chat(), c.Sender()) {
		return tghelpers.SendText(c, textPendingDenied)
	}

	unpaid := a.ledger.UnpaidMembers(c.Chat().ID)
	if len(unpaid) == 0 {
		return tghelpers.SendText(c, textAllPaid)
	}
	return tghelpers.SendMD(c, textPendingList(unpaid))
}
