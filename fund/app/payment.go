package app

import (
	"strings"

	tghelpers "github.com/m3rciful/fundbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

func (a *App) handlePayment(c tele.Context) error {
	if !isGroupChat(c) {
		return tghelpers.SendText(c, textGroupOnly)
	}

	chatID := c.Chat().ID
	userID := c.Sender().ID

	shares := a.ledger.SharesOf(chatID, userID)
	if shares == 0 {
		return tghelpers.SendText(c, textNotRegistered)
	}

	members := a.ledger.MembersOf(chatID, userID)
	unpaid := 0
	for _, m := range members {
		if !m.Paid {
			unpaid++
		}
	}
	if unpaid == 0 {
		return tghelpers.SendText(c, textAlreadyPaid)
	}

	return tghelpers.SendMD(c, textPaymentMenu(shares), payNowKeyboard())
}

func (a *App) handlePayNowCallback(c tele.Context) error {
	return tghelpers.SendText(c, textPayInstructions())
}

// handleReceipt records a payment when a registered user uploads a
// document or photo. Re-uploading after paying is a no-op.
func (a *App) handleReceipt(c tele.Context) error {
	if !isGroupChat(c) {
		return nil
	}

	ctx := tghelpers.BuildContext(c)
	chatID := c.Chat().ID
	userID := c.Sender().ID

	if !a.ledger.IsRegistered(chatID, userID) {
		return tghelpers.SendText(c, textNotRegistered)
	}

	names, err := a.ledger.MarkPaid(ctx, chatID, userID)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return tghelpers.SendText(c, textAlreadyPaid)
	}

	kind := "document"
	if msg := c.Message(); msg != nil && msg.Photo != nil {
		kind = "photo"
	}

	if err := tghelpers.SendMD(c, textReceiptAccepted(kind, names)); err != nil {
		return err
	}
	if err := tghelpers.SendMD(c, textPaidAnnouncement(senderName(c.Sender()), names)); err != nil {
		return err
	}
	// The group sees the refreshed list right after the announcement.
	return tghelpers.SendMD(c, textMembersList(a.ledger.ListMembers(chatID), a.ledger.GroupStats(chatID)))
}

func senderName(u *tele.User) string {
	if u == nil {
		return "someone"
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.Username
	}
	if name == "" {
		name = "someone"
	}
	return name
}
