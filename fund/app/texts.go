package app

import (
	"fmt"
	"strings"

	"github.com/m3rciful/fundbot/core/telegram/format"
	"github.com/m3rciful/fundbot/fund/ledger"
	"github.com/m3rciful/fundbot/fund/session"
)

// Reply keyboard labels. The router matches these verbatim.
const (
	LabelRegister = "📝 Register"
	LabelPayment  = "💳 Payment"
	LabelMembers  = "📋 Members"
	LabelMyShares = "🔄 My Shares"
	LabelHelp     = "ℹ️ Help"
	LabelPending  = "✅ Pending Payments"
	LabelReset    = "♻️ Reset Fund"
)

const textWelcomePrivate = `🤖 *Welcome to the fund bot!*

I keep track of who is in the fund and who has paid this month.
Add me to your group and use the keyboard there.`

const textWelcomeGroup = `🤖 *The fund bot is active in this group!*

Use the keyboard below:
📝 Register — join the fund
💳 Payment — pay your share
📋 Members — see everyone
🔄 My Shares — your own entries
ℹ️ Help — how it all works`

const textHelp = `ℹ️ *How the fund works*

1. Tap 📝 Register and pick how many shares you want (1-10).
2. Enter one name per share. Each name becomes a fund member.
3. When it is time to pay, tap 💳 Payment and send your receipt as a photo or document.
4. The bot marks all your members as paid and announces it to the group.

Admins can check ✅ Pending Payments and start a new round with ♻️ Reset Fund.`

const (
	textGroupOnly          = "🚫 This bot only works inside a group chat."
	textAlreadyRegistered  = "✅ You are already registered in this fund. Use 🔄 My Shares to see your entries."
	textAskShareCount      = "How many shares do you want to register?\n\nPick a number or type one (1-10):"
	textInvalidShareCount  = "⚠️ Please enter a whole number between 1 and 10."
	textCustomShareCount   = "Type the number of shares you want (1-10):"
	textEmptyName          = "⚠️ The name cannot be empty. Please try again."
	textNotRegistered      = "You are not registered yet. Tap 📝 Register first."
	textAlreadyPaid        = "✅ Your payment for this round is already recorded. Nothing to do."
	textResetDenied        = "🚫 Only group admins can reset the fund."
	textPendingDenied      = "🚫 Only group admins can view pending payments."
	textNothingToReset     = "The fund is already empty. Nothing to reset."
	textResetCancelled     = "Reset cancelled. The fund is untouched."
	textResetDone          = "♻️ *The fund has been reset.*\n\nAll members and payments were cleared. A new round starts now!"
	textRegistrationFailed = "⚠️ Something went wrong while saving your registration. Please try again."
	textNoMembers          = "Nobody has registered yet. Be the first with 📝 Register!"
	textAllPaid            = "🎉 Everyone has paid. Nothing pending!"
)

func textShareCountAccepted(count int) string {
	return fmt.Sprintf("✅ %d share(s) noted.\n\nPlease enter the name of person 1:", count)
}

func textAskNextName(index int) string {
	return fmt.Sprintf("Please enter the name of person %d:", index)
}

func textResetWarning() string {
	return fmt.Sprintf("⚠️ *This wipes all members and payments in this group.*\n\nType `%s` to confirm, or anything else to cancel.", session.ResetConfirmPhrase)
}

func textRegistrationSummary(names []string, count int) string {
	var b strings.Builder
	b.WriteString("🎉 *Registration complete!*\n\n")
	for i, name := range names {
		fmt.Fprintf(&b, "%d. %s\n", i+1, format.EscapeMD(name))
	}
	fmt.Fprintf(&b, "\n• Shares: %d\n", count)
	fmt.Fprintf(&b, "💳 *Amount due:* %d × [monthly amount]\n\n", count)
	b.WriteString("Tap the button below when you are ready to pay.")
	return b.String()
}

func textPaymentMenu(shares int) string {
	var b strings.Builder
	b.WriteString("💳 *Payment*\n\n")
	fmt.Fprintf(&b, "Your shares: %d\n", shares)
	fmt.Fprintf(&b, "Amount due: %d × [monthly amount]\n\n", shares)
	b.WriteString("Send your receipt here as a photo or document and I will record the payment.")
	return b.String()
}

func textPayInstructions() string {
	return "📎 Send your payment receipt to this chat as a photo or document.\nI will mark your shares as paid."
}

func textMembersList(members []ledger.Member, st ledger.Stats) string {
	var b strings.Builder
	b.WriteString("📋 *Fund members*\n\n")
	for i, m := range members {
		mark := "❌"
		if m.Paid {
			mark = "✅"
		}
		fmt.Fprintf(&b, "%d. %s %s\n", i+1, format.EscapeMD(m.Name), mark)
	}
	fmt.Fprintf(&b, "\n👥 Total: %d\n✅ Paid: %d\n❌ Unpaid: %d", st.Total, st.Paid, st.Unpaid)
	return b.String()
}

func textMyShares(members []ledger.Member) string {
	var b strings.Builder
	b.WriteString("🔄 *Your shares*\n\n")
	paid := 0
	for i, m := range members {
		mark := "❌ unpaid"
		if m.Paid {
			mark = "✅ paid"
			paid++
		}
		fmt.Fprintf(&b, "%d. %s — %s\n", i+1, format.EscapeMD(m.Name), mark)
	}
	fmt.Fprintf(&b, "\nShares: %d, paid: %d", len(members), paid)
	return b.String()
}

func textPendingList(members []ledger.Member) string {
	var b strings.Builder
	b.WriteString("✅ *Pending payments*\n\n")
	for i, m := range members {
		fmt.Fprintf(&b, "%d. %s\n", i+1, format.EscapeMD(m.Name))
	}
	fmt.Fprintf(&b, "\n❌ Unpaid members: %d", len(members))
	return b.String()
}

func textReceiptAccepted(kind string, names []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Receipt (%s) received!\n\nMarked as paid:\n", kind)
	for i, name := range names {
		fmt.Fprintf(&b, "%d. %s\n", i+1, format.EscapeMD(name))
	}
	return b.String()
}

func textPaidAnnouncement(payer string, names []string) string {
	payer = format.EscapeMD(payer)
	if len(names) == 1 {
		return fmt.Sprintf("💸 *%s* paid the share of *%s*.", payer, format.EscapeMD(names[0]))
	}
	escaped := make([]string, len(names))
	for i, n := range names {
		escaped[i] = format.EscapeMD(n)
	}
	return fmt.Sprintf("💸 *%s* paid %d shares: %s.", payer, len(names), strings.Join(escaped, ", "))
}
