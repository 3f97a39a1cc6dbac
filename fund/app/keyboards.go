package app

import (
	"strconv"

	"github.com/m3rciful/fundbot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// Callback keys registered with the router.
const (
	cbShares       = "shares"
	cbCustomShares = "custom_shares"
	cbPayNow       = "pay_now"
)

func mainKeyboard() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{LabelRegister, LabelPayment},
		[]string{LabelMembers, LabelMyShares},
		[]string{LabelHelp},
	)
}

func adminKeyboard() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{LabelRegister, LabelPayment},
		[]string{LabelMembers, LabelMyShares},
		[]string{LabelPending, LabelReset},
		[]string{LabelHelp},
	)
}

// shareCountKeyboard offers quick picks for 1-5 shares plus a custom entry.
func shareCountKeyboard() *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, 6)
	for n := 1; n <= 5; n++ {
		buttons = append(buttons, keyboard.InlineBtn{
			Text:   strconv.Itoa(n) + " share(s)",
			Unique: cbShares,
			Data:   strconv.Itoa(n),
		})
	}
	markup := keyboard.InlineButtonsNPerRow(buttons, 5)
	custom := keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "📝 Custom amount", Unique: cbCustomShares},
	})
	markup.InlineKeyboard = append(markup.InlineKeyboard, custom.InlineKeyboard...)
	return markup
}

func payNowKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: "💳 Pay now", Unique: cbPayNow},
	})
}
