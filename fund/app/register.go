package app

import (
	"errors"

	"github.com/m3rciful/fundbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/fundbot/core/telegram/helpers"
	"github.com/m3rciful/fundbot/fund/admin"
	"github.com/m3rciful/fundbot/fund/ledger"
	"github.com/m3rciful/fundbot/fund/session"

	tele "gopkg.in/telebot.v4"
)

func isGroupChat(c tele.Context) bool {
	chat := c.Chat()
	if chat == nil {
		return false
	}
	return chat.Type == tele.ChatGroup || chat.Type == tele.ChatSuperGroup
}

func (a *App) handleStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	kb := mainKeyboard()
	text := textWelcomePrivate
	if isGroupChat(c) {
		text = textWelcomeGroup
		a.ledger.EnsureGroup(c.Chat().ID)
		if admin.IsAdmin(ctx, a.roleAPI(c), c.Chat(), c.Sender()) {
			kb = adminKeyboard()
		}
	}
	return tghelpers.SendMD(c, text, kb)
}

func (a *App) handleRegister(c tele.Context) error {
	if !isGroupChat(c) {
		return tghelpers.SendText(c, textGroupOnly)
	}

	chatID := c.Chat().ID
	userID := c.Sender().ID
	a.ledger.EnsureGroup(chatID)

	if err := a.engine.StartRegistration(chatID, userID); err != nil {
		if errors.Is(err, ledger.ErrAlreadyRegistered) {
			return tghelpers.SendText(c, textAlreadyRegistered)
		}
		return err
	}
	return tghelpers.SendMD(c, textAskShareCount, shareCountKeyboard())
}

// handleSessionText routes free text into the active conversation.
func (a *App) handleSessionText(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	result := a.engine.HandleText(ctx, c.Sender().ID, c.Text())
	return a.renderResult(c, result)
}

func (a *App) renderResult(c tele.Context, result session.Result) error {
	switch result.Kind {
	case session.ResultInvalidShareCount:
		return tghelpers.SendText(c, textInvalidShareCount)
	case session.ResultPromptName:
		if result.NameIndex == 1 {
			return tghelpers.SendText(c, textShareCountAccepted(result.ShareCount))
		}
		return tghelpers.SendText(c, textAskNextName(result.NameIndex))
	case session.ResultEmptyName:
		return tghelpers.SendText(c, textEmptyName)
	case session.ResultCompleted:
		return tghelpers.SendMD(c, textRegistrationSummary(result.Names, result.ShareCount), payNowKeyboard())
	case session.ResultResetDone:
		return tghelpers.SendMD(c, textResetDone)
	case session.ResultResetCancelled:
		return tghelpers.SendText(c, textResetCancelled)
	case session.ResultFailed:
		if errors.Is(result.Err, ledger.ErrNothingToReset) {
			return tghelpers.SendText(c, textNothingToReset)
		}
		if errors.Is(result.Err, ledger.ErrAlreadyRegistered) {
			return tghelpers.SendText(c, textAlreadyRegistered)
		}
		return tghelpers.SendText(c, textRegistrationFailed)
	}
	return nil
}

func (a *App) handleSharesCallback(c tele.Context) error {
	count, err := callbacks.PayloadInt(c)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: textInvalidShareCount})
	}

	result := a.engine.SetShareCount(c.Sender().ID, count)
	switch result.Kind {
	case session.ResultPromptName:
		return tghelpers.EditOrSendMD(c, textShareCountAccepted(result.ShareCount))
	case session.ResultInvalidShareCount:
		return c.Respond(&tele.CallbackResponse{Text: textInvalidShareCount, ShowAlert: true})
	}
	return nil
}

func (a *App) handleCustomSharesCallback(c tele.Context) error {
	if reg, ok := a.engine.Registration(c.Sender().ID); !ok || reg.Phase != session.PhaseShareCount {
		return nil
	}
	return tghelpers.EditOrSendMD(c, textCustomShareCount)
}
