package app

import (
	"strings"
	"testing"

	"github.com/m3rciful/fundbot/fund/ledger"
)

func TestWelcomeVariants(t *testing.T) {
	if !strings.Contains(textWelcomeGroup, "active in this group") {
		t.Fatalf("group welcome must announce activation: %s", textWelcomeGroup)
	}
	if !strings.Contains(textWelcomeGroup, "Register") {
		t.Fatalf("group welcome must list the menu: %s", textWelcomeGroup)
	}
	if strings.Contains(textWelcomePrivate, "active in this group") {
		t.Fatalf("private welcome must not use the group wording: %s", textWelcomePrivate)
	}
}

func TestRegistrationSummaryEscapesNames(t *testing.T) {
	got := textRegistrationSummary([]string{"A_B", "C*D"}, 2)
	if !strings.Contains(got, `A\_B`) || !strings.Contains(got, `C\*D`) {
		t.Fatalf("names not escaped: %s", got)
	}
	if !strings.Contains(got, "Shares: 2") {
		t.Fatalf("share count missing: %s", got)
	}
}

func TestMembersListMarksAndStats(t *testing.T) {
	payer := int64(7)
	members := []ledger.Member{
		{Name: "Alice", Paid: true, PaidBy: &payer},
		{Name: "Bob"},
	}
	got := textMembersList(members, ledger.Stats{Total: 2, Paid: 1, Unpaid: 1})
	if !strings.Contains(got, "1. Alice ✅") || !strings.Contains(got, "2. Bob ❌") {
		t.Fatalf("member rows wrong: %s", got)
	}
	if !strings.Contains(got, "Total: 2") || !strings.Contains(got, "Paid: 1") || !strings.Contains(got, "Unpaid: 1") {
		t.Fatalf("stats block wrong: %s", got)
	}
}

func TestPaidAnnouncementSingularAndPlural(t *testing.T) {
	one := textPaidAnnouncement("Dana", []string{"Alice"})
	if !strings.Contains(one, "paid the share of") {
		t.Fatalf("unexpected singular form: %s", one)
	}

	many := textPaidAnnouncement("Dana", []string{"Alice", "Bob", "Carol"})
	if !strings.Contains(many, "paid 3 shares") {
		t.Fatalf("unexpected plural form: %s", many)
	}
	if !strings.Contains(many, "Alice, Bob, Carol") {
		t.Fatalf("names missing: %s", many)
	}
}

func TestReceiptAcceptedMentionsKind(t *testing.T) {
	got := textReceiptAccepted("photo", []string{"Alice"})
	if !strings.Contains(got, "(photo)") {
		t.Fatalf("kind missing: %s", got)
	}
	got = textReceiptAccepted("document", []string{"Alice"})
	if !strings.Contains(got, "(document)") {
		t.Fatalf("kind missing: %s", got)
	}
}

func TestResetWarningNamesConfirmPhrase(t *testing.T) {
	if !strings.Contains(textResetWarning(), "`RESET`") {
		t.Fatalf("confirm phrase missing: %s", textResetWarning())
	}
}

func TestKeyboardLayouts(t *testing.T) {
	main := mainKeyboard()
	if len(main.ReplyKeyboard) != 3 {
		t.Fatalf("unexpected main keyboard rows: %d", len(main.ReplyKeyboard))
	}
	adminKB := adminKeyboard()
	if len(adminKB.ReplyKeyboard) != 4 {
		t.Fatalf("unexpected admin keyboard rows: %d", len(adminKB.ReplyKeyboard))
	}

	shares := shareCountKeyboard()
	if len(shares.InlineKeyboard) != 2 {
		t.Fatalf("unexpected share keyboard rows: %d", len(shares.InlineKeyboard))
	}
	if len(shares.InlineKeyboard[0]) != 5 {
		t.Fatalf("expected 5 quick picks, got %d", len(shares.InlineKeyboard[0]))
	}
	if shares.InlineKeyboard[1][0].Unique != cbCustomShares {
		t.Fatalf("custom button missing: %+v", shares.InlineKeyboard[1][0])
	}
}
