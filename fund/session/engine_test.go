package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/m3rciful/fundbot/fund/ledger"
	"github.com/m3rciful/fundbot/fund/store"
)

type memStore struct {
	snap store.Snapshot
}

func (m *memStore) Load(ctx context.Context) (store.Snapshot, error) {
	if m.snap == nil {
		return store.Snapshot{}, nil
	}
	return m.snap, nil
}

func (m *memStore) Save(ctx context.Context, snap store.Snapshot) error {
	m.snap = snap
	return nil
}

func newTestEngine(t *testing.T) (*Engine, *ledger.Ledger) {
	t.Helper()
	led := ledger.New(&memStore{})
	return NewEngine(led), led
}

func TestRegistrationFlow(t *testing.T) {
	e, led := newTestEngine(t)
	ctx := context.Background()

	if err := e.StartRegistration(100, 7); err != nil {
		t.Fatalf("StartRegistration: %v", err)
	}
	if !e.InProgress(7) {
		t.Fatal("expected conversation in progress")
	}

	res := e.HandleText(ctx, 7, "3")
	if res.Kind != ResultPromptName || res.NameIndex != 1 || res.ShareCount != 3 {
		t.Fatalf("unexpected result after share count: %+v", res)
	}

	res = e.HandleText(ctx, 7, "Alice")
	if res.Kind != ResultPromptName || res.NameIndex != 2 {
		t.Fatalf("unexpected result after first name: %+v", res)
	}
	res = e.HandleText(ctx, 7, "Bob")
	if res.Kind != ResultPromptName || res.NameIndex != 3 {
		t.Fatalf("unexpected result after second name: %+v", res)
	}

	res = e.HandleText(ctx, 7, "Carol")
	if res.Kind != ResultCompleted {
		t.Fatalf("expected completion, got %+v", res)
	}
	if len(res.Added) != 3 {
		t.Fatalf("expected 3 added members, got %d", len(res.Added))
	}
	if e.InProgress(7) {
		t.Fatal("conversation must end after completion")
	}

	st := led.GroupStats(100)
	if st.Total != 3 || st.Unpaid != 3 {
		t.Fatalf("unexpected ledger stats: %+v", st)
	}
}

func TestRegistrationEveryShareCount(t *testing.T) {
	for s := 1; s <= 10; s++ {
		t.Run(strconv.Itoa(s), func(t *testing.T) {
			e, led := newTestEngine(t)
			ctx := context.Background()

			if err := e.StartRegistration(100, 7); err != nil {
				t.Fatalf("StartRegistration: %v", err)
			}
			res := e.HandleText(ctx, 7, strconv.Itoa(s))
			if res.Kind != ResultPromptName {
				t.Fatalf("count %d rejected: %+v", s, res)
			}
			for i := 1; i <= s; i++ {
				res = e.HandleText(ctx, 7, fmt.Sprintf("Member %d", i))
			}
			if res.Kind != ResultCompleted || len(res.Added) != s {
				t.Fatalf("expected %d members, got %+v", s, res)
			}
			for _, m := range res.Added {
				if m.Shares != 1 || m.Paid || m.RegisteredBy != 7 {
					t.Fatalf("unexpected member: %+v", m)
				}
			}
			if st := led.GroupStats(100); st.Total != s || st.Unpaid != s {
				t.Fatalf("unexpected stats for %d shares: %+v", s, st)
			}
		})
	}
}

func TestShareCountValidation(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	if err := e.StartRegistration(100, 7); err != nil {
		t.Fatalf("StartRegistration: %v", err)
	}

	for _, input := range []string{"0", "11", "-2", "abc", ""} {
		res := e.HandleText(ctx, 7, input)
		if res.Kind != ResultInvalidShareCount {
			t.Fatalf("input %q: expected invalid share count, got %+v", input, res)
		}
	}

	// Still waiting for a valid count.
	res := e.HandleText(ctx, 7, "10")
	if res.Kind != ResultPromptName || res.ShareCount != 10 {
		t.Fatalf("expected prompt after valid count, got %+v", res)
	}
}

func TestSetShareCountFromButton(t *testing.T) {
	e, _ := newTestEngine(t)

	if res := e.SetShareCount(7, 2); res.Kind != ResultIgnored {
		t.Fatalf("expected ignored without conversation, got %+v", res)
	}

	if err := e.StartRegistration(100, 7); err != nil {
		t.Fatalf("StartRegistration: %v", err)
	}
	if res := e.SetShareCount(7, 12); res.Kind != ResultInvalidShareCount {
		t.Fatalf("expected invalid count, got %+v", res)
	}
	res := e.SetShareCount(7, 2)
	if res.Kind != ResultPromptName || res.NameIndex != 1 {
		t.Fatalf("expected first name prompt, got %+v", res)
	}

	// Once in the name phase the buttons are inert.
	if res := e.SetShareCount(7, 3); res.Kind != ResultIgnored {
		t.Fatalf("expected ignored in name phase, got %+v", res)
	}
}

func TestEmptyNameRejected(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	e.StartRegistration(100, 7)
	e.HandleText(ctx, 7, "1")

	res := e.HandleText(ctx, 7, "   ")
	if res.Kind != ResultEmptyName || res.NameIndex != 1 {
		t.Fatalf("expected empty name rejection, got %+v", res)
	}
	res = e.HandleText(ctx, 7, "Alice")
	if res.Kind != ResultCompleted {
		t.Fatalf("expected completion after retry, got %+v", res)
	}
}

func TestStartRegistrationRejectsRegisteredUser(t *testing.T) {
	e, led := newTestEngine(t)
	ctx := context.Background()

	if _, err := led.AddMembers(ctx, 100, 7, []string{"Alice"}); err != nil {
		t.Fatalf("AddMembers: %v", err)
	}
	err := e.StartRegistration(100, 7)
	if !errors.Is(err, ledger.ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
	if e.InProgress(7) {
		t.Fatal("no conversation must be opened")
	}
}

func TestResetConfirmation(t *testing.T) {
	e, led := newTestEngine(t)
	ctx := context.Background()

	led.AddMembers(ctx, 100, 7, []string{"Alice"})

	e.BeginReset(100, 9)
	if !e.InProgress(9) {
		t.Fatal("expected reset conversation")
	}

	res := e.HandleText(ctx, 9, "reset")
	if res.Kind != ResultResetCancelled {
		t.Fatalf("lowercase must cancel, got %+v", res)
	}
	if len(led.ListMembers(100)) != 1 {
		t.Fatal("cancelled reset must not wipe the fund")
	}

	e.BeginReset(100, 9)
	res = e.HandleText(ctx, 9, ResetConfirmPhrase)
	if res.Kind != ResultResetDone {
		t.Fatalf("expected reset done, got %+v", res)
	}
	if len(led.ListMembers(100)) != 0 {
		t.Fatal("confirmed reset must wipe the fund")
	}
	if e.InProgress(9) {
		t.Fatal("reset conversation must end")
	}
}

func TestResetInvalidatesGroupRegistrations(t *testing.T) {
	e, led := newTestEngine(t)
	ctx := context.Background()

	led.AddMembers(ctx, 100, 7, []string{"Alice"})

	// User 8 is mid-registration in group 100, user 9 in group 200.
	e.StartRegistration(100, 8)
	e.HandleText(ctx, 8, "2")
	e.StartRegistration(200, 9)

	e.BeginReset(100, 5)
	res := e.HandleText(ctx, 5, ResetConfirmPhrase)
	if res.Kind != ResultResetDone {
		t.Fatalf("expected reset done, got %+v", res)
	}

	if e.InProgress(8) {
		t.Fatal("registration in the reset group must be dropped")
	}
	if !e.InProgress(9) {
		t.Fatal("registration in another group must survive")
	}
}

func TestResetEmptyFund(t *testing.T) {
	e, _ := newTestEngine(t)
	ctx := context.Background()

	e.BeginReset(100, 9)
	res := e.HandleText(ctx, 9, ResetConfirmPhrase)
	if res.Kind != ResultFailed || !errors.Is(res.Err, ledger.ErrNothingToReset) {
		t.Fatalf("expected nothing-to-reset failure, got %+v", res)
	}
}

func TestStartRegistrationClearsResetIntent(t *testing.T) {
	e, led := newTestEngine(t)
	ctx := context.Background()

	led.AddMembers(ctx, 100, 7, []string{"Alice"})
	e.BeginReset(100, 9)

	if err := e.StartRegistration(100, 9); err != nil {
		t.Fatalf("StartRegistration: %v", err)
	}

	// The confirmation phrase now feeds registration, not reset.
	res := e.HandleText(ctx, 9, ResetConfirmPhrase)
	if res.Kind != ResultInvalidShareCount {
		t.Fatalf("expected invalid share count, got %+v", res)
	}
	if len(led.ListMembers(100)) != 1 {
		t.Fatal("fund must be untouched")
	}
}

func TestIgnoredWithoutConversation(t *testing.T) {
	e, _ := newTestEngine(t)
	res := e.HandleText(context.Background(), 7, "hello")
	if res.Kind != ResultIgnored {
		t.Fatalf("expected ignored, got %+v", res)
	}
}
