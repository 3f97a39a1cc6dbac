package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/m3rciful/fundbot/fund/store"
)

type fakeStore struct {
	snap    store.Snapshot
	saves   int
	failure error
}

func (f *fakeStore) Load(ctx context.Context) (store.Snapshot, error) {
	if f.snap == nil {
		return store.Snapshot{}, nil
	}
	return f.snap, nil
}

func (f *fakeStore) Save(ctx context.Context, snap store.Snapshot) error {
	if f.failure != nil {
		return f.failure
	}
	f.snap = snap
	f.saves++
	return nil
}

func TestAddMembersAndList(t *testing.T) {
	fs := &fakeStore{}
	l := New(fs)
	ctx := context.Background()

	added, err := l.AddMembers(ctx, 100, 7, []string{"Alice", "Bob", "Carol"})
	if err != nil {
		t.Fatalf("AddMembers: %v", err)
	}
	if len(added) != 3 {
		t.Fatalf("expected 3 members, got %d", len(added))
	}
	if added[0].ID != "7_0" || added[2].ID != "7_2" {
		t.Fatalf("unexpected member ids: %s, %s", added[0].ID, added[2].ID)
	}

	members := l.ListMembers(100)
	if len(members) != 3 {
		t.Fatalf("expected 3 listed members, got %d", len(members))
	}
	if members[0].Name != "Alice" || members[1].Name != "Bob" || members[2].Name != "Carol" {
		t.Fatalf("unexpected order: %v", members)
	}
	if fs.saves != 1 {
		t.Fatalf("expected 1 save, got %d", fs.saves)
	}
}

func TestAddMembersRejectsDuplicateRegistration(t *testing.T) {
	l := New(&fakeStore{})
	ctx := context.Background()

	if _, err := l.AddMembers(ctx, 100, 7, []string{"Alice"}); err != nil {
		t.Fatalf("first AddMembers: %v", err)
	}
	_, err := l.AddMembers(ctx, 100, 7, []string{"Dave"})
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
	// Same user in a different group is fine.
	if _, err := l.AddMembers(ctx, 200, 7, []string{"Dave"}); err != nil {
		t.Fatalf("other group AddMembers: %v", err)
	}
}

func TestAddMembersValidation(t *testing.T) {
	l := New(&fakeStore{})
	ctx := context.Background()

	if _, err := l.AddMembers(ctx, 100, 7, []string{"Alice", "  "}); err == nil {
		t.Fatal("expected error for blank name")
	}
	if _, err := l.AddMembers(ctx, 100, 7, nil); err == nil {
		t.Fatal("expected error for empty name list")
	}
	if l.IsRegistered(100, 7) {
		t.Fatal("failed registration must not register the user")
	}
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	fs := &fakeStore{}
	l := New(fs)
	ctx := context.Background()

	if _, err := l.AddMembers(ctx, 100, 7, []string{"Alice", "Bob"}); err != nil {
		t.Fatalf("AddMembers: %v", err)
	}
	savesBefore := fs.saves

	names, err := l.MarkPaid(ctx, 100, 7)
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 newly paid, got %v", names)
	}
	if fs.saves != savesBefore+1 {
		t.Fatalf("expected a save after payment")
	}

	// Second receipt changes nothing and writes nothing.
	names, err = l.MarkPaid(ctx, 100, 7)
	if err != nil {
		t.Fatalf("second MarkPaid: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("expected no newly paid on repeat, got %v", names)
	}
	if fs.saves != savesBefore+1 {
		t.Fatalf("repeat payment must not save, saves=%d", fs.saves)
	}

	for _, m := range l.ListMembers(100) {
		if !m.Paid {
			t.Fatalf("member %s not paid", m.ID)
		}
		if m.PaidBy == nil || *m.PaidBy != 7 {
			t.Fatalf("member %s has wrong payer", m.ID)
		}
	}
}

func TestMarkPaidUnknownUser(t *testing.T) {
	l := New(&fakeStore{})
	ctx := context.Background()

	if _, err := l.AddMembers(ctx, 100, 7, []string{"Alice"}); err != nil {
		t.Fatalf("AddMembers: %v", err)
	}
	names, err := l.MarkPaid(ctx, 100, 99)
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("unregistered payer must not mark anyone, got %v", names)
	}
}

func TestStatsAndUnpaid(t *testing.T) {
	l := New(&fakeStore{})
	ctx := context.Background()

	l.AddMembers(ctx, 100, 7, []string{"Alice", "Bob"})
	l.AddMembers(ctx, 100, 8, []string{"Carol"})
	l.MarkPaid(ctx, 100, 7)

	st := l.GroupStats(100)
	if st.Total != 3 || st.Paid != 2 || st.Unpaid != 1 {
		t.Fatalf("unexpected stats: %+v", st)
	}

	unpaid := l.UnpaidMembers(100)
	if len(unpaid) != 1 || unpaid[0].Name != "Carol" {
		t.Fatalf("unexpected unpaid set: %v", unpaid)
	}
}

func TestSharesOf(t *testing.T) {
	l := New(&fakeStore{})
	ctx := context.Background()

	l.AddMembers(ctx, 100, 7, []string{"Alice", "Bob", "Carol"})
	if got := l.SharesOf(100, 7); got != 3 {
		t.Fatalf("expected 3 shares, got %d", got)
	}
	if got := l.SharesOf(100, 99); got != 0 {
		t.Fatalf("expected 0 shares for stranger, got %d", got)
	}
}

func TestReset(t *testing.T) {
	l := New(&fakeStore{})
	ctx := context.Background()

	if err := l.Reset(ctx, 100); !errors.Is(err, ErrNothingToReset) {
		t.Fatalf("expected ErrNothingToReset for unknown group, got %v", err)
	}

	l.AddMembers(ctx, 100, 7, []string{"Alice"})
	if err := l.Reset(ctx, 100); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if len(l.ListMembers(100)) != 0 {
		t.Fatal("members survived reset")
	}
	if l.IsRegistered(100, 7) {
		t.Fatal("registration survived reset")
	}
	if err := l.Reset(ctx, 100); !errors.Is(err, ErrNothingToReset) {
		t.Fatalf("expected ErrNothingToReset after reset, got %v", err)
	}
}

func TestLoadRebuildsOrder(t *testing.T) {
	fs := &fakeStore{snap: store.Snapshot{
		"100": {
			Members: map[string]store.MemberRecord{
				"7_2": {Name: "Carol", Shares: 1, RegisteredBy: 7},
				"7_0": {Name: "Alice", Shares: 1, RegisteredBy: 7},
				"5_0": {Name: "Zed", Shares: 1, RegisteredBy: 5},
				"7_1": {Name: "Bob", Shares: 1, RegisteredBy: 7},
			},
			CurrentMonth: "2026-09",
		},
	}}
	l := New(fs)
	if err := l.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	members := l.ListMembers(100)
	got := make([]string, 0, len(members))
	for _, m := range members {
		got = append(got, m.Name)
	}
	want := []string{"Zed", "Alice", "Bob", "Carol"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order mismatch at %d: got %v want %v", i, got, want)
		}
	}
}

func TestLoadSkipsMalformedGroupKey(t *testing.T) {
	fs := &fakeStore{snap: store.Snapshot{
		"not-a-chat-id": {
			Members: map[string]store.MemberRecord{
				"7_0": {Name: "Ghost", Shares: 1, RegisteredBy: 7},
			},
		},
		"100": {
			Members: map[string]store.MemberRecord{
				"7_0": {Name: "Alice", Shares: 1, RegisteredBy: 7},
			},
		},
	}}
	l := New(fs)
	if err := l.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(l.ListMembers(100)) != 1 {
		t.Fatal("valid group must survive a malformed sibling key")
	}
}

func TestSaveFailureKeepsState(t *testing.T) {
	fs := &fakeStore{failure: errors.New("disk full")}
	l := New(fs)
	ctx := context.Background()

	if _, err := l.AddMembers(ctx, 100, 7, []string{"Alice"}); err != nil {
		t.Fatalf("AddMembers: %v", err)
	}
	if !l.IsRegistered(100, 7) {
		t.Fatal("in-memory state must survive a failed save")
	}
}
