package app

import (
	"context"
	"strings"
	"testing"

	"github.com/m3rciful/fundbot/fund/ledger"
	"github.com/m3rciful/fundbot/fund/session"
	"github.com/m3rciful/fundbot/fund/store"

	tele "gopkg.in/telebot.v4"
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

// fakeTeleCtx overrides just the methods the handlers touch; anything
// else panics through the embedded nil interface.
type fakeTeleCtx struct {
	tele.Context
	chat   *tele.Chat
	sender *tele.User
	msg    *tele.Message
	kv     map[string]interface{}
	sent   []string
}

func (f *fakeTeleCtx) Chat() *tele.Chat       { return f.chat }
func (f *fakeTeleCtx) Sender() *tele.User     { return f.sender }
func (f *fakeTeleCtx) Message() *tele.Message { return f.msg }
func (f *fakeTeleCtx) Update() tele.Update    { return tele.Update{ID: 1} }

func (f *fakeTeleCtx) Get(key string) interface{} { return f.kv[key] }

func (f *fakeTeleCtx) Set(key string, val interface{}) {
	if f.kv == nil {
		f.kv = make(map[string]interface{})
	}
	f.kv[key] = val
}

func (f *fakeTeleCtx) Send(what interface{}, opts ...interface{}) error {
	if s, ok := what.(string); ok {
		f.sent = append(f.sent, s)
	}
	return nil
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	led := ledger.New(&memStore{})
	return New(Deps{
		Ledger: led,
		Engine: session.NewEngine(led),
	})
}

func groupCtx(userID int64) *fakeTeleCtx {
	return &fakeTeleCtx{
		chat:   &tele.Chat{ID: 100, Type: tele.ChatGroup},
		sender: &tele.User{ID: userID, FirstName: "Dana"},
		msg:    &tele.Message{Photo: &tele.Photo{}},
	}
}

func TestReceiptPostsAnnouncementAndMembersList(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	if _, err := a.ledger.AddMembers(ctx, 100, 7, []string{"Alice", "Bob"}); err != nil {
		t.Fatalf("AddMembers: %v", err)
	}

	c := groupCtx(7)
	if err := a.handleReceipt(c); err != nil {
		t.Fatalf("handleReceipt: %v", err)
	}

	if len(c.sent) != 3 {
		t.Fatalf("expected receipt reply, announcement and members list, got %d messages: %q", len(c.sent), c.sent)
	}
	if !strings.Contains(c.sent[0], "(photo)") {
		t.Fatalf("receipt reply missing: %s", c.sent[0])
	}
	if !strings.Contains(c.sent[1], "Dana") || !strings.Contains(c.sent[1], "2 shares") {
		t.Fatalf("announcement wrong: %s", c.sent[1])
	}
	if !strings.Contains(c.sent[2], "Fund members") || !strings.Contains(c.sent[2], "Paid: 2") {
		t.Fatalf("members list missing or stale: %s", c.sent[2])
	}
	if !strings.Contains(c.sent[2], "Alice ✅") || !strings.Contains(c.sent[2], "Bob ✅") {
		t.Fatalf("members list must show paid marks: %s", c.sent[2])
	}
}

func TestReceiptRepeatUploadDoesNotRepost(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	if _, err := a.ledger.AddMembers(ctx, 100, 7, []string{"Alice"}); err != nil {
		t.Fatalf("AddMembers: %v", err)
	}
	if _, err := a.ledger.MarkPaid(ctx, 100, 7); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}

	c := groupCtx(7)
	if err := a.handleReceipt(c); err != nil {
		t.Fatalf("handleReceipt: %v", err)
	}
	if len(c.sent) != 1 || !strings.Contains(c.sent[0], "already recorded") {
		t.Fatalf("expected single already-paid reply, got %q", c.sent)
	}
}
