// Package ledger holds the in-memory fund state for all group chats
// and mirrors every mutation to the snapshot store.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/m3rciful/fundbot/core/logger"
	"github.com/m3rciful/fundbot/fund/store"
	"log/slog"
)

var (
	// ErrAlreadyRegistered is returned when a user tries to register twice in the same group.
	ErrAlreadyRegistered = errors.New("ledger: user already registered")
	// ErrNothingToReset is returned when a reset targets a group without members.
	ErrNothingToReset = errors.New("ledger: nothing to reset")
)

// Member is one person covered by the fund. A registering user adds one
// member per share they hold; all of them carry the registrar's user ID.
type Member struct {
	ID           string
	Name         string
	Shares       int
	Paid         bool
	PaidBy       *int64
	RegisteredBy int64
}

// Stats summarises payment progress for one group.
type Stats struct {
	Total  int
	Paid   int
	Unpaid int
}

type group struct {
	members      map[string]*Member
	order        []string
	winners      []string
	currentMonth string
}

// Ledger is safe for concurrent use. All mutations persist a full
// snapshot before returning; a failed save is logged but does not
// roll back the in-memory change.
type Ledger struct {
	mu     sync.Mutex
	groups map[int64]*group
	store  store.Store
}

// New creates an empty ledger backed by the given store.
func New(st store.Store) *Ledger {
	return &Ledger{
		groups: make(map[int64]*group),
		store:  st,
	}
}

// Load replaces in-memory state with the stored snapshot.
func (l *Ledger) Load(ctx context.Context) error {
	snap, err := l.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("ledger load: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.groups = make(map[int64]*group, len(snap))
	for chatKey, rec := range snap {
		chatID, err := strconv.ParseInt(chatKey, 10, 64)
		if err != nil {
			logger.Warn(ctx, "ledger", "ledger.load.bad_key",
				slog.String("payload", logger.SanitizeLimit(chatKey, 64)),
			)
			continue
		}
		g := &group{
			members:      make(map[string]*Member, len(rec.Members)),
			winners:      append([]string(nil), rec.Winners...),
			currentMonth: rec.CurrentMonth,
		}
		for id, m := range rec.Members {
			g.members[id] = &Member{
				ID:           id,
				Name:         m.Name,
				Shares:       m.Shares,
				Paid:         m.Paid,
				PaidBy:       m.PaidBy,
				RegisteredBy: m.RegisteredBy,
			}
		}
		g.rebuildOrder()
		l.groups[chatID] = g
	}

	logger.Info(ctx, "ledger", "ledger.load",
		slog.String("status", "ok"),
		slog.Int("total", len(l.groups)),
	)
	return nil
}

// Flush persists the current state unconditionally.
func (l *Ledger) Flush(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Save(ctx, l.snapshotLocked())
}

// EnsureGroup creates the group record if the bot has not seen the chat before.
func (l *Ledger) EnsureGroup(chatID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ensureGroupLocked(chatID)
}

func (l *Ledger) ensureGroupLocked(chatID int64) *group {
	g, ok := l.groups[chatID]
	if !ok {
		g = &group{
			members:      make(map[string]*Member),
			currentMonth: time.Now().Format("2006-01"),
		}
		l.groups[chatID] = g
	}
	return g
}

// IsRegistered reports whether the user already has members in the group.
func (l *Ledger) IsRegistered(chatID, userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	g, ok := l.groups[chatID]
	if !ok {
		return false
	}
	for _, m := range g.members {
		if m.RegisteredBy == userID {
			return true
		}
	}
	return false
}

// AddMembers registers one member per name on behalf of userID, each
// holding a single share. Fails with ErrAlreadyRegistered if the user
// already registered in this group.
func (l *Ledger) AddMembers(ctx context.Context, chatID, userID int64, names []string) ([]Member, error) {
	cleaned := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, errors.New("ledger: empty member name")
		}
		cleaned = append(cleaned, n)
	}
	if len(cleaned) == 0 {
		return nil, errors.New("ledger: no member names")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	g := l.ensureGroupLocked(chatID)
	for _, m := range g.members {
		if m.RegisteredBy == userID {
			return nil, ErrAlreadyRegistered
		}
	}

	added := make([]Member, 0, len(cleaned))
	for i, name := range cleaned {
		id := fmt.Sprintf("%d_%d", userID, i)
		m := &Member{
			ID:           id,
			Name:         name,
			Shares:       1,
			RegisteredBy: userID,
		}
		g.members[id] = m
		g.order = append(g.order, id)
		added = append(added, *m)
	}

	l.saveLocked(ctx)
	logger.Info(ctx, "ledger", "ledger.members.added",
		slog.String("status", "ok"),
		slog.Int64("chat_id", chatID),
		slog.Int64("user_id", userID),
		slog.Int("members", len(added)),
	)
	return added, nil
}

// ListMembers returns the group's members in registration order.
func (l *Ledger) ListMembers(chatID int64) []Member {
	l.mu.Lock()
	defer l.mu.Unlock()
	g, ok := l.groups[chatID]
	if !ok {
		return nil
	}
	out := make([]Member, 0, len(g.order))
	for _, id := range g.order {
		if m, ok := g.members[id]; ok {
			out = append(out, *m)
		}
	}
	return out
}

// MembersOf returns the members registered by a single user, in order.
func (l *Ledger) MembersOf(chatID, userID int64) []Member {
	var out []Member
	for _, m := range l.ListMembers(chatID) {
		if m.RegisteredBy == userID {
			out = append(out, m)
		}
	}
	return out
}

// SharesOf sums the shares a user registered in the group.
func (l *Ledger) SharesOf(chatID, userID int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	g, ok := l.groups[chatID]
	if !ok {
		return 0
	}
	total := 0
	for _, m := range g.members {
		if m.RegisteredBy == userID {
			total += m.Shares
		}
	}
	return total
}

// MarkPaid marks every member registered by payerID as paid and returns
// the names that changed state. Calling it again is a no-op; the
// snapshot is only written when something actually changed.
func (l *Ledger) MarkPaid(ctx context.Context, chatID, payerID int64) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	g, ok := l.groups[chatID]
	if !ok {
		return nil, nil
	}

	var newlyPaid []string
	for _, id := range g.order {
		m, ok := g.members[id]
		if !ok || m.RegisteredBy != payerID || m.Paid {
			continue
		}
		m.Paid = true
		payer := payerID
		m.PaidBy = &payer
		newlyPaid = append(newlyPaid, m.Name)
	}

	if len(newlyPaid) == 0 {
		return nil, nil
	}

	l.saveLocked(ctx)
	logger.Info(ctx, "ledger", "ledger.paid",
		slog.String("status", "ok"),
		slog.Int64("chat_id", chatID),
		slog.Int64("user_id", payerID),
		slog.Int("paid", len(newlyPaid)),
	)
	return newlyPaid, nil
}

// UnpaidMembers returns members that have not paid yet, in order.
func (l *Ledger) UnpaidMembers(chatID int64) []Member {
	var out []Member
	for _, m := range l.ListMembers(chatID) {
		if !m.Paid {
			out = append(out, m)
		}
	}
	return out
}

// GroupStats counts members by payment state.
func (l *Ledger) GroupStats(chatID int64) Stats {
	members := l.ListMembers(chatID)
	st := Stats{Total: len(members)}
	for _, m := range members {
		if m.Paid {
			st.Paid++
		} else {
			st.Unpaid++
		}
	}
	return st
}

// Reset wipes the group's members and starts a fresh month.
func (l *Ledger) Reset(ctx context.Context, chatID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	g, ok := l.groups[chatID]
	if !ok || len(g.members) == 0 {
		return ErrNothingToReset
	}

	removed := len(g.members)
	g.members = make(map[string]*Member)
	g.order = nil
	g.winners = nil
	g.currentMonth = time.Now().Format("2006-01")

	l.saveLocked(ctx)
	logger.Info(ctx, "ledger", "ledger.reset",
		slog.String("status", "ok"),
		slog.Int64("chat_id", chatID),
		slog.Int("members", removed),
	)
	return nil
}

func (l *Ledger) snapshotLocked() store.Snapshot {
	snap := make(store.Snapshot, len(l.groups))
	for chatID, g := range l.groups {
		rec := &store.GroupRecord{
			Members:      make(map[string]store.MemberRecord, len(g.members)),
			Winners:      append([]string(nil), g.winners...),
			CurrentMonth: g.currentMonth,
		}
		for id, m := range g.members {
			rec.Members[id] = store.MemberRecord{
				Name:         m.Name,
				Shares:       m.Shares,
				Paid:         m.Paid,
				PaidBy:       m.PaidBy,
				RegisteredBy: m.RegisteredBy,
			}
		}
		snap[strconv.FormatInt(chatID, 10)] = rec
	}
	return snap
}

func (l *Ledger) saveLocked(ctx context.Context) {
	if err := l.store.Save(ctx, l.snapshotLocked()); err != nil {
		logger.Error(ctx, "ledger", "ledger.save",
			slog.String("status", "fail"),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}
}

// rebuildOrder restores registration order from the "<user>_<n>" id
// format after loading a snapshot whose member map carries no order.
func (g *group) rebuildOrder() {
	ids := make([]string, 0, len(g.members))
	for id := range g.members {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ui, ni := parseMemberID(ids[i])
		uj, nj := parseMemberID(ids[j])
		if ui != uj {
			return ui < uj
		}
		if ni != nj {
			return ni < nj
		}
		return ids[i] < ids[j]
	})
	g.order = ids
}

func parseMemberID(id string) (int64, int) {
	idx := strings.LastIndex(id, "_")
	if idx < 0 {
		return 0, 0
	}
	uid, err := strconv.ParseInt(id[:idx], 10, 64)
	if err != nil {
		return 0, 0
	}
	n, err := strconv.Atoi(id[idx+1:])
	if err != nil {
		return uid, 0
	}
	return uid, n
}
