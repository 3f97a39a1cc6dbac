package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/m3rciful/fundbot/core/logger"
	"log/slog"
)

// PgStore keeps the snapshot in Postgres. Save rewrites all rows in
// a single transaction so the tables always hold exactly one snapshot.
type PgStore struct {
	db *sqlx.DB
}

// NewPgStore wraps an open sqlx connection.
func NewPgStore(db *sqlx.DB) *PgStore {
	return &PgStore{db: db}
}

type groupRow struct {
	ChatID       string         `db:"chat_id"`
	CurrentMonth string         `db:"current_month"`
	Winners      pq.StringArray `db:"winners"`
}

type memberRow struct {
	ChatID       string `db:"chat_id"`
	MemberID     string `db:"member_id"`
	Name         string `db:"name"`
	Shares       int    `db:"shares"`
	Paid         bool   `db:"paid"`
	PaidBy       *int64 `db:"paid_by"`
	RegisteredBy int64  `db:"registered_by"`
	Position     int    `db:"position"`
}

// Load reads the full snapshot from the database.
func (s *PgStore) Load(ctx context.Context) (Snapshot, error) {
	start := time.Now()

	var groups []groupRow
	if err := s.db.SelectContext(ctx, &groups,
		`SELECT chat_id, current_month, winners FROM fund_groups`); err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}

	var members []memberRow
	if err := s.db.SelectContext(ctx, &members,
		`SELECT chat_id, member_id, name, shares, paid, paid_by, registered_by, position
		   FROM fund_members ORDER BY chat_id, position`); err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}

	snap := Snapshot{}
	for _, g := range groups {
		snap[g.ChatID] = &GroupRecord{
			Members:      map[string]MemberRecord{},
			Winners:      append([]string(nil), g.Winners...),
			CurrentMonth: g.CurrentMonth,
		}
	}
	for _, m := range members {
		rec, ok := snap[m.ChatID]
		if !ok {
			rec = &GroupRecord{Members: map[string]MemberRecord{}}
			snap[m.ChatID] = rec
		}
		rec.Members[m.MemberID] = MemberRecord{
			Name:         m.Name,
			Shares:       m.Shares,
			Paid:         m.Paid,
			PaidBy:       m.PaidBy,
			RegisteredBy: m.RegisteredBy,
		}
	}

	logger.Info(ctx, "store", "snapshot.load",
		slog.String("status", "ok"),
		slog.String("driver", "postgres"),
		slog.Int("groups", len(snap)),
		slog.Int("members", len(members)),
		slog.Int64("duration_ms", logger.RoundMS(time.Since(start)).Milliseconds()),
	)
	return snap, nil
}

// Save replaces all snapshot rows inside one transaction.
func (s *PgStore) Save(ctx context.Context, snap Snapshot) error {
	start := time.Now()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM fund_members`); err != nil {
		return fmt.Errorf("clear members: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM fund_groups`); err != nil {
		return fmt.Errorf("clear groups: %w", err)
	}

	total := 0
	for chatID, rec := range snap {
		winners := rec.Winners
		if winners == nil {
			winners = []string{}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO fund_groups (chat_id, current_month, winners) VALUES ($1, $2, $3)`,
			chatID, rec.CurrentMonth, pq.Array(winners)); err != nil {
			return fmt.Errorf("insert group %s: %w", chatID, err)
		}

		for pos, id := range orderedMemberIDs(rec.Members) {
			m := rec.Members[id]
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO fund_members
				   (chat_id, member_id, name, shares, paid, paid_by, registered_by, position)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				chatID, id, m.Name, m.Shares, m.Paid, m.PaidBy, m.RegisteredBy, pos); err != nil {
				return fmt.Errorf("insert member %s/%s: %w", chatID, id, err)
			}
			total++
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	logger.Debug(ctx, "store", "snapshot.save",
		slog.String("status", "ok"),
		slog.String("driver", "postgres"),
		slog.Int("groups", len(snap)),
		slog.Int("members", total),
		slog.Int64("duration_ms", logger.RoundMS(time.Since(start)).Milliseconds()),
	)
	return nil
}

// orderedMemberIDs sorts ids by registering user and the index suffix
// of the "<user>_<n>" id format so insertion order survives the map.
func orderedMemberIDs(members map[string]MemberRecord) []string {
	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ui, ni := splitMemberID(ids[i])
		uj, nj := splitMemberID(ids[j])
		if ui != uj {
			return ui < uj
		}
		if ni != nj {
			return ni < nj
		}
		return ids[i] < ids[j]
	})
	return ids
}

func splitMemberID(id string) (string, int) {
	idx := strings.LastIndex(id, "_")
	if idx < 0 {
		return id, 0
	}
	n := 0
	for _, r := range id[idx+1:] {
		if r < '0' || r > '9' {
			return id, 0
		}
		n = n*10 + int(r-'0')
	}
	return id[:idx], n
}
