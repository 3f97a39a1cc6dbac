// Package store persists the fund ledger as a full snapshot.
// Two backends are available: a JSON file (default) and Postgres.
package store

import "context"

// MemberRecord is the serialized form of a single fund member.
type MemberRecord struct {
	Name         string `json:"name"`
	Shares       int    `json:"shares"`
	Paid         bool   `json:"paid"`
	PaidBy       *int64 `json:"paid_by"`
	RegisteredBy int64  `json:"registered_by"`
}

// GroupRecord is the serialized state of one group chat.
type GroupRecord struct {
	Members      map[string]MemberRecord `json:"members"`
	Winners      []string                `json:"winners"`
	CurrentMonth string                  `json:"current_month"`
}

// Snapshot maps group chat IDs (decimal strings) to their records.
type Snapshot map[string]*GroupRecord

// Store loads and saves complete ledger snapshots. Save replaces
// the previous snapshot entirely.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}
