// Package session drives per-user conversations: the registration flow
// that collects a share count and one name per share, and the admin
// reset confirmation.
package session

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/m3rciful/fundbot/core/logger"
	"github.com/m3rciful/fundbot/fund/ledger"
	"log/slog"
)

const (
	// MinShareCount is the smallest accepted number of shares.
	MinShareCount = 1
	// MaxShareCount is the largest accepted number of shares.
	MaxShareCount = 10

	// ResetConfirmPhrase must be typed verbatim to confirm a fund reset.
	ResetConfirmPhrase = "RESET"
)

// Phase is the current step of a registration conversation.
type Phase int

const (
	// PhaseShareCount waits for the number of shares.
	PhaseShareCount Phase = iota
	// PhaseName waits for the next member name.
	PhaseName
)

// Registration tracks one user's in-flight registration.
type Registration struct {
	UserID     int64
	GroupID    int64
	Phase      Phase
	ShareCount int
	Names      []string
}

// ResetIntent tracks a pending reset confirmation.
type ResetIntent struct {
	UserID  int64
	GroupID int64
}

// ResultKind classifies the outcome of feeding input to the engine.
type ResultKind int

const (
	// ResultIgnored means the input did not belong to any conversation.
	ResultIgnored ResultKind = iota
	// ResultInvalidShareCount means the share count was rejected.
	ResultInvalidShareCount
	// ResultPromptName asks for the name at NameIndex (1-based).
	ResultPromptName
	// ResultEmptyName means a blank name was rejected.
	ResultEmptyName
	// ResultCompleted means registration finished; Added holds the members.
	ResultCompleted
	// ResultResetDone means the fund was reset.
	ResultResetDone
	// ResultResetCancelled means the confirmation phrase did not match.
	ResultResetCancelled
	// ResultFailed carries an error from the ledger.
	ResultFailed
)

// Result describes what the engine did with a piece of input.
type Result struct {
	Kind       ResultKind
	ShareCount int
	NameIndex  int
	Names      []string
	Added      []ledger.Member
	Err        error
}

// Engine owns all active conversations. One conversation per user;
// starting a registration cancels a pending reset and vice versa.
type Engine struct {
	mu            sync.RWMutex
	registrations map[int64]*Registration
	resets        map[int64]*ResetIntent
	ledger        *ledger.Ledger
}

// NewEngine creates an engine bound to the ledger.
func NewEngine(led *ledger.Ledger) *Engine {
	return &Engine{
		registrations: make(map[int64]*Registration),
		resets:        make(map[int64]*ResetIntent),
		ledger:        led,
	}
}

// StartRegistration opens a registration conversation. An existing
// conversation for the user is restarted from the share-count step.
func (e *Engine) StartRegistration(chatID, userID int64) error {
	if e.ledger.IsRegistered(chatID, userID) {
		return ledger.ErrAlreadyRegistered
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.resets, userID)
	e.registrations[userID] = &Registration{
		UserID:  userID,
		GroupID: chatID,
		Phase:   PhaseShareCount,
	}

	logger.Debug(context.Background(), "ledger", "session.register.start",
		slog.Int64("chat_id", chatID),
		slog.Int64("user_id", userID),
	)
	return nil
}

// BeginReset opens a reset confirmation for the user.
func (e *Engine) BeginReset(chatID, userID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.registrations, userID)
	e.resets[userID] = &ResetIntent{UserID: userID, GroupID: chatID}
}

// Cancel drops any conversation the user has open.
func (e *Engine) Cancel(userID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.registrations, userID)
	delete(e.resets, userID)
}

// InProgress reports whether the user has an open conversation.
func (e *Engine) InProgress(userID int64) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if _, ok := e.registrations[userID]; ok {
		return true
	}
	_, ok := e.resets[userID]
	return ok
}

// Registration returns a copy of the user's registration state, if any.
func (e *Engine) Registration(userID int64) (Registration, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	reg, ok := e.registrations[userID]
	if !ok {
		return Registration{}, false
	}
	return *reg, true
}

// SetShareCount applies a share count chosen via inline button. It
// follows the same transition as a typed number.
func (e *Engine) SetShareCount(userID int64, count int) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	reg, ok := e.registrations[userID]
	if !ok || reg.Phase != PhaseShareCount {
		return Result{Kind: ResultIgnored}
	}
	if count < MinShareCount || count > MaxShareCount {
		return Result{Kind: ResultInvalidShareCount, ShareCount: count}
	}

	reg.ShareCount = count
	reg.Phase = PhaseName
	return Result{Kind: ResultPromptName, ShareCount: count, NameIndex: 1}
}

// HandleText feeds a text message into the user's conversation.
func (e *Engine) HandleText(ctx context.Context, userID int64, text string) Result {
	e.mu.Lock()

	if intent, ok := e.resets[userID]; ok {
		delete(e.resets, userID)
		e.mu.Unlock()
		return e.finishReset(ctx, intent, text)
	}

	reg, ok := e.registrations[userID]
	if !ok {
		e.mu.Unlock()
		return Result{Kind: ResultIgnored}
	}

	switch reg.Phase {
	case PhaseShareCount:
		count, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil || count < MinShareCount || count > MaxShareCount {
			e.mu.Unlock()
			return Result{Kind: ResultInvalidShareCount, ShareCount: count}
		}
		reg.ShareCount = count
		reg.Phase = PhaseName
		e.mu.Unlock()
		return Result{Kind: ResultPromptName, ShareCount: count, NameIndex: 1}

	case PhaseName:
		name := strings.TrimSpace(text)
		if name == "" {
			idx := len(reg.Names) + 1
			e.mu.Unlock()
			return Result{Kind: ResultEmptyName, NameIndex: idx}
		}
		reg.Names = append(reg.Names, name)
		if len(reg.Names) < reg.ShareCount {
			idx := len(reg.Names) + 1
			count := reg.ShareCount
			e.mu.Unlock()
			return Result{Kind: ResultPromptName, ShareCount: count, NameIndex: idx}
		}

		names := append([]string(nil), reg.Names...)
		chatID := reg.GroupID
		count := reg.ShareCount
		delete(e.registrations, userID)
		e.mu.Unlock()

		added, err := e.ledger.AddMembers(ctx, chatID, userID, names)
		if err != nil {
			return Result{Kind: ResultFailed, Err: err}
		}
		return Result{Kind: ResultCompleted, ShareCount: count, Names: names, Added: added}
	}

	e.mu.Unlock()
	return Result{Kind: ResultIgnored}
}

func (e *Engine) finishReset(ctx context.Context, intent *ResetIntent, text string) Result {
	if strings.TrimSpace(text) != ResetConfirmPhrase {
		logger.Info(ctx, "ledger", "session.reset.cancelled",
			slog.Int64("chat_id", intent.GroupID),
			slog.Int64("user_id", intent.UserID),
		)
		return Result{Kind: ResultResetCancelled}
	}
	if err := e.ledger.Reset(ctx, intent.GroupID); err != nil {
		return Result{Kind: ResultFailed, Err: err}
	}
	e.dropGroupConversations(intent.GroupID)
	return Result{Kind: ResultResetDone}
}

// dropGroupConversations kills every conversation scoped to the group.
// A reset wipes the member list, so in-flight registrations for it are
// no longer meaningful.
func (e *Engine) dropGroupConversations(chatID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for userID, reg := range e.registrations {
		if reg.GroupID == chatID {
			delete(e.registrations, userID)
		}
	}
	for userID, intent := range e.resets {
		if intent.GroupID == chatID {
			delete(e.resets, userID)
		}
	}
}
