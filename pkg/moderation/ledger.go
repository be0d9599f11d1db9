package moderation

import (
	"context"
	"sort"

	"github.com/PancyStudios/PancyGuard/pkg/lockmap"
	"github.com/PancyStudios/PancyGuard/pkg/models"
	"github.com/PancyStudios/PancyGuard/pkg/store"
)

// LedgerEntry is one user's active warning count.
type LedgerEntry struct {
	UserID   string `json:"userId"`
	Warnings int    `json:"warnings"`
}

// Ledger keeps per-guild warning counts.
//
// Two locks are involved. The user lock (guild/user) is held by callers for
// the whole read-increment-persist-enforce sequence of one user. The record
// lock inside store.Records serialises the snapshot and Save of the guild's
// record so writers for different users never overwrite each other.
type Ledger struct {
	records *store.Records[models.LedgerRecord]
	users   *lockmap.Map
	limit   int
}

// NewLedger returns a ledger over s that bans at limit warnings.
func NewLedger(s store.Store, limit int) *Ledger {
	if limit < 1 {
		limit = 1
	}
	return &Ledger{
		records: store.NewRecords[models.LedgerRecord](s, (*models.LedgerRecord).Normalize),
		users:   lockmap.New(),
		limit:   limit,
	}
}

// Limit is the warning count at which a user is banned.
func (l *Ledger) Limit() int {
	return l.limit
}

// lockUser takes the user's exclusion lock.
func (l *Ledger) lockUser(guildID, userID string) func() {
	return l.users.Lock(guildID + "/" + userID)
}

// Count returns the user's current warning count (0 when absent).
func (l *Ledger) Count(ctx context.Context, guildID, userID string) (int, error) {
	rec, err := l.records.Get(ctx, models.LedgerKey(guildID))
	if err != nil {
		return 0, err
	}
	return rec.Warnings[userID], nil
}

// increment adds one warning and persists it. Returns the new count.
func (l *Ledger) increment(ctx context.Context, guildID, userID string) (int, error) {
	var count int
	_, err := l.records.Update(ctx, models.LedgerKey(guildID), func(cur *models.LedgerRecord) (*models.LedgerRecord, error) {
		next := cur.Clone()
		next.Warnings[userID]++
		count = next.Warnings[userID]
		return next, nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// remove drops the user's entry. Reports false without writing when absent.
func (l *Ledger) remove(ctx context.Context, guildID, userID string) (bool, error) {
	removed := false
	_, err := l.records.Update(ctx, models.LedgerKey(guildID), func(cur *models.LedgerRecord) (*models.LedgerRecord, error) {
		if _, ok := cur.Warnings[userID]; !ok {
			return nil, nil
		}
		next := cur.Clone()
		delete(next.Warnings, userID)
		removed = true
		return next, nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// Clear drops the user's entry with no audit or notification. It is meant
// for offline maintenance; moderators go through Engine.ResetWarning.
func (l *Ledger) Clear(ctx context.Context, guildID, userID string) (bool, error) {
	unlock := l.lockUser(guildID, userID)
	defer unlock()
	return l.remove(ctx, guildID, userID)
}

// List returns every active entry, highest count first.
func (l *Ledger) List(ctx context.Context, guildID string) ([]LedgerEntry, error) {
	rec, err := l.records.Get(ctx, models.LedgerKey(guildID))
	if err != nil {
		return nil, err
	}

	entries := make([]LedgerEntry, 0, len(rec.Warnings))
	for user, count := range rec.Warnings {
		entries = append(entries, LedgerEntry{UserID: user, Warnings: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Warnings != entries[j].Warnings {
			return entries[i].Warnings > entries[j].Warnings
		}
		return entries[i].UserID < entries[j].UserID
	})
	return entries, nil
}

// warm loads the guild's record into the cache.
func (l *Ledger) warm(ctx context.Context, guildID string) error {
	_, err := l.records.Get(ctx, models.LedgerKey(guildID))
	return err
}
