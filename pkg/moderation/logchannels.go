package moderation

import (
	"context"

	"github.com/PancyStudios/PancyGuard/pkg/errors"
	"github.com/PancyStudios/PancyGuard/pkg/models"
	"github.com/PancyStudios/PancyGuard/pkg/store"
)

// LogChannels maps each guild to at most one audit log channel.
type LogChannels struct {
	records *store.Records[models.LogChannelsRecord]
}

// NewLogChannels returns a log channel registry over s.
func NewLogChannels(s store.Store) *LogChannels {
	return &LogChannels{
		records: store.NewRecords[models.LogChannelsRecord](s, func(rec *models.LogChannelsRecord) {
			if rec.Channels == nil {
				rec.Channels = make(map[string]string)
			}
		}),
	}
}

// Get returns the guild's log channel, or "" when none is set.
func (l *LogChannels) Get(ctx context.Context, guildID string) (string, error) {
	rec, err := l.records.Get(ctx, models.LogChannelsKey)
	if err != nil {
		return "", err
	}
	return rec.Channels[guildID], nil
}

// Set replaces the guild's log channel. An empty channelID clears it.
func (l *LogChannels) Set(ctx context.Context, guildID, channelID string) (Outcome, error) {
	if guildID == "" {
		return OutcomeNoop, errors.Validation("servidor", "Este comando solo funciona en servidores.")
	}

	outcome := OutcomeNoop
	_, err := l.records.Update(ctx, models.LogChannelsKey, func(cur *models.LogChannelsRecord) (*models.LogChannelsRecord, error) {
		if cur.Channels[guildID] == channelID {
			return nil, nil
		}
		next := cur.Clone()
		if channelID == "" {
			delete(next.Channels, guildID)
		} else {
			next.Channels[guildID] = channelID
		}
		outcome = OutcomeApplied
		return next, nil
	})
	if err != nil {
		return OutcomeNoop, err
	}
	return outcome, nil
}
