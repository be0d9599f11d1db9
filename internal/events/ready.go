package events

import (
	"fmt"

	"github.com/PancyStudios/PancyGuard/pkg/discord"
	"github.com/PancyStudios/PancyGuard/pkg/errors"
	"github.com/PancyStudios/PancyGuard/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

func (h *handlers) registerReadyEvents(client *discord.ExtendedClient) {
	client.EventHandler.OnReady(h.onReady)
	client.Session.AddHandler(onDisconnect)
	client.Session.AddHandler(onResumed)
}

func guildIDs(guilds []*discordgo.Guild) []string {
	ids := make([]string, 0, len(guilds))
	for _, g := range guilds {
		ids = append(ids, g.ID)
	}
	return ids
}

// onReady is called when the bot successfully connects to Discord. The
// policy and ledger records of every guild are loaded in the background.
func (h *handlers) onReady(s *discordgo.Session, r *discordgo.Ready) {
	logger.Info(fmt.Sprintf("📊 Conectado a %d servidores", len(r.Guilds)), "Ready")

	if s != nil {
		if err := s.UpdateGameStatus(0, "🛡️ Moderando servidores"); err != nil {
			logger.Error(fmt.Sprintf("Error estableciendo estado: %v", err), "Ready")
		}
	}

	ids := guildIDs(r.Guilds)
	go func() {
		defer errors.RecoverMiddleware()()

		ctx, cancel := h.context()
		defer cancel()

		if err := h.engine.Warmup(ctx, ids); err != nil {
			logger.Warn(fmt.Sprintf("Precarga incompleta: %v", err), "Ready")
			return
		}
		logger.Debug(fmt.Sprintf("Registros precargados para %d servidores", len(ids)), "Ready")
	}()
}

func onDisconnect(s *discordgo.Session, _ *discordgo.Disconnect) {
	logger.Warn(fmt.Sprintf("🔌 Shard %d desconectado.", s.ShardID), "Shard")
}

func onResumed(s *discordgo.Session, _ *discordgo.Resumed) {
	logger.Success(fmt.Sprintf("✅ Shard %d reanudado.", s.ShardID), "Shard")
}
