package events

import (
	"fmt"
	"time"

	"github.com/PancyStudios/PancyGuard/pkg/discord"
	"github.com/PancyStudios/PancyGuard/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

func (h *handlers) registerGuildEvents(client *discord.ExtendedClient) {
	client.EventHandler.OnGuildCreate(h.onGuildCreate)
	client.EventHandler.OnGuildDelete(onGuildDelete)
}

// joinedRecently tells a real join apart from the GuildCreate burst sent
// after every (re)connect.
func joinedRecently(joinedAt, now time.Time) bool {
	return !joinedAt.Before(now.Add(-10 * time.Second))
}

// onGuildCreate is called when the bot joins a server
func (h *handlers) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if !joinedRecently(g.JoinedAt, time.Now()) {
		return
	}

	logger.Info(fmt.Sprintf("➕ Bot agregado a servidor: %s (ID: %s)", g.Name, g.ID), "Guild")

	ctx, cancel := h.context()
	defer cancel()
	if err := h.engine.Warmup(ctx, []string{g.ID}); err != nil {
		logger.Warn(fmt.Sprintf("No se pudo precargar %s: %v", g.ID, err), "Guild")
	}

	if g.SystemChannelID == "" || s == nil {
		return
	}

	welcomeEmbed := &discordgo.MessageEmbed{
		Title:       "¡Gracias por agregarme! 🛡️",
		Description: "Hola, soy **PancyGuard**. Elimino invitaciones, palabras prohibidas y archivos peligrosos, y llevo la cuenta de advertencias.",
		Color:       0x00ff00,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "📜 Política",
				Value:  "Configura con `/policy`",
				Inline: true,
			},
			{
				Name:   "🔧 Moderación",
				Value:  "Usa `/mod` para moderar",
				Inline: true,
			},
			{
				Name:   "🎭 Roles",
				Value:  "Roles por reacción con `/reactionrole`",
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Define un canal de logs con /mod logchannel",
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	if _, err := s.ChannelMessageSendEmbed(g.SystemChannelID, welcomeEmbed); err != nil {
		logger.Error(fmt.Sprintf("Error enviando mensaje de bienvenida: %v", err), "Guild")
	}
}

// onGuildDelete is called when the bot is removed from a server
func onGuildDelete(s *discordgo.Session, g *discordgo.GuildDelete) {
	logger.Info(fmt.Sprintf("➖ Bot removido del servidor ID: %s", g.ID), "Guild")
}
