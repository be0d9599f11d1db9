package utils

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/PancyStudios/PancyGuard/pkg/config"
	"github.com/PancyStudios/PancyGuard/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

// createStatsCommand creates the /utils stats subcommand
func createStatsCommand(deps Deps) *discord.Command {
	return discord.NewCommand(
		"stats",
		"Muestra estadísticas del bot y del servidor",
		"utils",
		statsHandler(deps),
	)
}

// statsHandler handles the /utils stats command
func statsHandler(deps Deps) discord.CommandRunFunc {
	return func(ctx *discord.CommandContext) error {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		memberCount := 0
		ctx.Session.State.RLock()
		for _, guild := range ctx.Session.State.Guilds {
			memberCount += guild.MemberCount
		}
		ctx.Session.State.RUnlock()

		embed := &discordgo.MessageEmbed{
			Title: "📊 Estadísticas del Bot",
			Color: 0x5865F2,
			Fields: []*discordgo.MessageEmbedField{
				{Name: "🤖 Versión del Bot", Value: config.Version, Inline: true},
				{Name: "🐹 Versión de Go", Value: strings.TrimPrefix(runtime.Version(), "go"), Inline: true},
				{Name: "📚 Versión de DiscordGo", Value: discordgo.VERSION, Inline: true},
				{Name: "🖥 Uso de RAM", Value: fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024), Inline: true},
				{Name: "⚙️ Goroutines", Value: fmt.Sprintf("%d / %d CPUs", runtime.NumGoroutine(), runtime.NumCPU()), Inline: true},
				{Name: "⏱ Uptime", Value: formatDuration(time.Since(ctx.Client.StartTime)), Inline: true},
				{Name: "🏠 Guilds", Value: fmt.Sprintf("%d", ctx.Client.GuildCount()), Inline: true},
				{Name: "👥 Miembros", Value: fmt.Sprintf("%d", memberCount), Inline: true},
			},
			Footer: &discordgo.MessageEmbedFooter{
				Text: "💫 - Developed by PancyStudios",
			},
			Timestamp: time.Now().Format(time.RFC3339),
		}

		if guildID := ctx.GuildID(); guildID != "" {
			fields, err := guildFields(ctx, deps, guildID)
			if err != nil {
				return err
			}
			embed.Fields = append(embed.Fields, fields...)
		}

		return ctx.ReplyEmbed(embed)
	}
}

// guildFields adds the moderation state of the current guild
func guildFields(ctx *discord.CommandContext, deps Deps, guildID string) ([]*discordgo.MessageEmbedField, error) {
	reqCtx, cancel := ctx.RequestContext()
	defer cancel()

	entries, err := deps.Engine.ListWarnings(reqCtx, guildID)
	if err != nil {
		return nil, err
	}
	rec, err := deps.Engine.Policies().Record(reqCtx, guildID)
	if err != nil {
		return nil, err
	}

	return []*discordgo.MessageEmbedField{
		{Name: "⚠️ Usuarios advertidos", Value: fmt.Sprintf("%d", len(entries)), Inline: true},
		{Name: "🚫 Palabras prohibidas", Value: fmt.Sprintf("%d", len(rec.BannedWords)), Inline: true},
		{Name: "📜 Reglas por canal", Value: fmt.Sprintf("%d", len(rec.ChannelPolicies)), Inline: true},
	}, nil
}

// formatDuration formats a time.Duration into a human-readable string
func formatDuration(dur time.Duration) string {
	days := int(dur.Hours() / 24)
	hours := int(dur.Hours()) % 24
	minutes := int(dur.Minutes()) % 60
	seconds := int(dur.Seconds()) % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%d días", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d horas", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%d minutos", minutes))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%d segundos", seconds))
	}

	return strings.Join(parts, ", ")
}
