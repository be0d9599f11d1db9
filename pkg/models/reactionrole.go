package models

import "fmt"

// BindingsKey es la clave del registro de roles por reacción de un servidor
func BindingsKey(guildID string) string {
	return fmt.Sprintf("reactionroles:%s", guildID)
}

// BindingsRecord asocia messageId → emojiKey → roleId
type BindingsRecord struct {
	Messages map[string]map[string]string `bson:"messages" json:"messages"`
}

// Clone devuelve una copia independiente del registro
func (r *BindingsRecord) Clone() *BindingsRecord {
	out := &BindingsRecord{Messages: make(map[string]map[string]string, len(r.Messages))}
	for message, emojis := range r.Messages {
		inner := make(map[string]string, len(emojis))
		for emoji, role := range emojis {
			inner[emoji] = role
		}
		out.Messages[message] = inner
	}
	return out
}
