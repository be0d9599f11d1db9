package models

// LogChannelsKey es la clave única del registro de canales de logs
const LogChannelsKey = "logchannels"

// LogChannelsRecord asocia guildId → channelId (como máximo uno por servidor)
type LogChannelsRecord struct {
	Channels map[string]string `bson:"channels" json:"channels"`
}

// Clone devuelve una copia independiente del registro
func (r *LogChannelsRecord) Clone() *LogChannelsRecord {
	out := &LogChannelsRecord{Channels: make(map[string]string, len(r.Channels))}
	for guild, channel := range r.Channels {
		out.Channels[guild] = channel
	}
	return out
}
