package models

import "fmt"

// ChannelPolicy es la regla especial de un canal
type ChannelPolicy string

const (
	ChannelPolicyNone      ChannelPolicy = "none"
	ChannelPolicyLinkBan   ChannelPolicy = "link-ban"
	ChannelPolicyImageOnly ChannelPolicy = "image-only"
)

// Valid indica si la política es una de las conocidas
func (p ChannelPolicy) Valid() bool {
	switch p {
	case ChannelPolicyNone, ChannelPolicyLinkBan, ChannelPolicyImageOnly:
		return true
	}
	return false
}

// PolicyKey es la clave del registro de políticas de un servidor
func PolicyKey(guildID string) string {
	return fmt.Sprintf("policy:%s", guildID)
}

// PolicyRecord es la configuración de moderación persistida de un servidor.
// Las listas ya están normalizadas (minúsculas, sin duplicados).
type PolicyRecord struct {
	BannedWords       []string                 `bson:"bannedWords" json:"bannedWords"`
	InviteAllowlist   []string                 `bson:"inviteAllowlist" json:"inviteAllowlist"`
	ChannelPolicies   map[string]ChannelPolicy `bson:"channelPolicies" json:"channelPolicies"`
	BlockedExtensions []string                 `bson:"blockedExtensions" json:"blockedExtensions"`
	// Seeded marca que los valores por defecto ya se aplicaron una vez
	Seeded bool `bson:"seeded" json:"seeded"`
}

// Clone devuelve una copia independiente del registro
func (r *PolicyRecord) Clone() *PolicyRecord {
	out := &PolicyRecord{
		BannedWords:       append([]string(nil), r.BannedWords...),
		InviteAllowlist:   append([]string(nil), r.InviteAllowlist...),
		ChannelPolicies:   make(map[string]ChannelPolicy, len(r.ChannelPolicies)),
		BlockedExtensions: append([]string(nil), r.BlockedExtensions...),
		Seeded:            r.Seeded,
	}
	for channel, policy := range r.ChannelPolicies {
		out.ChannelPolicies[channel] = policy
	}
	return out
}
