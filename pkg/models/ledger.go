package models

import "fmt"

// LedgerKey es la clave del registro de advertencias de un servidor
func LedgerKey(guildID string) string {
	return fmt.Sprintf("ledger:%s", guildID)
}

// LedgerRecord guarda las advertencias activas de un servidor: userId → cantidad.
// Un usuario sin advertencias no aparece en el mapa.
type LedgerRecord struct {
	Warnings map[string]int `bson:"warnings" json:"warnings"`
}

// Clone devuelve una copia independiente del registro
func (r *LedgerRecord) Clone() *LedgerRecord {
	out := &LedgerRecord{Warnings: make(map[string]int, len(r.Warnings))}
	for user, count := range r.Warnings {
		out.Warnings[user] = count
	}
	return out
}

// Normalize rellena el mapa y descarta entradas con cantidad no positiva
func (r *LedgerRecord) Normalize() {
	if r.Warnings == nil {
		r.Warnings = make(map[string]int)
	}
	for user, count := range r.Warnings {
		if count <= 0 {
			delete(r.Warnings, user)
		}
	}
}
