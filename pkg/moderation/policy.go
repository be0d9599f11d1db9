package moderation

import (
	"context"
	"sort"
	"strings"

	"github.com/PancyStudios/PancyGuard/pkg/errors"
	"github.com/PancyStudios/PancyGuard/pkg/models"
	"github.com/PancyStudios/PancyGuard/pkg/store"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/text/cases"
)

const (
	maxBannedWordLength = 100
	maxInviteCodeLength = 64
	maxExtensionLength  = 16
)

// Policy is a read-only compiled view of a guild's PolicyRecord.
type Policy struct {
	// BannedWords are case folded, in insertion order.
	BannedWords       []string
	InviteAllowlist   map[string]struct{}
	Channels          map[string]models.ChannelPolicy
	BlockedExtensions map[string]struct{}
}

func compilePolicy(rec *models.PolicyRecord) *Policy {
	p := &Policy{
		BannedWords:       rec.BannedWords,
		InviteAllowlist:   make(map[string]struct{}, len(rec.InviteAllowlist)),
		Channels:          rec.ChannelPolicies,
		BlockedExtensions: make(map[string]struct{}, len(rec.BlockedExtensions)),
	}
	for _, code := range rec.InviteAllowlist {
		p.InviteAllowlist[code] = struct{}{}
	}
	for _, ext := range rec.BlockedExtensions {
		p.BlockedExtensions[ext] = struct{}{}
	}
	return p
}

// fold case-folds s. A fresh Caser per call since Casers carry state.
func fold(s string) string {
	return cases.Fold().String(s)
}

func normalizeInvite(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

func normalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// dedupe keeps the first occurrence of each entry after norm, dropping empties.
func dedupe(in []string, norm func(string) string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = norm(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

type compiledPolicy struct {
	record *models.PolicyRecord
	policy *Policy
}

// Policies owns every guild's PolicyRecord and the operator mutations on it.
type Policies struct {
	records  *store.Records[models.PolicyRecord]
	compiled *xsync.MapOf[string, compiledPolicy]
}

// PolicyDefaults seed a guild's policy the first time it is read.
type PolicyDefaults struct {
	InviteAllowlist   []string
	BlockedExtensions []string
}

// NewPolicies returns a policy service over s.
func NewPolicies(s store.Store, defaults PolicyDefaults) *Policies {
	invites := dedupe(defaults.InviteAllowlist, normalizeInvite)
	extensions := dedupe(defaults.BlockedExtensions, normalizeExtension)

	normalize := func(rec *models.PolicyRecord) {
		if !rec.Seeded {
			rec.InviteAllowlist = append(rec.InviteAllowlist, invites...)
			rec.BlockedExtensions = append(rec.BlockedExtensions, extensions...)
			rec.Seeded = true
		}
		rec.BannedWords = dedupe(rec.BannedWords, fold)
		rec.InviteAllowlist = dedupe(rec.InviteAllowlist, normalizeInvite)
		rec.BlockedExtensions = dedupe(rec.BlockedExtensions, normalizeExtension)
		if rec.ChannelPolicies == nil {
			rec.ChannelPolicies = make(map[string]models.ChannelPolicy)
		}
		for channel, kind := range rec.ChannelPolicies {
			if kind == models.ChannelPolicyNone || !kind.Valid() {
				delete(rec.ChannelPolicies, channel)
			}
		}
	}

	return &Policies{
		records:  store.NewRecords[models.PolicyRecord](s, normalize),
		compiled: xsync.NewMapOf[string, compiledPolicy](),
	}
}

// Snapshot returns the current compiled policy of a guild.
func (p *Policies) Snapshot(ctx context.Context, guildID string) (*Policy, error) {
	rec, err := p.records.Get(ctx, models.PolicyKey(guildID))
	if err != nil {
		return nil, err
	}

	if c, ok := p.compiled.Load(guildID); ok && c.record == rec {
		return c.policy, nil
	}

	compiled := compilePolicy(rec)
	p.compiled.Store(guildID, compiledPolicy{record: rec, policy: compiled})
	return compiled, nil
}

// Record returns the raw stored policy of a guild. Callers must not modify it.
func (p *Policies) Record(ctx context.Context, guildID string) (*models.PolicyRecord, error) {
	return p.records.Get(ctx, models.PolicyKey(guildID))
}

// update applies mutate to a clone of the guild's record. mutate reports
// whether anything changed; an unchanged record is not written.
func (p *Policies) update(ctx context.Context, guildID string, mutate func(rec *models.PolicyRecord) bool) (Outcome, error) {
	outcome := OutcomeNoop
	_, err := p.records.Update(ctx, models.PolicyKey(guildID), func(cur *models.PolicyRecord) (*models.PolicyRecord, error) {
		next := cur.Clone()
		if !mutate(next) {
			return nil, nil
		}
		outcome = OutcomeApplied
		return next, nil
	})
	if err != nil {
		return OutcomeNoop, err
	}
	return outcome, nil
}

func addEntry(list []string, v string) ([]string, bool) {
	for _, existing := range list {
		if existing == v {
			return list, false
		}
	}
	return append(list, v), true
}

func removeEntry(list []string, v string) ([]string, bool) {
	for i, existing := range list {
		if existing == v {
			return append(list[:i], list[i+1:]...), true
		}
	}
	return list, false
}

func validateBannedWord(word string) (string, error) {
	word = fold(strings.TrimSpace(word))
	if word == "" {
		return "", errors.Validation("palabra", "Debes especificar una palabra.")
	}
	if len(word) > maxBannedWordLength {
		return "", errors.Validation("palabra", "La palabra no puede superar %d caracteres.", maxBannedWordLength)
	}
	return word, nil
}

// AddBannedWord adds word to the guild's list. Adding an existing word is a no-op.
func (p *Policies) AddBannedWord(ctx context.Context, guildID, word string) (Outcome, error) {
	word, err := validateBannedWord(word)
	if err != nil {
		return OutcomeNoop, err
	}
	return p.update(ctx, guildID, func(rec *models.PolicyRecord) (changed bool) {
		rec.BannedWords, changed = addEntry(rec.BannedWords, word)
		return changed
	})
}

// RemoveBannedWord removes word. Removing an unknown word is a no-op.
func (p *Policies) RemoveBannedWord(ctx context.Context, guildID, word string) (Outcome, error) {
	word, err := validateBannedWord(word)
	if err != nil {
		return OutcomeNoop, err
	}
	return p.update(ctx, guildID, func(rec *models.PolicyRecord) (changed bool) {
		rec.BannedWords, changed = removeEntry(rec.BannedWords, word)
		return changed
	})
}

// BannedWords lists the guild's banned words in insertion order.
func (p *Policies) BannedWords(ctx context.Context, guildID string) ([]string, error) {
	rec, err := p.Record(ctx, guildID)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), rec.BannedWords...), nil
}

// SetChannelPolicy replaces whatever policy the channel had.
// Setting ChannelPolicyNone is the same as UnsetChannelPolicy.
func (p *Policies) SetChannelPolicy(ctx context.Context, guildID, channelID string, kind models.ChannelPolicy) (Outcome, error) {
	if channelID == "" {
		return OutcomeNoop, errors.Validation("canal", "Debes especificar un canal.")
	}
	if !kind.Valid() {
		return OutcomeNoop, errors.Validation("politica", "Política de canal desconocida: %s", kind)
	}
	if kind == models.ChannelPolicyNone {
		return p.UnsetChannelPolicy(ctx, guildID, channelID)
	}
	return p.update(ctx, guildID, func(rec *models.PolicyRecord) bool {
		if rec.ChannelPolicies[channelID] == kind {
			return false
		}
		rec.ChannelPolicies[channelID] = kind
		return true
	})
}

// UnsetChannelPolicy clears the channel's policy.
func (p *Policies) UnsetChannelPolicy(ctx context.Context, guildID, channelID string) (Outcome, error) {
	if channelID == "" {
		return OutcomeNoop, errors.Validation("canal", "Debes especificar un canal.")
	}
	return p.update(ctx, guildID, func(rec *models.PolicyRecord) bool {
		if _, ok := rec.ChannelPolicies[channelID]; !ok {
			return false
		}
		delete(rec.ChannelPolicies, channelID)
		return true
	})
}

// ChannelPolicies returns a copy of the guild's channel policies.
func (p *Policies) ChannelPolicies(ctx context.Context, guildID string) (map[string]models.ChannelPolicy, error) {
	rec, err := p.Record(ctx, guildID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.ChannelPolicy, len(rec.ChannelPolicies))
	for channel, kind := range rec.ChannelPolicies {
		out[channel] = kind
	}
	return out, nil
}

func validateInvite(code string) (string, error) {
	code = normalizeInvite(code)
	if i := strings.LastIndex(code, "/"); i >= 0 {
		code = code[i+1:]
	}
	if code == "" {
		return "", errors.Validation("codigo", "Debes especificar un código de invitación.")
	}
	if len(code) > maxInviteCodeLength || !inviteCodePattern.MatchString(code) {
		return "", errors.Validation("codigo", "El código de invitación no es válido.")
	}
	return code, nil
}

// AllowInvite adds an invite code (or full invite URL) to the allow-list.
func (p *Policies) AllowInvite(ctx context.Context, guildID, code string) (Outcome, error) {
	code, err := validateInvite(code)
	if err != nil {
		return OutcomeNoop, err
	}
	return p.update(ctx, guildID, func(rec *models.PolicyRecord) (changed bool) {
		rec.InviteAllowlist, changed = addEntry(rec.InviteAllowlist, code)
		return changed
	})
}

// DisallowInvite removes an invite code from the allow-list.
func (p *Policies) DisallowInvite(ctx context.Context, guildID, code string) (Outcome, error) {
	code, err := validateInvite(code)
	if err != nil {
		return OutcomeNoop, err
	}
	return p.update(ctx, guildID, func(rec *models.PolicyRecord) (changed bool) {
		rec.InviteAllowlist, changed = removeEntry(rec.InviteAllowlist, code)
		return changed
	})
}

// AllowedInvites lists the allow-listed invite codes, sorted.
func (p *Policies) AllowedInvites(ctx context.Context, guildID string) ([]string, error) {
	rec, err := p.Record(ctx, guildID)
	if err != nil {
		return nil, err
	}
	out := append([]string(nil), rec.InviteAllowlist...)
	sort.Strings(out)
	return out, nil
}

func validateExtension(ext string) (string, error) {
	ext = normalizeExtension(ext)
	if ext == "" {
		return "", errors.Validation("extension", "Debes especificar una extensión.")
	}
	if len(ext) > maxExtensionLength || strings.ContainsAny(ext, "./\\ ") {
		return "", errors.Validation("extension", "La extensión no es válida.")
	}
	return ext, nil
}

// BlockExtension adds a file extension to the attachment blocklist.
func (p *Policies) BlockExtension(ctx context.Context, guildID, ext string) (Outcome, error) {
	ext, err := validateExtension(ext)
	if err != nil {
		return OutcomeNoop, err
	}
	return p.update(ctx, guildID, func(rec *models.PolicyRecord) (changed bool) {
		rec.BlockedExtensions, changed = addEntry(rec.BlockedExtensions, ext)
		return changed
	})
}

// UnblockExtension removes a file extension from the attachment blocklist.
func (p *Policies) UnblockExtension(ctx context.Context, guildID, ext string) (Outcome, error) {
	ext, err := validateExtension(ext)
	if err != nil {
		return OutcomeNoop, err
	}
	return p.update(ctx, guildID, func(rec *models.PolicyRecord) (changed bool) {
		rec.BlockedExtensions, changed = removeEntry(rec.BlockedExtensions, ext)
		return changed
	})
}

// BlockedExtensions lists the blocked extensions, sorted.
func (p *Policies) BlockedExtensions(ctx context.Context, guildID string) ([]string, error) {
	rec, err := p.Record(ctx, guildID)
	if err != nil {
		return nil, err
	}
	out := append([]string(nil), rec.BlockedExtensions...)
	sort.Strings(out)
	return out, nil
}
