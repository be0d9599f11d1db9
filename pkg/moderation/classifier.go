package moderation

import (
	"path"
	"regexp"
	"strings"

	"github.com/PancyStudios/PancyGuard/pkg/models"
)

var (
	invitePattern     = regexp.MustCompile(`(?i)(?:discord\.gg|discord(?:app)?\.com/invite)/([a-z0-9-]+)`)
	inviteCodePattern = regexp.MustCompile(`^[a-z0-9-]+$`)
	urlPattern        = regexp.MustCompile(`(?i)https?://\S+`)
)

// Message is what the classifier looks at.
type Message struct {
	AuthorID    string
	ChannelID   string
	Content     string
	Attachments []string // file names
}

// Classification is the classifier's result. Verdict is nil when no rule
// that penalises the author matched. BlockedAttachments lists every
// attachment on the blocklist whether or not it produced the Verdict; a
// non-empty list always means the message has to go.
type Classification struct {
	Verdict            *Verdict
	BlockedAttachments []string
}

// MustDelete reports whether the message has to be removed.
func (c Classification) MustDelete() bool {
	if len(c.BlockedAttachments) > 0 {
		return true
	}
	return c.Verdict != nil && c.Verdict.Severity.Has(SeverityDelete)
}

// Empty reports whether nothing matched at all.
func (c Classification) Empty() bool {
	return c.Verdict == nil && len(c.BlockedAttachments) == 0
}

// Classify runs the rules in order (invites, banned words, channel policy,
// attachments) and keeps the first match as the Verdict. It has no side
// effects and is safe for concurrent use.
func Classify(msg Message, p *Policy) Classification {
	var out Classification
	out.BlockedAttachments = blockedAttachments(msg.Attachments, p)

	if v := checkInvites(msg.Content, p); v != nil {
		out.Verdict = v
		return out
	}
	if v := checkBannedWords(msg.Content, p); v != nil {
		out.Verdict = v
		return out
	}
	if v := checkChannelPolicy(msg, p); v != nil {
		out.Verdict = v
		return out
	}
	if len(out.BlockedAttachments) > 0 {
		out.Verdict = &Verdict{
			Rule:     RuleDangerousAttachment,
			Match:    out.BlockedAttachments[0],
			Reason:   "Archivo adjunto no permitido: " + out.BlockedAttachments[0],
			Severity: SeverityDelete | SeverityNotice | SeverityEscalate,
		}
	}
	return out
}

// InviteCodes extracts every invite code in content, lower-cased.
func InviteCodes(content string) []string {
	matches := invitePattern.FindAllStringSubmatch(content, -1)
	codes := make([]string, 0, len(matches))
	for _, m := range matches {
		codes = append(codes, strings.ToLower(m[1]))
	}
	return codes
}

func checkInvites(content string, p *Policy) *Verdict {
	for _, code := range InviteCodes(content) {
		if _, allowed := p.InviteAllowlist[code]; allowed {
			continue
		}
		return &Verdict{
			Rule:     RuleInviteLink,
			Match:    code,
			Reason:   "No se permiten invitaciones a otros servidores.",
			Severity: SeverityDelete | SeverityNotice | SeverityEscalate,
		}
	}
	return nil
}

func checkBannedWords(content string, p *Policy) *Verdict {
	if len(p.BannedWords) == 0 || content == "" {
		return nil
	}
	folded := fold(content)
	for _, word := range p.BannedWords {
		if strings.Contains(folded, word) {
			return &Verdict{
				Rule:     RuleBannedWord,
				Match:    word,
				Reason:   "Uso de una palabra prohibida.",
				Severity: SeverityDelete | SeverityEscalate,
			}
		}
	}
	return nil
}

func checkChannelPolicy(msg Message, p *Policy) *Verdict {
	switch p.Channels[msg.ChannelID] {
	case models.ChannelPolicyLinkBan:
		if link := urlPattern.FindString(msg.Content); link != "" {
			return &Verdict{
				Rule:     RuleChannelPolicy,
				Match:    string(models.ChannelPolicyLinkBan),
				Reason:   "No se permiten enlaces en este canal.",
				Severity: SeverityDelete | SeverityNotice,
			}
		}
	case models.ChannelPolicyImageOnly:
		if len(msg.Attachments) == 0 {
			return &Verdict{
				Rule:     RuleChannelPolicy,
				Match:    string(models.ChannelPolicyImageOnly),
				Reason:   "Este canal es solo para imágenes.",
				Severity: SeverityDelete | SeverityNotice,
			}
		}
	}
	return nil
}

// AttachmentExtension returns the lower-cased extension without the dot.
func AttachmentExtension(filename string) string {
	return normalizeExtension(path.Ext(filename))
}

func blockedAttachments(names []string, p *Policy) []string {
	if len(p.BlockedExtensions) == 0 {
		return nil
	}
	var blocked []string
	for _, name := range names {
		ext := AttachmentExtension(name)
		if ext == "" {
			continue
		}
		if _, bad := p.BlockedExtensions[ext]; bad {
			blocked = append(blocked, name)
		}
	}
	return blocked
}
