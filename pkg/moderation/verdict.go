package moderation

import "strings"

// Severity is the set of consequences a verdict calls for.
type Severity uint8

const (
	// SeverityDelete removes the offending message.
	SeverityDelete Severity = 1 << iota
	// SeverityNotice posts a short-lived notice in the channel.
	SeverityNotice
	// SeverityEscalate adds one warning to the author's ledger entry.
	SeverityEscalate
)

// Has reports whether every bit of flag is set.
func (s Severity) Has(flag Severity) bool {
	return s&flag == flag
}

func (s Severity) String() string {
	var parts []string
	if s.Has(SeverityDelete) {
		parts = append(parts, "delete")
	}
	if s.Has(SeverityNotice) {
		parts = append(parts, "notice")
	}
	if s.Has(SeverityEscalate) {
		parts = append(parts, "escalate")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}

// Rule identifies which classifier rule matched.
type Rule string

const (
	RuleInviteLink          Rule = "invite-link"
	RuleBannedWord          Rule = "banned-word"
	RuleChannelPolicy       Rule = "channel-policy-violation"
	RuleDangerousAttachment Rule = "dangerous-attachment"
)

// Verdict is the classifier's finding for one message. Never persisted.
type Verdict struct {
	Rule     Rule
	Match    string // word, invite code or filename that triggered the rule
	Reason   string // user-facing explanation
	Severity Severity
}

// RuleMatched is the rule identifier including the matched word for banned words.
func (v *Verdict) RuleMatched() string {
	if v.Rule == RuleBannedWord {
		return string(v.Rule) + ":" + v.Match
	}
	return string(v.Rule)
}

// Outcome tells a successful change apart from a lookup miss.
type Outcome int

const (
	OutcomeApplied Outcome = iota
	OutcomeNoop
)

func (o Outcome) String() string {
	if o == OutcomeNoop {
		return "noop"
	}
	return "applied"
}
