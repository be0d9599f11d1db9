package moderation

import (
	"testing"

	"github.com/PancyStudios/PancyGuard/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPolicy() *Policy {
	return compilePolicy(&models.PolicyRecord{
		BannedWords:     []string{"abc", "spam"},
		InviteAllowlist: []string{"allowedcode"},
		ChannelPolicies: map[string]models.ChannelPolicy{
			"links":  models.ChannelPolicyLinkBan,
			"images": models.ChannelPolicyImageOnly,
		},
		BlockedExtensions: []string{"exe", "zip"},
	})
}

func TestClassifyInvites(t *testing.T) {
	p := testPolicy()

	tests := []struct {
		name    string
		content string
		want    Rule
	}{
		{"allow-listed code", "join us: discord.gg/allowedcode", ""},
		{"allow-listed code different case", "join us: discord.gg/ALLOWEDCODE", ""},
		{"unknown code", "join us: discord.gg/other", RuleInviteLink},
		{"long form", "https://discord.com/invite/other", RuleInviteLink},
		{"legacy domain", "https://discordapp.com/invite/other", RuleInviteLink},
		{"upper-case domain", "DISCORD.GG/other", RuleInviteLink},
		{"one of two not allowed", "discord.gg/allowedcode y discord.gg/other", RuleInviteLink},
		{"no invite", "hola a todos", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(Message{ChannelID: "general", Content: tt.content}, p)
			if tt.want == "" {
				assert.Nil(t, got.Verdict)
				return
			}
			require.NotNil(t, got.Verdict)
			assert.Equal(t, tt.want, got.Verdict.Rule)
			assert.True(t, got.Verdict.Severity.Has(SeverityDelete|SeverityNotice|SeverityEscalate))
		})
	}
}

func TestClassifyBannedWords(t *testing.T) {
	p := testPolicy()

	got := Classify(Message{ChannelID: "general", Content: "XYZabcXYZ"}, p)
	require.NotNil(t, got.Verdict)
	assert.Equal(t, "banned-word:abc", got.Verdict.RuleMatched())
	assert.True(t, got.Verdict.Severity.Has(SeverityEscalate))

	got = Classify(Message{ChannelID: "general", Content: "xyzABCxyz"}, p)
	require.NotNil(t, got.Verdict)
	assert.Equal(t, "abc", got.Verdict.Match)

	got = Classify(Message{ChannelID: "general", Content: "todo SPAM y abc"}, p)
	require.NotNil(t, got.Verdict)
	assert.Equal(t, "abc", got.Verdict.Match, "first word in list order wins")
}

func TestClassifyInviteBeforeBannedWord(t *testing.T) {
	got := Classify(Message{ChannelID: "general", Content: "abc discord.gg/other"}, testPolicy())
	require.NotNil(t, got.Verdict)
	assert.Equal(t, RuleInviteLink, got.Verdict.Rule)
}

func TestClassifyChannelPolicy(t *testing.T) {
	p := testPolicy()

	got := Classify(Message{ChannelID: "links", Content: "mira https://example.com"}, p)
	require.NotNil(t, got.Verdict)
	assert.Equal(t, RuleChannelPolicy, got.Verdict.Rule)
	assert.False(t, got.Verdict.Severity.Has(SeverityEscalate))

	got = Classify(Message{ChannelID: "links", Content: "sin enlaces"}, p)
	assert.Nil(t, got.Verdict)

	got = Classify(Message{ChannelID: "images", Content: "solo texto"}, p)
	require.NotNil(t, got.Verdict)
	assert.Equal(t, RuleChannelPolicy, got.Verdict.Rule)

	got = Classify(Message{ChannelID: "images", Attachments: []string{"foto.png"}}, p)
	assert.Nil(t, got.Verdict)

	got = Classify(Message{ChannelID: "general", Content: "https://example.com"}, p)
	assert.Nil(t, got.Verdict)
}

func TestClassifyAttachments(t *testing.T) {
	p := testPolicy()

	t.Run("alone is a dangerous-attachment verdict", func(t *testing.T) {
		got := Classify(Message{ChannelID: "general", Attachments: []string{"foto.png", "setup.EXE"}}, p)
		require.NotNil(t, got.Verdict)
		assert.Equal(t, RuleDangerousAttachment, got.Verdict.Rule)
		assert.True(t, got.Verdict.Severity.Has(SeverityEscalate))
		assert.Equal(t, []string{"setup.EXE"}, got.BlockedAttachments)
		assert.True(t, got.MustDelete())
	})

	t.Run("earlier rule keeps the verdict, deletion still required", func(t *testing.T) {
		got := Classify(Message{ChannelID: "links", Content: "https://example.com", Attachments: []string{"tool.zip"}}, p)
		require.NotNil(t, got.Verdict)
		assert.Equal(t, RuleChannelPolicy, got.Verdict.Rule)
		assert.Equal(t, []string{"tool.zip"}, got.BlockedAttachments)
		assert.True(t, got.MustDelete())
	})

	t.Run("allowed attachment in image channel", func(t *testing.T) {
		got := Classify(Message{ChannelID: "images", Attachments: []string{"gato.jpg"}}, p)
		assert.True(t, got.Empty())
		assert.False(t, got.MustDelete())
	})

	t.Run("no extension", func(t *testing.T) {
		got := Classify(Message{ChannelID: "general", Attachments: []string{"README"}}, p)
		assert.True(t, got.Empty())
	})
}

func TestInviteCodes(t *testing.T) {
	codes := InviteCodes("discord.gg/ABC y https://discord.com/invite/x-y-z")
	assert.Equal(t, []string{"abc", "x-y-z"}, codes)
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "delete+notice+escalate", (SeverityDelete | SeverityNotice | SeverityEscalate).String())
	assert.Equal(t, "none", Severity(0).String())
}
