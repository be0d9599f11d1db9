package roles

import (
	"testing"

	"github.com/PancyStudios/PancyGuard/pkg/reactionrole"
	"github.com/stretchr/testify/assert"
)

func TestEmojiDisplay(t *testing.T) {
	assert.Equal(t, "✅", emojiDisplay("✅"))
	assert.Equal(t, "<:pancy:123>", emojiDisplay("pancy:123"))
}

func TestBindingsText(t *testing.T) {
	assert.Equal(t, "No hay roles por reacción configurados.", bindingsText(nil))

	text := bindingsText([]reactionrole.Binding{{MessageID: "m1", EmojiKey: "✅", RoleID: "r1"}})
	assert.Contains(t, text, "`m1` ✅ → <@&r1>")
}
