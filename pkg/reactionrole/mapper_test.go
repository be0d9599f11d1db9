package reactionrole

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/PancyStudios/PancyGuard/pkg/errors"
	"github.com/PancyStudios/PancyGuard/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRoles models a member's role set; grant/revoke are idempotent like the platform.
type fakeRoles struct {
	mu     sync.Mutex
	roles  map[string]map[string]bool
	calls  int
	broken bool
}

func newFakeRoles() *fakeRoles {
	return &fakeRoles{roles: make(map[string]map[string]bool)}
}

func (f *fakeRoles) GrantRole(_ context.Context, guildID, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.broken {
		return stderrors.New("missing access")
	}
	key := guildID + "/" + userID
	if f.roles[key] == nil {
		f.roles[key] = make(map[string]bool)
	}
	f.roles[key][roleID] = true
	return nil
}

func (f *fakeRoles) RevokeRole(_ context.Context, guildID, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.broken {
		return stderrors.New("missing access")
	}
	delete(f.roles[guildID+"/"+userID], roleID)
	return nil
}

func (f *fakeRoles) held(guildID, userID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for role := range f.roles[guildID+"/"+userID] {
		out = append(out, role)
	}
	return out
}

func TestGrantIsIdempotent(t *testing.T) {
	roles := newFakeRoles()
	m := NewMapper(store.NewMemory(), roles)
	ctx := context.Background()

	_, err := m.Bind(ctx, "g1", "m1", "👍", "r1")
	require.NoError(t, err)

	add := Reaction{Kind: Added, GuildID: "g1", MessageID: "m1", EmojiKey: "👍", UserID: "u1"}
	for i := 0; i < 2; i++ {
		res, err := m.Handle(ctx, add)
		require.NoError(t, err)
		assert.Equal(t, ResultGranted, res)
	}
	assert.Equal(t, []string{"r1"}, roles.held("g1", "u1"))

	remove := add
	remove.Kind = Removed
	for i := 0; i < 2; i++ {
		res, err := m.Handle(ctx, remove)
		require.NoError(t, err)
		assert.Equal(t, ResultRevoked, res)
	}
	assert.Empty(t, roles.held("g1", "u1"))
}

func TestUnboundAndBotReactions(t *testing.T) {
	roles := newFakeRoles()
	m := NewMapper(store.NewMemory(), roles)
	ctx := context.Background()

	_, err := m.Bind(ctx, "g1", "m1", "👍", "r1")
	require.NoError(t, err)

	res, err := m.Handle(ctx, Reaction{Kind: Added, GuildID: "g1", MessageID: "m1", EmojiKey: "👎", UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, ResultNoBinding, res)

	res, err = m.Handle(ctx, Reaction{Kind: Added, GuildID: "g1", MessageID: "m1", EmojiKey: "👍", UserID: "bot", IsBot: true})
	require.NoError(t, err)
	assert.Equal(t, ResultIgnored, res)

	assert.Equal(t, 0, roles.calls)
}

func TestBindOverwritesOnlyThatPair(t *testing.T) {
	m := NewMapper(store.NewMemory(), newFakeRoles())
	ctx := context.Background()

	_, err := m.Bind(ctx, "g1", "m1", "👍", "r1")
	require.NoError(t, err)
	_, err = m.Bind(ctx, "g1", "m1", "🎮", "r2")
	require.NoError(t, err)

	prev, err := m.Bind(ctx, "g1", "m1", "👍", "r3")
	require.NoError(t, err)
	assert.Equal(t, "r1", prev)

	bindings, err := m.List(ctx, "g1", "m1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []Binding{
		{MessageID: "m1", EmojiKey: "👍", RoleID: "r3"},
		{MessageID: "m1", EmojiKey: "🎮", RoleID: "r2"},
	}, bindings)
}

func TestUnbind(t *testing.T) {
	m := NewMapper(store.NewMemory(), newFakeRoles())
	ctx := context.Background()

	_, err := m.Bind(ctx, "g1", "m1", "<:pancy:123>", "r1")
	require.NoError(t, err)

	role, ok, err := m.Lookup(ctx, "g1", "m1", "pancy:123")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "r1", role)

	removed, err := m.Unbind(ctx, "g1", "m1", "pancy:123")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = m.Unbind(ctx, "g1", "m1", "pancy:123")
	require.NoError(t, err)
	assert.False(t, removed)

	bindings, err := m.List(ctx, "g1", "")
	require.NoError(t, err)
	assert.Empty(t, bindings)
}

func TestBindingsPersist(t *testing.T) {
	s := store.NewMemory()
	ctx := context.Background()

	_, err := NewMapper(s, newFakeRoles()).Bind(ctx, "g1", "m1", "👍", "r1")
	require.NoError(t, err)

	role, ok, err := NewMapper(s, newFakeRoles()).Lookup(ctx, "g1", "m1", "👍")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "r1", role)
}

func TestBindValidation(t *testing.T) {
	m := NewMapper(store.NewMemory(), newFakeRoles())
	ctx := context.Background()

	_, err := m.Bind(ctx, "g1", "", "👍", "r1")
	assert.True(t, errors.IsValidation(err))

	_, err = m.Bind(ctx, "g1", "m1", " ", "r1")
	assert.True(t, errors.IsValidation(err))

	_, err = m.Bind(ctx, "g1", "m1", "👍", "")
	assert.True(t, errors.IsValidation(err))
}

func TestGatewayFailureIsTransient(t *testing.T) {
	roles := newFakeRoles()
	m := NewMapper(store.NewMemory(), roles)
	ctx := context.Background()

	_, err := m.Bind(ctx, "g1", "m1", "👍", "r1")
	require.NoError(t, err)

	roles.broken = true
	_, err = m.Handle(ctx, Reaction{Kind: Added, GuildID: "g1", MessageID: "m1", EmojiKey: "👍", UserID: "u1"})
	assert.True(t, errors.IsTransient(err))
}

func TestEmojiKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"👍", "👍"},
		{" 👍 ", "👍"},
		{"<:pancy:123>", "pancy:123"},
		{"<a:dance:456>", "dance:456"},
		{"pancy:123", "pancy:123"},
		{"a:123", "a:123"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EmojiKey(tt.in), tt.in)
	}
}
