package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresenceDefaults(t *testing.T) {
	reg := NewPresenceRegistry()
	reg.Set("demo", "c1", UserInfo{})

	entries := reg.List("demo")
	require.Len(t, entries, 1)
	assert.Equal(t, "c1", entries[0].ID)
	assert.Equal(t, "Invitado", entries[0].Name)
	assert.Equal(t, "#4f46e5", entries[0].Color)
	assert.False(t, entries[0].JoinedAt.IsZero())
}

func TestPresenceInsertionOrder(t *testing.T) {
	reg := NewPresenceRegistry()
	reg.Set("demo", "c1", UserInfo{Name: "Ana"})
	reg.Set("demo", "c2", UserInfo{Name: "Luis"})
	reg.Set("demo", "c3", UserInfo{Name: "Eva"})

	entries := reg.List("demo")
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"Ana", "Luis", "Eva"},
		[]string{entries[0].Name, entries[1].Name, entries[2].Name})
}

func TestPresenceUpsertRefreshesWithoutDuplicating(t *testing.T) {
	reg := NewPresenceRegistry()
	reg.Set("demo", "c1", UserInfo{Name: "Ana"})
	reg.Set("demo", "c1", UserInfo{Name: "Ana María", Color: "#ff0000"})

	entries := reg.List("demo")
	require.Len(t, entries, 1)
	assert.Equal(t, "Ana María", entries[0].Name)
	assert.Equal(t, "#ff0000", entries[0].Color)
}

func TestPresenceRemove(t *testing.T) {
	reg := NewPresenceRegistry()
	reg.Set("demo", "c1", UserInfo{Name: "Ana"})
	reg.Set("demo", "c2", UserInfo{Name: "Luis"})

	reg.Remove("demo", "c1")
	entries := reg.List("demo")
	require.Len(t, entries, 1)
	assert.Equal(t, "Luis", entries[0].Name)

	// removing again is a no-op
	reg.Remove("demo", "c1")
	assert.Len(t, reg.List("demo"), 1)
}

func TestPresenceWorkspacesAreIsolated(t *testing.T) {
	reg := NewPresenceRegistry()
	reg.Set("w1", "c1", UserInfo{Name: "Ana"})

	assert.Len(t, reg.List("w1"), 1)
	assert.Empty(t, reg.List("w2"))
}
