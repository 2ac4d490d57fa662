package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	for _, bad := range []string{"0", "-1", "abc", ""} {
		_, err := parseID(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseStars(t *testing.T) {
	for want, arg := range map[int]string{0: "0", 3: "3", 5: "5"} {
		got, err := parseStars(arg)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	for _, bad := range []string{"-1", "6", "x"} {
		_, err := parseStars(bad)
		assert.Error(t, err, bad)
	}
}

func TestRootCommandWiring(t *testing.T) {
	root := NewRootCommand()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"login", "register", "logout", "refresh", "whoami", "photographers", "clients", "albums", "photos", "comments", "search", "settings", "theme", "version"} {
		assert.True(t, names[want], want)
	}
}
