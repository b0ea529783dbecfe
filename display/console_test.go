package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, s *ConsoleSurface) []string {
	t.Helper()

	var tokens []string
	for interaction := range s.Interactions() {
		tokens = append(tokens, interaction.Token)
	}

	return tokens
}

func TestConsoleSurface_ReadsTokensUntilEOF(t *testing.T) {
	s := NewConsoleSurface(&ConsoleConfig{
		In:  strings.NewReader("25\n\n  pop \nReturn\n"),
		Out: &bytes.Buffer{},
	})

	assert.Equal(t, []string{"25", "pop", "Return", CloseToken}, collect(t, s))
}

func TestConsoleSurface_QuitCloses(t *testing.T) {
	s := NewConsoleSurface(&ConsoleConfig{
		In:  strings.NewReader("10\nquit\n200\n"),
		Out: &bytes.Buffer{},
	})

	assert.Equal(t, []string{"10", CloseToken}, collect(t, s))
}

func TestConsoleSurface_Output(t *testing.T) {
	out := &bytes.Buffer{}
	s := NewConsoleSurface(&ConsoleConfig{
		In:  strings.NewReader(""),
		Out: out,
	})
	defer s.Close()

	require.NoError(t, s.Update(RegionTotal, "Total Amount: 50"))
	require.NoError(t, s.Append(RegionConsole, "Bought pop. Your change is: 0"))

	assert.Equal(t, "[total] Total Amount: 50\n> Bought pop. Your change is: 0\n", out.String())
}

func TestConsoleSurface_CloseStopsDelivery(t *testing.T) {
	s := NewConsoleSurface(&ConsoleConfig{
		In:  strings.NewReader("5\n10\n"),
		Out: &bytes.Buffer{},
	})

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	// whatever was already in flight, the channel ends
	for range s.Interactions() {
	}
}
