package ai

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate_ShortString(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 100))
}

func TestTruncate_LongString(t *testing.T) {
	got := truncate(strings.Repeat("x", 150), 100)
	assert.Equal(t, strings.Repeat("x", 100)+"...", got)
}

func TestSafeTruncateString_MultiByte(t *testing.T) {
	// "é" is two bytes; cutting at 3 would split the second one
	s := "éé"
	got := safeTruncateString(s, 3)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "é", got)
}
