package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"notesquest-be/internal/constant"
)

func TestDeriveTitleShortMessage(t *testing.T) {
	title := DeriveTitle("What is photosynthesis?")
	assert.Equal(t, "What is photosynthesis?", title)
}

func TestDeriveTitleTruncatesLongMessage(t *testing.T) {
	message := strings.Repeat("a", 80)
	title := DeriveTitle(message)

	assert.Equal(t, strings.Repeat("a", constant.ChatTitleMaxChars)+"...", title)
}

func TestDeriveTitleExactLimitNotTruncated(t *testing.T) {
	message := strings.Repeat("b", constant.ChatTitleMaxChars)
	title := DeriveTitle(message)

	assert.Equal(t, message, title)
}

func TestDeriveTitleBlankMessageFallsBack(t *testing.T) {
	assert.Equal(t, constant.DefaultChatTitle, DeriveTitle("   "))
}

func TestDeriveTitleCountsRunesNotBytes(t *testing.T) {
	message := strings.Repeat("é", constant.ChatTitleMaxChars)
	title := DeriveTitle(message)

	assert.Equal(t, message, title)
}
