package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopUpKeyboard(t *testing.T) {
	kb := topUpKeyboard()
	assert.Len(t, kb.InlineKeyboard, 5)
	assert.Equal(t, "10 zł", kb.InlineKeyboard[0][0].Text)
	assert.Equal(t, "1", *kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "50 zł", kb.InlineKeyboard[4][0].Text)
	assert.Equal(t, "5", *kb.InlineKeyboard[4][0].CallbackData)
}

func TestIsTopUpOption(t *testing.T) {
	for _, valid := range []string{"1", "2", "3", "4", "5"} {
		assert.True(t, isTopUpOption(valid))
	}
	for _, invalid := range []string{"0", "6", "", "abc"} {
		assert.False(t, isTopUpOption(invalid))
	}
}
