package bot

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// topUpOptions maps the service's top_up_id values to display labels.
var topUpOptions = []struct {
	id    string
	label string
}{
	{"1", "10 zł"},
	{"2", "15 zł"},
	{"3", "20 zł"},
	{"4", "30 zł"},
	{"5", "50 zł"},
}

func topUpKeyboard() tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(topUpOptions))
	for _, opt := range topUpOptions {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(opt.label, opt.id),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func isTopUpOption(data string) bool {
	for _, opt := range topUpOptions {
		if opt.id == data {
			return true
		}
	}
	return false
}
