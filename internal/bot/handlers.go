package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.setConversation(chatID, &conversation{state: stateAwaitLogin})
		b.reply(chatID, "Podaj login do serwisu pralni:")
	case "cancel":
		b.setConversation(chatID, nil)
		b.reply(chatID, "Anulowano proces autentykacji.")
	case "stan":
		b.handleBalance(ctx, chatID)
	case "doladuj":
		b.handleTopUpMenu(ctx, chatID)
	default:
		b.reply(chatID, "Nieznana komenda 🤔")
	}
}

// handleConversation advances the /start login dialog: first message is
// the login, second is the password.
func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	conv := b.getConversation(chatID)
	if conv == nil {
		return
	}

	text := strings.TrimSpace(msg.Text)
	switch conv.state {
	case stateAwaitLogin:
		b.setConversation(chatID, &conversation{state: stateAwaitPassword, login: text})
		b.reply(chatID, "Podaj hasło do serwisu pralni:")
	case stateAwaitPassword:
		b.finishLogin(ctx, chatID, conv.login, text)
	}
}

func (b *Bot) finishLogin(ctx context.Context, chatID int64, login, password string) {
	if _, err := b.auth.Authenticate(ctx, login, password, chatID); err != nil {
		b.setConversation(chatID, &conversation{state: stateAwaitLogin})
		b.reply(chatID, "Niepoprawne dane. Spróbuj jeszcze raz. Podaj login:")
		return
	}
	b.setConversation(chatID, nil)
	b.syncer.Start(ctx, chatID)

	balance, err := b.balance.TransactionsSum(ctx, chatID)
	if err != nil {
		b.logger.Warn("failed to fetch balance after login", zap.Int64("chat_id", chatID), zap.Error(err))
		balance = "?"
	}
	b.reply(chatID,
		"Zalogowano w serwisie pralni!\n"+
			"Aktualny stan konta: "+balance+"\n"+
			"Możesz teraz korzystać z komend /stan oraz /doladuj.")
}

func (b *Bot) handleBalance(ctx context.Context, chatID int64) {
	if !b.isLoggedIn(chatID) {
		b.reply(chatID, "Nie jesteś zalogowany. Użyj /start aby się zalogować.")
		return
	}

	balance, err := b.balance.TransactionsSum(ctx, chatID)
	if err != nil || balance == "" {
		b.logger.Error("failed to fetch balance", zap.Int64("chat_id", chatID), zap.Error(err))
		b.reply(chatID, "Coś się zepsuło. Nie udało się pobrać stanu konta.")
		return
	}
	b.reply(chatID, "Stan Twojego konta: "+balance)
}

func (b *Bot) handleTopUpMenu(_ context.Context, chatID int64) {
	if !b.isLoggedIn(chatID) {
		b.reply(chatID, "Nie jesteś zalogowany. Użyj /start aby się zalogować.")
		return
	}

	msg := tgbotapi.NewMessage(chatID, "Wybierz kwotę doładowania:")
	msg.ReplyMarkup = topUpKeyboard()
	if _, err := b.Api.Send(msg); err != nil {
		b.logger.Error("failed to send top-up menu", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// handleCallback resolves a top-up amount choice into a payment link.
func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if _, err := b.Api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.logger.Error("failed to answer callback", zap.Error(err))
	}

	// Telegram drops Message from queries on messages older than 48h;
	// there is nothing left to edit then.
	if query.Message == nil {
		return
	}

	chatID := query.Message.Chat.ID
	selected := query.Data

	if !isTopUpOption(selected) {
		b.editMessage(chatID, query.Message.MessageID, "Wybrano niepoprawną opcję.")
		return
	}

	link, err := b.topUp.CreateRequest(ctx, chatID, selected)
	if err != nil || link == "" {
		b.editMessage(chatID, query.Message.MessageID, "Nie udało się pobrać linka do doładowania.")
		return
	}
	b.editMessage(chatID, query.Message.MessageID, "Link do doładowania: "+link)
}

func (b *Bot) editMessage(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if _, err := b.Api.Send(edit); err != nil {
		b.logger.Error("failed to edit message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) isLoggedIn(chatID int64) bool {
	acc, err := b.storage.GetAccount(chatID)
	if err != nil {
		b.logger.Error("failed to read account", zap.Int64("chat_id", chatID), zap.Error(err))
		return false
	}
	return acc != nil && acc.Cookies != ""
}
