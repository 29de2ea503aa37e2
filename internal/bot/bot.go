package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"pralnie_bot/internal/pkg/account"
	"pralnie_bot/internal/pkg/laundry"
	"pralnie_bot/internal/pkg/syncer"
)

// Conversation stages of the /start login dialog.
const (
	stateIdle = iota
	stateAwaitLogin
	stateAwaitPassword
)

type conversation struct {
	state int
	login string
}

// Bot wires Telegram updates to the laundry services. Each update is
// handled on its own goroutine so one user's slow remote call never
// stalls another's; the long-running work (sync loops, cookie sweep)
// lives in the syncer package.
type Bot struct {
	Api     *tgbotapi.BotAPI
	storage account.Storage
	auth    *laundry.Authenticator
	balance *laundry.BalanceService
	topUp   *laundry.TopUpService
	syncer  *syncer.BalanceSyncer
	logger  *zap.Logger

	mu            sync.Mutex
	conversations map[int64]*conversation
}

func New(
	token string,
	storage account.Storage,
	auth *laundry.Authenticator,
	balance *laundry.BalanceService,
	topUp *laundry.TopUpService,
	balanceSyncer *syncer.BalanceSyncer,
	logger *zap.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	return &Bot{
		Api:           api,
		storage:       storage,
		auth:          auth,
		balance:       balance,
		topUp:         topUp,
		syncer:        balanceSyncer,
		logger:        logger,
		conversations: make(map[int64]*conversation),
	}, nil
}

// Start consumes updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.Api.GetUpdatesChan(u)
	b.logger.Info("authorized on account", zap.String("username", b.Api.Self.UserName))

	return b.dispatch(ctx, updates)
}

// dispatch fans each update out to its own goroutine: a login or balance
// fetch blocks on the laundry service, and one chat's slow call must not
// hold up everyone else's updates.
func (b *Bot) dispatch(ctx context.Context, updates tgbotapi.UpdatesChannel) error {
	for {
		select {
		case <-ctx.Done():
			b.Api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message == nil:
		return
	case update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	default:
		b.handleConversation(ctx, update.Message)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.Api.Send(msg); err != nil {
		b.logger.Error("failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (b *Bot) setConversation(chatID int64, c *conversation) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c == nil {
		delete(b.conversations, chatID)
		return
	}
	b.conversations[chatID] = c
}

func (b *Bot) getConversation(chatID int64) *conversation {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[chatID]
}
