package bot

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pralnie_bot/internal/pkg/account"
	"pralnie_bot/internal/pkg/laundry"
	"pralnie_bot/internal/pkg/syncer"
)

type telegramCall struct {
	method string
	chatID string
	text   string
}

// telegramStub stands in for the Bot API so handlers can run end to end
// without the network.
type telegramStub struct {
	srv *httptest.Server

	mu    sync.Mutex
	calls []telegramCall
}

func newTelegramStub(t *testing.T) (*telegramStub, *tgbotapi.BotAPI) {
	t.Helper()
	stub := &telegramStub{}
	stub.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		method := path.Base(r.URL.Path)

		stub.mu.Lock()
		stub.calls = append(stub.calls, telegramCall{
			method: method,
			chatID: r.PostFormValue("chat_id"),
			text:   r.PostFormValue("text"),
		})
		stub.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch method {
		case "getMe":
			io.WriteString(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"pralnie","username":"pralnie_test_bot"}}`)
		case "answerCallbackQuery":
			io.WriteString(w, `{"ok":true,"result":true}`)
		default:
			io.WriteString(w, `{"ok":true,"result":{"message_id":1,"date":1,"chat":{"id":1,"type":"private"}}}`)
		}
	}))
	t.Cleanup(stub.srv.Close)

	api, err := tgbotapi.NewBotAPIWithClient("test-token", stub.srv.URL+"/bot%s/%s", stub.srv.Client())
	require.NoError(t, err)
	return stub, api
}

func (s *telegramStub) saw(method, chatID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.calls {
		if c.method == method && (chatID == "" || c.chatID == chatID) {
			return true
		}
	}
	return false
}

func newTestBot(t *testing.T, laundryHandler http.HandlerFunc) (*Bot, *telegramStub, *account.MemoryStorage) {
	t.Helper()
	srv := httptest.NewServer(laundryHandler)
	t.Cleanup(srv.Close)

	stub, api := newTelegramStub(t)

	client := laundry.NewClient(srv.URL)
	storage := account.NewMemoryStorage()
	logger := zap.NewNop()
	balance := laundry.NewBalanceService(client, storage, logger)

	b := &Bot{
		Api:           api,
		storage:       storage,
		auth:          laundry.NewAuthenticator(client, storage, logger),
		balance:       balance,
		topUp:         laundry.NewTopUpService(client, storage, logger),
		syncer:        syncer.NewBalanceSyncer(storage, balance, logger),
		logger:        logger,
		conversations: make(map[int64]*conversation),
	}
	return b, stub, storage
}

func commandUpdate(chatID int64, command string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      command,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command)}},
	}}
}

func textUpdate(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 1,
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
	}}
}

func TestDispatch_SlowLoginDoesNotBlockOtherChats(t *testing.T) {
	gate := make(chan struct{})
	b, stub, _ := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		<-gate
		// Re-rendered login page, i.e. rejected credentials.
		w.WriteHeader(http.StatusOK)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan tgbotapi.Update, 4)
	go b.dispatch(ctx, updates)

	// Chat 1 submits a password and its login call hangs on the service.
	b.setConversation(1, &conversation{state: stateAwaitPassword, login: "alice"})
	updates <- textUpdate(1, "pw1")

	// Chat 2 must still get an answer while chat 1 is stuck.
	updates <- commandUpdate(2, "/cancel")
	assert.Eventually(t, func() bool { return stub.saw("sendMessage", "2") },
		2*time.Second, 10*time.Millisecond,
		"chat 2 never got a reply while chat 1's login was in flight")
	assert.False(t, stub.saw("sendMessage", "1"))

	// Let chat 1 finish so no handler outlives the test.
	close(gate)
	assert.Eventually(t, func() bool { return stub.saw("sendMessage", "1") },
		2*time.Second, 10*time.Millisecond)
}

func TestHandleCallback_WithoutMessage(t *testing.T) {
	b, stub, _ := newTestBot(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Telegram omits Message from callback queries on messages older
	// than 48h; such a query must still be answered without panicking.
	b.handleCallback(context.Background(), &tgbotapi.CallbackQuery{ID: "cq1", Data: "1"})

	assert.True(t, stub.saw("answerCallbackQuery", ""))
	assert.False(t, stub.saw("editMessageText", ""))
}
