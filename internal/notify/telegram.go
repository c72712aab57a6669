package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/wager"
)

// Min interval between any two Telegram messages to the same chat to
// avoid 429 Too Many Requests (~30/min limit).
const telegramSendInterval = 2 * time.Second

// Config holds the notifier settings.
type Config struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
	ChatID  int64  `yaml:"chat_id"`
}

// TelegramNotifier pushes wager results and session auth alerts to an
// operator chat. Sends are queued and throttled so the orchestrator
// never blocks on Telegram.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64

	queue  chan string
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewTelegramNotifier creates the notifier and starts its sender
// goroutine. Returns nil (and logs) when the bot cannot be created;
// callers treat a nil notifier as disabled.
func NewTelegramNotifier(cfg *Config) *TelegramNotifier {
	if !cfg.Enabled || cfg.Token == "" {
		return nil
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		slog.Error("Failed to create telegram bot", "error", err)
		return nil
	}
	bot.Debug = false

	ctx, cancel := context.WithCancel(context.Background())
	n := &TelegramNotifier{
		bot:    bot,
		chatID: cfg.ChatID,
		queue:  make(chan string, 128),
		cancel: cancel,
	}
	n.wg.Add(1)
	go n.sender(ctx)
	return n
}

// WagerResult queues an aggregate result alert.
func (n *TelegramNotifier) WagerResult(intent wager.Intent, res wager.AggregateResult) {
	if n == nil {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Wager %s @ %+d x%d: %s\n", intent.SelectionID, intent.Price, intent.StakeMinor, res.Status)
	for _, r := range res.Results {
		fmt.Fprintf(&b, "  %s: %s", r.Session, r.Outcome.Code)
		if r.Outcome.Detail != "" {
			fmt.Fprintf(&b, " (%s)", r.Outcome.Detail)
		}
		b.WriteByte('\n')
	}
	n.enqueue(b.String())
}

// SessionNeedsAuth queues a re-auth alert for a session.
func (n *TelegramNotifier) SessionNeedsAuth(sessionName string) {
	if n == nil {
		return
	}
	n.enqueue(fmt.Sprintf("Session %s needs credential refresh", sessionName))
}

func (n *TelegramNotifier) enqueue(text string) {
	select {
	case n.queue <- text:
	default:
		slog.Warn("Telegram queue full, alert dropped")
	}
}

func (n *TelegramNotifier) sender(ctx context.Context) {
	defer n.wg.Done()
	var lastSend time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case text := <-n.queue:
			if wait := telegramSendInterval - time.Since(lastSend); wait > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(wait):
				}
			}
			msg := tgbotapi.NewMessage(n.chatID, text)
			if _, err := n.bot.Send(msg); err != nil {
				slog.Warn("Failed to send telegram alert", "error", err)
			}
			lastSend = time.Now()
		}
	}
}

// Close stops the sender goroutine.
func (n *TelegramNotifier) Close() {
	if n == nil {
		return
	}
	n.cancel()
	n.wg.Wait()
}
