// Package telegram handles the integration with the Telegram Bot API.
// The reaper runs unattended, so its run summaries are pushed to an
// operator chat instead of surfacing anywhere in the UI.
package telegram

import (
	"campusdesk/backend/internal/reaper"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier sends operator-facing messages to a fixed Telegram chat.
type Notifier struct {
	BotAPI *tgbotapi.BotAPI
	ChatID int64
}

// NewNotifierFromEnv builds a Notifier from TELEGRAM_BOT_TOKEN and
// TELEGRAM_OPERATOR_CHAT_ID. Returns (nil, nil) when the token is not
// configured, so callers can treat notifications as optional.
func NewNotifierFromEnv() (*Notifier, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, nil
	}

	chatID, err := strconv.ParseInt(os.Getenv("TELEGRAM_OPERATOR_CHAT_ID"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_OPERATOR_CHAT_ID: %w", err)
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	bot.Debug = false
	log.Printf("INFO: Operator notifications authorized on account %s", bot.Self.UserName)

	return &Notifier{BotAPI: bot, ChatID: chatID}, nil
}

// NotifyReaperReport posts a run summary to the operator chat.
// Failures are logged and swallowed; notifications are best-effort.
func (n *Notifier) NotifyReaperReport(report *reaper.Report) {
	var b strings.Builder
	fmt.Fprintf(&b, "Reaper run finished (window: %d days)\n", report.StaleDays)
	fmt.Fprintf(&b, "Closed %d of %d stale complaints\n", report.ClosedCount, report.Attempted)
	if len(report.FailedIDs) > 0 {
		fmt.Fprintf(&b, "Failed: %s", strings.Join(report.FailedIDs, ", "))
	}

	msg := tgbotapi.NewMessage(n.ChatID, b.String())
	if _, err := n.BotAPI.Send(msg); err != nil {
		log.Printf("ERROR: Failed to send reaper summary to operator chat: %v", err)
	}
}
