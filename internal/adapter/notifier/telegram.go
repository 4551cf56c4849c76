package notifier

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/semmidev/ckptsync/internal/config"
	"github.com/semmidev/ckptsync/internal/domain"
)

type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	source string
}

var _ domain.Notifier = (*Telegram)(nil)

func NewTelegram(cfg *config.TelegramConfig, source string) (*Telegram, error) {
	return newTelegram(cfg, source, tgbotapi.APIEndpoint, http.DefaultClient)
}

func newTelegram(cfg *config.TelegramConfig, source, endpoint string, client tgbotapi.HTTPClient) (*Telegram, error) {
	chatID, err := strconv.ParseInt(cfg.ChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chat_id %q: %w", cfg.ChatID, err)
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &Telegram{bot: bot, chatID: chatID, source: source}, nil
}

func (t *Telegram) Notify(ctx context.Context, result *domain.CycleResult, cycleErr error) error {
	msg := tgbotapi.NewMessage(t.chatID, FormatSummary(t.source, result, cycleErr))
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram notification: %w", err)
	}
	return nil
}

// FormatSummary renders a cycle outcome as a short plain-text message.
func FormatSummary(source string, result *domain.CycleResult, cycleErr error) string {
	var b strings.Builder

	if cycleErr != nil {
		b.WriteString("❌ Checkpoint sync failed\n\n")
	} else {
		b.WriteString("✅ Checkpoint synced\n\n")
	}
	fmt.Fprintf(&b, "📁 Target: %s\n", source)

	if result != nil {
		if result.Checkpoint != "" {
			fmt.Fprintf(&b, "🔖 Checkpoint: %s\n", result.Checkpoint)
		}
		fmt.Fprintf(&b, "🗑 Deleted: %d\n", result.Deleted)
		fmt.Fprintf(&b, "📦 Uploaded: %d/%d\n", result.Uploaded, len(result.Files))
		for _, file := range result.Failed {
			fmt.Fprintf(&b, "⚠️ Failed: %s\n", filepath.Base(file))
		}
		fmt.Fprintf(&b, "🕐 Time: %s (%s)\n",
			result.StartedAt.Format("2006-01-02 15:04:05"), result.Duration.Round(time.Millisecond))
	}

	if cycleErr != nil {
		fmt.Fprintf(&b, "\n%v", cycleErr)
	}

	return b.String()
}
