// Package notify рассылает сводку балансов в командный чат после каждого пересчёта.
package notify

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/practice-fund/internal/metrics"
	"github.com/Spok95/practice-fund/internal/models"
	"github.com/Spok95/practice-fund/internal/tg"
)

// SendTimeout ограничивает каждый запрос к Bot API: зависший Telegram не держит рассылку.
const SendTimeout = 10 * time.Second

type Telegram struct {
	client tg.Client
	chats  []int64
	log    *zap.Logger
	limit  *chatLimiter
}

// NewTelegram подключается к Bot API. Пустой токен — ошибка, вызывающий решает, выключать ли уведомления.
func NewTelegram(token string, chats []int64, log *zap.Logger) (*Telegram, error) {
	if token == "" {
		return nil, errors.New("notify: empty bot token")
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, &http.Client{Timeout: SendTimeout})
	if err != nil {
		return nil, fmt.Errorf("notify: bot api: %w", err)
	}
	log.Info("telegram notifier ready", zap.String("bot", bot.Self.UserName), zap.Int("chats", len(chats)))
	return New(bot, chats, log), nil
}

func New(client tg.Client, chats []int64, log *zap.Logger) *Telegram {
	return &Telegram{client: client, chats: chats, log: log, limit: newChatLimiter()}
}

// BalancesChanged шлёт сводку во все чаты; ошибки по чатам собираются, рассылка не прерывается.
func (t *Telegram) BalancesChanged(ctx context.Context, op string, players []models.Player) error {
	if len(t.chats) == 0 {
		return nil
	}
	text := Summary(op, players)
	var errs []error
	for _, chatID := range t.chats {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		unlock := t.limit.lock(chatID)
		_, err := tg.Send(t.client, tgbotapi.NewMessage(chatID, text))
		unlock()
		if err != nil {
			metrics.NotifyErrors.Inc()
			t.log.Warn("send balances", zap.Int64("chat_id", chatID), zap.Error(err))
			errs = append(errs, fmt.Errorf("chat %d: %w", chatID, err))
		}
	}
	return errors.Join(errs...)
}

var opTitles = map[string]string{
	"submit_day":     "attendance submitted",
	"update_session": "session edited",
	"delete_session": "session deleted",
	"edit_record":    "attendance edited",
	"delete_record":  "attendance removed",
	"record_payment": "payment recorded",
	"edit_payment":   "payment edited",
	"delete_payment": "payment deleted",
	"create_player":  "player added",
	"update_player":  "player updated",
	"delete_player":  "player removed",
	"recompute":      "full recompute",
}

// Summary — текст сводки: балансы от большего к меньшему, должники помечены.
func Summary(op string, players []models.Player) string {
	title, ok := opTitles[op]
	if !ok {
		title = op
	}
	sorted := slices.Clone(players)
	slices.SortStableFunc(sorted, func(a, b models.Player) int {
		if c := cmp.Compare(b.Balance, a.Balance); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "Balances updated: %s\n", title)
	if len(sorted) == 0 {
		sb.WriteString("no players")
		return sb.String()
	}
	for _, p := range sorted {
		mark := ""
		if p.Balance < 0 {
			mark = " ⚠️"
		}
		fmt.Fprintf(&sb, "\n%s: %s%s", p.Name, p.Balance, mark)
	}
	return sb.String()
}
