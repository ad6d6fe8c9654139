// Package tg — тонкая обёртка над Bot API: отправка с отчётом о системных сбоях в Sentry.
package tg

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/practice-fund/internal/observability"
)

// Client — часть *tgbotapi.BotAPI, которой пользуемся.
type Client interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// IsSystemErr: 5xx, 429 и таймауты. Ошибки запроса (400, чат не найден) в Sentry не шлём.
func IsSystemErr(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	for _, marker := range []string{"429", "500", "502", "503", "504", "timeout", "connection reset"} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

func Send(c Client, msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	m, err := c.Send(msg)
	if IsSystemErr(err) {
		observability.CaptureErr(err)
	}
	return m, err
}
