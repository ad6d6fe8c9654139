package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Spok95/practice-fund/internal/models"
)

type fakeClient struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
	fail map[int64]error
}

func (f *fakeClient) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg := c.(tgbotapi.MessageConfig)
	if err := f.fail[msg.ChatID]; err != nil {
		return tgbotapi.Message{}, err
	}
	f.sent = append(f.sent, msg)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

var roster = []models.Player{
	{ID: 1, Name: "Tina", Role: models.Treasurer, Balance: models.Units(40)},
	{ID: 2, Name: "Max", Role: models.Member, Balance: -1050},
	{ID: 3, Name: "Leo", Role: models.Leader, Balance: models.Units(30)},
}

func TestSummary(t *testing.T) {
	got := Summary("record_payment", roster)
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Balances updated: payment recorded", lines[0])
	assert.Equal(t, "Tina: 40.00", lines[2])
	assert.Equal(t, "Leo: 30.00", lines[3])
	assert.Equal(t, "Max: -10.50 ⚠️", lines[4])

	assert.Contains(t, Summary("custom", nil), "custom\nno players")
}

func TestBalancesChanged_AllChats(t *testing.T) {
	c := &fakeClient{}
	n := New(c, []int64{10, 20}, zap.NewNop())

	require.NoError(t, n.BalancesChanged(context.Background(), "recompute", roster))
	require.Len(t, c.sent, 2)
	assert.Equal(t, int64(10), c.sent[0].ChatID)
	assert.Equal(t, int64(20), c.sent[1].ChatID)
	assert.Contains(t, c.sent[0].Text, "full recompute")
}

func TestBalancesChanged_PartialFailure(t *testing.T) {
	boom := errors.New("Bad Request: chat not found")
	c := &fakeClient{fail: map[int64]error{10: boom}}
	n := New(c, []int64{10, 20}, zap.NewNop())

	err := n.BalancesChanged(context.Background(), "submit_day", roster)
	assert.ErrorIs(t, err, boom)
	require.Len(t, c.sent, 1)
	assert.Equal(t, int64(20), c.sent[0].ChatID)
}

func TestBalancesChanged_NoChats(t *testing.T) {
	c := &fakeClient{}
	assert.NoError(t, New(c, nil, zap.NewNop()).BalancesChanged(context.Background(), "recompute", roster))
	assert.Empty(t, c.sent)
}

func TestNewTelegram_EmptyToken(t *testing.T) {
	_, err := NewTelegram("", []int64{1}, zap.NewNop())
	assert.Error(t, err)
}

func TestChatLimiter_Serializes(t *testing.T) {
	l := newChatLimiter()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.lock(7)
			mu.Lock()
			inside++
			maxSeen = max(maxSeen, inside)
			mu.Unlock()
			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}
