package notify

import "sync"

// chatLimiter не даёт двум сводкам в один чат перемешаться.
type chatLimiter struct {
	mu   sync.Mutex
	byID map[int64]*sync.Mutex
}

func newChatLimiter() *chatLimiter {
	return &chatLimiter{byID: make(map[int64]*sync.Mutex)}
}

func (l *chatLimiter) lock(chatID int64) func() {
	l.mu.Lock()
	m, ok := l.byID[chatID]
	if !ok {
		m = &sync.Mutex{}
		l.byID[chatID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
