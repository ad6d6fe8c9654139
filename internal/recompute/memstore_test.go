package recompute

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/Spok95/practice-fund/internal/db"
	"github.com/Spok95/practice-fund/internal/models"
)

// memState — содержимое «базы» для тестов оркестратора.
type memState struct {
	players  map[int64]models.Player
	sessions map[int64]models.Session
	records  map[int64]models.AttendanceRecord
	payments map[int64]models.Payment
	nextID   int64
}

func (s *memState) clone() *memState {
	return &memState{
		players:  maps.Clone(s.players),
		sessions: maps.Clone(s.sessions),
		records:  maps.Clone(s.records),
		payments: maps.Clone(s.payments),
		nextID:   s.nextID,
	}
}

func (s *memState) id() int64 {
	s.nextID++
	return s.nextID
}

// memRepo повторяет ограничения схемы: уникальные имя и дата, каскадное удаление.
type memRepo struct {
	st        *memState
	failWrite error
}

func sortedValues[K cmp.Ordered, V any](m map[K]V) []V {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]V, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

func (r *memRepo) ListPlayers(context.Context) ([]models.Player, error) {
	return sortedValues(r.st.players), nil
}

func (r *memRepo) GetPlayer(_ context.Context, id int64) (models.Player, error) {
	p, ok := r.st.players[id]
	if !ok {
		return models.Player{}, fmt.Errorf("player %d: %w", id, db.ErrNotFound)
	}
	return p, nil
}

func (r *memRepo) nameTaken(name string, except int64) bool {
	for _, p := range r.st.players {
		if p.Name == name && p.ID != except {
			return true
		}
	}
	return false
}

func (r *memRepo) CreatePlayer(_ context.Context, p models.Player) (models.Player, error) {
	if r.nameTaken(p.Name, 0) {
		return models.Player{}, db.ErrDuplicate
	}
	p.ID = r.st.id()
	p.Balance = 0
	r.st.players[p.ID] = p
	return p, nil
}

func (r *memRepo) UpdatePlayer(_ context.Context, p models.Player) error {
	old, ok := r.st.players[p.ID]
	if !ok {
		return db.ErrNotFound
	}
	if r.nameTaken(p.Name, p.ID) {
		return db.ErrDuplicate
	}
	p.Balance = old.Balance
	r.st.players[p.ID] = p
	return nil
}

func (r *memRepo) DeletePlayer(_ context.Context, id int64) error {
	if _, ok := r.st.players[id]; !ok {
		return db.ErrNotFound
	}
	delete(r.st.players, id)
	maps.DeleteFunc(r.st.records, func(_ int64, a models.AttendanceRecord) bool { return a.PlayerID == id })
	maps.DeleteFunc(r.st.payments, func(_ int64, p models.Payment) bool { return p.PlayerID == id })
	return nil
}

func (r *memRepo) ListSessions(context.Context) ([]models.Session, error) {
	return sortedValues(r.st.sessions), nil
}

func (r *memRepo) GetSession(_ context.Context, id int64) (models.Session, error) {
	s, ok := r.st.sessions[id]
	if !ok {
		return models.Session{}, db.ErrNotFound
	}
	return s, nil
}

func (r *memRepo) UpsertSessionByDate(_ context.Context, date time.Time, online bool) (models.Session, error) {
	for id, s := range r.st.sessions {
		if s.Date.Equal(date) {
			s.IsOnline = online
			r.st.sessions[id] = s
			return s, nil
		}
	}
	s := models.Session{ID: r.st.id(), Date: date, IsOnline: online}
	r.st.sessions[s.ID] = s
	return s, nil
}

func (r *memRepo) UpdateSession(_ context.Context, s models.Session) error {
	if _, ok := r.st.sessions[s.ID]; !ok {
		return db.ErrNotFound
	}
	for _, other := range r.st.sessions {
		if other.ID != s.ID && other.Date.Equal(s.Date) {
			return db.ErrDuplicate
		}
	}
	r.st.sessions[s.ID] = s
	return nil
}

func (r *memRepo) DeleteSession(_ context.Context, id int64) error {
	if _, ok := r.st.sessions[id]; !ok {
		return db.ErrNotFound
	}
	delete(r.st.sessions, id)
	maps.DeleteFunc(r.st.records, func(_ int64, a models.AttendanceRecord) bool { return a.SessionID == id })
	return nil
}

func (r *memRepo) ToggleSettled(_ context.Context, id int64) (models.Session, error) {
	s, ok := r.st.sessions[id]
	if !ok {
		return models.Session{}, db.ErrNotFound
	}
	s.IsSettled = !s.IsSettled
	r.st.sessions[id] = s
	return s, nil
}

func (r *memRepo) ListAttendance(context.Context) ([]models.AttendanceRecord, error) {
	return sortedValues(r.st.records), nil
}

func (r *memRepo) GetAttendance(_ context.Context, id int64) (models.AttendanceRecord, error) {
	a, ok := r.st.records[id]
	if !ok {
		return models.AttendanceRecord{}, db.ErrNotFound
	}
	return a, nil
}

func (r *memRepo) ReplaceAttendance(_ context.Context, sessionID int64, marks []models.Mark) error {
	maps.DeleteFunc(r.st.records, func(_ int64, a models.AttendanceRecord) bool { return a.SessionID == sessionID })
	for _, m := range marks {
		if _, ok := r.st.players[m.PlayerID]; !ok {
			return db.ErrReference
		}
		a := models.AttendanceRecord{ID: r.st.id(), SessionID: sessionID, PlayerID: m.PlayerID, Status: m.Status}
		r.st.records[a.ID] = a
	}
	return nil
}

func (r *memRepo) UpdateAttendance(_ context.Context, a models.AttendanceRecord) error {
	if _, ok := r.st.records[a.ID]; !ok {
		return db.ErrNotFound
	}
	if _, ok := r.st.players[a.PlayerID]; !ok {
		return db.ErrReference
	}
	for _, other := range r.st.records {
		if other.ID != a.ID && other.SessionID == a.SessionID && other.PlayerID == a.PlayerID {
			return db.ErrDuplicate
		}
	}
	r.st.records[a.ID] = a
	return nil
}

func (r *memRepo) DeleteAttendance(_ context.Context, id int64) error {
	if _, ok := r.st.records[id]; !ok {
		return db.ErrNotFound
	}
	delete(r.st.records, id)
	return nil
}

func (r *memRepo) ListPayments(context.Context) ([]models.Payment, error) {
	return sortedValues(r.st.payments), nil
}

func (r *memRepo) GetPayment(_ context.Context, id int64) (models.Payment, error) {
	p, ok := r.st.payments[id]
	if !ok {
		return models.Payment{}, db.ErrNotFound
	}
	return p, nil
}

func (r *memRepo) CreatePayment(_ context.Context, p models.Payment) (models.Payment, error) {
	if _, ok := r.st.players[p.PlayerID]; !ok {
		return models.Payment{}, db.ErrReference
	}
	p.ID = r.st.id()
	r.st.payments[p.ID] = p
	return p, nil
}

func (r *memRepo) UpdatePayment(_ context.Context, p models.Payment) error {
	if _, ok := r.st.payments[p.ID]; !ok {
		return db.ErrNotFound
	}
	r.st.payments[p.ID] = p
	return nil
}

func (r *memRepo) DeletePayment(_ context.Context, id int64) error {
	if _, ok := r.st.payments[id]; !ok {
		return db.ErrNotFound
	}
	delete(r.st.payments, id)
	return nil
}

func (r *memRepo) WriteBalances(_ context.Context, balances map[int64]models.Money) error {
	if r.failWrite != nil {
		return r.failWrite
	}
	for id, p := range r.st.players {
		p.Balance = balances[id]
		r.st.players[id] = p
	}
	return nil
}

// memStore — транзакция работает над копией и подменяет состояние только при успехе.
type memStore struct {
	memRepo
	txCount   int
	readCount int
}

func newMemStore() *memStore {
	return &memStore{memRepo: memRepo{st: &memState{
		players:  map[int64]models.Player{},
		sessions: map[int64]models.Session{},
		records:  map[int64]models.AttendanceRecord{},
		payments: map[int64]models.Payment{},
	}}}
}

func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Repo) error) error {
	m.txCount++
	tx := &memRepo{st: m.st.clone(), failWrite: m.failWrite}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	m.st = tx.st
	return nil
}

// WithinReadTx работает над копией и ничего не сохраняет.
func (m *memStore) WithinReadTx(ctx context.Context, fn func(ctx context.Context, tx Repo) error) error {
	m.readCount++
	return fn(ctx, &memRepo{st: m.st.clone()})
}

var errDiskFull = errors.New("disk full")
