package recompute

import (
	"context"
	"time"

	"github.com/Spok95/practice-fund/internal/models"
)

// Repo — всё, что оркестратору нужно от хранилища.
type Repo interface {
	ListPlayers(ctx context.Context) ([]models.Player, error)
	GetPlayer(ctx context.Context, id int64) (models.Player, error)
	CreatePlayer(ctx context.Context, p models.Player) (models.Player, error)
	UpdatePlayer(ctx context.Context, p models.Player) error
	DeletePlayer(ctx context.Context, id int64) error

	ListSessions(ctx context.Context) ([]models.Session, error)
	GetSession(ctx context.Context, id int64) (models.Session, error)
	UpsertSessionByDate(ctx context.Context, date time.Time, online bool) (models.Session, error)
	UpdateSession(ctx context.Context, s models.Session) error
	DeleteSession(ctx context.Context, id int64) error
	ToggleSettled(ctx context.Context, id int64) (models.Session, error)

	ListAttendance(ctx context.Context) ([]models.AttendanceRecord, error)
	GetAttendance(ctx context.Context, id int64) (models.AttendanceRecord, error)
	ReplaceAttendance(ctx context.Context, sessionID int64, marks []models.Mark) error
	UpdateAttendance(ctx context.Context, a models.AttendanceRecord) error
	DeleteAttendance(ctx context.Context, id int64) error

	ListPayments(ctx context.Context) ([]models.Payment, error)
	GetPayment(ctx context.Context, id int64) (models.Payment, error)
	CreatePayment(ctx context.Context, p models.Payment) (models.Payment, error)
	UpdatePayment(ctx context.Context, p models.Payment) error
	DeletePayment(ctx context.Context, id int64) error

	WriteBalances(ctx context.Context, balances map[int64]models.Money) error
}

// Store — Repo вне транзакции плюс атомарное выполнение изменения вместе с пересчётом.
type Store interface {
	Repo
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Repo) error) error
	// WithinReadTx — согласованный снимок для чтения, без замка писателя.
	WithinReadTx(ctx context.Context, fn func(ctx context.Context, tx Repo) error) error
}

// Notifier получает итоговые балансы после успешного коммита.
type Notifier interface {
	BalancesChanged(ctx context.Context, op string, players []models.Player) error
}
