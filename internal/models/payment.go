package models

import "time"

// Payment — ручная корректировка баланса игрока: положительная сумма гасит долг.
type Payment struct {
	ID        int64     `db:"id" json:"id"`
	PlayerID  int64     `db:"player_id" json:"player_id"`
	Amount    Money     `db:"amount_cents" json:"amount"`
	Date      time.Time `db:"date" json:"date"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
