package recompute

import (
	"context"
	"strings"
	"time"

	"github.com/Spok95/practice-fund/internal/auth"
	"github.com/Spok95/practice-fund/internal/models"
)

type PaymentInput struct {
	PlayerID int64
	Amount   models.Money
	// нулевая дата — сегодня
	Date  time.Time
	Notes string
}

type PaymentPatch struct {
	PlayerID *int64
	Amount   *models.Money
	Date     *time.Time
	Notes    *string
}

func notes(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (s *Service) RecordPayment(ctx context.Context, c *auth.Capability, in PaymentInput) (models.Payment, error) {
	if in.PlayerID <= 0 {
		return models.Payment{}, invalid("player id must be positive")
	}
	if in.Amount <= 0 {
		return models.Payment{}, invalid("payment amount must be positive, got %s", in.Amount)
	}
	date := in.Date
	if date.IsZero() {
		date = s.now()
	}
	var out models.Payment
	_, err := s.mutate(ctx, c, "record_payment", func(ctx context.Context, tx Repo) error {
		if _, err := tx.GetPlayer(ctx, in.PlayerID); err != nil {
			return err
		}
		p, err := tx.CreatePayment(ctx, models.Payment{
			PlayerID: in.PlayerID,
			Amount:   in.Amount,
			Date:     models.TruncateDay(date),
			Notes:    notes(in.Notes),
		})
		out = p
		return err
	})
	return out, err
}

func (s *Service) EditPayment(ctx context.Context, c *auth.Capability, id int64, p PaymentPatch) (models.Payment, error) {
	if p.Amount != nil && *p.Amount <= 0 {
		return models.Payment{}, invalid("payment amount must be positive, got %s", *p.Amount)
	}
	if p.Date != nil && p.Date.IsZero() {
		return models.Payment{}, invalid("payment date is required")
	}
	var out models.Payment
	_, err := s.mutate(ctx, c, "edit_payment", func(ctx context.Context, tx Repo) error {
		pay, err := tx.GetPayment(ctx, id)
		if err != nil {
			return err
		}
		if p.PlayerID != nil {
			if _, err := tx.GetPlayer(ctx, *p.PlayerID); err != nil {
				return err
			}
			pay.PlayerID = *p.PlayerID
		}
		if p.Amount != nil {
			pay.Amount = *p.Amount
		}
		if p.Date != nil {
			pay.Date = models.TruncateDay(*p.Date)
		}
		if p.Notes != nil {
			pay.Notes = notes(*p.Notes)
		}
		if err := tx.UpdatePayment(ctx, pay); err != nil {
			return err
		}
		out = pay
		return nil
	})
	return out, err
}

func (s *Service) DeletePayment(ctx context.Context, c *auth.Capability, id int64) error {
	_, err := s.mutate(ctx, c, "delete_payment", func(ctx context.Context, tx Repo) error {
		return tx.DeletePayment(ctx, id)
	})
	return err
}
