package recompute

import (
	"errors"
	"fmt"

	"github.com/Spok95/practice-fund/internal/auth"
	"github.com/Spok95/practice-fund/internal/db"
	"github.com/Spok95/practice-fund/internal/ledger"
	"github.com/Spok95/practice-fund/internal/models"
	"github.com/Spok95/practice-fund/internal/rules"
)

var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrPersistence = errors.New("persistence failed")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// classify приводит любую ошибку к одной из категорий пакета.
// Всё, что не удалось распознать, считается сбоем хранилища.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound),
		errors.Is(err, ErrConflict), errors.Is(err, ErrPersistence),
		errors.Is(err, auth.ErrForbidden):
		return err
	case errors.Is(err, ledger.ErrValidation),
		errors.Is(err, rules.ErrUnknownPlayer), errors.Is(err, rules.ErrDuplicateRecord),
		errors.Is(err, models.ErrUnknownStatus), errors.Is(err, models.ErrUnknownRole),
		errors.Is(err, models.ErrMultipleTreasurers), errors.Is(err, models.ErrEmptyName),
		errors.Is(err, db.ErrReference), errors.Is(err, db.ErrConstraint):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	case errors.Is(err, db.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, db.ErrDuplicate), errors.Is(err, models.ErrDuplicatePlayerName):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}
