package recompute

import (
	"context"
	"strings"

	"github.com/Spok95/practice-fund/internal/auth"
	"github.com/Spok95/practice-fund/internal/models"
)

func validatePlayer(p models.Player) error {
	if strings.TrimSpace(p.Name) == "" {
		return invalid("player name is required")
	}
	if !p.Role.Valid() {
		return invalid("unknown role %q", p.Role)
	}
	if p.GroupID != nil && *p.GroupID <= 0 {
		return invalid("group id must be positive")
	}
	return nil
}

// ensureSingleTreasurer не даёт назначить второго казначея.
func ensureSingleTreasurer(ctx context.Context, tx Repo, p models.Player) error {
	if !p.IsTreasurer() {
		return nil
	}
	players, err := tx.ListPlayers(ctx)
	if err != nil {
		return err
	}
	for _, other := range players {
		if other.IsTreasurer() && other.ID != p.ID {
			return invalid("%q is already the treasurer", other.Name)
		}
	}
	return nil
}

// CreatePlayer добавляет игрока; состав влияет на правила, поэтому балансы пересчитываются.
func (s *Service) CreatePlayer(ctx context.Context, c *auth.Capability, p models.Player) (models.Player, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := validatePlayer(p); err != nil {
		return models.Player{}, err
	}
	var out models.Player
	res, err := s.mutate(ctx, c, "create_player", func(ctx context.Context, tx Repo) error {
		if err := ensureSingleTreasurer(ctx, tx, p); err != nil {
			return err
		}
		created, err := tx.CreatePlayer(ctx, p)
		out = created
		return err
	})
	if err != nil {
		return models.Player{}, err
	}
	out.Balance = res.Balances[out.ID]
	return out, nil
}

// UpdatePlayer перезаписывает имя, группу и роль. Баланс из аргумента игнорируется.
func (s *Service) UpdatePlayer(ctx context.Context, c *auth.Capability, p models.Player) (models.Player, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := validatePlayer(p); err != nil {
		return models.Player{}, err
	}
	res, err := s.mutate(ctx, c, "update_player", func(ctx context.Context, tx Repo) error {
		if _, err := tx.GetPlayer(ctx, p.ID); err != nil {
			return err
		}
		if err := ensureSingleTreasurer(ctx, tx, p); err != nil {
			return err
		}
		return tx.UpdatePlayer(ctx, p)
	})
	if err != nil {
		return models.Player{}, err
	}
	p.Balance = res.Balances[p.ID]
	return p, nil
}

// DeletePlayer удаляет игрока вместе с его отметками и платежами.
func (s *Service) DeletePlayer(ctx context.Context, c *auth.Capability, id int64) error {
	_, err := s.mutate(ctx, c, "delete_player", func(ctx context.Context, tx Repo) error {
		return tx.DeletePlayer(ctx, id)
	})
	return err
}
