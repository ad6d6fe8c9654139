package models

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var (
	ErrUnknownRole         = errors.New("unknown role")
	ErrEmptyName           = errors.New("player name is empty")
	ErrMultipleTreasurers  = errors.New("roster has more than one treasurer")
	ErrDuplicatePlayerName = errors.New("duplicate player name")
)

type Role string

const (
	Member    Role = "Member"
	Leader    Role = "Leader"
	Treasurer Role = "Treasurer"
)

// ParseRole принимает только три канонических значения (регистр и пробелы не важны).
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "member":
		return Member, nil
	case "leader":
		return Leader, nil
	case "treasurer":
		return Treasurer, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

func (r Role) Valid() bool {
	return r == Member || r == Leader || r == Treasurer
}

type Player struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	GroupID   *int64    `db:"group_id" json:"group_id"`
	Role      Role      `db:"role" json:"role"`
	Balance   Money     `db:"balance_cents" json:"balance"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (p Player) IsLeader() bool    { return p.Role == Leader }
func (p Player) IsTreasurer() bool { return p.Role == Treasurer }

// Roster — состав команды, индексированный по ID.
type Roster struct {
	players   map[int64]Player
	order     []int64
	treasurer *Player
}

// NewRoster проверяет состав: имена уникальны, роли известны, казначей не более одного.
func NewRoster(players []Player) (*Roster, error) {
	r := &Roster{players: make(map[int64]Player, len(players))}
	names := make(map[string]struct{}, len(players))
	for _, p := range players {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("player %d: %w", p.ID, ErrEmptyName)
		}
		if !p.Role.Valid() {
			return nil, fmt.Errorf("player %q: %w: %q", p.Name, ErrUnknownRole, p.Role)
		}
		if _, ok := r.players[p.ID]; ok {
			return nil, fmt.Errorf("player id %d listed twice", p.ID)
		}
		if _, ok := names[p.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePlayerName, p.Name)
		}
		names[p.Name] = struct{}{}
		if p.IsTreasurer() {
			if r.treasurer != nil {
				return nil, fmt.Errorf("%w: %q and %q", ErrMultipleTreasurers, r.treasurer.Name, p.Name)
			}
			t := p
			r.treasurer = &t
		}
		r.players[p.ID] = p
		r.order = append(r.order, p.ID)
	}
	slices.Sort(r.order)
	return r, nil
}

func (r *Roster) Get(id int64) (Player, bool) {
	p, ok := r.players[id]
	return p, ok
}

// Treasurer возвращает казначея, если он есть в составе.
func (r *Roster) Treasurer() (Player, bool) {
	if r.treasurer == nil {
		return Player{}, false
	}
	return *r.treasurer, true
}

// IDs — идентификаторы игроков по возрастанию.
func (r *Roster) IDs() []int64 {
	out := make([]int64, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Roster) Len() int { return len(r.order) }
