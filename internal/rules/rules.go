// Package rules считает влияние одной тренировки на балансы игроков.
//
// Все переводы идут через казначея: штраф списывается с игрока и
// зачисляется казначею, награда лидеру списывается с казначея. Единственное
// одностороннее начисление — ежедневная зарплата казначея.
package rules

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Spok95/practice-fund/internal/models"
)

var (
	ErrUnknownPlayer   = errors.New("attendance references unknown player")
	ErrDuplicateRecord = errors.New("duplicate attendance record for player")
)

type Kind string

const (
	KindSalary           Kind = "treasurer_salary"
	KindCleanReward      Kind = "clean_reward"
	KindLateFine         Kind = "late_fine"
	KindLeaderLateFine   Kind = "leader_late_fine"
	KindAbsentFine       Kind = "absent_fine"
	KindLeaderAbsentFine Kind = "leader_absent_fine"
	KindPayment          Kind = "payment"
)

// Adjustment — одна проводка по балансу игрока с человекочитаемой причиной.
type Adjustment struct {
	SessionID int64        `json:"session_id,omitempty"`
	Date      time.Time    `json:"date"`
	PlayerID  int64        `json:"player_id"`
	Amount    models.Money `json:"amount"`
	Kind      Kind         `json:"kind"`
	Reason    string       `json:"reason"`
}

// Deltas — изменение баланса по игрокам за один день.
type Deltas map[int64]models.Money

type Evaluator struct {
	rates Rates
}

func New(rates Rates) *Evaluator {
	return &Evaluator{rates: rates}
}

func (e *Evaluator) Rates() Rates { return e.rates }

// EvaluateDay — сумма проводок ExplainDay по каждому игроку.
func (e *Evaluator) EvaluateDay(roster *models.Roster, session models.Session, day map[int64]models.Status) (Deltas, error) {
	adj, err := e.ExplainDay(roster, session, day)
	if err != nil {
		return nil, err
	}
	out := make(Deltas, len(adj))
	for _, a := range adj {
		out[a.PlayerID] += a.Amount
	}
	return out, nil
}

// ExplainDay возвращает проводки за один день в детерминированном порядке:
// зарплата казначея, затем группы по возрастанию номера (без группы — последними),
// внутри группы игроки по возрастанию ID.
func (e *Evaluator) ExplainDay(roster *models.Roster, session models.Session, day map[int64]models.Status) ([]Adjustment, error) {
	if err := validateDay(roster, day); err != nil {
		return nil, err
	}

	d := dayRun{
		rates:   e.rates,
		roster:  roster,
		session: session,
		day:     day,
	}
	d.treasurer, d.hasTreasurer = roster.Treasurer()

	if d.hasTreasurer {
		d.emit(d.treasurer.ID, e.rates.TreasurerSalary, KindSalary, "Treasurer salary")
	}

	groups, ungrouped := partition(roster, day)
	groupIDs := make([]int64, 0, len(groups))
	for gid := range groups {
		groupIDs = append(groupIDs, gid)
	}
	slices.Sort(groupIDs)

	for _, gid := range groupIDs {
		d.group(gid, groups[gid])
	}
	for _, pid := range ungrouped {
		d.individual(pid)
	}
	return d.out, nil
}

func validateDay(roster *models.Roster, day map[int64]models.Status) error {
	ids := make([]int64, 0, len(day))
	for pid := range day {
		ids = append(ids, pid)
	}
	slices.Sort(ids)
	for _, pid := range ids {
		if _, ok := roster.Get(pid); !ok {
			return fmt.Errorf("%w: id %d", ErrUnknownPlayer, pid)
		}
		if st := day[pid]; !st.Valid() {
			return fmt.Errorf("player %d: %w: %q", pid, models.ErrUnknownStatus, st)
		}
	}
	return nil
}

// partition раскладывает отметки дня по группам; игроки без группы идут отдельно.
func partition(roster *models.Roster, day map[int64]models.Status) (map[int64][]int64, []int64) {
	groups := make(map[int64][]int64)
	var ungrouped []int64
	for pid := range day {
		p, _ := roster.Get(pid)
		if p.GroupID == nil {
			ungrouped = append(ungrouped, pid)
			continue
		}
		groups[*p.GroupID] = append(groups[*p.GroupID], pid)
	}
	for gid := range groups {
		slices.Sort(groups[gid])
	}
	slices.Sort(ungrouped)
	return groups, ungrouped
}

// DayFromRecords собирает отметки одного дня; повтор игрока — ошибка.
func DayFromRecords(records []models.AttendanceRecord) (map[int64]models.Status, error) {
	day := make(map[int64]models.Status, len(records))
	for _, r := range records {
		if _, ok := day[r.PlayerID]; ok {
			return nil, fmt.Errorf("%w: id %d", ErrDuplicateRecord, r.PlayerID)
		}
		day[r.PlayerID] = r.Status
	}
	return day, nil
}
