package rules

import (
	"fmt"

	"github.com/Spok95/practice-fund/internal/models"
)

type dayRun struct {
	rates        Rates
	roster       *models.Roster
	session      models.Session
	day          map[int64]models.Status
	treasurer    models.Player
	hasTreasurer bool
	out          []Adjustment
}

func (d *dayRun) emit(playerID int64, amount models.Money, kind Kind, reason string) {
	d.out = append(d.out, Adjustment{
		SessionID: d.session.ID,
		Date:      d.session.Date,
		PlayerID:  playerID,
		Amount:    amount,
		Kind:      kind,
		Reason:    reason,
	})
}

// toTreasurer списывает amount с игрока и зачисляет казначею.
// Без казначея остаётся только сторона игрока.
func (d *dayRun) toTreasurer(from models.Player, amount models.Money, kind Kind, reason string) {
	d.emit(from.ID, -amount, kind, reason)
	if d.hasTreasurer {
		d.emit(d.treasurer.ID, amount, kind, fmt.Sprintf("%s received from %s", reason, from.Name))
	}
}

func (d *dayRun) group(gid int64, members []int64) {
	var late, absentUninformed, absentInformed int
	var leaders []models.Player
	for _, pid := range members {
		switch d.day[pid] {
		case models.Late:
			late++
		case models.AbsentUninformed:
			absentUninformed++
		case models.AbsentInformed:
			absentInformed++
		}
		if p, _ := d.roster.Get(pid); p.IsLeader() {
			leaders = append(leaders, p)
		}
	}

	if late > 0 || absentUninformed > 0 {
		for _, pid := range members {
			d.individual(pid)
		}
		return
	}

	reward := d.rates.cleanReward(absentInformed)
	if reward == 0 {
		return
	}
	// Несколько лидеров в группе: каждый получает полную награду.
	for _, l := range leaders {
		reason := fmt.Sprintf("Group %d clean-day reward (%d absent informed)", gid, absentInformed)
		d.emit(l.ID, reward, KindCleanReward, reason)
		if d.hasTreasurer {
			d.emit(d.treasurer.ID, -reward, KindCleanReward, fmt.Sprintf("Paid group %d reward to %s", gid, l.Name))
		}
	}
}

func (d *dayRun) individual(pid int64) {
	p, _ := d.roster.Get(pid)
	switch d.day[pid] {
	case models.Late:
		if p.IsLeader() {
			d.toTreasurer(p, d.rates.LeaderLateFine, KindLeaderLateFine, "Leader late fine")
			return
		}
		d.toTreasurer(p, d.rates.LateFine, KindLateFine, "Late fine")
	case models.AbsentUninformed:
		if p.IsLeader() {
			d.toTreasurer(p, d.rates.LeaderAbsentFine, KindLeaderAbsentFine, "Leader uninformed absence fine")
			return
		}
		mode := "offline"
		if d.session.IsOnline {
			mode = "online"
		}
		d.toTreasurer(p, d.rates.absentFine(d.session.IsOnline), KindAbsentFine, "Uninformed absence fine ("+mode+")")
	}
}
