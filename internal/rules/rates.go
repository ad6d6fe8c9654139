package rules

import "github.com/Spok95/practice-fund/internal/models"

// Rates — суммы всех правил. Значения по умолчанию совпадают с договорённостью команды.
type Rates struct {
	TreasurerSalary   models.Money
	CleanReward       models.Money
	PerAbsentInformed models.Money
	LateFine          models.Money
	LeaderLateFine    models.Money
	AbsentFineOffline models.Money
	AbsentFineOnline  models.Money
	LeaderAbsentFine  models.Money
}

func DefaultRates() Rates {
	return Rates{
		TreasurerSalary:   models.Units(20),
		CleanReward:       models.Units(30),
		PerAbsentInformed: models.Units(10),
		LateFine:          models.Units(10),
		LeaderLateFine:    models.Units(40),
		AbsentFineOffline: models.Units(100),
		AbsentFineOnline:  models.Units(50),
		LeaderAbsentFine:  models.Units(200),
	}
}

// absentFine — штраф рядовому игроку за неявку без предупреждения.
func (r Rates) absentFine(online bool) models.Money {
	if online {
		return r.AbsentFineOnline
	}
	return r.AbsentFineOffline
}

// cleanReward — награда лидеру за чистый день группы; не уходит ниже нуля.
func (r Rates) cleanReward(absentInformed int) models.Money {
	v := r.CleanReward - r.PerAbsentInformed*models.Money(absentInformed)
	if v < 0 {
		return 0
	}
	return v
}
