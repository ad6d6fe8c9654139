package ledger

import "github.com/Spok95/practice-fund/internal/models"

// Drift — расхождение сохранённого баланса с пересчитанным.
type Drift struct {
	PlayerID int64        `json:"player_id"`
	Name     string       `json:"name"`
	Stored   models.Money `json:"stored"`
	Computed models.Money `json:"computed"`
}

// Diff сравнивает кэшированные балансы игроков с результатом свёртки.
// Пустой результат означает, что хранилище согласовано с историей.
func Diff(players []models.Player, balances map[int64]models.Money) []Drift {
	var out []Drift
	for _, p := range players {
		if want := balances[p.ID]; want != p.Balance {
			out = append(out, Drift{PlayerID: p.ID, Name: p.Name, Stored: p.Balance, Computed: want})
		}
	}
	return out
}
