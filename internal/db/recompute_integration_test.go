//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Spok95/practice-fund/internal/app"
	"github.com/Spok95/practice-fund/internal/auth"
	"github.com/Spok95/practice-fund/internal/ledger"
	"github.com/Spok95/practice-fund/internal/models"
	"github.com/Spok95/practice-fund/internal/recompute"
	"github.com/Spok95/practice-fund/internal/rules"
)

// Параллельные изменения через оркестратор: итоговые балансы совпадают со свёрткой истории.
func TestRecompute_ParallelMutations(t *testing.T) {
	_, s := start(t)
	ctx := context.Background()
	svc := recompute.New(app.NewTxStore(s), ledger.New(rules.New(rules.DefaultRates())), zap.NewNop())
	admin := auth.Local("test")

	tina, err := svc.CreatePlayer(ctx, &admin, models.Player{Name: "Tina", Role: models.Treasurer})
	if err != nil {
		t.Fatal(err)
	}
	leo, err := svc.CreatePlayer(ctx, &admin, models.Player{Name: "Leo", Role: models.Leader, GroupID: ptrInt64(1)})
	if err != nil {
		t.Fatal(err)
	}
	mx, err := svc.CreatePlayer(ctx, &admin, models.Player{Name: "Max", Role: models.Member, GroupID: ptrInt64(1)})
	if err != nil {
		t.Fatal(err)
	}

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			status := models.OnTime
			if i%3 == 0 {
				status = models.Late
			}
			_, _ = svc.SubmitDay(ctx, &admin, recompute.DayInput{
				Date:   base.AddDate(0, 0, i),
				Online: i%2 == 0,
				Marks:  []models.Mark{{PlayerID: leo.ID, Status: models.OnTime}, {PlayerID: mx.ID, Status: status}},
			})
		}(i)
		go func() {
			defer wg.Done()
			_, _ = svc.RecordPayment(ctx, &admin, recompute.PaymentInput{PlayerID: mx.ID, Amount: models.Units(5), Date: base})
		}()
	}
	wg.Wait()

	drift, err := svc.Check(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(drift) != 0 {
		t.Fatalf("stored balances drifted: %+v", drift)
	}

	// 20 дней: 7 опозданий Max (i%3==0), 13 чистых дней
	want := map[int64]models.Money{
		tina.ID: models.Units(20*20 + 7*10 - 13*30),
		leo.ID:  models.Units(13 * 30),
		mx.ID:   models.Units(-7*10 + 20*5),
	}
	players, err := svc.Balances(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range players {
		if p.Balance != want[p.ID] {
			t.Errorf("%s = %s, want %s", p.Name, p.Balance, want[p.ID])
		}
	}
}
