package v1

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/practice-fund/internal/export"
	"github.com/Spok95/practice-fund/internal/models"
)

type balanceView struct {
	PlayerID int64        `json:"player_id"`
	Name     string       `json:"name"`
	Balance  models.Money `json:"balance"`
}

func (h *Handler) HandleBalances(c *gin.Context) {
	players, err := h.svc.Balances(c.Request.Context())
	if err != nil {
		renderErr(c, err)
		return
	}
	out := make([]balanceView, 0, len(players))
	for _, p := range players {
		out = append(out, balanceView{PlayerID: p.ID, Name: p.Name, Balance: p.Balance})
	}
	ok(c, http.StatusOK, out)
}

// HandleLedger — журнал проводок, объясняющий каждый баланс.
func (h *Handler) HandleLedger(c *gin.Context) {
	entries, err := h.svc.Ledger(c.Request.Context())
	if err != nil {
		renderErr(c, err)
		return
	}
	ok(c, http.StatusOK, entries)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) HandleExportBalances(c *gin.Context) {
	ctx := c.Request.Context()
	players, err := h.svc.Balances(ctx)
	if err != nil {
		renderErr(c, err)
		return
	}
	entries, err := h.svc.Ledger(ctx)
	if err != nil {
		renderErr(c, err)
		return
	}
	payments, err := h.svc.Payments(ctx)
	if err != nil {
		renderErr(c, err)
		return
	}
	now := time.Now()
	wb, err := export.Build(export.Report{Players: players, Entries: entries, Payments: payments, Created: now})
	if err != nil {
		renderErr(c, err)
		return
	}
	defer func() { _ = wb.Close() }()

	var buf bytes.Buffer
	if _, err := wb.WriteTo(&buf); err != nil {
		renderErr(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, export.Filename(now)))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// HandleRecompute — ручной пересчёт всех балансов по истории.
func (h *Handler) HandleRecompute(c *gin.Context) {
	res, err := h.svc.Recompute(c.Request.Context(), capability(c))
	if err != nil {
		renderErr(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"balances": res.Balances, "entries": len(res.Entries)})
}

// HandleCheck сверяет сохранённые балансы с историей, ничего не меняя.
func (h *Handler) HandleCheck(c *gin.Context) {
	drift, err := h.svc.Check(c.Request.Context())
	if err != nil {
		renderErr(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"consistent": len(drift) == 0, "drift": drift})
}
