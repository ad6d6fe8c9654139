// Package v1 — обработчики /api/v1.
package v1

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/practice-fund/internal/api/handler/v1/response"
	"github.com/Spok95/practice-fund/internal/auth"
	"github.com/Spok95/practice-fund/internal/ledger"
	"github.com/Spok95/practice-fund/internal/models"
	"github.com/Spok95/practice-fund/internal/recompute"
	"github.com/Spok95/practice-fund/internal/rules"
)

// FundService — операции оркестратора, доступные через API.
type FundService interface {
	Players(ctx context.Context) ([]models.Player, error)
	Balances(ctx context.Context) ([]models.Player, error)
	Sessions(ctx context.Context) ([]recompute.SessionView, error)
	Payments(ctx context.Context) ([]models.Payment, error)
	Ledger(ctx context.Context) ([]rules.Adjustment, error)
	Check(ctx context.Context) ([]ledger.Drift, error)

	CreatePlayer(ctx context.Context, c *auth.Capability, p models.Player) (models.Player, error)
	UpdatePlayer(ctx context.Context, c *auth.Capability, p models.Player) (models.Player, error)
	DeletePlayer(ctx context.Context, c *auth.Capability, id int64) error

	SubmitDay(ctx context.Context, c *auth.Capability, in recompute.DayInput) (models.Session, error)
	UpdateSession(ctx context.Context, c *auth.Capability, id int64, p recompute.SessionPatch) (models.Session, error)
	DeleteSession(ctx context.Context, c *auth.Capability, id int64) error
	ToggleSettled(ctx context.Context, c *auth.Capability, id int64) (models.Session, error)
	EditRecord(ctx context.Context, c *auth.Capability, id int64, p recompute.RecordPatch) (models.AttendanceRecord, error)
	DeleteRecord(ctx context.Context, c *auth.Capability, id int64) error

	RecordPayment(ctx context.Context, c *auth.Capability, in recompute.PaymentInput) (models.Payment, error)
	EditPayment(ctx context.Context, c *auth.Capability, id int64, p recompute.PaymentPatch) (models.Payment, error)
	DeletePayment(ctx context.Context, c *auth.Capability, id int64) error

	Recompute(ctx context.Context, c *auth.Capability) (ledger.Result, error)
}

// Authenticator выдаёт токен по паролю администратора.
type Authenticator interface {
	Login(password string) (string, auth.Capability, error)
}

// CapabilityKey — ключ gin-контекста с правом, проверенным middleware.
const CapabilityKey = "capability"

type Handler struct {
	svc  FundService
	auth Authenticator
}

func NewHandler(svc FundService, a Authenticator) *Handler {
	return &Handler{svc: svc, auth: a}
}

func capability(c *gin.Context) *auth.Capability {
	v, ok := c.Get(CapabilityKey)
	if !ok {
		return nil
	}
	cp, _ := v.(*auth.Capability)
	return cp
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.RenderErr(c, response.ErrBadRequest(errors.New(name+" must be a positive integer")))
		return 0, false
	}
	return id, true
}

// validatable — тело запроса с проверкой.
type validatable interface {
	Validate() error
}

func bind(c *gin.Context, req validatable) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.RenderErr(c, response.ErrBadRequest(err))
		return false
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(c, response.ErrBadRequest(err))
		return false
	}
	return true
}

func renderErr(c *gin.Context, err error) {
	response.RenderErr(c, response.FromError(err))
}

func ok(c *gin.Context, status int, body any) {
	if body == nil {
		c.Status(status)
		return
	}
	c.JSON(status, body)
}
