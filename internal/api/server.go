// Package api — HTTP-интерфейс фонда: чтение открыто, изменения — по токену.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/Spok95/practice-fund/internal/api/handler/v1"
	"github.com/Spok95/practice-fund/internal/api/middleware"
	"github.com/Spok95/practice-fund/internal/metrics"
)

// Auth — вход по паролю и проверка токенов; *auth.Issuer.
type Auth interface {
	v1.Authenticator
	middleware.Verifier
}

type Options struct {
	Log *zap.Logger
	// Ping проверяет БД для /healthz; nil — проверка пропускается.
	Ping func(ctx context.Context) error
	// Mode — gin.ReleaseMode в prod.
	Mode string
}

type Server struct {
	Router *gin.Engine
	log    *zap.Logger
	ping   func(ctx context.Context) error
}

func NewServer(svc v1.FundService, a Auth, opts Options) *Server {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{Router: gin.New(), log: log, ping: opts.Ping}

	s.MountMiddlewares()
	s.MountHandlers(v1.NewHandler(svc, a), middleware.RequireCapability(a))
	return s
}

func (s *Server) MountMiddlewares() {
	s.Router.Use(middleware.RequestID()...)
	s.Router.Use(middleware.AccessLog(s.log))
	s.Router.Use(middleware.Recovery(s.log))
}

func (s *Server) MountHandlers(h *v1.Handler, requireCapability gin.HandlerFunc) {
	const basePath = "/api/v1"

	s.Router.GET("/healthz", s.handleHealth)
	s.Router.GET("/metrics", gin.WrapH(metrics.Handler()))

	public := s.Router.Group(basePath)
	{
		public.POST("/auth/login", h.HandleLogin)
		public.GET("/players", h.HandleListPlayers)
		public.GET("/sessions", h.HandleListSessions)
		public.GET("/payments", h.HandleListPayments)
		public.GET("/balances", h.HandleBalances)
		public.GET("/ledger", h.HandleLedger)
		public.GET("/export/balances.xlsx", h.HandleExportBalances)
	}

	admin := s.Router.Group(basePath, requireCapability)
	{
		admin.POST("/players", h.HandleCreatePlayer)
		admin.PUT("/players/:id", h.HandleUpdatePlayer)
		admin.DELETE("/players/:id", h.HandleDeletePlayer)

		admin.POST("/sessions", h.HandleSubmitDay)
		admin.PUT("/sessions/:id", h.HandleUpdateSession)
		admin.DELETE("/sessions/:id", h.HandleDeleteSession)
		admin.POST("/sessions/:id/settle", h.HandleToggleSettled)

		admin.PUT("/attendance/:id", h.HandleEditRecord)
		admin.DELETE("/attendance/:id", h.HandleDeleteRecord)

		admin.POST("/payments", h.HandleRecordPayment)
		admin.PUT("/payments/:id", h.HandleEditPayment)
		admin.DELETE("/payments/:id", h.HandleDeletePayment)

		admin.POST("/admin/recompute", h.HandleRecompute)
		admin.GET("/admin/check", h.HandleCheck)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 800*time.Millisecond)
		defer cancel()
		if err := s.ping(ctx); err != nil {
			c.String(http.StatusServiceUnavailable, "db not ok: "+err.Error())
			return
		}
	}
	c.String(http.StatusOK, "ok")
}
