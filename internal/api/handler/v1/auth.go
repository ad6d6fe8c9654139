package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/practice-fund/internal/api/handler/v1/request"
)

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HandleLogin меняет пароль администратора на токен с правом записи.
func (h *Handler) HandleLogin(c *gin.Context) {
	var req request.LoginRequest
	if !bind(c, &req) {
		return
	}
	token, cp, err := h.auth.Login(req.Password)
	if err != nil {
		renderErr(c, err)
		return
	}
	ok(c, http.StatusOK, loginResponse{Token: token, ExpiresAt: cp.ExpiresAt})
}
