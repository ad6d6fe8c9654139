package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/practice-fund/internal/api/handler/v1/request"
)

func (h *Handler) HandleListPlayers(c *gin.Context) {
	players, err := h.svc.Players(c.Request.Context())
	if err != nil {
		renderErr(c, err)
		return
	}
	ok(c, http.StatusOK, players)
}

func (h *Handler) HandleCreatePlayer(c *gin.Context) {
	var req request.PlayerRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.svc.CreatePlayer(c.Request.Context(), capability(c), req.Player(0))
	if err != nil {
		renderErr(c, err)
		return
	}
	ok(c, http.StatusCreated, p)
}

func (h *Handler) HandleUpdatePlayer(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	var req request.PlayerRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.svc.UpdatePlayer(c.Request.Context(), capability(c), req.Player(id))
	if err != nil {
		renderErr(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

func (h *Handler) HandleDeletePlayer(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	if err := h.svc.DeletePlayer(c.Request.Context(), capability(c), id); err != nil {
		renderErr(c, err)
		return
	}
	ok(c, http.StatusNoContent, nil)
}
