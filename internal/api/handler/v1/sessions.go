package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/practice-fund/internal/api/handler/v1/request"
)

func (h *Handler) HandleListSessions(c *gin.Context) {
	sessions, err := h.svc.Sessions(c.Request.Context())
	if err != nil {
		renderErr(c, err)
		return
	}
	ok(c, http.StatusOK, sessions)
}

// HandleSubmitDay создаёт тренировку или перезаписывает тренировку за ту же дату.
func (h *Handler) HandleSubmitDay(c *gin.Context) {
	var req request.DayRequest
	if !bind(c, &req) {
		return
	}
	s, err := h.svc.SubmitDay(c.Request.Context(), capability(c), req.Input())
	if err != nil {
		renderErr(c, err)
		return
	}
	ok(c, http.StatusCreated, s)
}

func (h *Handler) HandleUpdateSession(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	var req request.SessionPatchRequest
	if !bind(c, &req) {
		return
	}
	s, err := h.svc.UpdateSession(c.Request.Context(), capability(c), id, req.Patch())
	if err != nil {
		renderErr(c, err)
		return
	}
	ok(c, http.StatusOK, s)
}

func (h *Handler) HandleDeleteSession(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	if err := h.svc.DeleteSession(c.Request.Context(), capability(c), id); err != nil {
		renderErr(c, err)
		return
	}
	ok(c, http.StatusNoContent, nil)
}

func (h *Handler) HandleToggleSettled(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	s, err := h.svc.ToggleSettled(c.Request.Context(), capability(c), id)
	if err != nil {
		renderErr(c, err)
		return
	}
	ok(c, http.StatusOK, s)
}

func (h *Handler) HandleEditRecord(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	var req request.RecordPatchRequest
	if !bind(c, &req) {
		return
	}
	rec, err := h.svc.EditRecord(c.Request.Context(), capability(c), id, req.Patch())
	if err != nil {
		renderErr(c, err)
		return
	}
	ok(c, http.StatusOK, rec)
}

func (h *Handler) HandleDeleteRecord(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	if err := h.svc.DeleteRecord(c.Request.Context(), capability(c), id); err != nil {
		renderErr(c, err)
		return
	}
	ok(c, http.StatusNoContent, nil)
}
