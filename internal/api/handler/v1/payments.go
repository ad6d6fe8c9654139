package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Spok95/practice-fund/internal/api/handler/v1/request"
)

func (h *Handler) HandleListPayments(c *gin.Context) {
	payments, err := h.svc.Payments(c.Request.Context())
	if err != nil {
		renderErr(c, err)
		return
	}
	ok(c, http.StatusOK, payments)
}

func (h *Handler) HandleRecordPayment(c *gin.Context) {
	var req request.PaymentRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.svc.RecordPayment(c.Request.Context(), capability(c), req.Input())
	if err != nil {
		renderErr(c, err)
		return
	}
	ok(c, http.StatusCreated, p)
}

func (h *Handler) HandleEditPayment(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	var req request.PaymentPatchRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.svc.EditPayment(c.Request.Context(), capability(c), id, req.Patch())
	if err != nil {
		renderErr(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

func (h *Handler) HandleDeletePayment(c *gin.Context) {
	id, valid := idParam(c, "id")
	if !valid {
		return
	}
	if err := h.svc.DeletePayment(c.Request.Context(), capability(c), id); err != nil {
		renderErr(c, err)
		return
	}
	ok(c, http.StatusNoContent, nil)
}
