package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/finishing-touch/internal/model"
	"github.com/nurpe/finishing-touch/internal/service"
)

func (h *Handler) createEstimate(c *gin.Context) {
	var req service.CreateEstimateInput
	if !bindJSON(c, &req) {
		return
	}
	estimate, err := h.estimates.Create(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, estimate)
}

func (h *Handler) listEstimates(c *gin.Context) {
	filter := model.EstimateFilter{Search: strings.TrimSpace(c.Query("search"))}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := model.EstimateStatus(strings.ToUpper(raw))
		filter.Status = &status
	}
	estimates, err := h.estimates.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, estimates)
}

func (h *Handler) getEstimate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	estimate, err := h.estimates.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, estimate)
}

func (h *Handler) updateEstimate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateEstimateInput
	if !bindJSON(c, &req) {
		return
	}
	estimate, err := h.estimates.Update(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, estimate)
}

func (h *Handler) deleteEstimate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.estimates.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) sendEstimate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	estimate, err := h.estimates.Send(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, estimate)
}

// convertEstimate answers 201 when a new invoice was written and 200 when the
// estimate had already been invoiced.
func (h *Handler) convertEstimate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	invoice, created, err := h.estimates.ConvertToInvoice(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, invoice)
}

func (h *Handler) estimatePDF(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	doc, err := h.estimates.PDF(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendDocument(c, doc, "application/pdf")
}
