package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/finishing-touch/internal/service"
)

func (h *Handler) createLead(c *gin.Context) {
	var req service.CreateLeadInput
	if !bindJSON(c, &req) {
		return
	}
	lead, err := h.leads.Create(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lead)
}

func (h *Handler) listLeads(c *gin.Context) {
	leads, err := h.leads.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, leads)
}
