package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/finishing-touch/internal/model"
	"github.com/nurpe/finishing-touch/internal/service"
)

type updateInvoiceRequest struct {
	Status *model.InvoiceStatus `json:"status"`
}

func (h *Handler) createInvoice(c *gin.Context) {
	var req service.CreateInvoiceInput
	if !bindJSON(c, &req) {
		return
	}
	invoice, err := h.invoices.Create(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func (h *Handler) listInvoices(c *gin.Context) {
	filter := model.InvoiceFilter{Search: strings.TrimSpace(c.Query("search"))}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status := model.InvoiceStatus(strings.ToUpper(raw))
		filter.Status = &status
	}
	invoices, err := h.invoices.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

func (h *Handler) getInvoice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	invoice, err := h.invoices.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (h *Handler) updateInvoice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}
	invoice, err := h.invoices.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func (h *Handler) deleteInvoice(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.invoices.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) invoicePDF(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	doc, err := h.invoices.PDF(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendDocument(c, doc, "application/pdf")
}
