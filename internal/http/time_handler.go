package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nurpe/finishing-touch/internal/model"
	"github.com/nurpe/finishing-touch/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) punch(c *gin.Context) {
	var req service.PunchInput
	if !bindJSON(c, &req) {
		return
	}
	req.Action = model.PunchAction(strings.ToUpper(strings.TrimSpace(string(req.Action))))
	entry, err := h.time.Punch(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) createTimeEntry(c *gin.Context) {
	var req service.CreateTimeEntryInput
	if !bindJSON(c, &req) {
		return
	}
	entry, err := h.time.Create(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) updateTimeEntry(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateTimeEntryInput
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	entry, err := h.time.Update(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) listTimeEntries(c *gin.Context) {
	input := service.ListTimeEntriesInput{
		From: c.Query("from"),
		To:   c.Query("to"),
	}
	if raw := strings.TrimSpace(c.Query("employeeId")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employeeId"})
			return
		}
		input.EmployeeID = &id
	}
	if raw := strings.TrimSpace(c.Query("open")); raw != "" {
		open, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid open"})
			return
		}
		input.OpenOnly = open
	}
	entries, err := h.time.List(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) clockedIn(c *gin.Context) {
	entries, err := h.time.ClockedIn(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) timesheet(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	sheet, err := h.time.Timesheet(c.Request.Context(), id, c.Query("from"), c.Query("to"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, sheet)
}

func (h *Handler) exportTimesheet(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	doc, err := h.time.ExportTimesheet(c.Request.Context(), id, c.Query("from"), c.Query("to"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	sendDocument(c, doc, xlsxContentType)
}
