package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nurpe/finishing-touch/internal/service"
)

type employeeIDsRequest struct {
	EmployeeIDs []uuid.UUID `json:"employeeIds"`
}

func (h *Handler) createJob(c *gin.Context) {
	var req service.CreateJobInput
	if !bindJSON(c, &req) {
		return
	}
	job, err := h.jobs.Create(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *Handler) createJobFromEstimate(c *gin.Context) {
	estimateID, ok := pathID(c, "estimateId")
	if !ok {
		return
	}
	var req employeeIDsRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	job, err := h.jobs.CreateFromEstimate(c.Request.Context(), estimateID, req.EmployeeIDs)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *Handler) listJobs(c *gin.Context) {
	jobs, err := h.jobs.List(c.Request.Context(), service.ListJobsInput{
		From: c.Query("from"),
		To:   c.Query("to"),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *Handler) getJob(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	job, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handler) updateJob(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateJobInput
	if !bindJSON(c, &req) {
		return
	}
	job, err := h.jobs.Update(c.Request.Context(), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handler) deleteJob(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.jobs.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) addAssignments(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req employeeIDsRequest
	if !bindJSON(c, &req) {
		return
	}
	job, err := h.jobs.AddAssignments(c.Request.Context(), id, req.EmployeeIDs)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handler) removeAssignment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	assignmentID, ok := pathID(c, "assignmentId")
	if !ok {
		return
	}
	if err := h.jobs.RemoveAssignment(c.Request.Context(), id, assignmentID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
