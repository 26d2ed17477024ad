package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/finishing-touch/internal/http/middleware"
	"github.com/nurpe/finishing-touch/internal/service"
)

func (h *Handler) login(c *gin.Context) {
	var req service.LoginInput
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) me(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	user, err := h.auth.Me(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
