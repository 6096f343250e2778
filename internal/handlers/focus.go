package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pathwise/engage-backend/internal/services"
)

type FocusHandler struct {
	focusService services.FocusService
}

func NewFocusHandler(focusService services.FocusService) *FocusHandler {
	return &FocusHandler{focusService: focusService}
}

func (fh *FocusHandler) Toggle(c *gin.Context) {
	enable := strings.EqualFold(c.Query("enable"), "true")
	duration := 0
	if raw := c.Query("duration_minutes"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "validation", err)
			return
		}
		duration = n
	}
	res, err := fh.focusService.Toggle(c.Request.Context(), enable, duration)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, res)
}
