package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/pathwise/engage-backend/internal/services"
)

type PatternsHandler struct {
	patternsService services.PatternsService
}

func NewPatternsHandler(patternsService services.PatternsService) *PatternsHandler {
	return &PatternsHandler{patternsService: patternsService}
}

func (ph *PatternsHandler) GetOptimalTime(c *gin.Context) {
	res, err := ph.patternsService.OptimalTime(c.Request.Context(), nil)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, res)
}
