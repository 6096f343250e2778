package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pathwise/engage-backend/internal/services"
)

type MasteryHandler struct {
	masteryService services.MasteryService
}

func NewMasteryHandler(masteryService services.MasteryService) *MasteryHandler {
	return &MasteryHandler{masteryService: masteryService}
}

func (mh *MasteryHandler) GetRatings(c *gin.Context) {
	res, err := mh.masteryService.Ratings(c.Request.Context(), nil)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, res)
}

type updateEloRequest struct {
	ConceptTag     string  `json:"concept_tag"`
	Outcome        float64 `json:"outcome"`
	ItemDifficulty float64 `json:"item_difficulty"`
	Confidence     float64 `json:"confidence,omitempty"`
}

func (mh *MasteryHandler) UpdateElo(c *gin.Context) {
	var input updateEloRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	res, err := mh.masteryService.UpdateElo(c.Request.Context(), input.ConceptTag, input.Outcome, input.ItemDifficulty, input.Confidence)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, res)
}

func (mh *MasteryHandler) GetPrerequisites(c *gin.Context) {
	res, err := mh.masteryService.PrerequisiteStatus(c.Request.Context(), nil, c.Param("subtopic_id"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, res)
}
