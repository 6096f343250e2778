package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pathwise/engage-backend/internal/services"
)

type ChallengeHandler struct {
	challengeService services.ChallengeService
}

func NewChallengeHandler(challengeService services.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{challengeService: challengeService}
}

func (ch *ChallengeHandler) GetWarmup(c *gin.Context) {
	subtopicID, err := uuid.Parse(c.Param("subtopic_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	res, err := ch.challengeService.WarmupChallenge(c.Request.Context(), subtopicID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, res)
}

func (ch *ChallengeHandler) Attempt(c *gin.Context) {
	var input services.ChallengeAttemptInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	res, err := ch.challengeService.Attempt(c.Request.Context(), input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, res)
}
