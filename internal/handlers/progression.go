package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pathwise/engage-backend/internal/services"
)

type ProgressionHandler struct {
	progressionService  services.ProgressionService
	streakService       services.StreakService
	momentumService     services.MomentumService
	statsService        services.UserStatsService
	progressCopyService services.ProgressCopyService
}

func NewProgressionHandler(progressionService services.ProgressionService, streakService services.StreakService, momentumService services.MomentumService, statsService services.UserStatsService, progressCopyService services.ProgressCopyService) *ProgressionHandler {
	return &ProgressionHandler{
		progressionService:  progressionService,
		streakService:       streakService,
		momentumService:     momentumService,
		statsService:        statsService,
		progressCopyService: progressCopyService,
	}
}

func (ph *ProgressionHandler) AwardXP(c *gin.Context) {
	var input services.XPAwardInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	res, err := ph.progressionService.AwardXP(c.Request.Context(), input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, res)
}

func (ph *ProgressionHandler) UpdateStreak(c *gin.Context) {
	res, err := ph.streakService.UpdateStreak(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, res)
}

func (ph *ProgressionHandler) GetMomentum(c *gin.Context) {
	res, err := ph.momentumService.Get(c.Request.Context(), nil)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, res)
}

func (ph *ProgressionHandler) GetUserStats(c *gin.Context) {
	res, err := ph.statsService.Stats(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, res)
}

func (ph *ProgressionHandler) GetProgressCopy(c *gin.Context) {
	roadmapID, err := uuid.Parse(c.Param("roadmap_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	res, err := ph.progressCopyService.Select(c.Request.Context(), nil, roadmapID, c.Query("copy_type"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, res)
}
