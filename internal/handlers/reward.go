package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pathwise/engage-backend/internal/services"
	"github.com/pathwise/engage-backend/internal/types"
)

type RewardHandler struct {
	rewardService services.RewardService
}

func NewRewardHandler(rewardService services.RewardService) *RewardHandler {
	return &RewardHandler{rewardService: rewardService}
}

func (rh *RewardHandler) ListRecent(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			RespondError(c, http.StatusBadRequest, "validation", err)
			return
		}
		limit = n
	}
	res, err := rh.rewardService.ListRecent(c.Request.Context(), nil, limit)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	if res == nil {
		res = []*types.RewardEvent{}
	}
	RespondOK(c, res)
}

type engageRequest struct {
	RewardID              uuid.UUID `json:"reward_id"`
	Engaged               bool      `json:"engaged"`
	EngagementTimeSeconds *float64  `json:"engagement_time_seconds,omitempty"`
}

func (rh *RewardHandler) Engage(c *gin.Context) {
	var input engageRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	if err := rh.rewardService.RecordEngagement(c.Request.Context(), input.RewardID, input.Engaged, input.EngagementTimeSeconds); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"status": "ok"})
}

type nudgeInteractionRequest struct {
	NudgeType   string `json:"nudge_type"`
	Interaction string `json:"interaction"`
}

func (rh *RewardHandler) NudgeInteraction(c *gin.Context) {
	var input nudgeInteractionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	res, err := rh.rewardService.NudgeInteraction(c.Request.Context(), input.NudgeType, input.Interaction)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, res)
}

func (rh *RewardHandler) ShouldShowNudge(c *gin.Context) {
	show, err := rh.rewardService.ShouldShowNudge(c.Request.Context(), c.Param("nudge_type"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"should_show": show})
}
