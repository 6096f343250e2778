package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pathwise/engage-backend/internal/services"
	"github.com/pathwise/engage-backend/internal/types"
)

// stubRewardService returns canned responses so routes can be exercised
// without a database.
type stubRewardService struct {
	rewards []*types.RewardEvent
	nudge   *services.NudgeInteractionResult
	err     error
}

func (s *stubRewardService) EmitInTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, rewardType, trigger string, content map[string]any) (*types.RewardEvent, bool, error) {
	return nil, false, s.err
}

func (s *stubRewardService) ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.RewardEvent, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.rewards, nil
}

func (s *stubRewardService) RecordEngagement(ctx context.Context, rewardID uuid.UUID, engaged bool, engagementSeconds *float64) error {
	return s.err
}

func (s *stubRewardService) NudgeInteraction(ctx context.Context, nudgeType, interaction string) (*services.NudgeInteractionResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.nudge, nil
}

func (s *stubRewardService) ShouldShowNudge(ctx context.Context, nudgeType string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return true, nil
}

func newRewardRouter(svc services.RewardService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	rh := NewRewardHandler(svc)
	router := gin.New()
	router.GET("/rewards/recent", rh.ListRecent)
	router.POST("/rewards/engage", rh.Engage)
	router.POST("/nudge/interaction", rh.NudgeInteraction)
	router.GET("/nudge/should-show/:nudge_type", rh.ShouldShowNudge)
	return router
}

func TestListRecentRewardsReturnsBareArray(t *testing.T) {
	reward := &types.RewardEvent{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Type:      "milestone",
		Trigger:   "level_up",
		CreatedAt: time.Now().UTC(),
	}
	router := newRewardRouter(&stubRewardService{rewards: []*types.RewardEvent{reward}})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/rewards/recent?limit=5", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var got []*types.RewardEvent
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("body should be a bare array: %v (%s)", err, rec.Body.String())
	}
	if len(got) != 1 || got[0].ID != reward.ID {
		t.Fatalf("expected the stubbed reward back, got %+v", got)
	}
}

func TestListRecentRewardsEmptyIsArray(t *testing.T) {
	router := newRewardRouter(&stubRewardService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/rewards/recent", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Fatalf("expected an empty array, got %q", body)
	}
}

func TestListRecentRewardsBadLimit(t *testing.T) {
	router := newRewardRouter(&stubRewardService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/rewards/recent?limit=-2", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a negative limit, got %d", rec.Code)
	}
}

func TestRewardRoutesMapServiceErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"recent unauthenticated", services.ErrUnauthenticated, http.MethodGet, "/rewards/recent", "", http.StatusUnauthorized},
		{"engage not found", fmt.Errorf("%w: reward", services.ErrNotFound), http.MethodPost, "/rewards/engage", `{"reward_id":"` + uuid.NewString() + `","engaged":true}`, http.StatusNotFound},
		{"nudge validation", fmt.Errorf("%w: unknown nudge", services.ErrValidation), http.MethodPost, "/nudge/interaction", `{"nudge_type":"bogus","interaction":"engaged"}`, http.StatusBadRequest},
		{"should-show transient", fmt.Errorf("%w: database is locked", services.ErrTransient), http.MethodGet, "/nudge/should-show/streak_reminder", "", http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newRewardRouter(&stubRewardService{err: tc.err})

			rec := httptest.NewRecorder()
			var req *http.Request
			if tc.body != "" {
				req = httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
				req.Header.Set("Content-Type", "application/json")
			} else {
				req = httptest.NewRequest(tc.method, tc.path, nil)
			}
			router.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d (%s)", tc.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestNudgeInteractionHappyPath(t *testing.T) {
	router := newRewardRouter(&stubRewardService{
		nudge: &services.NudgeInteractionResult{
			NudgeType:    "streak_reminder",
			Interaction:  "engaged",
			NewIntensity: 0.65,
		},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/nudge/interaction", strings.NewReader(`{"nudge_type":"streak_reminder","interaction":"engaged"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var got services.NudgeInteractionResult
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if got.NewIntensity != 0.65 {
		t.Fatalf("expected intensity 0.65, got %v", got.NewIntensity)
	}
}
