package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/pathwise/engage-backend/internal/services"
)

func TestRespondServiceErrorTaxonomy(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unauthenticated", services.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
		{"validation", fmt.Errorf("%w: bad input", services.ErrValidation), http.StatusBadRequest, "validation"},
		{"not found", fmt.Errorf("%w: session x", services.ErrNotFound), http.StatusNotFound, "not_found"},
		{"expired", fmt.Errorf("%w: idle too long", services.ErrSessionExpired), http.StatusGone, "session_expired"},
		{"conflict", fmt.Errorf("%w: REWARD -> WARMUP", services.ErrStateConflict), http.StatusConflict, "state_conflict"},
		{"transient", fmt.Errorf("%w: database is locked", services.ErrTransient), http.StatusServiceUnavailable, "retry"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)

			RespondServiceError(c, tc.err)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rec.Code)
			}
			var env ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("unmarshal error envelope: %v", err)
			}
			if env.Error.Code != tc.wantCode {
				t.Fatalf("expected code %q, got %q", tc.wantCode, env.Error.Code)
			}
			if env.Error.Message == "" {
				t.Fatalf("error envelope should carry a message")
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/healthcheck", HealthCheck)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("expected status ok, got %+v", body)
	}
}
