package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pathwise/engage-backend/internal/realtime"
	"github.com/pathwise/engage-backend/internal/requestdata"
)

type StreamHandler struct {
	hub *realtime.Hub
}

func NewStreamHandler(hub *realtime.Hub) *StreamHandler {
	return &StreamHandler{hub: hub}
}

// RewardStream pushes reward events to the client over SSE as they are
// produced. Purely a delivery channel: missing a message loses nothing, the
// rewards themselves are durable rows.
func (sh *StreamHandler) RewardStream(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", nil)
		return
	}

	ch, cancel := sh.hub.Subscribe(rd.UserID)
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	heartbeat := time.NewTicker(25 * time.Second)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		case event, ok := <-ch:
			if !ok {
				return false
			}
			raw, err := json.Marshal(event)
			if err != nil {
				return true
			}
			c.SSEvent("reward", string(raw))
			return true
		}
	})
}
