package handler

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oticonnect/backend/internal/org/sse"
)

const sseHeartbeatInterval = 30 * time.Second

// SSEHandler streams organization updates (bookings, feedback, divisions)
// to connected clients.
type SSEHandler struct {
	hub *sse.Hub
}

func NewSSEHandler() *SSEHandler {
	return &SSEHandler{hub: sse.GlobalHub}
}

// Stream GET /api/sse/events?token=xxx&topics=room_booking,oti_bersuara
// An empty topics filter subscribes to everything.
func (h *SSEHandler) Stream(c *gin.Context) {
	userID := GetUserID(c)
	clientID := fmt.Sprintf("%s_%d", userID, time.Now().UnixNano())

	topics := map[string]bool{}
	if raw := c.Query("topics"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			topics[strings.TrimSpace(t)] = true
		}
	}

	client := &sse.Client{
		ID:     clientID,
		UserID: userID,
		Events: make(chan sse.Event, 64),
	}
	h.hub.Register(client)
	defer h.hub.Unregister(clientID)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	hello, _ := json.Marshal(gin.H{"client_id": clientID, "user_id": userID})
	writeSSE(c, "connected", string(hello))

	heartbeat := time.NewTicker(sseHeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case event, ok := <-client.Events:
			if !ok {
				return
			}
			if len(topics) > 0 && !topics[event.EventType] {
				continue
			}
			writeSSE(c, event.EventType, event.Data)
		case <-heartbeat.C:
			c.Writer.WriteString(": keepalive\n\n")
			c.Writer.Flush()
		}
	}
}

func writeSSE(c *gin.Context, eventType, data string) {
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", eventType, data)
	c.Writer.Flush()
}
