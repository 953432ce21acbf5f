package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// handleSSE streams workflow events to the client as Server-Sent Events.
// An optional ?workflow= query parameter filters to one workflow ID.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming not supported"})
		return
	}

	ctx := r.Context()
	workflowFilter := r.URL.Query().Get("workflow")

	eventCh := s.bus.Subscribe()
	defer s.bus.Unsubscribe(eventCh)

	s.log.Info("sse client connected", "remote_addr", r.RemoteAddr, "workflow", workflowFilter)

	s.sendSSE(w, flusher, "connected", map[string]string{"status": "connected"})

	for {
		select {
		case <-ctx.Done():
			s.log.Info("sse client disconnected", "remote_addr", r.RemoteAddr)
			return

		case event, ok := <-eventCh:
			if !ok {
				return
			}
			if workflowFilter != "" && event.WorkflowID() != workflowFilter {
				continue
			}
			s.sendSSE(w, flusher, event.EventType(), event)
		}
	}
}

func (s *Server) sendSSE(w http.ResponseWriter, flusher http.Flusher, eventType string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		s.log.Error("marshaling sse event", "error", err)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, payload)
	flusher.Flush()
}
