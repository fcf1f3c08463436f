package api

import (
	"encoding/json"
	"net/http"

	"petpal/internal/core"
)

type APIHandler struct {
	orchestrator *core.Orchestrator
	throttle     *core.RequestThrottle
}

func NewAPIHandler(o *core.Orchestrator, t *core.RequestThrottle) *APIHandler {
	return &APIHandler{orchestrator: o, throttle: t}
}

// InteractResponse is the envelope every successful endpoint returns.
type InteractResponse struct {
	Message  string `json:"message,omitempty"`
	Result   string `json:"result"`
	AudioURL string `json:"audio_url"`
}

// CooldownResponse is returned instead of invoking generation while the
// throttle is cooling.
type CooldownResponse struct {
	Error         string  `json:"error"`
	RemainingTime float64 `json:"remaining_time"`
}

type InteractRequest struct {
	User    string `json:"user"`
	Message string `json:"message"`
}

func (h *APIHandler) InteractHandler(w http.ResponseWriter, r *http.Request) {
	var req InteractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "Message cannot be empty", http.StatusBadRequest)
		return
	}
	if req.User == "" {
		req.User = "friend"
	}

	if !h.allow(w) {
		return
	}

	reply := h.orchestrator.Handle(r.Context(), req.User, req.Message)
	writeJSON(w, http.StatusOK, InteractResponse{Result: reply.Text, AudioURL: reply.AudioURL})
}

type StoryRequest struct {
	User  string `json:"user"`
	Topic string `json:"topic"`
}

func (h *APIHandler) StoryHandler(w http.ResponseWriter, r *http.Request) {
	var req StoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Topic == "" {
		req.Topic = "general"
	}
	if req.User == "" {
		req.User = "friend"
	}

	if !h.allow(w) {
		return
	}

	reply := h.orchestrator.Story(r.Context(), req.User, req.Topic)
	writeJSON(w, http.StatusOK, InteractResponse{Result: reply.Text, AudioURL: reply.AudioURL})
}

func (h *APIHandler) LaunchHandler(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w) {
		return
	}

	reply := h.orchestrator.Launch(r.Context())
	writeJSON(w, http.StatusOK, InteractResponse{
		Message:  "App launched successfully!",
		Result:   reply.Text,
		AudioURL: reply.AudioURL,
	})
}

func (h *APIHandler) AskKidsHandler(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w) {
		return
	}

	reply := h.orchestrator.AskKids(r.Context())
	writeJSON(w, http.StatusOK, InteractResponse{Result: reply.Text, AudioURL: reply.AudioURL})
}

// allow gates the request through the shared cooldown. A rejection is a
// normal outcome, answered without touching the generation collaborator.
func (h *APIHandler) allow(w http.ResponseWriter) bool {
	allowed, remaining := h.throttle.TryAcquire()
	if !allowed {
		writeJSON(w, http.StatusTooManyRequests, CooldownResponse{
			Error:         "Cooldown in effect.",
			RemainingTime: remaining.Seconds(),
		})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
