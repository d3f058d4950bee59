package config

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"balance_insight/pkg/api/common"
	"balance_insight/pkg/core/agent"
)

// Response describes the provider selection.
type Response struct {
	ActiveProvider string            `json:"active_provider"`
	Available      []string          `json:"available"`
	Purposes       map[string]string `json:"purposes"`
	KeyConfigured  bool              `json:"key_configured"`
}

// SwitchRequest is the body of POST /api/config/switch.
type SwitchRequest struct {
	Provider string `json:"provider"`
}

// Handler holds dependencies for config endpoints.
type Handler struct {
	AgentMgr *agent.Manager
}

// NewHandler creates a new config handler.
func NewHandler(agentMgr *agent.Manager) *Handler {
	return &Handler{AgentMgr: agentMgr}
}

// Routes registers the endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/api/config", h.HandleConfig)
	// The switch applies to every session; a JSON content type keeps plain
	// cross-site form posts from reaching it.
	r.With(middleware.AllowContentType("application/json")).Post("/api/config/switch", h.HandleSwitch)
}

func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	common.WriteJSON(w, http.StatusOK, h.describe())
}

func (h *Handler) HandleSwitch(w http.ResponseWriter, r *http.Request) {
	var req SwitchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.AgentMgr.SetActiveProvider(req.Provider); err != nil {
		common.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	common.WriteJSON(w, http.StatusOK, h.describe())
}

func (h *Handler) describe() Response {
	return Response{
		ActiveProvider: h.AgentMgr.GetActiveProvider(),
		Available:      h.AgentMgr.Available(),
		Purposes: map[string]string{
			agent.PurposeSummary: h.AgentMgr.Resolve(agent.PurposeSummary),
			agent.PurposeChat:    h.AgentMgr.Resolve(agent.PurposeChat),
		},
		KeyConfigured: h.AgentMgr.HasKey(agent.PurposeChat),
	}
}
