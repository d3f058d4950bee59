// Package assistant serves the narrative endpoints: the balance sheet
// summary and the financial assistant chat.
package assistant

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"balance_insight/pkg/api/common"
	"balance_insight/pkg/core/agent"
	"balance_insight/pkg/core/narrative"
	"balance_insight/pkg/core/session"
	"balance_insight/pkg/core/utils"
)

// Handler provides HTTP handlers for the narrative features.
type Handler struct {
	agentMgr *agent.Manager
	logger   *slog.Logger
	now      func() time.Time
}

// NewHandler creates a new assistant handler.
func NewHandler(mgr *agent.Manager, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{agentMgr: mgr, logger: logger, now: time.Now}
}

// Routes registers the endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/analyze", h.HandleAnalyze)
	r.Route("/api/chat", func(r chi.Router) {
		r.Get("/", h.HandleHistory)
		r.With(middleware.AllowContentType("application/json")).Post("/", h.HandleChat)
		r.Delete("/", h.HandleReset)
		r.Get("/export", h.HandleExport)
		r.Get("/suggestions", h.HandleSuggestions)
	})
}

// NarrativeResponse carries generated text. HTML is the rendered markdown
// and is empty when the request failed.
type NarrativeResponse struct {
	Text string         `json:"text"`
	HTML string         `json:"html,omitempty"`
	Kind narrative.Kind `json:"kind"`
	OK   bool           `json:"ok"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse returns the reply and the full log.
type ChatResponse struct {
	Reply    NarrativeResponse     `json:"reply"`
	Messages []session.ChatMessage `json:"messages"`
}

// HandleAnalyze produces the commentary for the uploaded table. Narrative
// failures are reported in the body with status 200 so they never break the
// dashboard.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	s := common.FromContext(r.Context())
	table, _, ok := s.Table()
	if !ok {
		common.WriteError(w, http.StatusNotFound, "no statement uploaded yet")
		return
	}

	out := h.agentMgr.Bridge(agent.PurposeSummary).SummarizeOutcome(r.Context(), table)
	common.WriteJSON(w, http.StatusOK, h.render(out))
}

func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	s := common.FromContext(r.Context())

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	question := strings.TrimSpace(req.Message)
	if question == "" {
		common.WriteError(w, http.StatusBadRequest, "message is required")
		return
	}
	if !h.agentMgr.HasKey(agent.PurposeChat) {
		common.WriteError(w, http.StatusBadRequest, "API key not configured")
		return
	}

	s.Append(session.RoleUser, question)
	out := h.agentMgr.Bridge(agent.PurposeChat).AnswerOutcome(r.Context(), question, s.Context())
	s.Append(session.RoleAssistant, out.Text)

	h.logger.Info("chat turn", "session", s.ID, "kind", out.Kind.String())
	common.WriteJSON(w, http.StatusOK, ChatResponse{Reply: h.render(out), Messages: s.Messages()})
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	s := common.FromContext(r.Context())
	common.WriteJSON(w, http.StatusOK, map[string]any{"messages": s.Messages()})
}

func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	common.FromContext(r.Context()).ResetChat()
	w.WriteHeader(http.StatusNoContent)
}

// HandleExport downloads the transcript as plain text.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	msgs := common.FromContext(r.Context()).Messages()
	if len(msgs) == 0 {
		common.WriteError(w, http.StatusNotFound, "chat history is empty")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", session.TranscriptFilename(h.now())))
	_, _ = w.Write([]byte(session.ExportTranscript(msgs)))
}

func (h *Handler) HandleSuggestions(w http.ResponseWriter, r *http.Request) {
	common.WriteJSON(w, http.StatusOK, map[string]any{"questions": session.SuggestedQuestions})
}

func (h *Handler) render(out narrative.Outcome) NarrativeResponse {
	resp := NarrativeResponse{Text: out.Text, Kind: out.Kind, OK: out.OK()}
	if !out.OK() {
		return resp
	}
	html, err := utils.RenderHTML(out.Text)
	if err != nil {
		h.logger.Warn("markdown render failed", "error", err)
		return resp
	}
	resp.HTML = html
	return resp
}
