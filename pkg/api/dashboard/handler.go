// Package dashboard serves the upload, table, KPI, chart and export
// endpoints.
package dashboard

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"balance_insight/pkg/api/common"
	"balance_insight/pkg/core/chart"
	"balance_insight/pkg/core/export"
	"balance_insight/pkg/core/ingest"
	"balance_insight/pkg/core/ratio"
	"balance_insight/pkg/core/session"
	"balance_insight/pkg/core/store"
)

// MaxUploadBytes bounds the accepted spreadsheet size.
const MaxUploadBytes = 10 << 20

// Handler holds dependencies for the dashboard endpoints.
type Handler struct {
	Processor *store.Processor
	Markers   ratio.Markers
	Logger    *slog.Logger
	Now       func() time.Time
}

// NewHandler creates a dashboard handler.
func NewHandler(p *store.Processor, markers ratio.Markers, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Processor: p, Markers: markers.WithDefaults(), Logger: logger, Now: time.Now}
}

// Routes registers the endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/upload", h.HandleUpload)
	r.Get("/api/table", h.HandleTable)
	r.Get("/api/kpis", h.HandleKPIs)
	r.Get("/api/charts/{kind}", h.HandleChart)
	r.Get("/api/export.xlsx", h.HandleExport)
	r.Get("/api/history", h.HandleHistory)
}

// UploadResponse is returned after a successful upload.
type UploadResponse struct {
	File  string        `json:"file"`
	Rows  int           `json:"rows"`
	Table ratio.Table   `json:"table"`
	KPIs  *KPIsResponse `json:"kpis,omitempty"`
}

// KPIsResponse is the KPI card payload.
type KPIsResponse struct {
	ratio.KPISet
	Healthy bool `json:"healthy"`
}

func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	s := common.FromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, "expected a multipart file field named \"file\"")
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	rows, err := ingest.Parse(name, file)
	if err != nil {
		h.Logger.Warn("upload parse failed", "file", name, "error", err)
		common.WriteError(w, http.StatusBadRequest, fmt.Sprintf("could not read %s: %v", name, err))
		return
	}

	table, err := h.Processor.Process(r.Context(), rows)
	if err != nil {
		var verr *ratio.ValidationError
		if errors.As(err, &verr) {
			common.WriteError(w, http.StatusUnprocessableEntity, verr.Error())
			return
		}
		h.Logger.Error("processing failed", "file", name, "error", err)
		common.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.SetTable(name, table, h.Now())
	h.Logger.Info("table processed", "session", s.ID, "file", name, "rows", len(table))

	resp := UploadResponse{File: name, Rows: len(table), Table: table}
	if k, err := ratio.DeriveKPIs(table, h.Markers); err == nil {
		resp.KPIs = &KPIsResponse{KPISet: k, Healthy: k.Healthy()}
	}
	common.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleTable(w http.ResponseWriter, r *http.Request) {
	table, name, ok := h.table(w, r)
	if !ok {
		return
	}
	common.WriteJSON(w, http.StatusOK, UploadResponse{File: name, Rows: len(table), Table: table})
}

func (h *Handler) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	table, _, ok := h.table(w, r)
	if !ok {
		return
	}
	k, err := ratio.DeriveKPIs(table, h.Markers)
	if err != nil {
		common.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	common.WriteJSON(w, http.StatusOK, KPIsResponse{KPISet: k, Healthy: k.Healthy()})
}

// HandleChart serves /api/charts/{kind} as JSON and /api/charts/{kind}.png
// as an image.
func (h *Handler) HandleChart(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "kind")
	png := strings.HasSuffix(raw, ".png")
	kind, err := chart.ParseKind(strings.TrimSuffix(raw, ".png"))
	if err != nil {
		common.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	table, _, ok := h.table(w, r)
	if !ok {
		return
	}

	if !png {
		h.writeChartData(w, table, kind)
		return
	}

	var buf bytes.Buffer
	if err := chart.Render(&buf, table, kind); err != nil {
		if errors.Is(err, chart.ErrNoData) {
			common.WriteError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.Logger.Error("chart render failed", "kind", kind, "error", err)
		common.WriteError(w, http.StatusInternalServerError, "chart render failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) writeChartData(w http.ResponseWriter, table ratio.Table, kind chart.Kind) {
	data, err := chart.Data(table, kind)
	if err != nil {
		h.Logger.Error("chart data failed", "kind", kind, "error", err)
		common.WriteError(w, http.StatusInternalServerError, "chart data failed")
		return
	}
	common.WriteJSON(w, http.StatusOK, data)
}

func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	table, name, ok := h.table(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteTable(&buf, table); err != nil {
		h.Logger.Error("export failed", "error", err)
		common.WriteError(w, http.StatusInternalServerError, "export failed")
		return
	}
	base := strings.TrimSuffix(name, filepath.Ext(name))
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", base+"_analysis.xlsx"))
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	s := common.FromContext(r.Context())
	common.WriteJSON(w, http.StatusOK, map[string]any{"files": s.RecentFiles(session.HistoryLimit)})
}

func (h *Handler) table(w http.ResponseWriter, r *http.Request) (ratio.Table, string, bool) {
	s := common.FromContext(r.Context())
	table, name, ok := s.Table()
	if !ok {
		common.WriteError(w, http.StatusNotFound, "no statement uploaded yet")
		return nil, "", false
	}
	return table, name, true
}
