package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"balance_insight/pkg/core/agent"
	"balance_insight/pkg/core/config"
	"balance_insight/pkg/core/llm"
	"balance_insight/pkg/core/ratio"
	"balance_insight/pkg/core/session"
	"balance_insight/pkg/core/store"
)

const sampleCSV = "Chỉ tiêu,Năm trước,Năm sau\n" +
	"TÀI SẢN NGẮN HẠN,400,500\n" +
	"Hàng tồn kho,\"150,000\",\"210,000\"\n" +
	"NỢ NGẮN HẠN,200,250\n" +
	"TỔNG CỘNG TÀI SẢN,800,1000\n"

type scriptedProvider struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func (p *scriptedProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *scriptedProvider) GenerateResponse(ctx context.Context, req llm.Request) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.reply, p.err
}

type harness struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
	agents *agent.Manager
}

func newHarness(t *testing.T, withKey bool) (*harness, *scriptedProvider) {
	t.Helper()
	cfg := config.Default()
	agents := agent.NewManager(cfg, nil, nil)
	fake := &scriptedProvider{reply: "**Healthy** balance sheet."}
	settings := config.ProviderConfig{Model: "test-model"}
	if withKey {
		settings.APIKey = "test-key"
	}
	agents.Register(config.ProviderGemini, fake, settings)

	s := NewServer(":0", Deps{
		Agents:    agents,
		Sessions:  session.NewStore(),
		Processor: &store.Processor{Memo: ratio.NewMemo(8)},
	})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	jar, _ := cookiejar.New(nil)
	return &harness{t: t, srv: srv, client: &http.Client{Jar: jar}, agents: agents}, fake
}

func (h *harness) do(method, path, contentType string, body io.Reader) *http.Response {
	h.t.Helper()
	req, err := http.NewRequest(method, h.srv.URL+path, body)
	if err != nil {
		h.t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	res, err := h.client.Do(req)
	if err != nil {
		h.t.Fatal(err)
	}
	h.t.Cleanup(func() { res.Body.Close() })
	return res
}

func (h *harness) upload(name, content string) *http.Response {
	h.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		h.t.Fatal(err)
	}
	_, _ = fw.Write([]byte(content))
	_ = mw.Close()
	return h.do(http.MethodPost, "/api/upload", mw.FormDataContentType(), &buf)
}

func (h *harness) chat(message string) *http.Response {
	h.t.Helper()
	body, _ := json.Marshal(map[string]string{"message": message})
	return h.do(http.MethodPost, "/api/chat", "application/json", bytes.NewReader(body))
}

func decode(t *testing.T, res *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func TestHealth(t *testing.T) {
	h, _ := newHarness(t, true)
	res := h.do(http.MethodGet, "/health", "", nil)
	if res.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", res.StatusCode)
	}
}

func TestDashboardPage(t *testing.T) {
	h, _ := newHarness(t, true)
	res := h.do(http.MethodGet, "/", "", nil)
	body, _ := io.ReadAll(res.Body)
	if res.StatusCode != http.StatusOK || !strings.Contains(string(body), Title) {
		t.Errorf("unexpected page: %d\n%s", res.StatusCode, body)
	}
	if !strings.Contains(string(body), "/api/charts/growth.png") {
		t.Errorf("expected chart links in page")
	}
}

func TestUploadAndQuery(t *testing.T) {
	h, _ := newHarness(t, true)

	res := h.upload("balance.csv", sampleCSV)
	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		t.Fatalf("upload failed: %d %s", res.StatusCode, body)
	}
	var up struct {
		File  string      `json:"file"`
		Rows  int         `json:"rows"`
		Table ratio.Table `json:"table"`
		KPIs  struct {
			CurrentRatio ratio.KPI `json:"current_ratio"`
			Healthy      bool      `json:"healthy"`
		} `json:"kpis"`
	}
	decode(t, res, &up)
	if up.Rows != 4 || up.Table[1].Current != 210000 {
		t.Errorf("unexpected table: %+v", up)
	}
	if !up.KPIs.CurrentRatio.Available || up.KPIs.CurrentRatio.Value != 2 || !up.KPIs.Healthy {
		t.Errorf("unexpected KPIs: %+v", up.KPIs)
	}

	res = h.do(http.MethodGet, "/api/charts/comparison", "", nil)
	var bar ratio.BarChartData
	decode(t, res, &bar)
	if len(bar.Series) != 2 || bar.Categories[0] != "Hàng tồn kho" {
		t.Errorf("unexpected comparison data: %+v", bar)
	}

	res = h.do(http.MethodGet, "/api/charts/growth.png", "", nil)
	if res.StatusCode != http.StatusOK || res.Header.Get("Content-Type") != "image/png" {
		t.Errorf("expected PNG, got %d %s", res.StatusCode, res.Header.Get("Content-Type"))
	}

	res = h.do(http.MethodGet, "/api/charts/radar", "", nil)
	if res.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown chart, got %d", res.StatusCode)
	}

	res = h.do(http.MethodGet, "/api/export.xlsx", "", nil)
	if res.StatusCode != http.StatusOK || !strings.Contains(res.Header.Get("Content-Disposition"), "balance_analysis.xlsx") {
		t.Errorf("unexpected export response: %d %v", res.StatusCode, res.Header)
	}

	res = h.do(http.MethodGet, "/api/history", "", nil)
	var hist struct {
		Files []session.FileRecord `json:"files"`
	}
	decode(t, res, &hist)
	if len(hist.Files) != 1 || hist.Files[0].Name != "balance.csv" {
		t.Errorf("unexpected history: %+v", hist)
	}
}

func TestUpload_MissingTotalAssets(t *testing.T) {
	h, _ := newHarness(t, true)
	res := h.upload("bad.csv", "label,prior,current\nCash,1,2\n")
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", res.StatusCode)
	}
	res = h.do(http.MethodGet, "/api/table", "", nil)
	if res.StatusCode != http.StatusNotFound {
		t.Errorf("failed upload must not store a table, got %d", res.StatusCode)
	}
}

func TestUpload_UnsupportedFormat(t *testing.T) {
	h, _ := newHarness(t, true)
	res := h.upload("notes.pdf", "whatever")
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", res.StatusCode)
	}
}

func TestAnalyze(t *testing.T) {
	h, fake := newHarness(t, true)

	res := h.do(http.MethodPost, "/api/analyze", "", nil)
	if res.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 before upload, got %d", res.StatusCode)
	}

	h.upload("balance.csv", sampleCSV)
	res = h.do(http.MethodPost, "/api/analyze", "", nil)
	type analysis struct {
		Text string `json:"text"`
		HTML string `json:"html"`
		Kind string `json:"kind"`
		OK   bool   `json:"ok"`
	}
	var out analysis
	decode(t, res, &out)
	if !out.OK || out.Kind != "ok" || !strings.Contains(out.HTML, "<strong>Healthy</strong>") {
		t.Errorf("unexpected analysis: %+v", out)
	}

	fake.fail(&llm.APIError{Provider: "scripted", StatusCode: 429, Status: "RESOURCE_EXHAUSTED"})
	res = h.do(http.MethodPost, "/api/analyze", "", nil)
	var failed analysis
	decode(t, res, &failed)
	if res.StatusCode != http.StatusOK || failed.OK || failed.Kind != "api_error" || failed.HTML != "" {
		t.Errorf("narrative failure must be reported in the body: %d %+v", res.StatusCode, failed)
	}
	if !strings.HasPrefix(failed.Text, "Error calling the text-generation API") {
		t.Errorf("unexpected failure text: %q", failed.Text)
	}
}

func TestChat_Flow(t *testing.T) {
	h, fake := newHarness(t, true)

	res := h.chat("How is liquidity?")
	var out struct {
		Reply    struct{ Text string } `json:"reply"`
		Messages []session.ChatMessage `json:"messages"`
	}
	decode(t, res, &out)
	if len(out.Messages) != 2 || out.Messages[0].Role != session.RoleUser || out.Messages[1].Content != fake.reply {
		t.Fatalf("unexpected chat log: %+v", out.Messages)
	}

	res = h.do(http.MethodGet, "/api/chat/export", "", nil)
	body, _ := io.ReadAll(res.Body)
	if !strings.HasPrefix(string(body), "USER: How is liquidity?\n\nASSISTANT: ") {
		t.Errorf("unexpected transcript:\n%s", body)
	}
	if !strings.Contains(res.Header.Get("Content-Disposition"), "chat_history_") {
		t.Errorf("unexpected filename header %q", res.Header.Get("Content-Disposition"))
	}

	res = h.do(http.MethodDelete, "/api/chat", "", nil)
	if res.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204, got %d", res.StatusCode)
	}
	res = h.do(http.MethodGet, "/api/chat", "", nil)
	var hist struct {
		Messages []session.ChatMessage `json:"messages"`
	}
	decode(t, res, &hist)
	if len(hist.Messages) != 0 {
		t.Errorf("expected empty log after reset, got %+v", hist.Messages)
	}
}

func TestChat_RefusesWithoutKey(t *testing.T) {
	h, fake := newHarness(t, false)
	res := h.chat("hello")
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", res.StatusCode)
	}
	if fake.callCount() != 0 {
		t.Errorf("provider must not be called without a key")
	}
	res = h.do(http.MethodGet, "/api/chat", "", nil)
	var hist struct {
		Messages []session.ChatMessage `json:"messages"`
	}
	decode(t, res, &hist)
	if len(hist.Messages) != 0 {
		t.Errorf("refused question must not be appended, got %+v", hist.Messages)
	}
}

func TestChat_SessionsAreIsolated(t *testing.T) {
	h, _ := newHarness(t, true)
	h.chat("first visitor")

	jar, _ := cookiejar.New(nil)
	other := &http.Client{Jar: jar}
	res, err := other.Get(h.srv.URL + "/api/chat")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	var hist struct {
		Messages []session.ChatMessage `json:"messages"`
	}
	decode(t, res, &hist)
	if len(hist.Messages) != 0 {
		t.Errorf("second visitor sees another session's chat: %+v", hist.Messages)
	}
}

func TestConfigSwitch(t *testing.T) {
	h, _ := newHarness(t, true)

	res := h.do(http.MethodPost, "/api/config/switch", "application/json", strings.NewReader(`{"provider":"deepseek"}`))
	var cfg struct {
		ActiveProvider string   `json:"active_provider"`
		Available      []string `json:"available"`
	}
	decode(t, res, &cfg)
	if cfg.ActiveProvider != "deepseek" || len(cfg.Available) != 4 {
		t.Errorf("unexpected config: %+v", cfg)
	}

	res = h.do(http.MethodPost, "/api/config/switch", "application/json", strings.NewReader(`{"provider":"openai"}`))
	if res.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown provider, got %d", res.StatusCode)
	}
}

func TestConfigSwitch_RequiresJSON(t *testing.T) {
	h, _ := newHarness(t, true)

	res := h.do(http.MethodPost, "/api/config/switch", "text/plain", strings.NewReader(`{"provider":"deepseek"}`))
	if res.StatusCode != http.StatusUnsupportedMediaType {
		t.Errorf("expected 415 for a text/plain body, got %d", res.StatusCode)
	}

	res = h.do(http.MethodGet, "/api/config", "", nil)
	var cfg struct {
		ActiveProvider string `json:"active_provider"`
	}
	decode(t, res, &cfg)
	if cfg.ActiveProvider == "deepseek" {
		t.Errorf("rejected request must not switch the provider")
	}
}
