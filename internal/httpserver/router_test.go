package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sitechat/internal/handler"
	"sitechat/internal/repository"
	"sitechat/internal/service/auth"
	"sitechat/internal/service/chart"
	"sitechat/internal/service/chat"
	"sitechat/internal/service/note"
	"sitechat/internal/service/project"
	"sitechat/internal/service/report"
	"sitechat/internal/service/weather"
	"sitechat/internal/session"
	"sitechat/pkg/mq"
	"sitechat/pkg/trace"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	engine    *gin.Engine
	staticDir string
	reportDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()
	root := t.TempDir()

	projectRepo, err := repository.NewProjectRepository(log)
	require.NoError(t, err)
	userRepo, err := repository.NewUserRepository(log)
	require.NoError(t, err)
	noteRepo, err := repository.NewFileNoteRepository(filepath.Join(root, "notes"), log)
	require.NoError(t, err)

	authService := auth.NewService(userRepo)
	projectService := project.NewService(projectRepo)
	chatService := chat.NewService(chat.NewClassifier(projectService), log)
	noteService := note.NewService(noteRepo, mq.NoopPublisher{}, nil, log)

	staticDir := filepath.Join(root, "static")
	reportDir := filepath.Join(root, "reports")
	reportService := report.NewService(reportDir, mq.NoopPublisher{}, log)
	chartService := chart.NewService(staticDir, log)
	weatherService := weather.NewService(weather.NewMockProvider(), log)

	engine := NewRouter(Deps{
		Chat:      handler.NewChatHandler(authService, projectService, chatService, log),
		Reports:   handler.NewReportHandler(authService, projectService, reportService, chartService, weatherService, log),
		Notes:     handler.NewNoteHandler(authService, noteService, log),
		Sessions:  session.NewManager(session.NewMemoryStore(time.Hour), "test-secret", time.Hour, log),
		NoteStore: noteRepo,
		Publisher: mq.NoopPublisher{},
		StaticDir: staticDir,
		Logger:    log,
	})

	return &testServer{engine: engine, staticDir: staticDir, reportDir: reportDir}
}

// client keeps the session cookie between requests.
type client struct {
	t      *testing.T
	srv    *testServer
	cookie *http.Cookie
}

func (s *testServer) client(t *testing.T) *client {
	return &client{t: t, srv: s}
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}

	w := httptest.NewRecorder()
	c.srv.engine.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.Name == session.CookieName {
			c.cookie = ck
		}
	}
	return w
}

func (c *client) json(method, path string, body any) map[string]any {
	c.t.Helper()
	w := c.do(method, path, body)
	var out map[string]any
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthAndTrace(t *testing.T) {
	srv := newTestServer(t)
	c := srv.client(t)

	w := c.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(trace.HeaderName))

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	req.Header.Set(trace.HeaderName, "trace-123")
	w = httptest.NewRecorder()
	srv.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "trace-123", w.Header().Get(trace.HeaderName))

	w = c.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_request_duration_seconds")
}

func TestChatDefaultsToFirstUser(t *testing.T) {
	c := newTestServer(t).client(t)

	out := c.json(http.MethodGet, "/chat", nil)
	assert.Equal(t, "success", out["status"])
	assert.Equal(t, "U001", out["current_user_id"])
	assert.Len(t, out["users"], 3)

	// the default user is remembered by the session
	projects := c.json(http.MethodGet, "/api/projects", nil)
	assert.Len(t, projects, 3)
	assert.Contains(t, projects, "P001")
	assert.NotContains(t, projects, "P003")
}

func TestProjectsWithoutUserIsEmpty(t *testing.T) {
	c := newTestServer(t).client(t)

	w := c.do(http.MethodGet, "/api/projects", nil)
	assert.JSONEq(t, `{}`, w.Body.String())
}

func TestSwitchUser(t *testing.T) {
	c := newTestServer(t).client(t)

	out := c.json(http.MethodPost, "/api/switch_user", gin.H{"user_id": "U999"})
	assert.Equal(t, "error", out["status"])
	assert.Equal(t, "Invalid user ID", out["message"])

	out = c.json(http.MethodPost, "/api/switch_user", gin.H{"user_id": "U002"})
	assert.Equal(t, "success", out["status"])

	projects := c.json(http.MethodGet, "/api/projects", nil)
	assert.Len(t, projects, 2)
	assert.Contains(t, projects, "P003")
	assert.Contains(t, projects, "P005")
}

func TestSelectProject(t *testing.T) {
	c := newTestServer(t).client(t)
	c.json(http.MethodPost, "/api/switch_user", gin.H{"user_id": "U002"})

	out := c.json(http.MethodPost, "/api/select_project", gin.H{"project_id": "P001"})
	assert.Equal(t, "error", out["status"])
	assert.Equal(t, "Access denied", out["message"])

	out = c.json(http.MethodPost, "/api/select_project", gin.H{"project_id": "P003"})
	require.Equal(t, "success", out["status"])
	assert.Equal(t, "Community Center Renovation", out["project"].(map[string]any)["name"])
}

func TestSelectProjectWithoutUser(t *testing.T) {
	c := newTestServer(t).client(t)

	out := c.json(http.MethodPost, "/api/select_project", gin.H{"project_id": "P001"})
	assert.Equal(t, "Access denied", out["message"])
}

func TestSwitchUserClearsInaccessibleProject(t *testing.T) {
	c := newTestServer(t).client(t)
	c.json(http.MethodGet, "/chat", nil)
	c.json(http.MethodPost, "/api/select_project", gin.H{"project_id": "P001"})

	c.json(http.MethodPost, "/api/switch_user", gin.H{"user_id": "U002"})

	out := c.json(http.MethodPost, "/api/send_message", gin.H{"message": "show me the budget"})
	assert.Equal(t, "Please select a project first by typing 'select project'.", out["message"])
}

func TestSendMessage(t *testing.T) {
	c := newTestServer(t).client(t)
	c.json(http.MethodGet, "/chat", nil)

	out := c.json(http.MethodPost, "/api/send_message", gin.H{"message": "generate a report"})
	assert.Equal(t, "Please select a project first before generating a report.", out["message"])

	out = c.json(http.MethodPost, "/api/send_message", gin.H{"message": "I want to select a project"})
	assert.Equal(t, "Please select a project from the list below.", out["message"])
	assert.Equal(t, "show_project_selector", out["action"])

	c.json(http.MethodPost, "/api/select_project", gin.H{"project_id": "P001"})

	cases := map[string]string{
		"show me the budget":       "Budget for Riverside Apartments: Allocated: $3,500,000, Spent: $2,275,000, Remaining: $1,225,000",
		"generate a report":        chat.CodeGenerateReport,
		"show me the budget chart": chat.CodeShowBudgetChart,
		"what's the weather like?": chat.CodeCheckWeather,
		"show me all notes":        chat.CodeViewNotes,
		"tell me a joke":           "I'm not sure how to answer that. Try asking about project status, budget, issues, milestones, or resources.",
	}
	for msg, want := range cases {
		out := c.json(http.MethodPost, "/api/send_message", gin.H{"message": msg})
		assert.Equal(t, "success", out["status"], msg)
		assert.Equal(t, want, out["message"], msg)
	}

	out = c.json(http.MethodPost, "/api/send_message", gin.H{"message": "Add a note saying Crane arrives Monday"})
	assert.Equal(t, chat.CodeAddNote, out["message"])
	assert.Equal(t, "Crane arrives Monday", out["note"])
}

func TestSendMessageRequiresText(t *testing.T) {
	c := newTestServer(t).client(t)

	out := c.json(http.MethodPost, "/api/send_message", gin.H{})
	assert.Equal(t, "error", out["status"])
	assert.Equal(t, "Message is required", out["message"])

	w := c.do(http.MethodPost, "/api/send_message", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/send_message", strings.NewReader("{broken"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c.srv.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotesFlow(t *testing.T) {
	c := newTestServer(t).client(t)

	out := c.json(http.MethodGet, "/api/notes", nil)
	assert.Equal(t, "No project selected", out["message"])

	c.json(http.MethodGet, "/chat", nil)
	c.json(http.MethodPost, "/api/select_project", gin.H{"project_id": "P002"})

	out = c.json(http.MethodGet, "/api/notes", nil)
	assert.Equal(t, "success", out["status"])
	assert.Empty(t, out["notes"])

	out = c.json(http.MethodPost, "/api/notes", gin.H{"note": ""})
	assert.Equal(t, "Note text is required", out["message"])

	out = c.json(http.MethodPost, "/api/notes", gin.H{"note": "Survey crew on site"})
	require.Equal(t, "success", out["status"])
	added := out["note"].(map[string]any)
	assert.Equal(t, float64(1), added["id"])
	assert.Equal(t, "U001", added["user"])

	out = c.json(http.MethodPost, "/api/notes", gin.H{"note": "Second note"})
	assert.Equal(t, float64(2), out["note"].(map[string]any)["id"])

	out = c.json(http.MethodGet, "/api/notes", nil)
	assert.Len(t, out["notes"], 2)

	w := c.do(http.MethodDelete, "/api/notes/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = c.do(http.MethodDelete, "/api/notes/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = c.do(http.MethodDelete, "/api/notes/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	out = c.json(http.MethodGet, "/api/notes", nil)
	assert.Len(t, out["notes"], 1)
}

func TestViewerCannotDeleteNotes(t *testing.T) {
	c := newTestServer(t).client(t)
	c.json(http.MethodPost, "/api/switch_user", gin.H{"user_id": "U002"})
	c.json(http.MethodPost, "/api/select_project", gin.H{"project_id": "P005"})

	out := c.json(http.MethodPost, "/api/notes", gin.H{"note": "Viewer note"})
	require.Equal(t, "success", out["status"])

	w := c.do(http.MethodDelete, "/api/notes/1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGenerateReportAndDownload(t *testing.T) {
	c := newTestServer(t).client(t)

	out := c.json(http.MethodPost, "/api/generate_report", gin.H{})
	assert.Equal(t, "No project selected", out["message"])

	out = c.json(http.MethodPost, "/api/generate_report", gin.H{"project_id": "P404"})
	assert.Equal(t, "Project not found", out["message"])

	out = c.json(http.MethodPost, "/api/generate_report", gin.H{"project_id": "P004"})
	require.Equal(t, "success", out["status"], out["message"])
	assert.Equal(t, "Report for Adam Project generated successfully", out["message"])

	url := out["download_url"].(string)
	assert.True(t, strings.HasPrefix(url, "/download_report/Project_Report_Adam_Project_"))

	w := c.do(http.MethodGet, url, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))

	w = c.do(http.MethodGet, "/download_report/missing.pdf", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportRespectsProjectAccess(t *testing.T) {
	c := newTestServer(t).client(t)
	c.json(http.MethodPost, "/api/switch_user", gin.H{"user_id": "U002"})

	out := c.json(http.MethodPost, "/api/generate_report", gin.H{"project_id": "P001"})
	assert.Equal(t, "Access denied", out["message"])
}

func TestCharts(t *testing.T) {
	c := newTestServer(t).client(t)
	c.json(http.MethodGet, "/chat", nil)
	c.json(http.MethodPost, "/api/select_project", gin.H{"project_id": "P001"})

	for _, path := range []string{
		"/api/generate_budget_chart",
		"/api/generate_progress_chart",
		"/api/generate_timeline_chart",
	} {
		out := c.json(http.MethodPost, path, nil)
		require.Equal(t, "success", out["status"], path)
		assert.NotEmpty(t, out["image_data"], path)

		chartURL := out["chart_url"].(string)
		assert.True(t, strings.HasPrefix(chartURL, "/static/charts/Riverside_Apartments_"), chartURL)

		w := c.do(http.MethodGet, chartURL, nil)
		assert.Equal(t, http.StatusOK, w.Code, chartURL)
	}
}

func TestWeather(t *testing.T) {
	c := newTestServer(t).client(t)

	out := c.json(http.MethodPost, "/api/get_weather", gin.H{"project_id": "P002"})
	require.Equal(t, "success", out["status"])
	assert.Equal(t, "Weather forecast for Downtown Office Complex (Chicago)", out["message"])
	assert.Contains(t, out["html"], "Weather Forecast for Chicago")
}

func TestProjectMetrics(t *testing.T) {
	c := newTestServer(t).client(t)
	c.json(http.MethodGet, "/chat", nil)

	w := c.do(http.MethodGet, "/api/projects/P003/metrics", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	out := c.json(http.MethodGet, "/api/projects/P001/metrics", nil)
	require.Equal(t, "success", out["status"])
	m := out["metrics"].(map[string]any)
	assert.InDelta(t, 65.0, m["percentage_spent"], 0.001)
	assert.InDelta(t, 35.0, m["percentage_remaining"], 0.001)
	assert.Equal(t, false, m["is_over_budget"])
}
