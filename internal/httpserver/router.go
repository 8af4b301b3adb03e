package httpserver

import (
	"context"
	"net/http"
	"time"

	"sitechat/internal/handler"
	"sitechat/internal/session"
	"sitechat/pkg/mq"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger is anything /readyz should check.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Chat      *handler.ChatHandler
	Reports   *handler.ReportHandler
	Notes     *handler.NoteHandler
	Sessions  *session.Manager
	NoteStore Pinger
	Publisher mq.EventPublisher
	StaticDir string
	Logger    *zap.Logger
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TraceMiddleware())
	r.Use(RequestLogger(d.Logger))
	r.Use(MetricsMiddleware())

	// Health endpoints (放在最前面)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if err := d.Sessions.Store().Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "session_store_not_ready", "error": err.Error()})
			return
		}
		if d.NoteStore != nil {
			if err := d.NoteStore.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "note_store_not_ready", "error": err.Error()})
				return
			}
		}
		if d.Publisher != nil && !d.Publisher.IsConnected() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "mq_not_ready"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Static("/static", d.StaticDir)

	app := r.Group("/")
	app.Use(d.Sessions.Middleware())
	{
		app.GET("/", d.Chat.Index)
		app.GET("/chat", d.Chat.Chat)

		app.GET("/api/users", d.Chat.ListUsers)
		app.POST("/api/switch_user", d.Chat.SwitchUser)
		app.GET("/api/projects", d.Chat.ListProjects)
		app.POST("/api/select_project", d.Chat.SelectProject)
		app.GET("/api/projects/:id/metrics", d.Chat.ProjectMetrics)
		app.POST("/api/send_message", d.Chat.SendMessage)

		app.POST("/api/generate_report", d.Reports.GenerateReport)
		app.GET("/download_report/:filename", d.Reports.DownloadReport)
		app.POST("/api/generate_budget_chart", d.Reports.BudgetChart)
		app.POST("/api/generate_progress_chart", d.Reports.ProgressChart)
		app.POST("/api/generate_timeline_chart", d.Reports.TimelineChart)
		app.POST("/api/get_weather", d.Reports.Weather)

		app.GET("/api/notes", d.Notes.ListNotes)
		app.POST("/api/notes", d.Notes.AddNote)
		app.DELETE("/api/notes/:id", d.Notes.DeleteNote)
	}

	return r
}
