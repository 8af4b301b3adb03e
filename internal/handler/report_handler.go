package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"sitechat/internal/model"
	"sitechat/internal/service/auth"
	"sitechat/internal/service/chart"
	"sitechat/internal/service/project"
	"sitechat/internal/service/report"
	"sitechat/internal/service/weather"
	"sitechat/internal/session"
	"sitechat/pkg/logger"
	"sitechat/pkg/rbac"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReportHandler serves the project artefacts: PDF reports, charts and the
// weather forecast.
type ReportHandler struct {
	auth     *auth.Service
	projects *project.Service
	reports  *report.Service
	charts   *chart.Service
	weather  *weather.Service
	logger   *zap.Logger
}

func NewReportHandler(
	authService *auth.Service,
	projectService *project.Service,
	reportService *report.Service,
	chartService *chart.Service,
	weatherService *weather.Service,
	logger *zap.Logger,
) *ReportHandler {
	return &ReportHandler{
		auth:     authService,
		projects: projectService,
		reports:  reportService,
		charts:   chartService,
		weather:  weatherService,
		logger:   logger,
	}
}

type projectRequest struct {
	ProjectID string `json:"project_id"`
}

// resolveProject picks the body's project_id, falling back to the session's
// selection. It writes the error response itself and reports false on failure.
func (h *ReportHandler) resolveProject(c *gin.Context) (model.Project, bool) {
	var req projectRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondErrorCode(c, http.StatusBadRequest, "Invalid request body")
		return model.Project{}, false
	}

	sess := session.FromContext(c)
	projectID := req.ProjectID
	if projectID == "" {
		projectID = sess.ProjectID
	}
	if projectID == "" {
		respondError(c, "No project selected")
		return model.Project{}, false
	}

	p, err := h.projects.Get(projectID)
	if err != nil {
		respondError(c, "Project not found")
		return model.Project{}, false
	}

	// a session without a user has not been through /chat yet; identity is trusted
	if sess.UserID != "" {
		if err := h.auth.AuthorizeProject(sess.UserID, projectID); err != nil {
			respondError(c, err.Error())
			return model.Project{}, false
		}
	}
	return p, true
}

func (h *ReportHandler) GenerateReport(c *gin.Context) {
	p, ok := h.resolveProject(c)
	if !ok {
		return
	}

	sess := session.FromContext(c)
	if sess.UserID != "" {
		if err := h.auth.Authorize(sess.UserID, rbac.PermissionGenerateReport); err != nil {
			respondError(c, err.Error())
			return
		}
	}

	log := logger.WithTrace(c.Request.Context(), h.logger)
	log.Info("Generating report", zap.String("project_id", p.ID))

	filename, err := h.reports.Generate(c.Request.Context(), p, sess.UserID)
	if err != nil {
		respondError(c, fmt.Sprintf("Error generating report: %v", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "success",
		"message":      fmt.Sprintf("Report for %s generated successfully", p.Name),
		"download_url": "/download_report/" + filename,
	})
}

func (h *ReportHandler) DownloadReport(c *gin.Context) {
	full, err := h.reports.Path(c.Param("filename"))
	if err != nil {
		respondErrorCode(c, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := os.Stat(full); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			respondErrorCode(c, http.StatusNotFound, "Report not found")
			return
		}
		respondErrorCode(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.FileAttachment(full, filepath.Base(full))
}

func (h *ReportHandler) BudgetChart(c *gin.Context) {
	h.renderChart(c, "Budget", h.charts.Budget)
}

func (h *ReportHandler) ProgressChart(c *gin.Context) {
	h.renderChart(c, "Progress", h.charts.Progress)
}

func (h *ReportHandler) TimelineChart(c *gin.Context) {
	h.renderChart(c, "Timeline", h.charts.Timeline)
}

func (h *ReportHandler) renderChart(c *gin.Context, title string, render func(context.Context, model.Project) (chart.Result, error)) {
	p, ok := h.resolveProject(c)
	if !ok {
		return
	}

	res, err := render(c.Request.Context(), p)
	if err != nil {
		respondError(c, fmt.Sprintf("Error generating chart: %v", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "success",
		"message":    fmt.Sprintf("%s chart for %s generated successfully", title, p.Name),
		"image_data": res.ImageBase64,
		"chart_url":  "/static/" + res.Filename,
	})
}

func (h *ReportHandler) Weather(c *gin.Context) {
	p, ok := h.resolveProject(c)
	if !ok {
		return
	}

	r, err := h.weather.ForProject(c.Request.Context(), p)
	if err != nil {
		respondError(c, fmt.Sprintf("Error retrieving weather: %v", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"message":  r.Message,
		"html":     r.HTML,
		"forecast": r.Forecast,
	})
}
