package chart

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"sitechat/internal/model"
	"sitechat/pkg/logger"
	"sitechat/pkg/metrics"

	"go.uber.org/zap"
)

// Kinds of chart; also the file name infix and the metrics label.
const (
	KindBudget   = "budget"
	KindProgress = "progress"
	KindTimeline = "timeline"
)

var (
	ErrNoMilestones = errors.New("project has no milestones")
	ErrEmptyBudget  = errors.New("project budget has nothing to plot")
)

// Result is a rendered chart: the PNG as base64 and its path relative to the
// static dir, e.g. "charts/Riverside_Apartments_budget_20250501_090807.png".
type Result struct {
	ImageBase64 string `json:"image_data"`
	Filename    string `json:"filename"`
}

// Service renders project charts and keeps a copy of each under
// <staticDir>/charts.
type Service struct {
	staticDir string
	now       func() time.Time
	logger    *zap.Logger
}

func NewService(staticDir string, logger *zap.Logger) *Service {
	return &Service{staticDir: staticDir, now: time.Now, logger: logger}
}

func (s *Service) Budget(ctx context.Context, p model.Project) (Result, error) {
	return s.generate(ctx, KindBudget, p, renderBudget)
}

func (s *Service) Progress(ctx context.Context, p model.Project) (Result, error) {
	return s.generate(ctx, KindProgress, p, renderProgress)
}

func (s *Service) Timeline(ctx context.Context, p model.Project) (Result, error) {
	return s.generate(ctx, KindTimeline, p, renderTimeline)
}

func (s *Service) generate(ctx context.Context, kind string, p model.Project, render func(model.Project) ([]byte, error)) (Result, error) {
	log := logger.WithTrace(ctx, s.logger)
	start := time.Now()

	png, err := render(p)
	if err != nil {
		metrics.RecordChartRender(kind, "failed", time.Since(start))
		log.Error("Failed to render chart",
			zap.String("kind", kind),
			zap.String("project_id", p.ID),
			zap.Error(err),
		)
		return Result{}, err
	}

	filename := path.Join("charts", fmt.Sprintf("%s_%s_%s.png",
		strings.ReplaceAll(p.Name, " ", "_"), kind, s.now().Format("20060102_150405")))

	full := filepath.Join(s.staticDir, filepath.FromSlash(filename))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		metrics.RecordChartRender(kind, "failed", time.Since(start))
		return Result{}, fmt.Errorf("create chart dir: %w", err)
	}
	if err := os.WriteFile(full, png, 0o644); err != nil {
		metrics.RecordChartRender(kind, "failed", time.Since(start))
		return Result{}, fmt.Errorf("write chart: %w", err)
	}

	metrics.RecordChartRender(kind, "success", time.Since(start))
	log.Info("Chart generated",
		zap.String("kind", kind),
		zap.String("project_id", p.ID),
		zap.String("filename", filename),
		zap.Int("bytes", len(png)),
	)

	return Result{
		ImageBase64: base64.StdEncoding.EncodeToString(png),
		Filename:    filename,
	}, nil
}
