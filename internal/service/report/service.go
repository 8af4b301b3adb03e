package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"sitechat/internal/model"
	"sitechat/internal/util"
	"sitechat/pkg/logger"
	"sitechat/pkg/metrics"
	"sitechat/pkg/mq"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
)

var ErrInvalidFilename = errors.New("invalid report filename")

// Service renders project reports as PDF files under dir.
type Service struct {
	dir       string
	publisher mq.EventPublisher
	now       func() time.Time
	logger    *zap.Logger
}

func NewService(dir string, publisher mq.EventPublisher, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = mq.NoopPublisher{}
	}
	return &Service{
		dir:       dir,
		publisher: publisher,
		now:       time.Now,
		logger:    logger,
	}
}

// Generate writes the report for p and returns its file name (not the full path).
func (s *Service) Generate(ctx context.Context, p model.Project, userID string) (string, error) {
	log := logger.WithTrace(ctx, s.logger)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		metrics.IncrementReportGenerated("failed")
		return "", fmt.Errorf("create report dir: %w", err)
	}

	now := s.now()
	filename := fmt.Sprintf("Project_Report_%s_%s.pdf",
		strings.ReplaceAll(p.Name, " ", "_"), now.Format("20060102_150405"))

	if err := render(p, now).OutputFileAndClose(filepath.Join(s.dir, filename)); err != nil {
		metrics.IncrementReportGenerated("failed")
		log.Error("Failed to write report",
			zap.String("project_id", p.ID),
			zap.String("filename", filename),
			zap.Error(err),
		)
		return "", fmt.Errorf("write report: %w", err)
	}
	metrics.IncrementReportGenerated("success")

	if err := s.publisher.Publish(ctx, mq.RoutingReportGenerated, mq.ReportGeneratedPayload{
		ProjectID: p.ID,
		Filename:  filename,
		UserID:    userID,
	}); err != nil {
		log.Warn("Failed to publish report event", zap.Error(err))
	}

	log.Info("Report generated",
		zap.String("project_id", p.ID),
		zap.String("filename", filename),
	)
	return filename, nil
}

// Path resolves a report file name inside the report dir. Names that would
// escape the dir are rejected.
func (s *Service) Path(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return "", ErrInvalidFilename
	}
	return filepath.Join(s.dir, filename), nil
}

const (
	lineH = 7.0
	inch  = 25.4
)

type table struct {
	widths []float64
	header []string // optional
	rows   [][]string
	// label column shaded instead of a header row
	labelCol bool
}

func render(p model.Project, now time.Time) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "Letter", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr("Project Report: "+p.Name), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	heading(pdf, "Project Overview")
	drawTable(pdf, tr, table{
		widths:   []float64{2 * inch, 4 * inch},
		labelCol: true,
		rows: [][]string{
			{"Status", p.Status},
			{"Completion", strconv.Itoa(p.Completion) + "%"},
			{"Timeline", p.Timeline},
		},
	})

	heading(pdf, "Budget Information")
	drawTable(pdf, tr, table{
		widths: []float64{2 * inch, 4 * inch},
		header: []string{"Category", "Amount"},
		rows: [][]string{
			{"Allocated", util.FormatMoney(p.Budget.Allocated)},
			{"Spent", util.FormatMoney(p.Budget.Spent)},
			{"Remaining", util.FormatMoney(p.Budget.Remaining)},
		},
	})

	heading(pdf, "Current Issues")
	if len(p.Issues) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, lineH, "No current issues for this project.", "", 1, "L", false, 0, "")
		pdf.Ln(6)
	} else {
		rows := make([][]string, 0, len(p.Issues))
		for _, i := range p.Issues {
			rows = append(rows, []string{i.ID, i.Description, i.Status, i.Date})
		}
		drawTable(pdf, tr, table{
			widths: []float64{0.7 * inch, 3 * inch, 1 * inch, 1.3 * inch},
			header: []string{"ID", "Description", "Status", "Date"},
			rows:   rows,
		})
	}

	heading(pdf, "Milestones")
	rows := make([][]string, 0, len(p.Milestones))
	for _, m := range p.Milestones {
		target, err := util.FormatDate(m.Date)
		if err != nil {
			target = m.Date
		}
		rows = append(rows, []string{m.Name, m.Status, target, schedule(m, now)})
	}
	drawTable(pdf, tr, table{
		widths: []float64{2.2 * inch, 1.2 * inch, 1.6 * inch, 1 * inch},
		header: []string{"Name", "Status", "Target Date", "Schedule"},
		rows:   rows,
	})

	equipment := "None"
	if len(p.Resources.Equipment) > 0 {
		equipment = strings.Join(p.Resources.Equipment, ", ")
	}
	heading(pdf, "Resources")
	drawTable(pdf, tr, table{
		widths:   []float64{2 * inch, 4 * inch},
		labelCol: true,
		rows: [][]string{
			{"Workers", util.FormatNumber(int64(p.Resources.Workers))},
			{"Equipment", equipment},
		},
	})

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, lineH, "Report generated on "+now.Format("2006-01-02 at 15:04:05"), "", 1, "L", false, 0, "")
	return pdf
}

// schedule describes where an unfinished milestone stands against its target.
func schedule(m model.Milestone, now time.Time) string {
	if m.Status == model.MilestoneCompleted {
		return "Done"
	}
	late, err := util.IsPastDue(m.Date, now)
	if err != nil {
		return ""
	}
	if late {
		return "Past due"
	}
	days, err := util.DaysUntil(m.Date, now)
	if err != nil {
		return ""
	}
	if days == 1 {
		return "1 day left"
	}
	return fmt.Sprintf("%d days left", days)
}

func heading(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 9, text, "", 1, "L", false, 0, "")
	pdf.Ln(2)
}

func drawTable(pdf *fpdf.Fpdf, tr func(string) string, t table) {
	if len(t.header) > 0 {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetFillColor(128, 128, 128)
		pdf.SetTextColor(245, 245, 245)
		for i, h := range t.header {
			pdf.CellFormat(t.widths[i], lineH+1, h, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
	}

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetFillColor(211, 211, 211)
	for _, row := range t.rows {
		for i, cell := range row {
			pdf.CellFormat(t.widths[i], lineH, tr(cell), "1", 0, "L", t.labelCol && i == 0, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(6)
}
