package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 聊天消息意图分类计数
	ChatIntentCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_intent_total",
			Help: "Total number of chat messages by classified intent",
		},
		[]string{"intent"},
	)

	// 笔记写入计数
	NoteAddedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notes_added_total",
			Help: "Total number of notes added",
		},
		[]string{"project_id", "status"}, // status: stored, duplicate, failed
	)

	// 报告生成计数
	ReportGeneratedCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_generated_total",
			Help: "Total number of PDF reports generated",
		},
		[]string{"status"}, // status: success, failed
	)

	// 图表生成计数及耗时
	ChartRenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chart_render_duration_seconds",
			Help:    "Chart rendering duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
		},
		[]string{"kind", "status"}, // kind: budget, progress, timeline
	)
)

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementChatIntent 增加意图计数
func IncrementChatIntent(intent string) {
	ChatIntentCount.WithLabelValues(intent).Inc()
}

// IncrementNoteAdded 增加笔记写入计数
func IncrementNoteAdded(projectID, status string) {
	NoteAddedCount.WithLabelValues(projectID, status).Inc()
}

// IncrementReportGenerated 增加报告生成计数
func IncrementReportGenerated(status string) {
	ReportGeneratedCount.WithLabelValues(status).Inc()
}

// RecordChartRender 记录图表渲染耗时
func RecordChartRender(kind, status string, duration time.Duration) {
	ChartRenderDuration.WithLabelValues(kind, status).Observe(duration.Seconds())
}

// 慢查询计数（仅 postgres 笔记存储）
var SlowQueryCount = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "db_slow_query_total",
		Help: "Total number of database queries slower than the configured threshold",
	},
	[]string{"operation"},
)

// IncrementSlowQuery 记录一次慢查询，operation 取 SQL 的第一个关键字
func IncrementSlowQuery(operation string) {
	SlowQueryCount.WithLabelValues(operation).Inc()
}
