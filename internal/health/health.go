// Package health provides system health monitoring and status reporting.
package health

// SystemStatus represents the overall health state of the system or a component.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// SourceHealth contains health metrics for a single monitored source.
type SourceHealth struct {
	SourceID         string       `json:"source_id"`
	Status           SystemStatus `json:"status"`
	StalenessSeconds int64        `json:"staleness_seconds"`
	LastCheckedAt    int64        `json:"last_checked_at"`
	TotalRetrieved   int64        `json:"total_retrieved"`
}

// Report contains the full system health report.
type Report struct {
	SystemStatus        SystemStatus            `json:"system_status"`
	ConsecutiveFailures int                     `json:"consecutive_failures"`
	FailureThreshold    int                     `json:"failure_threshold"`
	PendingFailures     int                     `json:"pending_failures"`
	Sources             map[string]SourceHealth `json:"sources"`
}
