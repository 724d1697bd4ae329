package dashboard

import (
	"context"
	"time"

	auditDomain "github.com/jivitsolutions/jivit-site/audit/domain"
)

const (
	StatusOperational = "operational"
	StatusDegraded    = "degraded"

	RecentActivityLimit = 8
)

type Stats struct {
	Services          int64                      `json:"services"`
	PublishedServices int64                      `json:"published_services"`
	Jobs              int64                      `json:"jobs"`
	PublishedJobs     int64                      `json:"published_jobs"`
	Programs          int64                      `json:"programs"`
	Blogs             int64                      `json:"blogs"`
	Applications      int64                      `json:"applications"`
	NewApplications   int64                      `json:"new_applications"`
	RecentLogs        []*auditDomain.ActivityLog `json:"recent_logs"`
	SystemStatus      string                     `json:"system_status"`
	Failures          []string                   `json:"failures,omitempty"`
	GeneratedAt       time.Time                  `json:"generated_at"`
}

type IDashboardUsecase interface {
	GetStats(ctx context.Context) (Stats, error)
}
