package usecase

import (
	"context"
	"slices"
	"time"

	auditDomain "github.com/jivitsolutions/jivit-site/audit/domain"
	domainDashboard "github.com/jivitsolutions/jivit-site/domains/dashboard"
	leadsDomain "github.com/jivitsolutions/jivit-site/leads/domain"
	"github.com/jivitsolutions/jivit-site/pkg/cache"
	"github.com/sirupsen/logrus"
)

type Counter interface {
	Count(ctx context.Context, onlyPublished bool) (int64, error)
}

type ApplicationCounter interface {
	CountByStatus(ctx context.Context) (map[leadsDomain.Status]int64, error)
}

type ActivityLister interface {
	List(ctx context.Context, limit int) ([]*auditDomain.ActivityLog, error)
}

// DashboardSources are the read models the dashboard aggregates. A nil source
// is reported as zero.
type DashboardSources struct {
	Services     Counter
	Jobs         Counter
	Programs     Counter
	Blogs        Counter
	Applications ApplicationCounter
	Activity     ActivityLister
}

type dashboardService struct {
	src   DashboardSources
	tiers *cache.Tiers
	now   func() time.Time
}

func NewDashboardService(src DashboardSources, tiers *cache.Tiers) domainDashboard.IDashboardUsecase {
	if tiers == nil {
		tiers = cache.Disabled()
	}
	return &dashboardService{src: src, tiers: tiers, now: time.Now}
}

// GetStats serves the volatile snapshot when there is one. A degraded snapshot
// is returned but not cached, so the next request retries the failed source.
func (s *dashboardService) GetStats(ctx context.Context) (domainDashboard.Stats, error) {
	key := cache.NewKey(cache.FamilyDashboard, cache.KindStats).String()

	var stats domainDashboard.Stats
	if s.tiers.Volatile.GetInto(ctx, key, &stats) {
		return stats, nil
	}

	stats = s.collect(ctx)
	if stats.SystemStatus == domainDashboard.StatusOperational {
		s.tiers.Volatile.Set(ctx, key, stats)
	}
	return stats, nil
}

func (s *dashboardService) collect(ctx context.Context) domainDashboard.Stats {
	stats := domainDashboard.Stats{
		RecentLogs:  []*auditDomain.ActivityLog{},
		GeneratedAt: s.now().UTC(),
	}

	fail := func(source string, err error) {
		logrus.WithError(err).Warnf("[DASHBOARD] failed to read %s", source)
		if !slices.Contains(stats.Failures, source) {
			stats.Failures = append(stats.Failures, source)
		}
	}

	count := func(source string, c Counter, onlyPublished bool, dst *int64) {
		if c == nil {
			return
		}
		n, err := c.Count(ctx, onlyPublished)
		if err != nil {
			fail(source, err)
			return
		}
		*dst = n
	}

	count("services", s.src.Services, false, &stats.Services)
	count("services", s.src.Services, true, &stats.PublishedServices)
	count("jobs", s.src.Jobs, false, &stats.Jobs)
	count("jobs", s.src.Jobs, true, &stats.PublishedJobs)
	count("programs", s.src.Programs, false, &stats.Programs)
	count("blogs", s.src.Blogs, false, &stats.Blogs)

	if s.src.Applications != nil {
		byStatus, err := s.src.Applications.CountByStatus(ctx)
		if err != nil {
			fail("applications", err)
		}
		for status, n := range byStatus {
			stats.Applications += n
			if status == leadsDomain.StatusNew {
				stats.NewApplications = n
			}
		}
	}

	if s.src.Activity != nil {
		logs, err := s.src.Activity.List(ctx, domainDashboard.RecentActivityLimit)
		if err != nil {
			fail("activity", err)
		} else if logs != nil {
			stats.RecentLogs = logs
		}
	}

	stats.SystemStatus = domainDashboard.StatusOperational
	if len(stats.Failures) > 0 {
		stats.SystemStatus = domainDashboard.StatusDegraded
	}
	return stats
}
