package usecase

import (
	"context"
	"time"

	"github.com/jivitsolutions/jivit-site/core/config"
	"github.com/jivitsolutions/jivit-site/domains/health"
	"github.com/sirupsen/logrus"
)

const probeTimeout = 2 * time.Second

type healthService struct {
	probes []health.Probe
	now    func() time.Time
}

// NewHealthService checks the given probes on every call. A probe with a nil
// Check is reported as disabled.
func NewHealthService(probes ...health.Probe) health.IHealthUsecase {
	return &healthService{probes: probes, now: time.Now}
}

func (s *healthService) Check(ctx context.Context) health.Report {
	report := health.Report{
		Status:    health.StatusOk,
		Checks:    make([]health.Check, 0, len(s.probes)),
		Config:    config.Summary(),
		CheckedAt: s.now().UTC(),
	}

	for _, p := range s.probes {
		check := s.run(ctx, p)
		if check.Status == health.StatusError {
			report.Status = health.StatusError
		}
		report.Checks = append(report.Checks, check)
	}
	return report
}

func (s *healthService) run(ctx context.Context, p health.Probe) health.Check {
	check := health.Check{Name: p.Name, Status: health.StatusOk}
	if p.Details != nil {
		check.Details = p.Details()
	}
	if p.Check == nil {
		check.Status = health.StatusDisabled
		return check
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	start := time.Now()
	err := p.Check(ctx)
	check.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		logrus.WithError(err).Warnf("[Health] %s check failed", p.Name)
		check.Status = health.StatusError
		check.Message = err.Error()
	}
	return check
}
