package application

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jivitsolutions/jivit-site/audit/domain"
	"github.com/jivitsolutions/jivit-site/pkg/jobpool"
	"github.com/sirupsen/logrus"
)

// Dispatcher is the part of the worker pool the recorder needs.
type Dispatcher interface {
	TryDispatch(job jobpool.Job) bool
}

// Service records audit entries in the background and serves the recent log.
type Service struct {
	repo domain.Repository
	pool Dispatcher
	now  func() time.Time

	mu        sync.RWMutex
	listeners []func(domain.ActivityLog)
}

func NewService(repo domain.Repository, pool Dispatcher) *Service {
	return &Service{repo: repo, pool: pool, now: time.Now}
}

// OnRecorded registers fn to be called after each entry is persisted.
func (s *Service) OnRecorded(fn func(domain.ActivityLog)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Record never blocks on the database and never reports failure to the
// caller. Without a pool the write runs on its own goroutine.
func (s *Service) Record(ctx context.Context, entry domain.Entry) {
	if entry.Action == "" || entry.EntityType == "" {
		logrus.WithError(domain.ErrInvalidEntry).Warnf("[AUDIT] dropping entry for %q", entry.EntityID)
		return
	}

	log := &domain.ActivityLog{
		AdminID:    entry.AdminID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Details:    detailsMap(entry.Details),
		CreatedAt:  s.now(),
	}

	// The request context is gone by the time the job runs.
	bg := context.WithoutCancel(ctx)
	write := func(jobCtx context.Context) error {
		return s.persist(jobCtx, log)
	}

	if s.pool == nil {
		go func() {
			if err := write(bg); err != nil {
				logrus.WithError(err).Errorf("[AUDIT] failed to record %s %s/%s", log.Action, log.EntityType, log.EntityID)
			}
		}()
		return
	}

	if !s.pool.TryDispatch(jobpool.Job{
		Kind:      "audit",
		Partition: log.EntityType,
		Key:       log.EntityID,
		Handler:   write,
	}) {
		logrus.Warnf("[AUDIT] pool rejected %s %s/%s, entry lost", log.Action, log.EntityType, log.EntityID)
	}
}

func (s *Service) persist(ctx context.Context, log *domain.ActivityLog) error {
	if err := s.repo.Create(ctx, log); err != nil {
		return err
	}
	logrus.Debugf("[AUDIT] %s %s/%s by %s", log.Action, log.EntityType, log.EntityID, log.AdminID)

	s.mu.RLock()
	listeners := append([]func(domain.ActivityLog){}, s.listeners...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(*log)
	}
	return nil
}

// List returns the newest entries. limit <= 0 means the default, and it is
// capped at the maximum.
func (s *Service) List(ctx context.Context, limit int) ([]*domain.ActivityLog, error) {
	if limit <= 0 {
		limit = domain.DefaultListLimit
	}
	if limit > domain.MaxListLimit {
		limit = domain.MaxListLimit
	}

	logs, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for _, l := range logs {
		l.Ago = humanize.RelTime(l.CreatedAt, now, "ago", "from now")
	}
	return logs, nil
}

func detailsMap(v any) map[string]any {
	switch d := v.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		return d
	}

	b, err := json.Marshal(v)
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return map[string]any{"value": json.RawMessage(b)}
	}
	return out
}
