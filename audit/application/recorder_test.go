package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jivitsolutions/jivit-site/audit/domain"
	"github.com/jivitsolutions/jivit-site/audit/repository"
	"github.com/jivitsolutions/jivit-site/core/database"
	"github.com/jivitsolutions/jivit-site/pkg/jobpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService(t *testing.T) (*Service, *jobpool.Pool) {
	t.Helper()
	db, err := database.NewMemoryDatabase(uuid.NewString())
	require.NoError(t, err)

	repo := repository.NewActivityGormRepository(db)
	require.NoError(t, repo.InitSchema(context.Background()))

	pool := jobpool.New(2, 50)
	pool.Start(context.Background())
	t.Cleanup(pool.Stop)

	return NewService(repo, pool), pool
}

type failingRepo struct{}

func (failingRepo) InitSchema(context.Context) error { return nil }
func (failingRepo) Create(context.Context, *domain.ActivityLog) error {
	return errors.New("disk full")
}
func (failingRepo) ListRecent(context.Context, int) ([]*domain.ActivityLog, error) {
	return nil, errors.New("disk full")
}

func TestRecord_PersistsAsynchronously(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	svc.Record(ctx, domain.Entry{
		AdminID:    "admin",
		Action:     domain.ActionCreate,
		EntityType: "service",
		EntityID:   "svc-1",
		Details:    map[string]any{"title": "Cloud"},
	})

	require.Eventually(t, func() bool {
		logs, err := svc.List(ctx, 0)
		return err == nil && len(logs) == 1
	}, time.Second, 10*time.Millisecond)

	logs, err := svc.List(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionCreate, logs[0].Action)
	assert.Equal(t, "svc-1", logs[0].EntityID)
	assert.Equal(t, "Cloud", logs[0].Details["title"])
	assert.NotEmpty(t, logs[0].Ago)
}

func TestRecord_StructDetailsBecomeObject(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	type patch struct {
		Status string `json:"status"`
	}
	svc.Record(ctx, domain.Entry{Action: domain.ActionUpdateStatus, EntityType: "application", EntityID: "a1", Details: patch{Status: "reviewed"}})

	require.Eventually(t, func() bool {
		logs, _ := svc.List(ctx, 0)
		return len(logs) == 1
	}, time.Second, 10*time.Millisecond)

	logs, _ := svc.List(ctx, 0)
	assert.Equal(t, "reviewed", logs[0].Details["status"])
}

func TestRecord_InvalidEntryDropped(t *testing.T) {
	svc, pool := setupService(t)

	svc.Record(context.Background(), domain.Entry{EntityID: "x"})
	assert.Equal(t, int64(0), pool.GetStats().TotalDispatched)
}

func TestRecord_FailureIsSwallowed(t *testing.T) {
	pool := jobpool.New(1, 10)
	pool.Start(context.Background())
	defer pool.Stop()

	svc := NewService(failingRepo{}, pool)
	assert.NotPanics(t, func() {
		svc.Record(context.Background(), domain.Entry{Action: domain.ActionDelete, EntityType: "blog", EntityID: "b1"})
	})

	require.Eventually(t, func() bool {
		return pool.GetStats().TotalErrors == 1
	}, time.Second, 10*time.Millisecond)
}

func TestRecord_SurvivesCancelledRequestContext(t *testing.T) {
	svc, _ := setupService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc.Record(ctx, domain.Entry{Action: domain.ActionCreate, EntityType: "job_opening", EntityID: "j1"})

	require.Eventually(t, func() bool {
		logs, _ := svc.List(context.Background(), 0)
		return len(logs) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestRecord_NotifiesListeners(t *testing.T) {
	svc, _ := setupService(t)

	var mu sync.Mutex
	var seen []domain.ActivityLog
	svc.OnRecorded(func(l domain.ActivityLog) {
		mu.Lock()
		seen = append(seen, l)
		mu.Unlock()
	})

	svc.Record(context.Background(), domain.Entry{Action: domain.ActionUpdateSetting, EntityType: "setting", EntityID: "site_name"})

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "site_name", seen[0].EntityID)
}

func TestRecord_WithoutPool(t *testing.T) {
	db, err := database.NewMemoryDatabase(uuid.NewString())
	require.NoError(t, err)
	repo := repository.NewActivityGormRepository(db)
	require.NoError(t, repo.InitSchema(context.Background()))

	svc := NewService(repo, nil)
	svc.Record(context.Background(), domain.Entry{Action: domain.ActionCreate, EntityType: "program", EntityID: "p1"})

	require.Eventually(t, func() bool {
		logs, _ := svc.List(context.Background(), 0)
		return len(logs) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestList_LimitBounds(t *testing.T) {
	db, err := database.NewMemoryDatabase(uuid.NewString())
	require.NoError(t, err)
	repo := repository.NewActivityGormRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.InitSchema(ctx))

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 15; i++ {
		require.NoError(t, repo.Create(ctx, &domain.ActivityLog{
			Action:     domain.ActionUpdate,
			EntityType: "service",
			EntityID:   uuid.NewString(),
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	svc := NewService(repo, nil)

	logs, err := svc.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, logs, domain.DefaultListLimit)
	assert.True(t, logs[0].CreatedAt.After(logs[1].CreatedAt), "newest first")

	logs, err = svc.List(ctx, 5000)
	require.NoError(t, err)
	assert.Len(t, logs, 15)

	_, err = NewService(failingRepo{}, nil).List(ctx, 3)
	assert.Error(t, err)
}
