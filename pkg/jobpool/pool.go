package jobpool

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Job is a unit of background work. Jobs with the same Partition and Key run
// on the same worker, in dispatch order.
type Job struct {
	Kind      string // e.g. "audit", "webhook"; only used for logs and stats
	Partition string
	Key       string
	Handler   func(ctx context.Context) error
}

func (j Job) shardKey() string {
	return j.Partition + "|" + j.Key
}

// PoolStats contains real-time pool metrics.
type PoolStats struct {
	NumWorkers      int              `json:"num_workers"`
	QueueSize       int              `json:"queue_size"`
	ActiveWorkers   int              `json:"active_workers"`
	TotalDispatched int64            `json:"total_dispatched"`
	TotalProcessed  int64            `json:"total_processed"`
	TotalDropped    int64            `json:"total_dropped"`
	TotalErrors     int64            `json:"total_errors"`
	ByKind          map[string]int64 `json:"by_kind"`
	WorkerStats     []WorkerStats    `json:"worker_stats"`
	Uptime          string           `json:"uptime"`
}

type WorkerStats struct {
	WorkerID      int   `json:"worker_id"`
	QueueDepth    int   `json:"queue_depth"`
	IsProcessing  bool  `json:"is_processing"`
	JobsProcessed int64 `json:"jobs_processed"`
}

// Pool runs fire-and-forget jobs on a fixed set of sharded workers.
// A full queue drops the job instead of blocking the caller.
type Pool struct {
	numWorkers int
	queueSize  int
	workers    []*worker
	wg         sync.WaitGroup
	stopOnce   sync.Once
	started    int32
	stopped    int32

	totalDispatched int64
	totalProcessed  int64
	totalDropped    int64
	totalErrors     int64
	kindMu          sync.Mutex
	byKind          map[string]int64
	startTime       time.Time
}

type worker struct {
	id            int
	jobQueue      chan Job
	ctx           context.Context
	cancel        context.CancelFunc
	isProcessing  int32
	jobsProcessed int64
	pool          *Pool
}

func New(numWorkers, queueSize int) *Pool {
	if numWorkers <= 0 {
		numWorkers = 4
	}
	if queueSize <= 0 {
		queueSize = 100
	}

	return &Pool{
		numWorkers: numWorkers,
		queueSize:  queueSize,
		workers:    make([]*worker, numWorkers),
		byKind:     make(map[string]int64),
		startTime:  time.Now(),
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (p *Pool) Start(ctx context.Context) {
	if !atomic.CompareAndSwapInt32(&p.started, 0, 1) {
		return
	}
	for i := 0; i < p.numWorkers; i++ {
		workerCtx, cancel := context.WithCancel(ctx)
		w := &worker{
			id:       i,
			jobQueue: make(chan Job, p.queueSize),
			ctx:      workerCtx,
			cancel:   cancel,
			pool:     p,
		}
		p.workers[i] = w

		p.wg.Add(1)
		go w.run(&p.wg)
	}

	logrus.Infof("[JOB_POOL] Started with %d workers, queue size: %d", p.numWorkers, p.queueSize)
}

// TryDispatch enqueues job without blocking and reports whether it was accepted.
func (p *Pool) TryDispatch(job Job) bool {
	if atomic.LoadInt32(&p.started) == 0 || atomic.LoadInt32(&p.stopped) == 1 {
		atomic.AddInt64(&p.totalDropped, 1)
		return false
	}

	shard := p.shardFor(job.shardKey())
	atomic.AddInt64(&p.totalDispatched, 1)

	sent := func() (ok bool) {
		defer func() {
			if r := recover(); r != nil {
				ok = false
			}
		}()
		select {
		case p.workers[shard].jobQueue <- job:
			return true
		default:
			return false
		}
	}()

	if sent {
		p.kindMu.Lock()
		p.byKind[job.Kind]++
		p.kindMu.Unlock()
		return true
	}

	atomic.AddInt64(&p.totalDropped, 1)
	logrus.Warnf("[JOB_POOL] Worker %d queue full (or stopped), dropping %s job for %s", shard, job.Kind, job.shardKey())
	return false
}

// Dispatch enqueues job and forgets about it.
func (p *Pool) Dispatch(job Job) {
	_ = p.TryDispatch(job)
}

// Stop drains the queues and waits for the workers to finish.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		atomic.StoreInt32(&p.stopped, 1)
		if atomic.LoadInt32(&p.started) == 0 {
			return
		}
		logrus.Info("[JOB_POOL] Stopping workers...")

		for _, w := range p.workers {
			w.cancel()
			close(w.jobQueue)
		}
		p.wg.Wait()

		logrus.Info("[JOB_POOL] All workers stopped")
	})
}

func (p *Pool) shardFor(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(p.numWorkers))
}

func (p *Pool) GetStats() PoolStats {
	workerStats := make([]WorkerStats, 0, len(p.workers))
	activeWorkers := 0

	for _, w := range p.workers {
		if w == nil {
			continue
		}
		isProcessing := atomic.LoadInt32(&w.isProcessing) == 1
		if isProcessing {
			activeWorkers++
		}
		workerStats = append(workerStats, WorkerStats{
			WorkerID:      w.id,
			QueueDepth:    len(w.jobQueue),
			IsProcessing:  isProcessing,
			JobsProcessed: atomic.LoadInt64(&w.jobsProcessed),
		})
	}

	p.kindMu.Lock()
	byKind := make(map[string]int64, len(p.byKind))
	for k, v := range p.byKind {
		byKind[k] = v
	}
	p.kindMu.Unlock()

	return PoolStats{
		NumWorkers:      p.numWorkers,
		QueueSize:       p.queueSize,
		ActiveWorkers:   activeWorkers,
		TotalDispatched: atomic.LoadInt64(&p.totalDispatched),
		TotalProcessed:  atomic.LoadInt64(&p.totalProcessed),
		TotalDropped:    atomic.LoadInt64(&p.totalDropped),
		TotalErrors:     atomic.LoadInt64(&p.totalErrors),
		ByKind:          byKind,
		WorkerStats:     workerStats,
		Uptime:          time.Since(p.startTime).Round(time.Second).String(),
	}
}

func (w *worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	logrus.Debugf("[JOB_POOL] Worker %d started", w.id)

	for {
		select {
		case job, ok := <-w.jobQueue:
			if !ok {
				logrus.Debugf("[JOB_POOL] Worker %d shutting down", w.id)
				return
			}
			w.execute(job)

		case <-w.ctx.Done():
			logrus.Debugf("[JOB_POOL] Worker %d context cancelled, draining queue...", w.id)
			w.drainQueue()
			return
		}
	}
}

func (w *worker) execute(job Job) {
	atomic.StoreInt32(&w.isProcessing, 1)
	defer func() {
		if r := recover(); r != nil {
			atomic.AddInt64(&w.pool.totalErrors, 1)
			logrus.Errorf("[JOB_POOL] Worker %d panic in %s job for %s: %v", w.id, job.Kind, job.shardKey(), r)
		}
		atomic.StoreInt32(&w.isProcessing, 0)
		atomic.AddInt64(&w.jobsProcessed, 1)
		atomic.AddInt64(&w.pool.totalProcessed, 1)
	}()

	// Jobs still get a live context while the pool drains after cancellation.
	ctx := w.ctx
	if ctx.Err() != nil {
		ctx = context.WithoutCancel(ctx)
	}

	if err := job.Handler(ctx); err != nil {
		atomic.AddInt64(&w.pool.totalErrors, 1)
		logrus.WithError(err).Errorf("[JOB_POOL] Worker %d %s job failed for %s", w.id, job.Kind, job.shardKey())
	}
}

func (w *worker) drainQueue() {
	for {
		select {
		case job, ok := <-w.jobQueue:
			if !ok {
				return
			}
			w.execute(job)
		default:
			return
		}
	}
}
